package authapi

// Recorder receives auth events for metrics. Implementations must be safe for
// concurrent use.
type Recorder interface {
	Registered()
	RegisterRejected()
	LoginSucceeded()
	LoginFailed()
}

// NoopRecorder discards all events.
type NoopRecorder struct{}

func (NoopRecorder) Registered()       {}
func (NoopRecorder) RegisterRejected() {}
func (NoopRecorder) LoginSucceeded()   {}
func (NoopRecorder) LoginFailed()      {}
