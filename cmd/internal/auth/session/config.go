package session

import (
	"os"
	"strconv"
	"time"

	"github.com/Abdelrahmanaman/chef-circle/cmd/security/token"
)

// Config defines runtime configuration for the session core.
//
// Lifetime is the absolute horizon a session gets at creation and at each
// renewal. RenewalWindow is the trailing slice of the lifetime during which a
// validation slides the expiry forward; a session validated more often than
// once per RenewalWindow never expires, an idle one expires exactly Lifetime
// after its last renewal.
type Config struct {
	Lifetime      time.Duration
	RenewalWindow time.Duration

	// TokenBytes is the entropy of generated session tokens.
	TokenBytes int
}

// DefaultConfig matches the production policy: 30-day sessions renewed in the
// back 15 days, 160-bit tokens.
func DefaultConfig() Config {
	return Config{
		Lifetime:      30 * 24 * time.Hour,
		RenewalWindow: 15 * 24 * time.Hour,
		TokenBytes:    20,
	}
}

// LoadConfigFromEnv loads session configuration from environment variables.
//
// Optional (durations must be valid Go duration strings):
//   - CHEFCIRCLE_SESSION_LIFETIME
//   - CHEFCIRCLE_SESSION_RENEWAL_WINDOW
//   - CHEFCIRCLE_SESSION_TOKEN_BYTES
//
// Returns ErrConfig if configuration is invalid.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("CHEFCIRCLE_SESSION_LIFETIME"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, ErrConfig
		}
		cfg.Lifetime = d
	}

	if v := os.Getenv("CHEFCIRCLE_SESSION_RENEWAL_WINDOW"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, ErrConfig
		}
		cfg.RenewalWindow = d
	}

	if v := os.Getenv("CHEFCIRCLE_SESSION_TOKEN_BYTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < token.MinBytes || n > 64 {
			return Config{}, ErrConfig
		}
		cfg.TokenBytes = n
	}

	// Invariant: the renewal window is a slice of the lifetime.
	if cfg.RenewalWindow >= cfg.Lifetime {
		return Config{}, ErrConfig
	}

	return cfg, nil
}
