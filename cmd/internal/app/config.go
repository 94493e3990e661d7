package app

import "time"

// Config contains all runtime configuration loaded from environment variables.
type Config struct {
	HTTPAddr  string
	LogLevel  string
	LogFormat string

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	// If true, the embedded goose migrations run before the server accepts
	// traffic. Disable when schema management happens out of band.
	MigrateOnStart bool
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() Config {
	return Config{
		HTTPAddr:  EnvString("CHEFCIRCLE_HTTP_ADDR", "0.0.0.0:8080"),
		LogLevel:  EnvString("CHEFCIRCLE_LOG_LEVEL", "info"),
		LogFormat: EnvString("CHEFCIRCLE_LOG_FORMAT", "json"),

		ReadHeaderTimeout: EnvDuration("CHEFCIRCLE_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("CHEFCIRCLE_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      EnvDuration("CHEFCIRCLE_HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       EnvDuration("CHEFCIRCLE_HTTP_IDLE_TIMEOUT", 60*time.Second),

		MaxHeaderBytes: EnvInt("CHEFCIRCLE_HTTP_MAX_HEADER_BYTES", 1<<20),

		DatabaseURL: EnvString("CHEFCIRCLE_DATABASE_URL", ""),
		DBMaxConns:  EnvInt32("CHEFCIRCLE_DB_MAX_CONNS", 10),
		DBMinConns:  EnvInt32("CHEFCIRCLE_DB_MIN_CONNS", 0),

		MigrateOnStart: EnvBool("CHEFCIRCLE_DB_MIGRATE_ON_START", true),
	}
}
