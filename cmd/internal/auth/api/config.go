package authapi

import (
	"os"
	"strconv"
	"strings"
)

// Config controls auth API behavior.
type Config struct {
	// Production toggles the Secure flag on the session cookie.
	Production bool

	CookieName   string
	CookiePath   string
	CookieDomain string

	MaxBodyBytes int64
}

// LoadConfigFromEnv loads auth config from environment variables with safe defaults.
func LoadConfigFromEnv() Config {
	cfg := Config{
		Production:   envBool("CHEFCIRCLE_ENV_PRODUCTION", isProductionEnv()),
		CookieName:   envString("CHEFCIRCLE_AUTH_COOKIE_NAME", "session"),
		CookiePath:   envString("CHEFCIRCLE_AUTH_COOKIE_PATH", "/"),
		CookieDomain: strings.TrimSpace(os.Getenv("CHEFCIRCLE_AUTH_COOKIE_DOMAIN")),
		MaxBodyBytes: envInt64("CHEFCIRCLE_AUTH_MAX_BODY_BYTES", 1<<20), // 1 MiB
	}

	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}

	return cfg
}

func isProductionEnv() bool {
	return strings.EqualFold(strings.TrimSpace(os.Getenv("CHEFCIRCLE_ENV")), "production")
}

func envString(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envInt64(key string, def int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
