package app

import (
	"errors"

	"github.com/Abdelrahmanaman/chef-circle/cmd/security/password"

	authapi "github.com/Abdelrahmanaman/chef-circle/cmd/internal/auth/api"
)

// Production floor for Argon2id cost. Anything weaker suggests a dev override
// leaked into a production environment.
const (
	minProdArgonMemoryKiB  = 19 * 1024
	minProdArgonIterations = 2
)

// ValidateSecurityConfig enforces the production hardening policy at startup.
// Failing fast beats serving logins with weakened hashing.
func ValidateSecurityConfig(authCfg authapi.Config, pwCfg password.Config) error {
	if !authCfg.Production {
		return nil
	}

	if authCfg.CookieName == "" {
		return errors.New("security policy: session cookie name must not be empty in production")
	}
	if pwCfg.Params.MemoryKiB < minProdArgonMemoryKiB {
		return errors.New("security policy: argon2id memory below production minimum (19 MiB)")
	}
	if pwCfg.Params.Iterations < minProdArgonIterations {
		return errors.New("security policy: argon2id iterations below production minimum (2)")
	}

	return nil
}
