// Package app wires the ChefCircle server runtime: config, logging, database,
// migrations, metrics, and HTTP routes.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Abdelrahmanaman/chef-circle/cmd/internal/auth/session"
	"github.com/Abdelrahmanaman/chef-circle/cmd/internal/recipe"
	"github.com/Abdelrahmanaman/chef-circle/cmd/internal/social"
	"github.com/Abdelrahmanaman/chef-circle/cmd/security/password"

	authapi "github.com/Abdelrahmanaman/chef-circle/cmd/internal/auth/api"
)

// App is the ChefCircle server runtime. It owns the connection pool and the
// HTTP server wiring.
type App struct {
	cfg Config
	log Logger

	pool    *pgxpool.Pool
	metrics *Metrics

	auth    *authapi.Handler
	recipes *recipe.Handler
	socials *social.Handler
}

// New constructs a fully wired App instance from config and logger.
// The database is required; there is no in-memory mode.
func New(ctx context.Context, cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel, cfg.LogFormat)
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("CHEFCIRCLE_DATABASE_URL is required")
	}

	if cfg.MigrateOnStart {
		if err := RunMigrations(ctx, cfg, log); err != nil {
			return nil, err
		}
	}

	pool, err := NewDBPool(ctx, cfg)
	if err != nil {
		return nil, err
	}

	sessCfg, err := session.LoadConfigFromEnv()
	if err != nil {
		pool.Close()
		return nil, err
	}
	pwCfg, err := password.FromEnv()
	if err != nil {
		pool.Close()
		return nil, err
	}
	authCfg := authapi.LoadConfigFromEnv()

	if err := ValidateSecurityConfig(authCfg, pwCfg); err != nil {
		pool.Close()
		return nil, err
	}

	metrics := NewMetrics()

	auth, err := authapi.NewHandler(log, pool, authCfg, pwCfg, sessCfg, authapi.WithRecorder(metrics))
	if err != nil {
		pool.Close()
		return nil, err
	}

	recipes, err := recipe.NewHandler(log, pool, auth, authCfg.MaxBodyBytes)
	if err != nil {
		pool.Close()
		return nil, err
	}

	socials, err := social.NewHandler(log, pool, auth, authCfg.MaxBodyBytes)
	if err != nil {
		pool.Close()
		return nil, err
	}

	return &App{
		cfg:     cfg,
		log:     log,
		pool:    pool,
		metrics: metrics,
		auth:    auth,
		recipes: recipes,
		socials: socials,
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal
// server error.
func (a *App) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	registerHTTP(mux, a.log, a.pool, a.metrics, a.auth, a.recipes, a.socials)

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           WithRequestLogging(mux, a.log, a.metrics),
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	a.log.Info("server.start", "addr", a.cfg.HTTPAddr)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("server.fail", "err", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		return err
	}

	a.pool.Close()

	a.log.Info("server.stopped")
	return nil
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
