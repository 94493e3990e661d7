package app

import (
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	authapi "github.com/Abdelrahmanaman/chef-circle/cmd/internal/auth/api"
	"github.com/Abdelrahmanaman/chef-circle/cmd/internal/recipe"
	"github.com/Abdelrahmanaman/chef-circle/cmd/internal/social"
)

func registerHTTP(
	mux *http.ServeMux,
	log Logger,
	pool *pgxpool.Pool,
	metrics *Metrics,
	auth *authapi.Handler,
	recipes *recipe.Handler,
	socials *social.Handler,
) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := PingDB(r.Context(), pool, 2*time.Second); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			log.Info("readyz.db.not_ready", "err", err)
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready\n"))
	})

	mux.Handle("/metrics", metrics.Handler())

	auth.Register(mux)
	recipes.Register(mux)
	socials.Register(mux)
}
