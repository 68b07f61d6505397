package routers

import (
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"codesync/internal/api"
	"codesync/internal/config"
	"codesync/internal/metrics"
)

func New(log *zap.Logger, cfg config.Config) http.Handler {
	h := api.NewHandlers(log)
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))
	r.Use(metrics.Middleware)

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", metrics.Handler())
	r.Get("/ws", h.CollabWS)

	// Client bundle, when deployed alongside the server.
	if st, err := os.Stat(cfg.StaticDir); err == nil && st.IsDir() {
		r.Handle("/*", http.FileServer(http.Dir(cfg.StaticDir)))
	}

	return r
}
