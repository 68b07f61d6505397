package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"codesync/internal/config"
	"codesync/internal/routers"
)

// Indirections for tests.
var (
	listenAndServe = http.ListenAndServe
	exitFunc       = defaultExit
	exit           = os.Exit
)

func newLogger(env string) *zap.Logger {
	if env == "prod" {
		logger, _ := zap.NewProduction()
		return logger
	}
	logger, _ := zap.NewDevelopment()
	return logger
}

func run(_ context.Context) error {
	// Load local .env (dev only)
	_ = godotenv.Load()

	cfg := config.Load()
	logger := newLogger(cfg.Env)
	defer func() { _ = logger.Sync() }()

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Mount("/", routers.New(logger, cfg))

	addr := ":" + cfg.Port
	log.Printf("codesync listening on %s", addr)
	return listenAndServe(addr, r)
}

func defaultExit(err error) {
	log.Println(err)
	exit(1)
}

func main() {
	if err := run(context.Background()); err != nil {
		exitFunc(err)
	}
}
