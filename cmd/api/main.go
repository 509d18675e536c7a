package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/taskhub/internal/auth"
	"github.com/geocoder89/taskhub/internal/config"
	"github.com/geocoder89/taskhub/internal/db"
	httpx "github.com/geocoder89/taskhub/internal/http"
	"github.com/geocoder89/taskhub/internal/http/handlers"
	"github.com/geocoder89/taskhub/internal/http/middlewares"
	"github.com/geocoder89/taskhub/internal/observability"
	"github.com/geocoder89/taskhub/internal/redisclient"
	"github.com/geocoder89/taskhub/internal/repo/memory"
	"github.com/geocoder89/taskhub/internal/repo/postgres"
	"github.com/geocoder89/taskhub/internal/security"
)

func main() {
	// Load the config set up
	cfg := config.Load()

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "err", err)
		os.Exit(1)
	}
}

// storage groups what the selected driver provides.
type storage struct {
	users    auth.UserStore
	projects handlers.ProjectStore
	tasks    handlers.TaskStore
	ping     handlers.Pinger
	close    func()
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := observability.InitTracer(ctx, "taskhub-api", cfg.OTelEndpoint)
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	defer func() {
		tctx, cancel := config.WithTimeout(5 * time.Second)
		defer cancel()
		if err := shutdownTracer(tctx); err != nil {
			log.Warn("tracer shutdown failed", "err", err)
		}
	}()

	var prom *observability.Prom
	if cfg.MetricsEnabled {
		prom = observability.NewProm()
	}

	store, err := openStorage(ctx, cfg, prom, log)
	if err != nil {
		return err
	}
	defer store.close()

	hasher, err := security.NewHasher(cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("password hasher: %w", err)
	}

	tokens := auth.NewManager(cfg.SigningSecret(), cfg.JWTTTL())
	creds := auth.NewCredentialStore(store.users, hasher)

	authService, err := auth.NewService(creds, tokens, log)
	if err != nil {
		return fmt.Errorf("auth service: %w", err)
	}

	created, err := db.EnsureSeedUser(ctx, authService, db.SeedUser{
		Username: cfg.SeedUsername,
		Email:    cfg.SeedEmail,
		Password: cfg.SeedPassword,
	})
	if err != nil {
		return fmt.Errorf("seed user: %w", err)
	}
	if created {
		log.Info("seed user created", "username", cfg.SeedUsername)
	}

	var counter middlewares.Counter
	if cfg.RedisAddr != "" {
		rc := redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rc.Close()

		pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := rc.Ping(pctx)
		cancel()

		if err != nil {
			log.Warn("redis unavailable, rate limiting stays in process", "addr", cfg.RedisAddr, "err", err)
		} else {
			counter = rc
		}
	}

	router := httpx.NewRouter(log, cfg, httpx.Deps{
		Auth:        authService,
		Gate:        authService,
		Projects:    store.projects,
		Tasks:       store.tasks,
		Ping:        store.ping,
		Prom:        prom,
		RateCounter: counter,
	})

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env, "storage", cfg.StorageDriver)
		err := srv.ListenAndServe()

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err, ok := <-serveErr:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	// Graceful shutdown
	log.Info("server shutting down")

	sctx, cancel := config.WithTimeout(10 * time.Second)
	defer cancel()

	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	log.Info("shutdown complete")
	return nil
}

func openStorage(ctx context.Context, cfg config.Config, prom *observability.Prom, log *slog.Logger) (storage, error) {
	if cfg.StorageDriver == config.StorageMemory {
		log.Warn("using in-memory storage; data is lost on restart")

		tasks := memory.NewTasksRepo()
		return storage{
			users:    memory.NewUsersRepo(),
			projects: memory.NewProjectsRepo(tasks),
			tasks:    tasks,
			close:    func() {},
		}, nil
	}

	mctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := db.Migrate(mctx, cfg.DBURL); err != nil {
		return storage{}, fmt.Errorf("migrate: %w", err)
	}

	pool, err := db.NewPool(ctx, cfg.DBURL, int32(cfg.DBMaxConns))
	if err != nil {
		return storage{}, fmt.Errorf("connect postgres: %w", err)
	}

	return storage{
		users:    postgres.NewUsersRepo(pool, prom),
		projects: postgres.NewProjectsRepo(pool, prom),
		tasks:    postgres.NewTasksRepo(pool, prom),
		ping:     pool.Ping,
		close:    pool.Close,
	}, nil
}
