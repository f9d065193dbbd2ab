package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/baharkarakas/skillstack-backend/internal/api"
	"github.com/baharkarakas/skillstack-backend/internal/auth"
	"github.com/baharkarakas/skillstack-backend/internal/config"
	"github.com/baharkarakas/skillstack-backend/internal/db"
	"github.com/baharkarakas/skillstack-backend/internal/logger"
	"github.com/baharkarakas/skillstack-backend/internal/metrics"
	repo "github.com/baharkarakas/skillstack-backend/internal/repository"
	"github.com/baharkarakas/skillstack-backend/internal/repository/memory"
	"github.com/baharkarakas/skillstack-backend/internal/repository/mongodb"
	"github.com/baharkarakas/skillstack-backend/internal/repository/postgres"
	"github.com/baharkarakas/skillstack-backend/internal/services"
	"github.com/baharkarakas/skillstack-backend/internal/worker"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("config", "err", err)
		os.Exit(1)
	}
	if cfg.UsesDefaultSecret() {
		log.Warn("JWT_SECRET not set, signing tokens with the default secret")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	repos, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	metrics.Init()
	wp := worker.NewPool(cfg.Workers)
	// stopped before the store closes so queued audit writes land
	defer wp.Stop()

	tm := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	userSvc := services.NewUserService(repos.Users, repos.AuditLogs, auth.NewHasher(cfg.BcryptCost), tm, wp, log)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           api.NewRouter(cfg, log, userSvc, tm),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", "port", cfg.HTTPPort, "env", cfg.Env, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg config.Config, log *slog.Logger) (repo.Repositories, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreMongo:
		client, err := db.NewMongo(ctx, cfg.MongoURI)
		if err != nil {
			return repo.Repositories{}, nil, fmt.Errorf("mongo connect: %w", err)
		}
		closeFn := func() { _ = client.Disconnect(context.Background()) }
		database := client.Database(cfg.MongoDB)
		if err := mongodb.EnsureIndexes(ctx, database); err != nil {
			closeFn()
			return repo.Repositories{}, nil, err
		}
		log.Info("mongo connected", "database", cfg.MongoDB)
		return mongodb.NewRepositories(database), closeFn, nil

	case config.StorePostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return repo.Repositories{}, nil, fmt.Errorf("db connect: %w", err)
		}
		if cfg.Migrate {
			if err := db.RunMigrations(ctx, pool); err != nil {
				pool.Close()
				return repo.Repositories{}, nil, fmt.Errorf("migrations: %w", err)
			}
		}
		log.Info("postgres connected")
		return postgres.NewRepositories(pool), pool.Close, nil

	case config.StoreMemory:
		log.Warn("using in-memory store, data is lost on restart")
		return memory.NewRepositories(), func() {}, nil
	}
	return repo.Repositories{}, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
}
