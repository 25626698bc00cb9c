// Command server runs the bus-network API: signup, per-user preferences,
// driver feedback, and the university catalog behind bearer authentication.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"

	"buslink/internal/audit"
	"buslink/internal/feedback"
	feedbackhandler "buslink/internal/feedback/handler"
	"buslink/internal/identity"
	identityhandler "buslink/internal/identity/handler"
	"buslink/internal/identity/providers/local"
	"buslink/internal/identity/providers/remote"
	"buslink/internal/platform/config"
	"buslink/internal/platform/httpserver"
	"buslink/internal/platform/logger"
	"buslink/internal/platform/metrics"
	platformredis "buslink/internal/platform/redis"
	"buslink/internal/records"
	"buslink/internal/router"
	"buslink/internal/university"
	universityhandler "buslink/internal/university/handler"
	"buslink/internal/user"
	userhandler "buslink/internal/user/handler"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, backend, err := newStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer backend.close()

	provider := newProvider(cfg, log)

	worker := audit.NewWorker(audit.NewPublisher(audit.NewRecordSink(store)), log, m, cfg.Audit.BufferSize)
	workerCtx, cancelWorker := context.WithCancel(context.Background())
	go worker.Run(workerCtx)

	verifier := identity.NewAuthAdapter(identity.NewVerifier(provider))
	handlers := router.Handlers{
		Identity:   identityhandler.New(identity.NewService(provider, worker), log, m),
		User:       userhandler.New(user.NewService(store, provider, worker), log, m),
		Feedback:   feedbackhandler.New(feedback.NewService(store, worker), log, m),
		University: universityhandler.New(university.NewService(store), log),
	}

	srv := httpserver.New(cfg.Addr, router.New(cfg.BasePath, handlers, router.Deps{
		Verifier: verifier,
		Logger:   log,
		Metrics:  m,
		Recorder: worker,
		Ready:    backend.ready,
	}))

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.Addr, "base_path", cfg.BasePath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		cancelWorker()
		worker.Wait()
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", "error", err)
	}

	cancelWorker()
	worker.Wait()
	return nil
}

// storeBackend bundles the backend's lifecycle hooks: ready feeds the
// /ready probe, close releases the connection on shutdown. Both may be no-ops
// for the in-memory backend.
type storeBackend struct {
	ready func(ctx context.Context) error
	close func()
}

// newStore picks the record-store backend: Redis when configured, then
// Postgres, then the in-memory store for local development.
func newStore(ctx context.Context, cfg config.Config, log *slog.Logger) (records.Store, storeBackend, error) {
	if cfg.Redis.URL != "" {
		client, err := platformredis.New(cfg.Redis)
		if err != nil {
			return nil, storeBackend{}, fmt.Errorf("connect redis: %w", err)
		}
		log.Info("record store backend", "backend", "redis")
		return records.NewRedisStore(client.Client), storeBackend{
			ready: client.Health,
			close: func() { client.Close() },
		}, nil
	}

	if cfg.PostgresURL != "" {
		db, err := sql.Open("postgres", cfg.PostgresURL)
		if err != nil {
			return nil, storeBackend{}, fmt.Errorf("open postgres: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, storeBackend{}, fmt.Errorf("ping postgres: %w", err)
		}
		store := records.NewPostgresStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, storeBackend{}, fmt.Errorf("ensure schema: %w", err)
		}
		log.Info("record store backend", "backend", "postgres")
		return store, storeBackend{
			ready: db.PingContext,
			close: func() { db.Close() },
		}, nil
	}

	log.Warn("record store backend", "backend", "memory", "note", "data is lost on restart")
	return records.NewMemoryStore(), storeBackend{close: func() {}}, nil
}

// newProvider selects the identity provider: the remote HTTP provider when a
// base URL is configured, otherwise the in-process one.
func newProvider(cfg config.Config, log *slog.Logger) identity.Provider {
	if cfg.Provider.BaseURL != "" {
		log.Info("identity provider", "provider", "remote", "url", cfg.Provider.BaseURL)
		return remote.New(cfg.Provider.BaseURL, cfg.Provider.APIKey)
	}
	log.Info("identity provider", "provider", "local")
	return local.New(cfg.Provider.JWTSigningKey, cfg.Provider.TokenTTL)
}
