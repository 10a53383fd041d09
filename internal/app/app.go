package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tripkas/tripkas/internal/cache"
	"github.com/tripkas/tripkas/internal/config"
	"github.com/tripkas/tripkas/internal/database"
	"github.com/tripkas/tripkas/internal/utils"
	log "github.com/sirupsen/logrus"
)

// Application wires configuration, database, router, and server lifecycle.
type Application struct {
	cfg    config.Application
	db     *pgxpool.Pool
	redis  *cache.RedisStore
	router *mux.Router
	srv    *http.Server
}

// NewApplication constructs the full HTTP application, ready to Run().
func NewApplication(configPath string) (*Application, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if cfg.Auth.JwtSecret == "" {
		log.Warn("auth.jwtsecret is not set, generated a random one; unlocked public plans will need a new password after restart")
		cfg.Auth.JwtSecret = uuid.NewString()
	}

	// DB + migrations
	if err := database.Migrate(cfg.Database); err != nil {
		return nil, err
	}
	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, err
	}

	a := &Application{cfg: cfg, db: db}

	var store cache.Store
	if cfg.Redis.Addr != "" {
		a.redis, err = cache.NewRedisStore(cfg.Redis)
		if err != nil {
			db.Close()
			return nil, err
		}
		store = a.redis
	} else {
		log.Info("Redis address not configured, using in-memory cache")
		store = cache.NewMemoryStore(&utils.SystemClock{})
	}

	r := mux.NewRouter()

	// Build dependencies (services, handlers...)
	deps := BuildDependencies(db, store, cfg)

	handler := SetupMiddleware(r, deps, cfg)
	RegisterRoutes(r, deps)

	a.router = r
	a.srv = &http.Server{
		Handler:      handler,
		Addr:         cfg.Addr,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return a, nil
}

// Run starts the HTTP server and blocks until ctx is cancelled or the server fails.
func (a *Application) Run(ctx context.Context) error {
	errs := make(chan error, 1)
	go func() {
		log.Infof("Starting server on %s", a.srv.Addr)
		errs <- a.srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		a.close()
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := a.srv.Shutdown(shutdownCtx)
	a.close()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *Application) close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			log.Errorf("failed to close redis client: %v", err)
		}
	}
	a.db.Close()
}
