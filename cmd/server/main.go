package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/stockroom/inventory-web/internal/api"
	"github.com/stockroom/inventory-web/internal/api/handler"
	"github.com/stockroom/inventory-web/internal/api/middleware"
	"github.com/stockroom/inventory-web/internal/api/view"
	"github.com/stockroom/inventory-web/internal/core/ports"
	"github.com/stockroom/inventory-web/internal/core/service"
	"github.com/stockroom/inventory-web/internal/core/session"
	"github.com/stockroom/inventory-web/internal/infrastructure/backend"
	"github.com/stockroom/inventory-web/internal/infrastructure/db/memory"
	"github.com/stockroom/inventory-web/internal/infrastructure/db/mongo"
	"github.com/stockroom/inventory-web/internal/infrastructure/db/redis"
	"github.com/stockroom/inventory-web/internal/pkg/config"
	"github.com/stockroom/inventory-web/internal/pkg/seal"
	"github.com/stockroom/inventory-web/pkg/logger"
)

func main() {
	// Docker healthcheck for distroless images.
	if len(os.Args) > 1 && os.Args[1] == "healthcheck" {
		if err := runHealthcheck(); err != nil {
			fmt.Fprintf(os.Stderr, "healthcheck failed: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.Production(),
		Service: "inventory-web",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		os.Exit(1)
	}
	log.Info().Msg("server exited properly")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	box, err := seal.New(cfg.Session.Secret)
	if err != nil {
		return fmt.Errorf("session secret: %w", err)
	}

	kv, closeKV, err := openKV(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeKV()

	scheme, err := backend.ParseScheme(cfg.Backend.AuthScheme)
	if err != nil {
		return err
	}
	client := backend.New(backend.Config{
		BaseURL: cfg.Backend.URL,
		Scheme:  scheme,
		Timeout: cfg.Backend.Timeout,
	}, logger.Component("backend"))

	sessions := session.NewStore(kv, box, cfg.Session.TTL, logger.Component("session"))
	authService := service.NewAuthService(client, scheme == backend.SchemeBearer, logger.Component("auth"))

	renderer, err := view.NewRenderer()
	if err != nil {
		return fmt.Errorf("templates: %w", err)
	}

	e := api.NewRouter(api.Deps{
		Log:      log,
		Renderer: renderer,
		Sessions: sessions,
		Cookie: middleware.CookieConfig{
			Name:   cfg.Session.CookieName,
			Secure: cfg.Session.CookieSecure,
			MaxAge: cfg.Session.TTL,
		},
		Auth:        authService,
		Backend:     client,
		AuthLimiter: middleware.NewRateLimiter(ctx, rate.Limit(cfg.Limits.AuthRatePerSec), cfg.Limits.AuthBurst),
		Ready: map[string]handler.Pinger{
			"session_store": sessions,
			"backend":       client,
		},
	})

	address := ":" + cfg.Port
	log.Info().
		Str("address", address).
		Str("backend", cfg.Backend.URL).
		Str("auth_scheme", string(scheme)).
		Str("session_store", cfg.Session.Store).
		Msg("starting inventory web server")

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := e.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		log.Info().Msg("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// openKV connects the configured session backend and returns its closer.
func openKV(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.KeyValueStore, func(), error) {
	switch cfg.Session.Store {
	case "redis":
		client, err := redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, err
		}
		return redis.NewKVStore(client), closer(log, "redis", client), nil

	case "mongo":
		client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, nil, err
		}
		kv, err := mongo.NewKVStore(ctx, db)
		if err != nil {
			_ = mongo.Disconnect(client)
			return nil, nil, err
		}
		return kv, mongoCloser(log, client), nil

	case "memory":
		log.Warn().Msg("sessions are kept in memory and will not survive a restart")
		return memory.NewKVStore(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown SESSION_STORE %q", cfg.Session.Store)
}

func closer(log zerolog.Logger, name string, c *goredis.Client) func() {
	return func() {
		if err := c.Close(); err != nil {
			log.Error().Err(err).Str("store", name).Msg("close failed")
		}
	}
}

func mongoCloser(log zerolog.Logger, c *mongodriver.Client) func() {
	return func() {
		if err := mongo.Disconnect(c); err != nil {
			log.Error().Err(err).Str("store", "mongo").Msg("disconnect failed")
		}
	}
}

// runHealthcheck calls the local liveness endpoint.
func runHealthcheck() error {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	client := &http.Client{Timeout: 3 * time.Second}
	resp, err := client.Get("http://localhost:" + port + "/health")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
