package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/planforge/internal/auth"
	"github.com/dmitrymomot/planforge/internal/billing"
	"github.com/dmitrymomot/planforge/internal/httpapi"
	"github.com/dmitrymomot/planforge/internal/plan"
	"github.com/dmitrymomot/planforge/internal/session"
	"github.com/dmitrymomot/planforge/internal/user"
	"github.com/dmitrymomot/planforge/pkg/httpserver"
	"github.com/dmitrymomot/planforge/pkg/logger"
	"github.com/dmitrymomot/planforge/pkg/pg"
)

type appConfig struct {
	Logger  logger.Config
	HTTP    httpserver.Config
	PG      pg.Config
	Auth    auth.Config
	Billing billing.Config
	Stripe  billing.StripeConfig
	AI      plan.GeneratorConfig

	// SessionStore selects where sessions live: "postgres" (default) or
	// "redis". Redis needs SessionRedisURL.
	SessionStore    string `env:"SESSION_STORE" envDefault:"postgres"`
	SessionRedisURL string `env:"SESSION_REDIS_URL"`

	// SecureCookies should be on behind TLS.
	SecureCookies bool `env:"SECURE_COOKIES" envDefault:"false"`
}

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Missing .env is fine in real deployments; the environment is set there.
	_ = godotenv.Load()

	var cfg appConfig
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	log := logger.NewFromConfig(cfg.Logger, logger.WithAttr(slog.String("app", "planforge")))

	pool, err := pg.Connect(ctx, cfg.PG)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, cfg.PG, log); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	users := user.NewPostgresRepository(pool)

	sessions, err := newSessionStore(cfg, pool)
	if err != nil {
		return err
	}
	cookies := session.NewCookieTransport(cfg.SecureCookies)

	authSvc := auth.NewService(users, sessions, cfg.Auth, auth.WithLogger(log))
	billingSvc := billing.NewService(users, sessions, billing.NewStripeProvider(cfg.Stripe), cfg.Billing, billing.WithLogger(log))
	planSvc := plan.NewService(plan.NewPostgresRepository(pool), plan.NewChatClient(cfg.AI), plan.WithLogger(log))

	handler := httpapi.NewRouter(httpapi.Deps{
		Auth:    authSvc,
		Billing: billingSvc,
		Plans:   planSvc,
		Gate:    httpapi.NewGate(sessions, users, nil),
		Cookies: cookies,
		Logger:  log,
	})

	srv := httpserver.New(cfg.HTTP, httpserver.WithLogger(log))
	return srv.Run(ctx, handler)
}

func newSessionStore(cfg appConfig, pool *pgxpool.Pool) (session.Store, error) {
	switch strings.ToLower(cfg.SessionStore) {
	case "", "postgres":
		return session.NewPostgresStore(pool), nil
	case "redis":
		opts, err := redis.ParseURL(cfg.SessionRedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse SESSION_REDIS_URL: %w", err)
		}
		return session.NewRedisStore(redis.NewClient(opts)), nil
	default:
		return nil, fmt.Errorf("unknown SESSION_STORE %q", cfg.SessionStore)
	}
}
