package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	billingmodule "github.com/Hitanshuser50/ContentFuse/modules/billing"
	genmodule "github.com/Hitanshuser50/ContentFuse/modules/generation"
	"github.com/Hitanshuser50/ContentFuse/pkg/auth"
	"github.com/Hitanshuser50/ContentFuse/pkg/config"
	"github.com/Hitanshuser50/ContentFuse/pkg/gate"
	"github.com/Hitanshuser50/ContentFuse/pkg/generation"
	"github.com/Hitanshuser50/ContentFuse/pkg/httpserver"
	"github.com/Hitanshuser50/ContentFuse/pkg/logger"
	"github.com/Hitanshuser50/ContentFuse/pkg/pg"
	"github.com/Hitanshuser50/ContentFuse/pkg/ratelimiter"
	appredis "github.com/Hitanshuser50/ContentFuse/pkg/redis"
	"github.com/Hitanshuser50/ContentFuse/pkg/requestid"
	"github.com/Hitanshuser50/ContentFuse/pkg/subscription"
	"github.com/Hitanshuser50/ContentFuse/pkg/usage"
)

type appConfig struct {
	Env         string `env:"APP_ENV" envDefault:"development"`
	SettingsURL string `env:"SETTINGS_URL" envDefault:"http://localhost:3000/settings"`

	Server    httpserver.Config
	PG        pg.Config
	Redis     appredis.Config
	Auth      auth.Config
	Gate      gate.Config
	RateLimit ratelimiter.Config
	Stripe    subscription.StripeConfig
	Gemini    generation.GeminiConfig
	EdenAI    generation.EdenAIConfig
	Veo       generation.VeoConfig
}

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("server exited", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	log := logger.New(
		logger.WithEnvironment(cfg.Env, "contentfuse"),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	)
	logger.SetAsDefault(log)

	pool, err := pg.Connect(ctx, cfg.PG)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, cfg.PG, log); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	rdb, err := appredis.Connect(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer rdb.Close()

	validator, err := auth.NewClerkValidator(cfg.Auth)
	if err != nil {
		return fmt.Errorf("create token validator: %w", err)
	}

	stripeProvider, err := subscription.NewStripeProvider(cfg.Stripe)
	if err != nil {
		return fmt.Errorf("create stripe provider: %w", err)
	}
	subs := subscription.NewService(subscription.NewPGStore(pool), stripeProvider, cfg.SettingsURL,
		log.With(logger.Component("subscription")))

	g, err := gate.New(subs, usage.NewPGStore(pool), cfg.Gate, log.With(logger.Component("gate")))
	if err != nil {
		return fmt.Errorf("create generation gate: %w", err)
	}

	gemini, err := generation.NewGeminiClient(ctx, cfg.Gemini)
	if err != nil {
		return fmt.Errorf("create gemini client: %w", err)
	}
	defer gemini.Close()

	edenai, err := generation.NewEdenAIClient(cfg.EdenAI, log.With(logger.Component("edenai")))
	if err != nil {
		return fmt.Errorf("create eden ai client: %w", err)
	}

	veo, err := generation.NewVeoClient(cfg.Veo)
	if err != nil {
		return fmt.Errorf("create veo client: %w", err)
	}

	bucket, err := ratelimiter.NewBucket(ratelimiter.NewRedisStore(rdb, "ratelimit:generation"), cfg.RateLimit)
	if err != nil {
		return fmt.Errorf("create rate limiter: %w", err)
	}
	rateLimit := ratelimiter.Middleware(bucket, func(r *http.Request) string {
		userID, _ := auth.UserIDFromContext(r.Context())
		return userID
	})

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestid.Middleware)
	r.Use(middleware.Recoverer)

	r.Get("/health", httpserver.HealthHandler(map[string]httpserver.Probe{
		"postgres": pg.Healthcheck(pool),
		"redis":    appredis.Healthcheck(rdb),
	}))

	r.Route("/api", func(api chi.Router) {
		billingmodule.Routes(api, billingmodule.RouterOptions{
			Handler: billingmodule.NewHandler(subs, log.With(logger.Component("billing"))),
			Auth:    auth.Middleware(validator),
		})
		api.Mount("/", genmodule.Router(genmodule.RouterOptions{
			Handler:   genmodule.NewHandler(g, gemini, edenai, edenai, veo, log.With(logger.Component("generation"))),
			Auth:      auth.Middleware(validator),
			RateLimit: rateLimit,
		}))
	})

	return httpserver.New(cfg.Server, log).Run(ctx, r)
}
