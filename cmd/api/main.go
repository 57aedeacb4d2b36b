package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/jeckxploit/video-generate-ai/internal/adapter/repo"
	"github.com/jeckxploit/video-generate-ai/internal/dispatch"
	"github.com/jeckxploit/video-generate-ai/internal/domain"
	"github.com/jeckxploit/video-generate-ai/internal/http/handlers"
	httpapi "github.com/jeckxploit/video-generate-ai/internal/http/httpapi"
	"github.com/jeckxploit/video-generate-ai/internal/i18n"
	"github.com/jeckxploit/video-generate-ai/internal/infra"
	"github.com/jeckxploit/video-generate-ai/internal/infra/credentials"
	"github.com/jeckxploit/video-generate-ai/internal/infra/geoip"
	"github.com/jeckxploit/video-generate-ai/internal/middleware"
	"github.com/jeckxploit/video-generate-ai/internal/providers/video"
	"github.com/jeckxploit/video-generate-ai/internal/ratelimit"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()

	// Job storage and the change feed. Without DATABASE_URL everything stays
	// in memory, which is enough for demo mode and local development.
	var (
		jobRepo     domain.JobRepository
		jobFeed     domain.JobFeed
		tokenSource video.TokenSource
	)
	if cfg.DatabaseURL != "" {
		dbpool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer dbpool.Close()

		if err := repo.EnsureSchema(ctx, dbpool); err != nil {
			logger.Fatal().Err(err).Msg("failed to ensure schema")
		}

		feed, err := repo.NewFeed(cfg.DatabaseURL, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to start job change feed")
		}
		defer feed.Close()

		jobRepo = repo.NewJobRepository(dbpool)
		jobFeed = feed
		tokenSource = credentials.NewStore(dbpool)
	} else {
		logger.Warn().Msg("DATABASE_URL not set, using in-memory job store")
		mem := repo.NewMemory()
		jobRepo = mem
		jobFeed = mem
	}

	// Rate limiting: Redis when configured, otherwise process-local.
	var limiter ratelimit.Limiter
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		limiter = ratelimit.NewRedisLimiter(rdb, cfg.RateLimitMax, cfg.RateLimitWindow)
	} else {
		limiter = ratelimit.NewMemoryLimiter(cfg.RateLimitMax, cfg.RateLimitWindow)
	}

	// Generation backends. With no usable Replicate token anywhere the
	// factory falls back to curated demo output.
	demo := video.NewDemo(logger)
	backends := video.NewFactory(cfg.ReplicateAPIToken, tokenSource, video.ReplicateOptions{
		BaseURL:  cfg.ReplicateBaseURL,
		APIToken: cfg.ReplicateAPIToken,
	}, demo, logger)

	dispatcher := dispatch.New(jobRepo, limiter, backends, func(code domain.ErrorCode) string {
		return i18n.UserMessage(cfg.DefaultLocale, code)
	}, logger, dispatch.Options{
		DemoTimeout:   cfg.DemoTimeout,
		RemoteTimeout: cfg.RemoteTimeout,
	})

	// GeoIP is optional; without a database the locale falls back to headers.
	var countryLookup middleware.CountryLookup
	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip database unavailable")
	} else if resolver != nil {
		countryLookup = resolver.CountryCode
	}

	app := handlers.NewApp(dispatcher, jobFeed, logger)
	router := httpapi.NewRouter(app, logger, cfg.DefaultLocale, countryLookup)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
