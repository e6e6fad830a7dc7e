package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/pageza/recipefinder/backend/config"
	"github.com/pageza/recipefinder/backend/internal/api"
	"github.com/pageza/recipefinder/backend/internal/database"
	"github.com/pageza/recipefinder/backend/internal/history"
	"github.com/pageza/recipefinder/backend/internal/logger"
	"github.com/pageza/recipefinder/backend/internal/middleware"
	"github.com/pageza/recipefinder/backend/internal/recommend"
	"github.com/pageza/recipefinder/backend/internal/resultcache"
	"github.com/pageza/recipefinder/backend/internal/router"
	"github.com/pageza/recipefinder/backend/internal/server"
	"github.com/pageza/recipefinder/backend/internal/service"
)

// guardMargin keeps the in-flight key alive a little past the client timeout.
const guardMargin = 5 * time.Second

func main() {
	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		boot := logger.New("info", false)
		boot.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.New(cfg.LogLevel, config.IsDevelopment())
	ctx := context.Background()

	// Profile database
	db, err := database.New(cfg, &log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	// History store
	mongoClient, mongoDB, err := database.NewMongoDatabase(ctx, cfg.MongoURI, cfg.MongoDatabase, &log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Warn().Err(err).Msg("failed to disconnect MongoDB")
		}
	}()
	repo := history.NewMongoRepository(mongoDB)
	if err := repo.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to ensure history indexes")
	}

	// Session state. Without Redis, fall back to process memory outside production.
	var (
		cache resultcache.Store
		guard middleware.InFlightGuard
	)
	redisClient, err := database.NewRedisClient(cfg, &log)
	switch {
	case err == nil:
		defer redisClient.Close()
		cache = resultcache.NewRedisStore(redisClient, cfg.CacheTTL)
		guard = middleware.NewRedisInFlightGuard(redisClient, cfg.RecommenderTimeout+guardMargin)
	case config.IsProduction():
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	default:
		log.Warn().Err(err).Msg("Redis unavailable, using in-memory session state")
		cache = resultcache.NewMemoryStore()
		guard = middleware.NewMemoryInFlightGuard(cfg.RecommenderTimeout + guardMargin)
	}

	// Query image archive
	var s3Config *config.S3Config
	if cfg.S3BucketName != "" {
		if s3Config, err = config.NewS3Config(ctx, cfg.S3BucketName, cfg.AWSRegion); err != nil {
			log.Warn().Err(err).Msg("S3 unavailable, query images will not be archived")
			s3Config = nil
		}
	}
	images := service.NewImageService(s3Config, cfg.MaxImageSide, logger.Component(&log, "images")).
		WithMaxPixels(cfg.MaxImagePixels)

	recommender := recommend.NewClient(
		recommend.WithBaseURL(cfg.RecommenderURL),
		recommend.WithTimeout(cfg.RecommenderTimeout),
		recommend.WithLogger(logger.Component(&log, "recommend")),
	)

	// History recording
	historyLog := logger.Component(&log, "history")
	sink := history.LogSink(historyLog)
	var archiver history.ImageArchiver
	if images.CanArchive() {
		archiver = images
	}
	var dispatcher interface {
		history.Dispatcher
		Wait()
	}
	if cfg.HistoryDispatch == config.DispatchQueue {
		queue := asynq.NewClient(queueConnOpt(cfg))
		defer queue.Close()
		dispatcher = history.NewQueueDispatcher(queue, "", cfg.HistoryTimeout, sink)
	} else {
		dispatcher = history.NewInlineDispatcher(history.NewPersister(repo, archiver, historyLog), cfg.HistoryTimeout, sink)
	}
	recorder := history.NewRecorder(dispatcher, sink)

	// Initialize services
	formData := service.NewFormDataService(recommender, cfg.FormDataTTL, &log)
	searchService := service.NewSearchService(recommender, cache, recorder, logger.Component(&log, "search"))
	historyService := service.NewHistoryService(repo, cache, nil, historyLog)
	if images.CanArchive() {
		historyService.WithArchiveLinks(images, time.Hour)
	}
	profileService := service.NewProfileService(db)
	tokenService := service.NewTokenService(cfg.JWTSecret)

	engine := router.SetupRouter(router.Handlers{
		Search:          api.NewSearchHandler(searchService, formData, images, cfg.MaxImageBytes, &log),
		Form:            api.NewFormHandler(formData, &log),
		Recommendations: api.NewRecommendationsHandler(cache, cfg.DefaultImageURL, &log),
		History:         api.NewHistoryHandler(historyService, &log),
		Profile:         api.NewProfileHandler(profileService, &log),
	}, router.Options{
		Logger:         &log,
		AllowedOrigins: cfg.AllowedOrigins,
		SecureCookies:  config.IsProduction(),
		Tokens:         tokenService,
		RateLimiter:    middleware.NewIPRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, &log),
		InFlight:       guard,
	})

	// Create and start server
	srv := server.New(cfg.ServerHost, cfg.ServerPort, engine, &log)

	// Channel to listen for errors coming from the server
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	// Channel to listen for an interrupt or terminate signal from the OS
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			log.Fatal().Err(err).Msg("server error")
		}
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("received signal")
	}

	if err := srv.Shutdown(context.Background()); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}
	// Let detached history work finish before its store or queue goes away.
	dispatcher.Wait()
	log.Info().Msg("server stopped")
}

// queueConnOpt points asynq at the same Redis as the session state.
func queueConnOpt(cfg *config.Config) asynq.RedisConnOpt {
	if cfg.RedisURL != "" {
		if opt, err := history.RedisClientOpt(cfg.RedisURL); err == nil {
			return opt
		}
	}
	return asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
}
