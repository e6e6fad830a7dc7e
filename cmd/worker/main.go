// Command worker records queued search history when HISTORY_DISPATCH=queue.
package main

import (
	"context"

	"github.com/hibiken/asynq"

	"github.com/pageza/recipefinder/backend/config"
	"github.com/pageza/recipefinder/backend/internal/database"
	"github.com/pageza/recipefinder/backend/internal/history"
	"github.com/pageza/recipefinder/backend/internal/logger"
	"github.com/pageza/recipefinder/backend/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		boot := logger.New("info", false)
		boot.Fatal().Err(err).Msg("failed to load configuration")
	}
	log := logger.New(cfg.LogLevel, config.IsDevelopment())
	ctx := context.Background()

	mongoClient, mongoDB, err := database.NewMongoDatabase(ctx, cfg.MongoURI, cfg.MongoDatabase, &log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer mongoClient.Disconnect(context.Background())

	var archiver history.ImageArchiver
	if cfg.S3BucketName != "" {
		s3Config, err := config.NewS3Config(ctx, cfg.S3BucketName, cfg.AWSRegion)
		if err != nil {
			log.Warn().Err(err).Msg("S3 unavailable, query images will not be archived")
		} else {
			archiver = service.NewImageService(s3Config, cfg.MaxImageSide, logger.Component(&log, "images"))
		}
	}

	historyLog := logger.Component(&log, "history")
	persister := history.NewPersister(history.NewMongoRepository(mongoDB), archiver, historyLog)

	connOpt := asynq.RedisConnOpt(asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if cfg.RedisURL != "" {
		opt, err := history.RedisClientOpt(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid REDIS_URL")
		}
		connOpt = opt
	}

	srv := asynq.NewServer(connOpt, asynq.Config{
		Concurrency: 10,
		Logger:      history.NewAsynqLogger(historyLog),
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(history.TaskRecordSearch, history.TaskHandler(persister, history.LogSink(historyLog)))

	log.Info().Msg("history worker started")
	if err := srv.Run(mux); err != nil {
		log.Fatal().Err(err).Msg("worker stopped")
	}
}
