// Command migrate creates the profile tables and the history indexes.
package main

import (
	"context"
	"flag"
	"time"

	"github.com/pageza/recipefinder/backend/config"
	"github.com/pageza/recipefinder/backend/internal/database"
	"github.com/pageza/recipefinder/backend/internal/history"
	"github.com/pageza/recipefinder/backend/internal/logger"
)

func main() {
	skipMongo := flag.Bool("skip-mongo", false, "Only migrate the profile database")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		boot := logger.New("info", false)
		boot.Fatal().Err(err).Msg("failed to load configuration")
	}
	log := logger.New(cfg.LogLevel, config.IsDevelopment())

	db, err := database.New(cfg, &log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("profile migration failed")
	}
	log.Info().Msg("profile database migrated")

	if *skipMongo {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	client, mongoDB, err := database.NewMongoDatabase(ctx, cfg.MongoURI, cfg.MongoDatabase, &log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer client.Disconnect(context.Background())

	if err := history.NewMongoRepository(mongoDB).EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to create history indexes")
	}
	log.Info().Str("collection", history.CollectionName).Msg("history indexes ensured")
}
