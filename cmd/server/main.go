package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/guarzo/priceatlas/internal/aggregate"
	"github.com/guarzo/priceatlas/internal/cache"
	"github.com/guarzo/priceatlas/internal/config"
	"github.com/guarzo/priceatlas/internal/forex"
	"github.com/guarzo/priceatlas/internal/scheduler"
	"github.com/guarzo/priceatlas/internal/scrape"
	"github.com/guarzo/priceatlas/internal/server"
	"github.com/guarzo/priceatlas/internal/store"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	setupLogging(cfg.Environment)

	pageCache, err := cache.New(cfg.ScrapeCachePath)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.ScrapeCachePath).
			Msg("page cache unavailable, scraping without cache")
		pageCache = nil
	}

	client := scrape.NewClient(scrape.ClientConfig{})
	registry := scrape.NewRegistry(client, pageCache)
	log.Info().Strs("sources", registry.Names()).Msg("extractor registry ready")
	dispatcher := aggregate.New(registry, cfg.AggregateWorkers)

	rates := forex.New(forex.Options{
		APIURL:       cfg.ForexAPIURL,
		HomeCurrency: cfg.HomeCurrency,
	})

	// The service stays up without a database; searches simply return
	// results with no price history.
	var db *store.Store
	if cfg.DatabaseDSN == "" {
		log.Warn().Msg("DATABASE_DSN not set, price history disabled")
	} else if db, err = store.Open(cfg.DatabaseDSN); err != nil {
		log.Error().Err(err).Msg("database unavailable, price history disabled")
		db = nil
	}

	if cfg.RescrapeCron != "" {
		sched := buildScheduler(dispatcher, db, rates)
		if err := sched.Start(cfg.RescrapeCron); err != nil {
			log.Error().Err(err).Str("schedule", cfg.RescrapeCron).
				Msg("failed to start rescrape scheduler")
		}
		defer sched.Stop()
	}

	srv := newServer(dispatcher, rates, db, cfg.StaticDir)
	app := srv.App()

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Info().Str("addr", addr).Str("env", string(cfg.Environment)).Msg("starting server")
	if err := app.Listen(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

// newServer keeps the nil *store.Store from leaking into the Recorder
// interface as a non-nil value.
func newServer(d *aggregate.Dispatcher, f *forex.Cache, db *store.Store, staticDir string) *server.Server {
	var rec server.Recorder
	if db != nil {
		rec = db
	}
	return server.New(d, f, rec, staticDir)
}

func buildScheduler(d *aggregate.Dispatcher, db *store.Store, f *forex.Cache) *scheduler.Scheduler {
	var st scheduler.Store
	if db != nil {
		st = db
	}
	return scheduler.New(d, st, f)
}

func setupLogging(env config.Environment) {
	if env.IsProduction() {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}
