package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/guarzo/priceatlas/internal/model"
)

const (
	trackedLimit = 50
	jobTimeout   = 10 * time.Minute
)

// Aggregator re-runs searches for tracked product names.
type Aggregator interface {
	Aggregate(ctx context.Context, query string, intent model.Intent) []model.ProductRecord
}

// Store lists tracked products and records fresh observations.
type Store interface {
	RecentProductNames(limit int) ([]string, error)
	SaveObservation(rec model.ProductRecord, homePrice float64) (uint, error)
}

// Refresher warms the forex rate table.
type Refresher interface {
	Refresh()
}

// Scheduler re-scrapes recently observed products on a cron schedule so
// price history keeps accruing without user traffic.
type Scheduler struct {
	cron       *cron.Cron
	aggregator Aggregator
	store      Store
	forex      Refresher
}

func New(aggregator Aggregator, store Store, forex Refresher) *Scheduler {
	return &Scheduler{
		cron:       cron.New(),
		aggregator: aggregator,
		store:      store,
		forex:      forex,
	}
}

// Start registers the daily job and begins the cron loop.
func (s *Scheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.runOnce); err != nil {
		return err
	}
	s.cron.Start()
	log.Info().Str("schedule", spec).Msg("rescrape scheduler started")
	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	s.forex.Refresh()

	if s.store == nil {
		return
	}

	names, err := s.store.RecentProductNames(trackedLimit)
	if err != nil {
		log.Warn().Err(err).Msg("rescrape: failed to list tracked products")
		return
	}

	var saved int
	for _, name := range names {
		if ctx.Err() != nil {
			log.Warn().Int("saved", saved).Msg("rescrape: timed out")
			return
		}
		for _, rec := range s.aggregator.Aggregate(ctx, name, model.IntentSingle) {
			if rec.Type != model.TypeRetail || !rec.HasPrice() {
				continue
			}
			if _, err := s.store.SaveObservation(rec, rec.Price); err != nil {
				log.Warn().Err(err).Str("title", rec.Title).Msg("rescrape: save failed")
				continue
			}
			saved++
		}
	}

	log.Info().Int("products", len(names)).Int("observations", saved).Msg("rescrape complete")
}
