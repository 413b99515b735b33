package server

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"

	"github.com/guarzo/priceatlas/internal/analytics"
	"github.com/guarzo/priceatlas/internal/model"
)

// Aggregator fans a query out to the per-site extractors.
type Aggregator interface {
	Aggregate(ctx context.Context, query string, intent model.Intent) []model.ProductRecord
}

// Converter normalizes foreign prices into the home currency.
type Converter interface {
	ConvertToHome(amount float64, sourceCurrency string) float64
	HomeCurrency() string
}

// Recorder persists observations and serves back price history.
type Recorder interface {
	SaveObservation(rec model.ProductRecord, homePrice float64) (uint, error)
	History(productID uint) ([]model.PricePoint, error)
}

type Server struct {
	aggregator Aggregator
	forex      Converter
	store      Recorder // nil when the database is unavailable
	staticDir  string
}

func New(aggregator Aggregator, forex Converter, store Recorder, staticDir string) *Server {
	return &Server{
		aggregator: aggregator,
		forex:      forex,
		store:      store,
		staticDir:  staticDir,
	}
}

// App builds the configured fiber application.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(fiberlogger.New())

	api := app.Group("/api")
	api.Get("/health", s.handleHealth)
	api.Get("/search", s.handleSearch)

	if s.staticDir != "" {
		app.Static("/", s.staticDir)
		// Client-side routes resolve to the SPA shell.
		app.Use(func(c *fiber.Ctx) error {
			if strings.HasPrefix(c.Path(), "/api") {
				return c.Next()
			}
			return c.SendFile(filepath.Join(s.staticDir, "index.html"))
		})
	}

	return app
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":   "ok",
		"database": s.store != nil,
	})
}

func (s *Server) handleSearch(c *fiber.Ctx) error {
	// The bundled front end sends ?query=, the documented form is ?q=.
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		query = strings.TrimSpace(c.Query("query"))
	}
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "missing required parameter: q",
		})
	}

	intent := model.ParseIntent(c.Query("intent"))

	records := s.aggregator.Aggregate(c.Context(), query, intent)
	if len(records) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no results found for " + query,
		})
	}

	enriched := make([]model.EnrichedRecord, len(records))
	for i, rec := range records {
		enriched[i] = s.enrich(rec)
	}

	return c.JSON(enriched)
}

// enrich converts a record to home currency, persists the observation
// and attaches deal analytics. B2B leads and unpriced records pass
// through untouched, and persistence failures degrade to an analysis
// over an empty history rather than failing the request.
func (s *Server) enrich(rec model.ProductRecord) model.EnrichedRecord {
	if rec.Type != model.TypeRetail || !rec.HasPrice() {
		return model.EnrichedRecord{ProductRecord: rec}
	}

	home := s.forex.HomeCurrency()
	if rec.Currency != "" && rec.Currency != home {
		rec.Price = s.forex.ConvertToHome(rec.Price, rec.Currency)
		rec.Currency = home
	}

	history := s.observe(rec)

	values := make([]float64, len(history))
	for i, p := range history {
		values[i] = p.Price
	}

	score, verdict := analytics.Score(rec.Price, values)
	analysis := &model.Analysis{
		Score:        score,
		Verdict:      verdict,
		Volatility:   analytics.Volatility(values),
		HistoryCount: len(history),
		PriceHistory: history,
		Forecast:     analytics.NextWeek(history),
	}

	return model.EnrichedRecord{ProductRecord: rec, Analysis: analysis}
}

// observe saves the current price and returns the full history,
// newest first. Any storage failure yields an empty history.
func (s *Server) observe(rec model.ProductRecord) []model.PricePoint {
	if s.store == nil {
		return nil
	}

	productID, err := s.store.SaveObservation(rec, rec.Price)
	if err != nil {
		log.Warn().Err(err).Str("title", rec.Title).Msg("failed to persist observation")
		return nil
	}

	history, err := s.store.History(productID)
	if err != nil {
		log.Warn().Err(err).Uint("product_id", productID).Msg("failed to load price history")
		return nil
	}
	return history
}
