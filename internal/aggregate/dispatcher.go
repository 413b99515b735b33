package aggregate

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/guarzo/priceatlas/internal/category"
	"github.com/guarzo/priceatlas/internal/model"
	"github.com/guarzo/priceatlas/internal/scrape"
)

const defaultWorkers = 5

// ExtractorSet resolves source identifiers to extractors. Satisfied by
// scrape.Registry.
type ExtractorSet interface {
	Lookup(source string) (scrape.Extractor, bool)
}

// Dispatcher fans a query out to the category-appropriate extractor
// set, runs them on a bounded worker pool, and merges the partial
// results. One failing source never aborts or delays the others; a
// fully failed aggregation is an empty slice, not an error.
type Dispatcher struct {
	registry ExtractorSet
	workers  int
}

func New(registry ExtractorSet, workers int) *Dispatcher {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Dispatcher{registry: registry, workers: workers}
}

// Aggregate routes the query to its source set and returns the merged
// records sorted ascending by price. Records without a numeric price
// (B2B leads) sort after priced ones, preserving arrival order.
func (d *Dispatcher) Aggregate(ctx context.Context, query string, intent model.Intent) []model.ProductRecord {
	var sources []string
	var categoryTag string

	if intent.IsWholesale() {
		// Wholesale intent pins the B2B directory set regardless of
		// category.
		sources = category.WholesaleSources()
	} else {
		categoryTag = category.Classify(query)
		sources = category.SourcesFor(categoryTag)
	}

	log.Info().
		Str("query", query).
		Str("intent", string(intent)).
		Str("category", categoryTag).
		Strs("sources", sources).
		Msg("aggregate: dispatching")

	records := d.fanOut(ctx, query, categoryTag, sources)
	sortByPrice(records)
	return records
}

type sourceResult struct {
	source  string
	records []model.ProductRecord
}

// fanOut runs one extractor call per source on a bounded pool and
// collects results in completion order.
func (d *Dispatcher) fanOut(ctx context.Context, query, categoryTag string, sources []string) []model.ProductRecord {
	if len(sources) == 0 {
		return nil
	}

	jobs := make(chan string, len(sources))
	results := make(chan sourceResult, len(sources))

	var wg sync.WaitGroup
	for w := 0; w < d.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for source := range jobs {
				results <- sourceResult{source: source, records: d.extractOne(ctx, source, query, categoryTag)}
			}
		}()
	}

	for _, s := range sources {
		jobs <- s
	}
	close(jobs)

	wg.Wait()
	close(results)

	var merged []model.ProductRecord
	for res := range results {
		merged = append(merged, res.records...)
	}
	return merged
}

// extractOne isolates a single source call: lookup misses, errors, and
// panics all degrade to an empty result set.
func (d *Dispatcher) extractOne(ctx context.Context, source, query, categoryTag string) (records []model.ProductRecord) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("source", source).Interface("panic", r).Msg("aggregate: extractor panicked")
			records = nil
		}
	}()

	extractor, ok := d.registry.Lookup(source)
	if !ok {
		log.Warn().Str("source", source).Msg("aggregate: no extractor registered")
		return nil
	}

	records, err := extractor.Extract(ctx, query, categoryTag)
	if err != nil {
		log.Debug().Err(err).Str("source", source).Msg("aggregate: source failed, continuing without it")
		return nil
	}

	log.Debug().Str("source", source).Int("records", len(records)).Msg("aggregate: source done")
	return records
}

// sortByPrice sorts priced records ascending and keeps unpriced leads
// after them in arrival order.
func sortByPrice(records []model.ProductRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		pi, pj := records[i].HasPrice(), records[j].HasPrice()
		if pi != pj {
			return pi
		}
		if !pi {
			return false
		}
		return records[i].Price < records[j].Price
	})
}
