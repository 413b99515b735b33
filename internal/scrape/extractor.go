package scrape

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/guarzo/priceatlas/internal/cache"
	"github.com/guarzo/priceatlas/internal/model"
)

// Extractor fetches one source's search results page and parses it into
// zero or more normalized product records. Failures surface as errors;
// the dispatcher isolates them so one broken source never aborts the
// others.
type Extractor interface {
	Name() string
	Extract(ctx context.Context, query, categoryTag string) ([]model.ProductRecord, error)
}

// Registry is the closed mapping from source identifier to extractor.
type Registry struct {
	extractors map[string]Extractor
}

// NewRegistry wires every known source. Extractors are wrapped with the
// shared search-page cache when one is configured.
func NewRegistry(client *Client, pageCache *cache.Cache) *Registry {
	all := []Extractor{
		&amazonExtractor{client: client},
		&flipkartExtractor{client: client},
		&myntraExtractor{client: client},
		&bigbasketExtractor{client: client},
		&pepperfryExtractor{client: client},
		&ebayExtractor{client: client},
		&indiamartExtractor{client: client},
		&tradeindiaExtractor{client: client},
		&exportersindiaExtractor{client: client},
	}

	m := make(map[string]Extractor, len(all))
	for _, e := range all {
		if pageCache != nil {
			e = &cachedExtractor{inner: e, cache: pageCache, ttl: searchCacheTTL}
		}
		m[e.Name()] = e
	}
	return &Registry{extractors: m}
}

// Lookup returns the extractor for a source identifier.
func (r *Registry) Lookup(source string) (Extractor, bool) {
	e, ok := r.extractors[source]
	return e, ok
}

// Names returns all registered source identifiers.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.extractors))
	for n := range r.extractors {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// cachedExtractor serves parsed results from the file cache before
// touching the network.
type cachedExtractor struct {
	inner Extractor
	cache *cache.Cache
	ttl   time.Duration
}

func (c *cachedExtractor) Name() string { return c.inner.Name() }

func (c *cachedExtractor) Extract(ctx context.Context, query, categoryTag string) ([]model.ProductRecord, error) {
	key := cache.SearchKey(c.Name(), query)

	var cached []model.ProductRecord
	if found, _ := c.cache.Get(key, &cached); found {
		return cached, nil
	}

	records, err := c.inner.Extract(ctx, query, categoryTag)
	if err != nil {
		return nil, err
	}
	if len(records) > 0 {
		_ = c.cache.Put(key, records, c.ttl)
	}
	return records, nil
}

// pageOutcome accumulates the per-item results of parsing one search
// page: kept records plus the reasons individual items were skipped.
// Malformed items never abort the rest of the page.
type pageOutcome struct {
	records []model.ProductRecord
	skips   map[string]int
	limit   int
}

func newPageOutcome(limit int) *pageOutcome {
	return &pageOutcome{skips: make(map[string]int), limit: limit}
}

// full reports whether the per-page record cap has been reached.
func (p *pageOutcome) full() bool {
	return len(p.records) >= p.limit
}

func (p *pageOutcome) keep(r model.ProductRecord) {
	if !p.full() {
		p.records = append(p.records, r)
	}
}

func (p *pageOutcome) skip(reason string) {
	p.skips[reason]++
}

// done logs the skip summary and returns the kept records.
func (p *pageOutcome) done(source string) []model.ProductRecord {
	if len(p.skips) > 0 {
		log.Debug().
			Str("source", source).
			Int("kept", len(p.records)).
			Interface("skipped", p.skips).
			Msg("scrape: page parsed with partial skips")
	}
	return p.records
}
