package aggregate

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/guarzo/priceatlas/internal/category"
	"github.com/guarzo/priceatlas/internal/model"
	"github.com/guarzo/priceatlas/internal/scrape"
)

// stubExtractor records invocations and returns canned results.
type stubExtractor struct {
	name    string
	records []model.ProductRecord
	err     error
	panics  bool

	mu    sync.Mutex
	calls int
}

func (s *stubExtractor) Name() string { return s.name }

func (s *stubExtractor) Extract(ctx context.Context, query, categoryTag string) ([]model.ProductRecord, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.panics {
		panic("selector blew up")
	}
	return s.records, s.err
}

func (s *stubExtractor) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type stubSet map[string]*stubExtractor

func (s stubSet) Lookup(source string) (scrape.Extractor, bool) {
	e, ok := s[source]
	return e, ok
}

func rec(title string, price float64) model.ProductRecord {
	return model.ProductRecord{Title: title, Price: price, Currency: "INR", Type: model.TypeRetail}
}

func TestAggregateSortsByPriceAscending(t *testing.T) {
	set := stubSet{
		category.SourceAmazon:   {name: "Amazon", records: []model.ProductRecord{rec("a", 300), rec("b", 100)}},
		category.SourceFlipkart: {name: "Flipkart", records: []model.ProductRecord{rec("c", 200)}},
		category.SourceEbay:     {name: "eBay", records: []model.ProductRecord{rec("d", 50)}},
	}
	d := New(set, 5)

	records := d.Aggregate(context.Background(), "iphone 15", model.IntentSingle)

	if len(records) != 4 {
		t.Fatalf("got %d records, want 4", len(records))
	}
	for i := 1; i < len(records); i++ {
		if records[i].Price < records[i-1].Price {
			t.Fatalf("records not price-sorted: %v", records)
		}
	}
}

func TestAggregateSurvivesFailingSource(t *testing.T) {
	set := stubSet{
		category.SourceAmazon:   {name: "Amazon", err: errors.New("blocked")},
		category.SourceFlipkart: {name: "Flipkart", panics: true},
		category.SourceEbay:     {name: "eBay", records: []model.ProductRecord{rec("d", 50)}},
	}
	d := New(set, 5)

	records := d.Aggregate(context.Background(), "iphone 15", model.IntentSingle)

	if len(records) != 1 || records[0].Title != "d" {
		t.Fatalf("expected the healthy source's results, got %v", records)
	}
}

func TestAggregateAllSourcesEmptyIsNotAnError(t *testing.T) {
	set := stubSet{
		category.SourceAmazon:   {name: "Amazon", err: errors.New("down")},
		category.SourceFlipkart: {name: "Flipkart"},
		category.SourceEbay:     {name: "eBay"},
	}
	d := New(set, 5)

	if records := d.Aggregate(context.Background(), "iphone 15", model.IntentSingle); len(records) != 0 {
		t.Fatalf("want empty slice, got %v", records)
	}
}

func TestAggregateUnknownSourcesYieldEmpty(t *testing.T) {
	d := New(stubSet{}, 5)
	if records := d.Aggregate(context.Background(), "iphone 15", model.IntentSingle); len(records) != 0 {
		t.Fatalf("want empty slice for unregistered sources, got %v", records)
	}
}

func TestWholesaleIntentRoutesOnlyToDirectories(t *testing.T) {
	retail := &stubExtractor{name: "Amazon", records: []model.ProductRecord{rec("retail", 10)}}
	lead := model.ProductRecord{Title: "widget", PriceText: "Ask Price", Type: model.TypeB2B}
	set := stubSet{
		category.SourceAmazon:         retail,
		category.SourceIndiaMART:      {name: "IndiaMART", records: []model.ProductRecord{lead}},
		category.SourceTradeIndia:     {name: "TradeIndia"},
		category.SourceExportersIndia: {name: "ExportersIndia"},
	}
	d := New(set, 5)

	for _, intent := range []model.Intent{model.IntentBulk, model.IntentWholesale} {
		records := d.Aggregate(context.Background(), "iphone 15", intent)
		if len(records) != 1 || records[0].Title != "widget" {
			t.Fatalf("intent %s: got %v", intent, records)
		}
	}
	if retail.callCount() != 0 {
		t.Error("retail extractor must never run for wholesale intents")
	}
}

func TestSortKeepsUnpricedLeadsLast(t *testing.T) {
	records := []model.ProductRecord{
		{Title: "lead1", PriceText: "Ask Price"},
		rec("cheap", 10),
		{Title: "lead2", PriceText: "Quote Only"},
		rec("dear", 99),
	}
	sortByPrice(records)

	want := []string{"cheap", "dear", "lead1", "lead2"}
	for i, title := range want {
		if records[i].Title != title {
			t.Fatalf("order = %v, want %v", records, want)
		}
	}
}

func TestAggregateMoreSourcesThanWorkers(t *testing.T) {
	// Pool of 2 must still drain all five sources.
	set := stubSet{}
	for _, s := range category.SourcesFor(category.General) {
		set[s] = &stubExtractor{name: s, records: []model.ProductRecord{rec(s, 1)}}
	}
	d := New(set, 2)

	records := d.Aggregate(context.Background(), "anything odd", model.IntentSingle)
	if len(records) != len(category.SourcesFor(category.General)) {
		t.Fatalf("got %d records, want one per source", len(records))
	}
}
