package scheduler

import (
	"context"
	"testing"

	"github.com/guarzo/priceatlas/internal/model"
)

type fakeAggregator struct {
	byQuery map[string][]model.ProductRecord
	queries []string
}

func (f *fakeAggregator) Aggregate(_ context.Context, query string, _ model.Intent) []model.ProductRecord {
	f.queries = append(f.queries, query)
	return f.byQuery[query]
}

type fakeStore struct {
	names []string
	saved []model.ProductRecord
}

func (f *fakeStore) RecentProductNames(int) ([]string, error) {
	return f.names, nil
}

func (f *fakeStore) SaveObservation(rec model.ProductRecord, _ float64) (uint, error) {
	f.saved = append(f.saved, rec)
	return uint(len(f.saved)), nil
}

type fakeRefresher struct {
	calls int
}

func (f *fakeRefresher) Refresh() { f.calls++ }

func TestRunOnce_SavesRetailObservations(t *testing.T) {
	agg := &fakeAggregator{byQuery: map[string][]model.ProductRecord{
		"laptop": {
			{Title: "Laptop A", Price: 49999, Currency: "INR", Type: model.TypeRetail},
			{Title: "Bulk Laptops", PriceText: "Ask Price", Type: model.TypeB2B},
		},
		"mixer": {
			{Title: "Mixer B", Price: 2999, Currency: "INR", Type: model.TypeRetail},
			{Title: "Mixer unpriced", Type: model.TypeRetail},
		},
	}}
	store := &fakeStore{names: []string{"laptop", "mixer"}}
	forex := &fakeRefresher{}

	New(agg, store, forex).runOnce()

	if forex.calls != 1 {
		t.Errorf("forex refreshed %d times, want 1", forex.calls)
	}
	if len(agg.queries) != 2 {
		t.Fatalf("aggregated %d queries, want 2", len(agg.queries))
	}
	if len(store.saved) != 2 {
		t.Fatalf("saved %d observations, want 2 (unpriced and B2B skipped)", len(store.saved))
	}
	for _, rec := range store.saved {
		if rec.Type != model.TypeRetail || !rec.HasPrice() {
			t.Errorf("saved non-retail or unpriced record %q", rec.Title)
		}
	}
}

func TestRunOnce_NoStoreStillRefreshesForex(t *testing.T) {
	agg := &fakeAggregator{}
	forex := &fakeRefresher{}

	s := &Scheduler{aggregator: agg, forex: forex}
	s.runOnce()

	if forex.calls != 1 {
		t.Errorf("forex refreshed %d times, want 1", forex.calls)
	}
	if len(agg.queries) != 0 {
		t.Errorf("aggregated %d queries without a store, want 0", len(agg.queries))
	}
}
