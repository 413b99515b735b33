package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/guarzo/priceatlas/internal/model"
)

func day(n int) time.Time {
	return time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func points(prices []float64, dayOffsets []int) []model.PricePoint {
	pts := make([]model.PricePoint, len(prices))
	for i := range prices {
		pts[i] = model.PricePoint{Price: prices[i], ObservedAt: day(dayOffsets[i])}
	}
	return pts
}

func TestNextWeek_InsufficientHistory(t *testing.T) {
	if f := NextWeek(nil); f != nil {
		t.Error("nil history should yield nil forecast")
	}
	if f := NextWeek(points([]float64{10, 20}, []int{0, 1})); f != nil {
		t.Error("two points should yield nil forecast")
	}
}

func TestNextWeek_SameDayObservations(t *testing.T) {
	// All points collapse to day offset 0: undefined slope.
	pts := []model.PricePoint{
		{Price: 100, ObservedAt: day(0)},
		{Price: 110, ObservedAt: day(0).Add(2 * time.Hour)},
		{Price: 105, ObservedAt: day(0).Add(5 * time.Hour)},
	}
	if f := NextWeek(pts); f != nil {
		t.Error("same-day history should yield nil forecast")
	}
}

func TestNextWeek_LinearTrend(t *testing.T) {
	// Five daily prices; least squares gives slope 7, intercept 999.
	// Prediction at day 4+7=11 is 999 + 7*11 = 1076.
	pts := points([]float64{1000, 1010, 1005, 1020, 1030}, []int{0, 1, 2, 3, 4})

	f := NextWeek(pts)
	if f == nil {
		t.Fatal("expected a forecast")
	}
	if math.Abs(f.PredictedPrice-1076) > 1e-9 {
		t.Errorf("PredictedPrice = %v, want 1076", f.PredictedPrice)
	}
	// change vs last actual (1030): 46/1030*100 = 4.47 rounded.
	if math.Abs(f.ChangePct-4.47) > 1e-9 {
		t.Errorf("ChangePct = %v, want 4.47", f.ChangePct)
	}
	if f.Trend != "Upward" {
		t.Errorf("Trend = %q, want Upward", f.Trend)
	}
	if f.Confidence != 65 {
		t.Errorf("Confidence = %d, want min(40+5*5, 95) = 65", f.Confidence)
	}
}

func TestNextWeek_TrendLabels(t *testing.T) {
	downward := points([]float64{1030, 1020, 1005, 1010, 1000}, []int{0, 1, 2, 3, 4})
	if f := NextWeek(downward); f == nil || f.Trend != "Downward" {
		t.Errorf("falling series should forecast Downward, got %+v", f)
	}

	stable := points([]float64{1000, 1001, 1000, 1001, 1000}, []int{0, 1, 2, 3, 4})
	if f := NextWeek(stable); f == nil || f.Trend != "Stable" {
		t.Errorf("flat series should forecast Stable, got %+v", f)
	}
}

func TestNextWeek_SortsUnorderedHistory(t *testing.T) {
	// Same series as the linear-trend case, shuffled; persistence returns
	// newest first so the fit has to re-sort.
	pts := points([]float64{1030, 1000, 1020, 1010, 1005}, []int{4, 0, 3, 1, 2})

	f := NextWeek(pts)
	if f == nil {
		t.Fatal("expected a forecast")
	}
	if math.Abs(f.PredictedPrice-1076) > 1e-9 {
		t.Errorf("PredictedPrice = %v, want 1076", f.PredictedPrice)
	}
}

func TestNextWeek_ConfidenceMonotonicAndCapped(t *testing.T) {
	prev := 0
	for n := 3; n <= 15; n++ {
		prices := make([]float64, n)
		offsets := make([]int, n)
		for i := 0; i < n; i++ {
			prices[i] = 100 + float64(i)
			offsets[i] = i
		}
		f := NextWeek(points(prices, offsets))
		if f == nil {
			t.Fatalf("n=%d: expected forecast", n)
		}
		if f.Confidence < prev {
			t.Errorf("confidence decreased at n=%d: %d < %d", n, f.Confidence, prev)
		}
		if f.Confidence > 95 {
			t.Errorf("confidence exceeds cap at n=%d: %d", n, f.Confidence)
		}
		prev = f.Confidence
	}
	if prev != 95 {
		t.Errorf("confidence should reach the 95 cap for long histories, got %d", prev)
	}
}
