package analytics

import (
	"math"
	"testing"
)

func TestScore_InsufficientHistory(t *testing.T) {
	for _, history := range [][]float64{nil, {}, {99.0}} {
		score, verdict := Score(50, history)
		if score != 50 {
			t.Errorf("Score with %d points = %d, want neutral 50", len(history), score)
		}
		if verdict != VerdictNoData {
			t.Errorf("verdict = %q, want %q", verdict, VerdictNoData)
		}
	}
}

func TestScore_FlatHistory(t *testing.T) {
	// max == min yields the neutral midpoint regardless of current price.
	for _, current := range []float64{1, 500, 99999} {
		score, verdict := Score(current, []float64{500, 500, 500})
		if score != 50 {
			t.Errorf("Score(%v, flat) = %d, want 50", current, score)
		}
		if verdict != VerdictStable {
			t.Errorf("verdict = %q, want %q", verdict, VerdictStable)
		}
	}
}

func TestScore_Extremes(t *testing.T) {
	history := []float64{100, 80, 120, 90}

	score, verdict := Score(80, history)
	if score != 100 {
		t.Errorf("Score at historical min = %d, want 100", score)
	}
	if verdict != VerdictGreatDeal {
		t.Errorf("verdict = %q, want %q", verdict, VerdictGreatDeal)
	}

	score, verdict = Score(120, history)
	if score != 0 {
		t.Errorf("Score at historical max = %d, want 0", score)
	}
	if verdict != VerdictOverpriced {
		t.Errorf("verdict = %q, want %q", verdict, VerdictOverpriced)
	}
}

func TestScore_ClampsOutOfRangeCurrent(t *testing.T) {
	history := []float64{100, 200}

	if score, _ := Score(500, history); score != 0 {
		t.Errorf("Score above historical max = %d, want clamped 0", score)
	}
	if score, _ := Score(10, history); score != 100 {
		t.Errorf("Score below historical min = %d, want clamped 100", score)
	}
}

func TestScore_VerdictTiers(t *testing.T) {
	// history spanning [0,100] makes score == 100 - current.
	history := []float64{0, 100}
	tests := []struct {
		current float64
		verdict string
	}{
		{15, VerdictGreatDeal},  // score 85
		{40, VerdictGoodPrice},  // score 60
		{60, VerdictFairPrice},  // score 40
		{61, VerdictOverpriced}, // score 39
	}
	for _, tt := range tests {
		if _, v := Score(tt.current, history); v != tt.verdict {
			t.Errorf("Score(%v) verdict = %q, want %q", tt.current, v, tt.verdict)
		}
	}
}

func TestVolatility_Degenerate(t *testing.T) {
	if v := Volatility(nil); v != 0 {
		t.Errorf("Volatility(nil) = %v, want 0", v)
	}
	if v := Volatility([]float64{42}); v != 0 {
		t.Errorf("Volatility(1 point) = %v, want 0", v)
	}
	if v := Volatility([]float64{100, 100, 100}); v != 0 {
		t.Errorf("Volatility(constant) = %v, want 0", v)
	}
	if v := Volatility([]float64{0, 0}); v != 0 {
		t.Errorf("Volatility(zero mean) = %v, want 0", v)
	}
}

func TestVolatility_MonotonicInDispersion(t *testing.T) {
	// Same mean (100), increasing spread.
	low := Volatility([]float64{99, 101})
	mid := Volatility([]float64{90, 110})
	high := Volatility([]float64{50, 150})

	if !(low < mid && mid < high) {
		t.Errorf("volatility should grow with dispersion: %v %v %v", low, mid, high)
	}
}

func TestVolatility_Value(t *testing.T) {
	// prices 90,110: mean 100, sample stdev sqrt(200) ~= 14.1421
	got := Volatility([]float64{90, 110})
	want := 14.14
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Volatility = %v, want %v", got, want)
	}
}

func TestVolatility_Capped(t *testing.T) {
	if v := Volatility([]float64{1, 10000}); v != 100 {
		t.Errorf("Volatility = %v, want cap at 100", v)
	}
}
