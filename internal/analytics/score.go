package analytics

import "math"

// Verdict labels by score tier. Tier boundaries are contractual; the
// label text is presentation.
const (
	VerdictGreatDeal  = "Great Deal"
	VerdictGoodPrice  = "Good Price"
	VerdictFairPrice  = "Fair Price"
	VerdictOverpriced = "Overpriced"

	VerdictNoData = "Not enough data"
	VerdictStable = "Stable Price"

	neutralScore = 50
)

// Score rates the current price against history on a 0-100 scale.
// 100 means the current price matches the historical minimum, 0 the
// historical maximum. Histories shorter than two points and flat
// histories both yield the neutral midpoint.
func Score(current float64, history []float64) (int, string) {
	if len(history) < 2 {
		return neutralScore, VerdictNoData
	}

	minPrice, maxPrice := history[0], history[0]
	for _, p := range history[1:] {
		if p < minPrice {
			minPrice = p
		}
		if p > maxPrice {
			maxPrice = p
		}
	}

	if maxPrice == minPrice {
		return neutralScore, VerdictStable
	}

	raw := (maxPrice - current) / (maxPrice - minPrice) * 100
	score := int(math.Round(raw))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return score, verdictFor(score)
}

func verdictFor(score int) string {
	switch {
	case score >= 85:
		return VerdictGreatDeal
	case score >= 60:
		return VerdictGoodPrice
	case score >= 40:
		return VerdictFairPrice
	default:
		return VerdictOverpriced
	}
}

// Volatility computes a 0-100 dispersion index: the coefficient of
// variation (sample standard deviation over mean) scaled to percent,
// rounded to two decimals and capped at 100. Degenerate inputs yield 0.
func Volatility(history []float64) float64 {
	if len(history) < 2 {
		return 0
	}

	var sum float64
	for _, p := range history {
		sum += p
	}
	mean := sum / float64(len(history))
	if mean == 0 {
		return 0
	}

	var varianceSum float64
	for _, p := range history {
		diff := p - mean
		varianceSum += diff * diff
	}
	variance := varianceSum / float64(len(history)-1) // sample variance
	stdDev := math.Sqrt(variance)

	index := round2(stdDev / mean * 100)
	if index > 100 {
		return 100
	}
	if index < 0 || math.IsNaN(index) {
		return 0
	}
	return index
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
