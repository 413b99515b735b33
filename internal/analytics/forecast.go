package analytics

import (
	"sort"

	"github.com/guarzo/priceatlas/internal/model"
)

const (
	forecastHorizonDays = 7
	trendThresholdPct   = 1.5
)

// NextWeek fits a least-squares line through the price history and
// extrapolates seven days past the last observation. It needs at least
// three points spread over more than one day; anything less returns nil
// (insufficient data, not an error).
func NextWeek(history []model.PricePoint) *model.Forecast {
	if len(history) < 3 {
		return nil
	}

	points := make([]model.PricePoint, len(history))
	copy(points, history)
	sort.Slice(points, func(i, j int) bool {
		return points[i].ObservedAt.Before(points[j].ObservedAt)
	})

	// X axis is whole-day offsets from the earliest observation, so
	// same-day scrapes collapse onto one offset.
	start := points[0].ObservedAt
	days := make([]float64, len(points))
	prices := make([]float64, len(points))
	for i, p := range points {
		days[i] = float64(int(p.ObservedAt.Sub(start).Hours() / 24))
		prices[i] = p.Price
	}

	n := float64(len(points))
	var meanX, meanY float64
	for i := range days {
		meanX += days[i]
		meanY += prices[i]
	}
	meanX /= n
	meanY /= n

	var num, den float64
	for i := range days {
		num += (days[i] - meanX) * (prices[i] - meanY)
		den += (days[i] - meanX) * (days[i] - meanX)
	}
	if den == 0 {
		// All observations share a day offset; the slope is undefined.
		return nil
	}

	slope := num / den
	intercept := meanY - slope*meanX

	futureDay := days[len(days)-1] + forecastHorizonDays
	predicted := slope*futureDay + intercept
	current := prices[len(prices)-1]
	if current == 0 {
		return nil
	}

	changePct := round2((predicted - current) / current * 100)

	trend := "Stable"
	switch {
	case changePct > trendThresholdPct:
		trend = "Upward"
	case changePct < -trendThresholdPct:
		trend = "Downward"
	}

	confidence := 40 + 5*len(points)
	if confidence > 95 {
		confidence = 95
	}

	return &model.Forecast{
		Trend:          trend,
		ChangePct:      changePct,
		PredictedPrice: round2(predicted),
		Confidence:     confidence,
	}
}
