package model

import "time"

// Intent distinguishes single-unit retail search from bulk/wholesale sourcing.
type Intent string

const (
	IntentSingle    Intent = "single"
	IntentBulk      Intent = "bulk"
	IntentWholesale Intent = "wholesale"
)

// IsWholesale reports whether the intent routes to the B2B directory set.
func (i Intent) IsWholesale() bool {
	return i == IntentBulk || i == IntentWholesale
}

// ParseIntent normalises a client-supplied intent value. Unknown values
// fall back to single-item retail.
func ParseIntent(v string) Intent {
	switch Intent(v) {
	case IntentBulk:
		return IntentBulk
	case IntentWholesale:
		return IntentWholesale
	default:
		return IntentSingle
	}
}

type RecordType string

const (
	TypeRetail    RecordType = "Retail"
	TypeB2B       RecordType = "B2B"
	TypeWholesale RecordType = "Wholesale"
)

// ProductRecord is one normalized search hit from a single source.
// Retail records always carry a positive Price; B2B leads often quote
// only free text ("Ask Price", "Quote Only") and leave Price at zero.
type ProductRecord struct {
	Title     string     `json:"title"`
	Brand     string     `json:"brand,omitempty"`
	Category  string     `json:"category,omitempty"`
	Price     float64    `json:"price"`
	PriceText string     `json:"price_text,omitempty"`
	Currency  string     `json:"currency"`
	URL       string     `json:"url"`
	Image     string     `json:"image"`
	Seller    string     `json:"seller,omitempty"`
	Address   string     `json:"address,omitempty"`
	Source    string     `json:"source"`
	Type      RecordType `json:"type"`
}

// HasPrice reports whether the record carries a usable numeric price.
func (r ProductRecord) HasPrice() bool {
	return r.Price > 0
}

// PricePoint is one historical price observation in home currency.
type PricePoint struct {
	Price      float64   `json:"price"`
	ObservedAt time.Time `json:"observed_at"`
}

// Forecast is a 7-day-ahead linear extrapolation of a price series.
// Confidence is a heuristic function of sample size, not a statistical
// confidence interval.
type Forecast struct {
	Trend          string  `json:"trend"` // "Upward" | "Downward" | "Stable"
	ChangePct      float64 `json:"change_pct"`
	PredictedPrice float64 `json:"predicted_price"`
	Confidence     int     `json:"confidence"`
}

// Analysis is the enrichment attached to each retail record returned
// to clients.
type Analysis struct {
	Score        int          `json:"score"`
	Verdict      string       `json:"verdict"`
	Volatility   float64      `json:"volatility"`
	HistoryCount int          `json:"history_count"`
	PriceHistory []PricePoint `json:"price_history"`
	Forecast     *Forecast    `json:"forecast"`
}

// EnrichedRecord is the wire shape for retail search results.
type EnrichedRecord struct {
	ProductRecord
	Analysis *Analysis `json:"analysis,omitempty"`
}
