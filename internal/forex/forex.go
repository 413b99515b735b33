package forex

import (
	"math"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

const (
	defaultAPIURL  = "https://api.exchangerate-api.com/v4/latest/USD"
	defaultHome    = "INR"
	staleAfter     = 24 * time.Hour
	requestTimeout = 5 * time.Second

	// After a failed fetch, wait this long before trying the API again
	// so an outage cannot put the blocking fetch on every request.
	retryAfterFailure = 10 * time.Minute

	// Approximate USD→INR multiplier used when everything else fails.
	emergencyUSDRate = 83.5
)

// fallbackRates keeps conversion working when the rate API is down and
// nothing was fetched yet. Approximations relative to USD.
var fallbackRates = map[string]float64{
	"USD": 1.0,
	"INR": 83.5,
	"EUR": 0.92,
	"GBP": 0.79,
}

// Cache holds a currency rate table keyed by code, relative to USD,
// refreshed lazily at most once per day. Construct it once in the
// composition root and share it; refreshes are idempotent, so the
// worst a concurrent first use can do is a redundant fetch.
type Cache struct {
	client *resty.Client
	now    func() time.Time
	home   string

	mu          sync.Mutex
	rates       map[string]float64
	lastUpdated time.Time
	lastAttempt time.Time
}

// Options configures a Cache. Zero values get production defaults.
type Options struct {
	APIURL       string
	HomeCurrency string
	Client       *resty.Client
	Now          func() time.Time
}

type rateResponse struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

func New(opts Options) *Cache {
	if opts.APIURL == "" {
		opts.APIURL = defaultAPIURL
	}
	if opts.HomeCurrency == "" {
		opts.HomeCurrency = defaultHome
	}
	if opts.Client == nil {
		opts.Client = resty.New().SetTimeout(requestTimeout)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Cache{
		client: opts.Client.SetBaseURL(opts.APIURL),
		now:    opts.Now,
		home:   opts.HomeCurrency,
		rates:  map[string]float64{},
	}
}

// HomeCurrency returns the currency all prices are normalized to.
func (c *Cache) HomeCurrency() string {
	return c.home
}

// ConvertToHome converts an amount in sourceCurrency to the home
// currency, rounded to two decimals. It never fails: on any internal
// problem it degrades to a fixed approximate conversion.
func (c *Cache) ConvertToHome(amount float64, sourceCurrency string) float64 {
	if sourceCurrency == c.home {
		return amount
	}

	rates := c.currentRates()

	srcRate, ok := rates[sourceCurrency]
	if !ok || srcRate == 0 {
		if sourceCurrency == "USD" {
			return round2(amount * emergencyUSDRate)
		}
		return amount
	}
	homeRate, ok := rates[c.home]
	if !ok || homeRate == 0 {
		homeRate = emergencyUSDRate
	}

	// source → USD → home
	return round2(amount / srcRate * homeRate)
}

// Rate returns the cached rate for a currency code relative to USD,
// or 1.0 when unknown.
func (c *Cache) Rate(code string) float64 {
	rates := c.currentRates()
	if r, ok := rates[code]; ok && r != 0 {
		return r
	}
	return 1.0
}

// Refresh forces a rate fetch regardless of staleness. Used by the
// scheduler to warm the table off the request path.
func (c *Cache) Refresh() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refreshLocked()
}

// currentRates returns the rate table, refreshing it first when it is
// empty or older than 24 hours. A recent failed attempt suppresses the
// refresh until the retry horizon passes.
func (c *Cache) currentRates() map[string]float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	stale := len(c.rates) == 0 || c.now().Sub(c.lastUpdated) > staleAfter
	if stale && c.now().Sub(c.lastAttempt) >= retryAfterFailure {
		c.refreshLocked()
	}
	return c.rates
}

func (c *Cache) refreshLocked() {
	c.lastAttempt = c.now()
	var body rateResponse
	resp, err := c.client.R().SetResult(&body).Get("")

	if err != nil || resp.IsError() || len(body.Rates) == 0 {
		if err != nil {
			log.Warn().Err(err).Msg("forex: rate fetch failed, using fallback")
		} else {
			log.Warn().Int("status", resp.StatusCode()).Msg("forex: rate fetch failed, using fallback")
		}
		// Keep a previously fetched table if we have one.
		if len(c.rates) == 0 {
			c.rates = fallbackRates
		}
		return
	}

	c.rates = body.Rates
	c.lastUpdated = c.now()
	log.Info().
		Float64("usd_inr", body.Rates["INR"]).
		Int("currencies", len(body.Rates)).
		Msg("forex: rate table refreshed")
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
