package forex

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rateServer(t *testing.T, hits *atomic.Int64, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

const ratesBody = `{"base":"USD","rates":{"USD":1.0,"INR":80.0,"EUR":0.5}}`

func newTestCache(t *testing.T, url string, now *time.Time) *Cache {
	t.Helper()
	return New(Options{
		APIURL:       url,
		HomeCurrency: "INR",
		Client:       resty.New().SetTimeout(time.Second),
		Now:          func() time.Time { return *now },
	})
}

func TestConvertToHome(t *testing.T) {
	var hits atomic.Int64
	srv := rateServer(t, &hits, ratesBody)
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	c := newTestCache(t, srv.URL, &now)

	// Home currency passes through untouched, without a fetch.
	assert.Equal(t, 499.0, c.ConvertToHome(499, "INR"))
	assert.EqualValues(t, 0, hits.Load())

	// 10 USD → 10/1.0*80 = 800 INR
	assert.Equal(t, 800.0, c.ConvertToHome(10, "USD"))
	// 2 EUR → 2/0.5*80 = 320 INR
	assert.Equal(t, 320.0, c.ConvertToHome(2, "EUR"))
	require.EqualValues(t, 1, hits.Load(), "rate table should be fetched once")
}

func TestDailyRefresh(t *testing.T) {
	var hits atomic.Int64
	srv := rateServer(t, &hits, ratesBody)
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	c := newTestCache(t, srv.URL, &now)

	c.ConvertToHome(10, "USD")
	c.ConvertToHome(20, "USD")
	assert.EqualValues(t, 1, hits.Load(), "fresh table must not re-fetch")

	now = now.Add(25 * time.Hour)
	c.ConvertToHome(10, "USD")
	assert.EqualValues(t, 2, hits.Load(), "stale table must re-fetch")
}

func TestFallbackRatesOnFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	c := newTestCache(t, srv.URL, &now)

	// Hardcoded fallback: 1 USD → 83.5 INR.
	assert.Equal(t, 83.5, c.ConvertToHome(1, "USD"))
	// Unknown currency without a usable rate passes through.
	assert.Equal(t, 42.0, c.ConvertToHome(42, "XYZ"))
}

func TestFailedFetchNotRetriedImmediately(t *testing.T) {
	var failing atomic.Bool
	var hits atomic.Int64
	failing.Store(true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if failing.Load() {
			http.Error(w, "down", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(ratesBody))
	}))
	defer srv.Close()

	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	c := newTestCache(t, srv.URL, &now)

	// First use fails over to the hardcoded table.
	assert.Equal(t, 83.5, c.ConvertToHome(1, "USD"))
	require.EqualValues(t, 1, hits.Load())

	// Conversions inside the retry horizon must not re-hit the API.
	now = now.Add(time.Minute)
	assert.Equal(t, 83.5, c.ConvertToHome(1, "USD"))
	assert.EqualValues(t, 1, hits.Load())

	// Once the horizon passes and the API recovers, the real table
	// replaces the fallback.
	failing.Store(false)
	now = now.Add(15 * time.Minute)
	assert.Equal(t, 80.0, c.ConvertToHome(1, "USD"))
	assert.EqualValues(t, 2, hits.Load())
}

func TestKeepsPreviousTableOnFailure(t *testing.T) {
	var failing atomic.Bool
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if failing.Load() {
			http.Error(w, "down", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(ratesBody))
	}))
	defer srv.Close()

	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	c := newTestCache(t, srv.URL, &now)

	assert.Equal(t, 800.0, c.ConvertToHome(10, "USD"))

	failing.Store(true)
	now = now.Add(25 * time.Hour)
	// Refresh fails but the previous table keeps serving conversions.
	assert.Equal(t, 800.0, c.ConvertToHome(10, "USD"))
}

func TestRate(t *testing.T) {
	var hits atomic.Int64
	srv := rateServer(t, &hits, ratesBody)
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	c := newTestCache(t, srv.URL, &now)

	assert.Equal(t, 80.0, c.Rate("INR"))
	assert.Equal(t, 1.0, c.Rate("NOPE"))
}
