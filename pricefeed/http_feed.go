package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const (
	// defaultHistorySize bounds the per-symbol sample ring. At one sample
	// per poll interval this covers well past the longest trade duration.
	defaultHistorySize = 512

	// atTimeTolerance is how far a stored sample may sit from a requested
	// timestamp before PriceAt refuses to answer.
	atTimeTolerance = 15 * time.Second
)

// HTTPFeed polls a ticker endpoint at a fixed interval and keeps a bounded
// in-memory history per symbol so settlement can resolve price-at-expiry
// lookups without an external historical API.
type HTTPFeed struct {
	baseURL        string
	symbols        []string
	interval       time.Duration
	staleThreshold time.Duration
	client         *http.Client

	mu      sync.RWMutex
	running bool
	stopCh  chan struct{}
	history map[string][]Sample // ring, newest last
	lastOK  map[string]time.Time
}

// NewHTTPFeed creates a polling feed for the given ticker endpoint. The
// endpoint must answer GET {baseURL}?symbol=SYM with {"price": "..."}.
func NewHTTPFeed(baseURL string, symbols []string, interval, staleThreshold time.Duration) *HTTPFeed {
	return &HTTPFeed{
		baseURL:        baseURL,
		symbols:        symbols,
		interval:       interval,
		staleThreshold: staleThreshold,
		client:         &http.Client{Timeout: 5 * time.Second},
		stopCh:         make(chan struct{}),
		history:        make(map[string][]Sample),
		lastOK:         make(map[string]time.Time),
	}
}

// Start begins polling. Safe to call once.
func (f *HTTPFeed) Start() {
	f.mu.Lock()
	if f.running {
		f.mu.Unlock()
		return
	}
	f.running = true
	f.mu.Unlock()

	go f.pollLoop()
	log.WithFields(log.Fields{
		"symbols":  f.symbols,
		"interval": f.interval,
	}).Info("Price feed started")
}

// Stop halts the polling loop
func (f *HTTPFeed) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.running {
		return
	}
	f.running = false
	close(f.stopCh)
	log.Info("Price feed stopped")
}

// PriceAt returns the sample closest to t if one lies within tolerance
func (f *HTTPFeed) PriceAt(ctx context.Context, symbol string, t time.Time) (decimal.Decimal, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	var best *Sample
	bestDist := atTimeTolerance + 1
	for i := range f.history[symbol] {
		s := &f.history[symbol][i]
		dist := s.Timestamp.Sub(t)
		if dist < 0 {
			dist = -dist
		}
		if dist < bestDist {
			best, bestDist = s, dist
		}
	}
	if best == nil || bestDist > atTimeTolerance {
		return decimal.Zero, false
	}
	return best.Price, true
}

// Latest returns the most recent known price for a symbol
func (f *HTTPFeed) Latest(ctx context.Context, symbol string) (decimal.Decimal, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	samples := f.history[symbol]
	if len(samples) == 0 {
		return decimal.Zero, false
	}
	return samples[len(samples)-1].Price, true
}

// IsStale reports whether the symbol has not been sampled recently
func (f *HTTPFeed) IsStale(symbol string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	last, ok := f.lastOK[symbol]
	return !ok || time.Since(last) > f.staleThreshold
}

func (f *HTTPFeed) pollLoop() {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	f.fetchAll()
	for {
		select {
		case <-f.stopCh:
			return
		case <-ticker.C:
			f.fetchAll()
		}
	}
}

func (f *HTTPFeed) fetchAll() {
	for _, symbol := range f.symbols {
		price, err := f.fetchPrice(symbol)
		if err != nil {
			log.WithError(err).WithField("symbol", symbol).Warn("Price fetch failed")
			continue
		}
		f.record(symbol, price, time.Now().UTC())
	}
}

// record appends a sample, trimming the ring when it outgrows its bound
func (f *HTTPFeed) record(symbol string, price decimal.Decimal, at time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()

	samples := append(f.history[symbol], Sample{Symbol: symbol, Price: price, Timestamp: at})
	if len(samples) > defaultHistorySize {
		samples = samples[len(samples)-defaultHistorySize:]
	}
	f.history[symbol] = samples
	f.lastOK[symbol] = at
}

func (f *HTTPFeed) fetchPrice(symbol string) (decimal.Decimal, error) {
	url := fmt.Sprintf("%s?symbol=%s", f.baseURL, symbol)

	resp, err := f.client.Get(url)
	if err != nil {
		return decimal.Zero, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("ticker endpoint returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return decimal.Zero, err
	}

	var result struct {
		Price string `json:"price"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(result.Price)
}
