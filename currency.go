package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"
)

// frankfurterURL is the USD/TRY rate source; var so tests can point it at a
// mock server.
var frankfurterURL = "https://api.frankfurter.app/latest?from=USD&to=TRY"

const (
	rateCacheKey = "usd-try"
	rateCacheTTL = time.Hour
)

// RateSource is what the aggregator depends on for currency conversion.
type RateSource interface {
	USDToTRY(ctx context.Context) (float64, error)
}

// RateCache is the process-wide USD/TRY rate snapshot. The TTL cache makes
// sure at most one refresh request goes out per window; refreshes are
// idempotent, so a rare duplicate under concurrency is harmless. The last
// successfully fetched rate is kept around so a failed refresh degrades to
// slightly stale data instead of dropping the conversion line.
type RateCache struct {
	cache *cache.Cache

	mu   sync.Mutex
	last float64
}

// NewRateCache builds a rate cache with the given TTL (rateCacheTTL in
// production, shorter in tests).
func NewRateCache(ttl time.Duration) *RateCache {
	return &RateCache{cache: cache.New(ttl, 10*time.Minute)}
}

type frankfurterResponse struct {
	Rates map[string]float64 `json:"rates"`
}

// USDToTRY returns the cached rate, refreshing it only when the snapshot has
// expired.
func (r *RateCache) USDToTRY(ctx context.Context) (float64, error) {
	if v, ok := r.cache.Get(rateCacheKey); ok {
		return v.(float64), nil
	}

	rate, err := r.refresh(ctx)
	if err != nil {
		r.mu.Lock()
		last := r.last
		r.mu.Unlock()
		if last > 0 {
			GetLogger().Warn().Err(err).Float64("rate", last).Msg("rate refresh failed, reusing last known rate")
			return last, nil
		}
		return 0, err
	}
	return rate, nil
}

func (r *RateCache) refresh(ctx context.Context) (float64, error) {
	resp, err := HTTPGet(ctx, frankfurterURL)
	if err != nil {
		return 0, transientErr("currency refresh", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, transientErr("currency refresh", fmt.Errorf("status %d", resp.StatusCode))
	}

	var fr frankfurterResponse
	if err := json.NewDecoder(resp.Body).Decode(&fr); err != nil {
		return 0, dataShapeErr("currency refresh", err)
	}

	rate, ok := fr.Rates["TRY"]
	if !ok || rate <= 0 {
		return 0, dataShapeErr("currency refresh", errors.New("no TRY rate in response"))
	}

	r.cache.Set(rateCacheKey, rate, cache.DefaultExpiration)
	r.mu.Lock()
	r.last = rate
	r.mu.Unlock()

	GetLogger().Info().Float64("rate", rate).Msg("refreshed USD/TRY rate")
	return rate, nil
}
