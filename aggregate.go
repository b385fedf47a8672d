package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Aggregator fans one price-check out to every source and merges the
// settled outcomes. The source funcs are fields so tests can swap in stubs
// without a browser or network.
type Aggregator struct {
	Steam       func(ctx context.Context, query string) SourceResult
	PlayStation func(query string) SourceResult
	Xbox        func(query string) SourceResult
	Deals       DealsClient
	Rates       RateSource
}

// NewAggregator wires the production fetchers to the shared browser and
// clients.
func NewAggregator(deals DealsClient, browser *Browser, rates RateSource) *Aggregator {
	return &Aggregator{
		Steam: FetchSteam,
		PlayStation: func(query string) SourceResult {
			return FetchPlayStation(browser, query)
		},
		Xbox: func(query string) SourceResult {
			return FetchXbox(browser, query)
		},
		Deals: deals,
		Rates: rates,
	}
}

// Aggregate runs the full lookup for one user query. Every source settles
// independently; one store failing, panicking or timing out never takes the
// reply down, it just renders as an error line for that store.
func (a *Aggregator) Aggregate(ctx context.Context, rawQuery string) *AggregateResult {
	query := NormalizeTitle(rawQuery)

	agg := &AggregateResult{
		Query:       query,
		DisplayName: strings.TrimSpace(rawQuery),
		Sources:     make(map[SourceKey]SourceResult, 6),
	}

	// The primary storefront runs first: its catalog name is the best
	// canonical spelling, and the deal aggregator matches far better on it
	// than on whatever the user typed.
	steam := settle(func() SourceResult { return a.Steam(ctx, query) })
	agg.Sources[SourceSteam] = steam

	dealsQuery := query
	if steam.Status == StatusOK && steam.Name != "" {
		agg.DisplayName = steam.Name
		dealsQuery = NormalizeTitle(steam.Name)
	}

	// Game id resolution and the keyshop catalog are independent lookups.
	var (
		gameID     string
		gameIDErr  error
		keyshopIDs string
	)
	var prep sync.WaitGroup
	prep.Add(2)
	go func() {
		defer prep.Done()
		defer recoverToErr(&gameIDErr, "itad search")
		gameID, gameIDErr = a.Deals.SearchGameID(ctx, dealsQuery)
	}()
	go func() {
		defer prep.Done()
		var err error
		keyshopIDs, err = a.Deals.KeyshopIDs(ctx)
		if err != nil && !errors.Is(err, errMissingAPIKey) {
			GetLogger().Warn().Err(err).Msg("keyshop catalog lookup failed, querying first-party shops only")
		}
	}()
	prep.Wait()

	var (
		wg         sync.WaitGroup
		psRes      SourceResult
		xboxRes    SourceResult
		buckets    *StoreBuckets
		bucketsErr error
		lows       map[int]Price
		subs       []string
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		psRes = settle(func() SourceResult { return a.PlayStation(query) })
	}()
	go func() {
		defer wg.Done()
		xboxRes = settle(func() SourceResult { return a.Xbox(query) })
	}()

	if gameID != "" && gameIDErr == nil {
		wg.Add(3)
		go func() {
			defer wg.Done()
			defer recoverToErr(&bucketsErr, "itad prices")
			buckets, bucketsErr = a.Deals.Prices(ctx, gameID, keyshopIDs)
		}()
		go func() {
			defer wg.Done()
			var err error
			lows, err = a.Deals.HistoricalLows(ctx, gameID)
			if err != nil {
				GetLogger().Warn().Err(err).Msg("historical lows lookup failed")
			}
		}()
		go func() {
			defer wg.Done()
			var err error
			subs, err = a.Deals.Subscriptions(ctx, gameID)
			if err != nil {
				GetLogger().Warn().Err(err).Msg("subscriptions lookup failed")
			}
		}()
	}
	wg.Wait()

	agg.Sources[SourcePlayStation] = psRes
	agg.Sources[SourceXbox] = xboxRes

	switch {
	case gameIDErr != nil && !errors.Is(gameIDErr, errMissingAPIKey):
		err := fmt.Errorf("deal aggregator unavailable: %w", gameIDErr)
		agg.Sources[SourceMicrosoft] = ErrorResult(err)
		agg.Sources[SourceEpic] = ErrorResult(err)
		agg.Sources[SourceKeyshop] = ErrorResult(err)
	case gameID == "":
		// Unknown to the aggregator, or no API key configured.
		agg.Sources[SourceMicrosoft] = NotFoundResult()
		agg.Sources[SourceEpic] = NotFoundResult()
		agg.Sources[SourceKeyshop] = NotFoundResult()
	case bucketsErr != nil:
		agg.Sources[SourceMicrosoft] = ErrorResult(bucketsErr)
		agg.Sources[SourceEpic] = ErrorResult(bucketsErr)
		agg.Sources[SourceKeyshop] = ErrorResult(bucketsErr)
	default:
		agg.Sources[SourceMicrosoft] = fromBucket(buckets.Microsoft)
		agg.Sources[SourceEpic] = fromBucket(buckets.Epic)
		agg.Sources[SourceKeyshop] = fromBucket(buckets.Keyshop)
	}

	attachLows(agg, lows)
	attachSubscriptions(agg, subs)

	if needsRate(agg) {
		rate, err := a.Rates.USDToTRY(ctx)
		if err != nil {
			GetLogger().Warn().Err(err).Msg("no USD/TRY rate available, skipping conversion")
		} else {
			agg.USDToTRY = rate
		}
	}

	return agg
}

// settle runs one fetcher and converts a panic into an error outcome.
func settle(fetch func() SourceResult) (res SourceResult) {
	defer func() {
		if r := recover(); r != nil {
			GetLogger().Error().Interface("panic", r).Msg("source fetcher panicked")
			res = ErrorResult(transientErr("source fetch", fmt.Errorf("panic: %v", r)))
		}
	}()
	return fetch()
}

func recoverToErr(dst *error, op string) {
	if r := recover(); r != nil {
		GetLogger().Error().Interface("panic", r).Str("op", op).Msg("lookup panicked")
		*dst = transientErr(op, fmt.Errorf("panic: %v", r))
	}
}

func fromBucket(b *SourceResult) SourceResult {
	if b == nil {
		return NotFoundResult()
	}
	return *b
}

// attachLows copies historical lows onto the matching settled entries. Lows
// only decorate entries that already resolved.
func attachLows(agg *AggregateResult, lows map[int]Price) {
	if len(lows) == 0 {
		return
	}
	for shopID, key := range map[int]SourceKey{
		shopSteam:     SourceSteam,
		shopEpic:      SourceEpic,
		shopMicrosoft: SourceMicrosoft,
	} {
		low, ok := lows[shopID]
		if !ok {
			continue
		}
		res := agg.Sources[key]
		if res.Status != StatusOK {
			continue
		}
		res.HistoricalLow = low
		agg.Sources[key] = res
	}
}

// xboxCatalogSubs are the only services relevant to the Xbox/Microsoft
// catalog. The deals API reports every platform's subscriptions, so coverage
// from, say, a console-exclusive service elsewhere must not surface here.
var xboxCatalogSubs = []string{"Game Pass", "EA Play"}

func filterCatalogSubs(subs []string) []string {
	var out []string
	for _, s := range subs {
		for _, marker := range xboxCatalogSubs {
			if strings.Contains(s, marker) {
				out = append(out, s)
				break
			}
		}
	}
	return out
}

// attachSubscriptions records subscription coverage on the two stores that
// share the same catalog. A store with no standalone listing but covered by
// a subscription upgrades to a resolved included entry; error entries are
// left alone.
func attachSubscriptions(agg *AggregateResult, subs []string) {
	subs = filterCatalogSubs(subs)
	if len(subs) == 0 {
		return
	}
	for _, key := range []SourceKey{SourceXbox, SourceMicrosoft} {
		res := agg.Sources[key]
		switch res.Status {
		case StatusOK:
			res.Included = mergeIncluded(res.Included, subs)
		case StatusNotFound:
			res.Status = StatusOK
			res.Price = Price{Kind: PriceIncluded}
			res.Included = mergeIncluded(nil, subs)
		default:
			continue
		}
		agg.Sources[key] = res
	}
}

func mergeIncluded(existing, extra []string) []string {
	seen := make(map[string]bool, len(existing))
	out := append([]string(nil), existing...)
	for _, s := range existing {
		seen[s] = true
	}
	for _, s := range extra {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// needsRate reports whether any settled price is in USD, which is the only
// case the approximate conversion line is rendered for.
func needsRate(agg *AggregateResult) bool {
	for _, res := range agg.Sources {
		if res.Status == StatusOK && res.Price.Kind == PriceAmount && res.Price.Currency == "USD" {
			return true
		}
	}
	return false
}
