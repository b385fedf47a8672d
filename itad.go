package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// itadBaseURL is a var so tests can point it at a mock server.
var itadBaseURL = "https://api.isthereanydeal.com"

// IsThereAnyDeal shop ids for the buckets we surface and enrich.
const (
	shopEpic      = 16
	shopMicrosoft = 48
	shopSteam     = 61
)

// firstPartyShops are excluded from the keyshop bucket: their prices either
// come from a dedicated source or belong to another bucket.
var firstPartyShops = map[string]bool{
	"Steam":             true,
	"Epic Game Store":   true,
	"Playstation Store": true,
	"GOG":               true,
}

// errMissingAPIKey makes the aggregator-backed sources report unavailable
// instead of failing the whole command.
var errMissingAPIKey = errors.New("aggregator API key not configured")

// DealsClient is the aggregator's view of the price-comparison API.
type DealsClient interface {
	SearchGameID(ctx context.Context, title string) (string, error)
	KeyshopIDs(ctx context.Context) (string, error)
	Prices(ctx context.Context, gameID, keyshopIDs string) (*StoreBuckets, error)
	HistoricalLows(ctx context.Context, gameID string) (map[int]Price, error)
	Subscriptions(ctx context.Context, gameID string) ([]string, error)
}

// ITADClient talks to the IsThereAnyDeal API.
type ITADClient struct {
	APIKey string
}

// StoreBuckets is one composite prices response unbundled into the three
// logical stores the reply shows. A nil bucket means the shop listed no
// usable offer.
type StoreBuckets struct {
	Epic      *SourceResult
	Microsoft *SourceResult
	Keyshop   *SourceResult
}

type itadSearchHit struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type itadShop struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

type itadShopRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type itadPriceInfo struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

type itadDRM struct {
	Name string `json:"name"`
}

type itadDeal struct {
	Shop  itadShopRef    `json:"shop"`
	Price *itadPriceInfo `json:"price"`
	URL   string         `json:"url"`
	DRM   []itadDRM      `json:"drm"`
}

type itadPricesEntry struct {
	ID      string     `json:"id"`
	Deals   []itadDeal `json:"deals"`
	Current []itadDeal `json:"current"`
}

type itadLow struct {
	Shop  itadShopRef    `json:"shop"`
	Price *itadPriceInfo `json:"price"`
}

type itadLowsEntry struct {
	ID   string    `json:"id"`
	Lows []itadLow `json:"lows"`
}

type itadSub struct {
	Name string `json:"name"`
}

type itadSubsEntry struct {
	ID   string    `json:"id"`
	Subs []itadSub `json:"subs"`
}

// SearchGameID resolves a title to the aggregator's game id. The first hit
// is used; an empty id with nil error means the title is unknown there.
func (c *ITADClient) SearchGameID(ctx context.Context, title string) (string, error) {
	if c.APIKey == "" {
		return "", errMissingAPIKey
	}

	searchURL := fmt.Sprintf("%s/games/search/v1?key=%s&title=%s",
		itadBaseURL, url.QueryEscape(c.APIKey), url.QueryEscape(title))

	resp, err := HTTPGet(ctx, searchURL)
	if err != nil {
		return "", transientErr("itad search", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", transientErr("itad search", fmt.Errorf("status %d", resp.StatusCode))
	}

	var hits []itadSearchHit
	if err := json.NewDecoder(resp.Body).Decode(&hits); err != nil {
		return "", dataShapeErr("itad search", err)
	}
	if len(hits) == 0 {
		GetLogger().Info().Str("title", title).Msg("no itad game id found")
		return "", nil
	}
	return hits[0].ID, nil
}

// KeyshopIDs fetches the full shop catalog and returns the comma-joined ids
// of everything that is not a first-party store. The exclusion list is
// applied dynamically so newly listed key resellers are picked up without a
// code change.
func (c *ITADClient) KeyshopIDs(ctx context.Context) (string, error) {
	if c.APIKey == "" {
		return "", errMissingAPIKey
	}

	shopsURL := fmt.Sprintf("%s/service/shops/v1?key=%s", itadBaseURL, url.QueryEscape(c.APIKey))

	resp, err := HTTPGet(ctx, shopsURL)
	if err != nil {
		return "", transientErr("itad shops", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", transientErr("itad shops", fmt.Errorf("status %d", resp.StatusCode))
	}

	var shops []itadShop
	if err := json.NewDecoder(resp.Body).Decode(&shops); err != nil {
		return "", dataShapeErr("itad shops", err)
	}

	ids := make([]string, 0, len(shops))
	for _, shop := range shops {
		if firstPartyShops[shop.Title] {
			continue
		}
		ids = append(ids, strconv.Itoa(shop.ID))
	}
	return strings.Join(ids, ","), nil
}

// Prices fetches current deals for the game across the Microsoft and Epic
// stores plus every keyshop, and unbundles the composite response into the
// three buckets. Epic and Microsoft fall back from discounted deals to
// current prices; the keyshop bucket keeps only the cheapest discounted
// offer along with its shop name and DRM platform.
func (c *ITADClient) Prices(ctx context.Context, gameID, keyshopIDs string) (*StoreBuckets, error) {
	if c.APIKey == "" {
		return nil, errMissingAPIKey
	}

	shops := fmt.Sprintf("%d,%d", shopMicrosoft, shopEpic)
	if keyshopIDs != "" {
		shops += "," + keyshopIDs
	}

	pricesURL := fmt.Sprintf("%s/games/prices/v3?key=%s&country=TR&shops=%s",
		itadBaseURL, url.QueryEscape(c.APIKey), shops)

	resp, err := HTTPPostJSON(ctx, pricesURL, []string{gameID})
	if err != nil {
		return nil, transientErr("itad prices", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, transientErr("itad prices", fmt.Errorf("status %d", resp.StatusCode))
	}

	var entries []itadPricesEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, dataShapeErr("itad prices", err)
	}
	if len(entries) == 0 {
		return nil, dataShapeErr("itad prices", errors.New("empty prices response"))
	}
	entry := entries[0]

	buckets := &StoreBuckets{}
	cheapestKey := math.Inf(1)

	for _, deal := range entry.Deals {
		if deal.Price == nil || deal.URL == "" {
			continue
		}
		switch deal.Shop.ID {
		case shopEpic:
			if buckets.Epic == nil {
				buckets.Epic = bucketResult(deal)
			}
		case shopMicrosoft:
			if buckets.Microsoft == nil {
				buckets.Microsoft = bucketResult(deal)
			}
		default:
			if deal.Price.Amount < cheapestKey {
				cheapestKey = deal.Price.Amount
				res := bucketResult(deal)
				if len(deal.DRM) > 0 {
					res.DRM = deal.DRM[0].Name
				}
				buckets.Keyshop = res
			}
		}
	}

	// No discount listed does not mean no price: fall back to the store's
	// current price for the first-party buckets.
	if buckets.Epic == nil || buckets.Microsoft == nil {
		for _, deal := range entry.Current {
			if deal.Price == nil || deal.URL == "" {
				continue
			}
			switch deal.Shop.ID {
			case shopEpic:
				if buckets.Epic == nil {
					buckets.Epic = bucketResult(deal)
				}
			case shopMicrosoft:
				if buckets.Microsoft == nil {
					buckets.Microsoft = bucketResult(deal)
				}
			}
		}
	}

	return buckets, nil
}

func bucketResult(deal itadDeal) *SourceResult {
	return &SourceResult{
		Status: StatusOK,
		Price:  Price{Kind: PriceAmount, Amount: deal.Price.Amount, Currency: deal.Price.Currency},
		Link:   deal.URL,
		Shop:   deal.Shop.Name,
	}
}

// HistoricalLows fetches the lowest recorded price per enrichment shop,
// keyed by shop id. Purely additive: failures leave the reply without the
// lowest-ever lines.
func (c *ITADClient) HistoricalLows(ctx context.Context, gameID string) (map[int]Price, error) {
	if c.APIKey == "" {
		return nil, errMissingAPIKey
	}

	lowsURL := fmt.Sprintf("%s/games/storelow/v2?key=%s&country=TR&shops=%d,%d,%d",
		itadBaseURL, url.QueryEscape(c.APIKey), shopSteam, shopEpic, shopMicrosoft)

	resp, err := HTTPPostJSON(ctx, lowsURL, []string{gameID})
	if err != nil {
		return nil, transientErr("itad storelow", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, transientErr("itad storelow", fmt.Errorf("status %d", resp.StatusCode))
	}

	var entries []itadLowsEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, dataShapeErr("itad storelow", err)
	}

	lows := make(map[int]Price)
	if len(entries) == 0 {
		return lows, nil
	}
	for _, low := range entries[0].Lows {
		if low.Price == nil {
			continue
		}
		lows[low.Shop.ID] = Price{Kind: PriceAmount, Amount: low.Price.Amount, Currency: low.Price.Currency}
	}
	return lows, nil
}

// Subscriptions fetches the subscription services currently covering the
// game. Purely additive, like HistoricalLows.
func (c *ITADClient) Subscriptions(ctx context.Context, gameID string) ([]string, error) {
	if c.APIKey == "" {
		return nil, errMissingAPIKey
	}

	subsURL := fmt.Sprintf("%s/games/subs/v1?key=%s&country=TR", itadBaseURL, url.QueryEscape(c.APIKey))

	resp, err := HTTPPostJSON(ctx, subsURL, []string{gameID})
	if err != nil {
		return nil, transientErr("itad subs", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, transientErr("itad subs", fmt.Errorf("status %d", resp.StatusCode))
	}

	var entries []itadSubsEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, dataShapeErr("itad subs", err)
	}
	if len(entries) == 0 {
		return nil, nil
	}

	names := make([]string, 0, len(entries[0].Subs))
	for _, sub := range entries[0].Subs {
		names = append(names, sub.Name)
	}
	if len(names) > 0 {
		GetLogger().Debug().Strs("subscriptions", names).Str("game_id", gameID).Msg("itad subscriptions found")
	}
	return names, nil
}
