package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// steamSearchURL is a var so tests can point it at a mock server.
var steamSearchURL = "https://store.steampowered.com/api/storesearch/"

const steamAppURL = "https://store.steampowered.com/app/%d"

type steamSearchResponse struct {
	Items []steamSearchItem `json:"items"`
}

type steamSearchItem struct {
	ID   int    `json:"id"`
	Name string `json:"name"`

	// Price is absent for free and delisted titles.
	Price          *steamPrice `json:"price"`
	Unpurchaseable int         `json:"unpurchaseable"`
}

type steamPrice struct {
	Currency string `json:"currency"`
	Initial  int64  `json:"initial"`
	Final    int64  `json:"final"`
}

// FetchSteam queries the primary storefront's search API, scores every
// returned item against the normalized query and maps the winner to a
// result. The winner's catalog name is set on SourceResult.Name: it is the
// most reliable canonical spelling available, and the aggregator reuses it
// both for the reply title and as the refined deal-aggregator query.
func FetchSteam(ctx context.Context, query string) SourceResult {
	searchURL := fmt.Sprintf("%s?term=%s&l=turkish&cc=TR", steamSearchURL, url.QueryEscape(query))

	resp, err := HTTPGet(ctx, searchURL)
	if err != nil {
		return ErrorResult(transientErr("steam search", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ErrorResult(transientErr("steam search", fmt.Errorf("status %d", resp.StatusCode)))
	}

	var sr steamSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return ErrorResult(dataShapeErr("steam search", err))
	}
	if len(sr.Items) == 0 {
		GetLogger().Debug().Str("query", query).Msg("steam search returned no items")
		return NotFoundResult()
	}

	titles := make([]string, len(sr.Items))
	for i, item := range sr.Items {
		titles[i] = item.Name
	}

	idx, score, ok := PickBest(query, titles, ScoreOptions{})
	if !ok {
		GetLogger().Info().Str("query", query).Int("best_score", score).Msg("no steam result cleared the match threshold")
		return NotFoundResult()
	}

	item := sr.Items[idx]
	res := SourceResult{
		Status: StatusOK,
		Link:   fmt.Sprintf(steamAppURL, item.ID),
		Name:   item.Name,
	}

	switch {
	case item.Price != nil:
		res.Price = Price{
			Kind:     PriceAmount,
			Amount:   float64(item.Price.Final) / 100,
			Currency: item.Price.Currency,
		}
	case item.Unpurchaseable != 0:
		res.Price = Price{Kind: PriceUnavailable}
	default:
		res.Price = Price{Kind: PriceFree}
	}

	GetLogger().Debug().Str("query", query).Str("match", item.Name).Int("score", score).Msg("steam match selected")
	return res
}
