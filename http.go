package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"
)

const userAgent = "nsm-price-bot/1.0"

// httpClient is shared by every API fetcher. Browser-backed sources manage
// their own timeouts; plain HTTP calls are bounded here.
var httpClient = &http.Client{Timeout: 20 * time.Second}

// HTTPGet performs a GET request with context, timeout and the bot headers.
func HTTPGet(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	return httpClient.Do(req)
}

// HTTPPostJSON performs a POST request with a JSON-encoded body. The
// aggregator API takes its game ids this way.
func HTTPPostJSON(ctx context.Context, url string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	return httpClient.Do(req)
}
