package main

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"
)

// Browser owns the long-lived headless Chrome process. One browser is
// started at boot and shared by the console storefront fetchers; each
// lookup runs in a fresh tab so lookups never see each other's state.
type Browser struct {
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	connected     bool
}

// StartBrowser launches headless Chrome and warms it up by navigating to a
// blank page. A launch failure is reported but not fatal to the caller: the
// bot can still answer with the API-backed sources.
func StartBrowser(ctx context.Context) (*Browser, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("lang", "tr-TR"),
		chromedp.UserAgent(browserUserAgent),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(browserCtx, chromedp.Navigate("about:blank")); err != nil {
		browserCancel()
		allocCancel()
		return nil, err
	}

	GetLogger().Info().Msg("headless browser started")
	return &Browser{
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		connected:     true,
	}, nil
}

// browserUserAgent is a desktop UA: the console stores serve a different
// markup to obvious headless agents.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// Connected reports whether the browser process is usable.
func (b *Browser) Connected() bool {
	return b != nil && b.connected
}

// NewTab opens a fresh tab with its own deadline. The returned cancel must
// be called to close the tab.
func (b *Browser) NewTab(timeout time.Duration) (context.Context, context.CancelFunc) {
	tabCtx, tabCancel := chromedp.NewContext(b.browserCtx)
	timedCtx, timeCancel := context.WithTimeout(tabCtx, timeout)
	return timedCtx, func() {
		timeCancel()
		tabCancel()
	}
}

// Close shuts the browser process down.
func (b *Browser) Close() {
	if b == nil || !b.connected {
		return
	}
	b.connected = false
	b.browserCancel()
	b.allocCancel()
	GetLogger().Info().Msg("headless browser stopped")
}

// acceptCookies clicks a consent button if it shows up within a couple of
// seconds, and is a no-op when the banner never appears.
func acceptCookies(selector string) chromedp.ActionFunc {
	return func(ctx context.Context) error {
		shortCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := chromedp.Click(selector, chromedp.ByQuery).Do(shortCtx); err != nil {
			GetLogger().Debug().Str("selector", selector).Msg("no cookie banner to dismiss")
		}
		return nil
	}
}

// waitVisible waits for the selector with its own sub-timeout so a missing
// element fails fast instead of eating the whole tab deadline.
func waitVisible(selector string, timeout time.Duration) chromedp.ActionFunc {
	return func(ctx context.Context) error {
		subCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return chromedp.WaitVisible(selector, chromedp.ByQuery).Do(subCtx)
	}
}

// waitVisibleQuiet waits like waitVisible but treats a miss as non-fatal,
// for elements that improve the scrape when present but are legitimately
// absent on some pages.
func waitVisibleQuiet(selector string, timeout time.Duration) chromedp.ActionFunc {
	return func(ctx context.Context) error {
		if err := waitVisible(selector, timeout)(ctx); err != nil {
			GetLogger().Debug().Str("selector", selector).Msg("element did not appear in time")
		}
		return nil
	}
}
