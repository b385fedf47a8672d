package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/chromedp/chromedp"
)

// debugDir holds the log file plus failure artifacts; var so tests can
// redirect it to a temp dir.
var debugDir = "debug_output"

var unsafeFileChars = regexp.MustCompile(`[^\w-]`)

// dumpFailureArtifacts saves a screenshot and the rendered HTML of the tab
// when a scrape goes wrong, so selector drift can be diagnosed after the
// fact. Best effort only.
func dumpFailureArtifacts(tabCtx context.Context, store, query string) {
	slug := unsafeFileChars.ReplaceAllString(query, "_")
	stamp := time.Now().Format("20060102-150405")
	base := filepath.Join(debugDir, fmt.Sprintf("error_%s_%s_%s", store, slug, stamp))

	var shot []byte
	var html string
	if err := chromedp.Run(tabCtx,
		chromedp.CaptureScreenshot(&shot),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	); err != nil {
		GetLogger().Warn().Err(err).Str("store", store).Msg("could not capture failure artifacts")
		return
	}

	if err := os.WriteFile(base+".png", shot, 0o600); err != nil {
		GetLogger().Warn().Err(err).Msg("could not write failure screenshot")
	}
	if err := os.WriteFile(base+".html", []byte(html), 0o600); err != nil {
		GetLogger().Warn().Err(err).Msg("could not write failure page dump")
	}
	GetLogger().Info().Str("store", store).Str("artifacts", base).Msg("saved failure artifacts")
}
