package main

import (
	"errors"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
)

// psSearchURL is a var so tests can exercise URL building.
var psSearchURL = "https://store.playstation.com/tr-tr/search/"

const (
	psTileSelector   = `div[data-qa^="search#productTile"]`
	psTitleSelector  = `span[data-qa$="product-name"]`
	psLinkSelector   = "a.psw-link"
	psCookieSelector = "button#onetrust-accept-btn-handler"
	psStoreBase      = "https://store.playstation.com"

	psTabTimeout  = 90 * time.Second
	psTileTimeout = 30 * time.Second
)

// psPriceRe matches Turkish-formatted prices like "1.399,00 TL" anywhere in
// a tile's text.
var psPriceRe = regexp.MustCompile(`\d{1,3}(?:\.\d{3})*,\d{2}\s*TL`)

// psSubscriptionMarkers maps tile text fragments to the subscription they
// advertise. Tiles without a standalone price often carry only these.
var psSubscriptionMarkers = []struct {
	Marker  string
	Service string
}{
	{"Extra", "PS Plus Extra"},
	{"Premium", "PS Plus Premium"},
	{"GTA+", "GTA+"},
	{"EA Play", "EA Play"},
}

// psTile is one product tile lifted out of the rendered search results.
type psTile struct {
	Title string
	Href  string
	Text  string
}

// parsePSTiles extracts product tiles from the rendered search page HTML.
// Tiles without a readable title are skipped.
func parsePSTiles(html string) ([]psTile, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var tiles []psTile
	doc.Find(psTileSelector).Each(func(_ int, sel *goquery.Selection) {
		title := strings.TrimSpace(sel.Find(psTitleSelector).First().Text())
		if title == "" {
			return
		}
		href, _ := sel.Find(psLinkSelector).First().Attr("href")
		tiles = append(tiles, psTile{
			Title: title,
			Href:  href,
			Text:  sel.Text(),
		})
	})
	return tiles, nil
}

// pickPSResult scores the tiles against the query and maps the winning tile
// to a result. Tiles with no price text are checked for subscription
// markers before being declared unavailable.
func pickPSResult(query string, tiles []psTile) SourceResult {
	if len(tiles) == 0 {
		return NotFoundResult()
	}

	titles := make([]string, len(tiles))
	for i, tile := range tiles {
		titles[i] = tile.Title
	}

	idx, score, ok := PickBest(query, titles, browserScoreOptions)
	if !ok {
		GetLogger().Info().Str("query", query).Int("best_score", score).Msg("no playstation tile cleared the match threshold")
		return NotFoundResult()
	}
	tile := tiles[idx]

	res := SourceResult{Status: StatusOK, Name: tile.Title}
	if tile.Href != "" {
		if strings.HasPrefix(tile.Href, "/") {
			res.Link = psStoreBase + tile.Href
		} else {
			res.Link = tile.Href
		}
	}

	if m := psPriceRe.FindString(tile.Text); m != "" {
		if price, ok := ParseTurkishPrice(m); ok {
			res.Price = price
		}
	}
	if res.Price.Kind == PriceUnknown {
		if strings.Contains(tile.Text, "Ücretsiz") || strings.Contains(tile.Text, "Free") {
			res.Price = Price{Kind: PriceFree}
		} else {
			res.Price = Price{Kind: PriceUnavailable}
		}
	}

	seen := map[string]bool{}
	for _, marker := range psSubscriptionMarkers {
		if strings.Contains(tile.Text, marker.Marker) && !seen[marker.Service] {
			seen[marker.Service] = true
			res.Included = append(res.Included, marker.Service)
		}
	}
	sort.Strings(res.Included)
	if len(res.Included) > 0 && res.Price.Kind == PriceUnavailable {
		res.Price = Price{Kind: PriceIncluded}
	}

	GetLogger().Debug().Str("query", query).Str("match", tile.Title).Int("score", score).Msg("playstation match selected")
	return res
}

// FetchPlayStation renders the console store's search page in a fresh tab
// and scrapes the product tiles. Scrape failures save debug artifacts for
// later selector triage.
func FetchPlayStation(b *Browser, query string) SourceResult {
	if !b.Connected() {
		return ErrorResult(transientErr("playstation scrape", errors.New("browser not available")))
	}

	tabCtx, cancel := b.NewTab(psTabTimeout)
	defer cancel()

	searchURL := psSearchURL + url.PathEscape(query)

	var html string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(searchURL),
		acceptCookies(psCookieSelector),
		waitVisible(psTileSelector, psTileTimeout),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		dumpFailureArtifacts(tabCtx, "playstation", query)
		return ErrorResult(transientErr("playstation scrape", err))
	}

	tiles, err := parsePSTiles(html)
	if err != nil {
		return ErrorResult(dataShapeErr("playstation scrape", err))
	}
	if len(tiles) == 0 {
		dumpFailureArtifacts(tabCtx, "playstation", query)
		return NotFoundResult()
	}

	return pickPSResult(query, tiles)
}
