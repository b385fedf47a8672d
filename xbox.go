package main

import (
	"errors"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
)

// xboxSearchURL is a var so tests can exercise URL building.
var xboxSearchURL = "https://www.xbox.com/tr-TR/search/results/games?q="

const (
	xboxCardSelector   = `a[aria-label][href*="/games/store/"]`
	xboxPriceSelector  = `span[class*="Price-module"]`
	xboxCookieSelector = "button#onetrust-accept-btn-handler"
	xboxStoreBase      = "https://www.xbox.com"

	xboxTabTimeout  = 90 * time.Second
	xboxCardTimeout = 30 * time.Second
)

// xboxGamePassMarker flags titles covered by the subscription on the
// product page.
const xboxGamePassMarker = "Game Pass"

// xboxCard is one search result card. This store puts the title inside the
// link's aria-label, alongside rating and price noise.
type xboxCard struct {
	Label string
	Href  string
}

// Title is the first comma-separated segment of the aria-label.
func (c xboxCard) Title() string {
	title, _, _ := strings.Cut(c.Label, ",")
	return strings.TrimSpace(title)
}

// parseXboxCards extracts the result cards from the rendered search page.
func parseXboxCards(html string) ([]xboxCard, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var cards []xboxCard
	seen := map[string]bool{}
	doc.Find(xboxCardSelector).Each(func(_ int, sel *goquery.Selection) {
		label, _ := sel.Attr("aria-label")
		href, _ := sel.Attr("href")
		if label == "" || href == "" || seen[href] {
			return
		}
		seen[href] = true
		cards = append(cards, xboxCard{Label: label, Href: href})
	})
	return cards, nil
}

// parseXboxDetail reads the price and subscription coverage off the rendered
// product page.
func parseXboxDetail(html string) (Price, []string) {
	price := Price{Kind: PriceUnavailable}
	var included []string

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return price, nil
	}

	doc.Find(xboxPriceSelector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.TrimSpace(sel.Text())
		if m := psPriceRe.FindString(text); m != "" {
			if p, ok := ParseTurkishPrice(m); ok {
				price = p
				return false
			}
		}
		if strings.Contains(text, "Ücretsiz") || strings.EqualFold(text, "Free") {
			price = Price{Kind: PriceFree}
			return false
		}
		return true
	})

	if strings.Contains(doc.Text(), xboxGamePassMarker) {
		included = append(included, xboxGamePassMarker)
	}
	sort.Strings(included)

	if price.Kind == PriceUnavailable && len(included) > 0 {
		price = Price{Kind: PriceIncluded}
	}
	return price, included
}

// FetchXbox renders the console store's search results, scores the cards,
// then clicks through to the winner's product page for the price. The
// search cards themselves only carry the title reliably.
func FetchXbox(b *Browser, query string) SourceResult {
	if !b.Connected() {
		return ErrorResult(transientErr("xbox scrape", errors.New("browser not available")))
	}

	tabCtx, cancel := b.NewTab(xboxTabTimeout)
	defer cancel()

	searchURL := xboxSearchURL + url.QueryEscape(query)

	var html string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(searchURL),
		acceptCookies(xboxCookieSelector),
		waitVisible(xboxCardSelector, xboxCardTimeout),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		dumpFailureArtifacts(tabCtx, "xbox", query)
		return ErrorResult(transientErr("xbox scrape", err))
	}

	cards, err := parseXboxCards(html)
	if err != nil {
		return ErrorResult(dataShapeErr("xbox scrape", err))
	}
	if len(cards) == 0 {
		dumpFailureArtifacts(tabCtx, "xbox", query)
		return NotFoundResult()
	}

	titles := make([]string, len(cards))
	for i, card := range cards {
		titles[i] = card.Title()
	}
	idx, score, ok := PickBest(query, titles, browserScoreOptions)
	if !ok {
		GetLogger().Info().Str("query", query).Int("best_score", score).Msg("no xbox card cleared the match threshold")
		return NotFoundResult()
	}
	card := cards[idx]

	link := card.Href
	if strings.HasPrefix(link, "/") {
		link = xboxStoreBase + link
	}

	// The price span renders client-side well after the load event.
	var detailHTML string
	err = chromedp.Run(tabCtx,
		chromedp.Navigate(link),
		waitVisibleQuiet(xboxPriceSelector, 15*time.Second),
		chromedp.OuterHTML("html", &detailHTML, chromedp.ByQuery),
	)
	if err != nil {
		dumpFailureArtifacts(tabCtx, "xbox", query)
		return ErrorResult(transientErr("xbox scrape", err))
	}

	price, included := parseXboxDetail(detailHTML)

	GetLogger().Debug().Str("query", query).Str("match", card.Title()).Int("score", score).Msg("xbox match selected")
	return SourceResult{
		Status:   StatusOK,
		Price:    price,
		Link:     link,
		Name:     card.Title(),
		Included: included,
	}
}
