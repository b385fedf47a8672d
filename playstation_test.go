package main

import (
	"fmt"
	"testing"
)

func psTileHTML(title, href, extra string) string {
	return fmt.Sprintf(`
		<div data-qa="search#productTile0">
			<a class="psw-link" href=%q>
				<span data-qa="search#productTile0#product-name">%s</span>
				%s
			</a>
		</div>`, href, title, extra)
}

func TestParsePSTiles(t *testing.T) {
	html := "<html><body>" +
		psTileHTML("God of War Ragnarök", "/tr-tr/product/EP9000-PPSA08330", `<span>1.399,00 TL</span>`) +
		psTileHTML("God of War Ragnarök: Valhalla", "/tr-tr/product/EP9000-PPSA08331", `<span>Ücretsiz</span>`) +
		`<div data-qa="search#productTile2"><a class="psw-link" href="/x"></a></div>` +
		"</body></html>"

	tiles, err := parsePSTiles(html)
	if err != nil {
		t.Fatalf("parsePSTiles() error = %v", err)
	}
	if len(tiles) != 2 {
		t.Fatalf("parsePSTiles() returned %d tiles, want 2 (untitled tile skipped)", len(tiles))
	}
	if tiles[0].Title != "God of War Ragnarök" {
		t.Errorf("first tile title = %q", tiles[0].Title)
	}
	if tiles[0].Href != "/tr-tr/product/EP9000-PPSA08330" {
		t.Errorf("first tile href = %q", tiles[0].Href)
	}
}

func TestPickPSResult(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		tiles      []psTile
		wantStatus Status
		wantKind   PriceKind
		wantAmount float64
		wantLink   string
	}{
		{
			name:  "priced tile",
			query: "god of war ragnarok",
			tiles: []psTile{
				{Title: "God of War Ragnarok", Href: "/tr-tr/product/EP9000", Text: "God of War Ragnarok 1.399,00 TL"},
			},
			wantStatus: StatusOK,
			wantKind:   PriceAmount,
			wantAmount: 1399,
			wantLink:   psStoreBase + "/tr-tr/product/EP9000",
		},
		{
			name:  "edition loses to base title",
			query: "god of war ragnarok",
			tiles: []psTile{
				{Title: "God of War Ragnarok Deluxe Edition", Href: "/deluxe", Text: "1.899,00 TL"},
				{Title: "God of War Ragnarok", Href: "/base", Text: "1.399,00 TL"},
			},
			wantStatus: StatusOK,
			wantKind:   PriceAmount,
			wantAmount: 1399,
			wantLink:   psStoreBase + "/base",
		},
		{
			name:  "free tile",
			query: "fortnite",
			tiles: []psTile{
				{Title: "Fortnite", Href: "/fortnite", Text: "Fortnite Ücretsiz"},
			},
			wantStatus: StatusOK,
			wantKind:   PriceFree,
			wantLink:   psStoreBase + "/fortnite",
		},
		{
			name:  "no price and no markers",
			query: "some game",
			tiles: []psTile{
				{Title: "Some Game", Href: "/game", Text: "Some Game"},
			},
			wantStatus: StatusOK,
			wantKind:   PriceUnavailable,
			wantLink:   psStoreBase + "/game",
		},
		{
			name:  "subscription only tile",
			query: "grand theft auto 5",
			tiles: []psTile{
				{Title: "Grand Theft Auto V", Href: "/gta", Text: "Grand Theft Auto V GTA+ ile dahil"},
			},
			wantStatus: StatusOK,
			wantKind:   PriceIncluded,
			wantLink:   psStoreBase + "/gta",
		},
		{
			name:       "nothing matches",
			query:      "hades",
			tiles:      []psTile{{Title: "Stardew Valley", Href: "/sv", Text: "249,00 TL"}},
			wantStatus: StatusNotFound,
		},
		{
			name:       "no tiles",
			query:      "hades",
			wantStatus: StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pickPSResult(tt.query, tt.tiles)
			if got.Status != tt.wantStatus {
				t.Fatalf("pickPSResult() status = %v, want %v", got.Status, tt.wantStatus)
			}
			if tt.wantStatus != StatusOK {
				return
			}
			if got.Price.Kind != tt.wantKind {
				t.Errorf("pickPSResult() price kind = %v, want %v", got.Price.Kind, tt.wantKind)
			}
			if tt.wantKind == PriceAmount && got.Price.Amount != tt.wantAmount {
				t.Errorf("pickPSResult() amount = %v, want %v", got.Price.Amount, tt.wantAmount)
			}
			if got.Link != tt.wantLink {
				t.Errorf("pickPSResult() link = %q, want %q", got.Link, tt.wantLink)
			}
		})
	}
}

func TestPickPSResultSubscriptionMarkers(t *testing.T) {
	tiles := []psTile{
		{
			Title: "EA SPORTS FC 25",
			Href:  "/fc25",
			Text:  "EA SPORTS FC 25 699,00 TL EA Play üyelerine dahil Extra",
		},
	}

	got := pickPSResult("ea sports fc 25", tiles)
	if got.Status != StatusOK {
		t.Fatalf("pickPSResult() status = %v, want StatusOK", got.Status)
	}
	if got.Price.Kind != PriceAmount {
		t.Errorf("pickPSResult() price kind = %v, a priced tile keeps its price", got.Price.Kind)
	}
	if len(got.Included) != 2 {
		t.Fatalf("pickPSResult() included = %v, want both detected services", got.Included)
	}
	// Sorted for deterministic rendering.
	if got.Included[0] != "EA Play" || got.Included[1] != "PS Plus Extra" {
		t.Errorf("pickPSResult() included = %v, want [EA Play PS Plus Extra]", got.Included)
	}
}
