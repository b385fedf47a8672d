package main

import (
	"fmt"
	"strconv"
	"strings"
)

// SourceKey identifies one logical store in the aggregate result map. The
// aggregator API's composite response is unbundled into three of these
// (msstore, epic, cdkey).
type SourceKey string

const (
	SourceSteam       SourceKey = "steam"
	SourcePlayStation SourceKey = "playstation"
	SourceXbox        SourceKey = "xbox"
	SourceMicrosoft   SourceKey = "msstore"
	SourceEpic        SourceKey = "epic"
	SourceKeyshop     SourceKey = "cdkey"
)

// Status is the terminal outcome of one source fetch. The zero value is
// StatusNotFound so a missing map entry renders as unavailable.
type Status int

const (
	StatusNotFound Status = iota
	StatusOK
	StatusError
)

// PriceKind discriminates the price payload shapes the stores hand back.
type PriceKind int

const (
	PriceUnknown PriceKind = iota
	PriceAmount
	PriceFree
	PriceUnavailable
	// PriceIncluded means the title has no standalone price but is covered
	// by one of the subscriptions listed on the SourceResult.
	PriceIncluded
)

// Price is a tagged union over the payload shapes so consumers switch on
// Kind instead of sniffing types.
type Price struct {
	Kind     PriceKind
	Amount   float64
	Currency string
}

// ErrorKind separates "the network/browser failed" from "the response came
// back but was missing an expected field".
type ErrorKind int

const (
	ErrTransient ErrorKind = iota
	ErrDataShape
)

// FetchError is the error shape all per-source failures are wrapped in. It
// never propagates past the fetcher boundary; the aggregator records it on
// the SourceResult.
type FetchError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func transientErr(op string, err error) *FetchError {
	return &FetchError{Kind: ErrTransient, Op: op, Err: err}
}

func dataShapeErr(op string, err error) *FetchError {
	return &FetchError{Kind: ErrDataShape, Op: op, Err: err}
}

// SourceResult is the settled outcome of one store lookup.
type SourceResult struct {
	Status Status
	Price  Price
	Link   string

	// Name is the store's authoritative display name for the title. Only
	// the primary storefront sets it; the aggregator reuses it as the
	// refined lookup query and the reply title.
	Name string

	// Shop and DRM describe the winning deal of the keyshop bucket.
	Shop string
	DRM  string

	// Included lists subscription services that cover the title.
	Included []string

	// HistoricalLow is attached by the aggregator from the historical-low
	// enrichment; zero Kind when unknown.
	HistoricalLow Price

	Err error
}

// NotFoundResult is the outcome for a reachable store with no acceptable
// candidate.
func NotFoundResult() SourceResult {
	return SourceResult{Status: StatusNotFound}
}

// ErrorResult records a fetch failure as a value.
func ErrorResult(err error) SourceResult {
	return SourceResult{Status: StatusError, Err: err}
}

// AggregateResult is the merged view of one price-check command. It lives
// only for the duration of the reply; nothing is persisted.
type AggregateResult struct {
	Query       string
	DisplayName string
	Sources     map[SourceKey]SourceResult

	// USDToTRY is the rate snapshot used for the approximate conversion
	// line; 0 means no rate was available this cycle.
	USDToTRY float64
}

// ParseTurkishPrice parses a Turkish-formatted price string like
// "1.399,00 TL" into an Amount price in TRY.
func ParseTurkishPrice(s string) (Price, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "TL")
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ".", "")
	s = strings.Replace(s, ",", ".", 1)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return Price{}, false
	}
	return Price{Kind: PriceAmount, Amount: v, Currency: "TRY"}, true
}

// FormatAmount renders a number with Turkish separators: 1399 -> "1.399,00".
func FormatAmount(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i := 0; i < len(intPart); i++ {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteByte(intPart[i])
	}
	return b.String() + "," + frac
}
