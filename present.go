package main

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// Field is one rendered store line, decoupled from the chat library so the
// presenter is testable without it.
type Field struct {
	Label  string
	Value  string
	Inline bool
}

// sourceOrder fixes the reply layout: first-party PC store, the two
// consoles, then the remaining PC stores. Stable ordering regardless of
// which sources settled first.
var sourceOrder = []SourceKey{
	SourceSteam,
	SourcePlayStation,
	SourceXbox,
	SourceMicrosoft,
	SourceEpic,
	SourceKeyshop,
}

var sourceLabels = map[SourceKey]string{
	SourceSteam:       "Steam",
	SourcePlayStation: "PlayStation",
	SourceXbox:        "Xbox",
	SourceMicrosoft:   "Microsoft Store",
	SourceEpic:        "Epic Games",
	SourceKeyshop:     "CD-Key",
}

const (
	unavailableText = "*Not found in this store, or not sold separately.*"
	noKeyOffersText = "*No discounted key offers found.*"
	errorText       = "*Could not check this store right now.*"

	embedColor = 0x107C10
)

// BuildFields renders every source in the fixed order.
func BuildFields(agg *AggregateResult) []Field {
	fields := make([]Field, 0, len(sourceOrder))
	for _, key := range sourceOrder {
		fields = append(fields, Field{
			Label:  sourceLabels[key],
			Value:  renderSource(key, agg.Sources[key], agg.USDToTRY),
			Inline: true,
		})
	}
	return fields
}

// renderSource turns one settled outcome into the field body.
func renderSource(key SourceKey, res SourceResult, rate float64) string {
	switch res.Status {
	case StatusError:
		return errorText
	case StatusNotFound:
		// The keyshop bucket aggregates resellers, so "not found" means no
		// active discount rather than a missing store listing.
		if key == SourceKeyshop {
			return noKeyOffersText
		}
		return unavailableText
	}

	var b strings.Builder

	text := priceText(res.Price, res.Included, rate)
	if res.Link != "" {
		fmt.Fprintf(&b, "[%s](%s)", text, res.Link)
	} else {
		b.WriteString(text)
	}

	if key == SourceKeyshop && res.Shop != "" {
		b.WriteString("\nvia " + res.Shop)
		if res.DRM != "" {
			fmt.Fprintf(&b, " (%s key)", res.DRM)
		}
	}

	if res.Price.Kind == PriceAmount && len(res.Included) > 0 {
		b.WriteString("\n*Also included with " + joinServices(res.Included) + "*")
	}

	if res.HistoricalLow.Kind == PriceAmount {
		b.WriteString("\nLowest ever: " + amountText(res.HistoricalLow, rate))
	}

	return b.String()
}

func priceText(p Price, included []string, rate float64) string {
	switch p.Kind {
	case PriceAmount:
		return amountText(p, rate)
	case PriceFree:
		return "Free"
	case PriceIncluded:
		if len(included) > 0 {
			return "*Included with " + joinServices(included) + "*"
		}
		return "*Included with a subscription*"
	default:
		return unavailableText
	}
}

// amountText renders an amount in its own currency, adding the approximate
// local conversion for USD when a rate is available.
func amountText(p Price, rate float64) string {
	switch p.Currency {
	case "TRY":
		return FormatAmount(p.Amount) + " TL"
	case "USD":
		s := fmt.Sprintf("$%.2f USD", p.Amount)
		if rate > 0 {
			s += fmt.Sprintf(" (≈ %s TL)", FormatAmount(p.Amount*rate))
		}
		return s
	default:
		return fmt.Sprintf("%.2f %s", p.Amount, p.Currency)
	}
}

func joinServices(services []string) string {
	switch len(services) {
	case 0:
		return ""
	case 1:
		return services[0]
	}
	return strings.Join(services[:len(services)-1], ", ") + " & " + services[len(services)-1]
}

// BuildEmbed assembles the chat reply for one aggregate result.
func BuildEmbed(agg *AggregateResult) *discordgo.MessageEmbed {
	fields := BuildFields(agg)

	embedFields := make([]*discordgo.MessageEmbedField, len(fields))
	for i, f := range fields {
		embedFields[i] = &discordgo.MessageEmbedField{
			Name:   f.Label,
			Value:  f.Value,
			Inline: f.Inline,
		}
	}

	embed := &discordgo.MessageEmbed{
		Title:  agg.DisplayName,
		Color:  embedColor,
		Fields: embedFields,
	}
	if agg.USDToTRY > 0 {
		embed.Footer = &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("USD conversions use 1 USD = %s TL", FormatAmount(agg.USDToTRY)),
		}
	}
	return embed
}
