package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
)

const (
	commandPrefix = "!price"

	// lookupTimeout bounds one full aggregation, browser tabs included.
	lookupTimeout = 2 * time.Minute
)

// Bot ties the chat session to the aggregator.
type Bot struct {
	session    *discordgo.Session
	aggregator *Aggregator
}

func main() {
	if err := os.MkdirAll(debugDir, 0o750); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create debug dir: %v\n", err)
		os.Exit(1)
	}

	if err := InitLogger(filepath.Join(debugDir, "bot.log")); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	cfg, err := LoadConfig()
	if err != nil {
		GetLogger().Fatal().Err(err).Msg("invalid configuration")
	}
	SetLogLevel(cfg.LogLevel)

	GetLogger().Info().Msg("starting price bot")

	if cfg.ITADAPIKey == "" {
		GetLogger().Warn().Msg("ITAD_API_KEY not set, deal-aggregator stores will be reported as unavailable")
	}

	browser, err := StartBrowser(context.Background())
	if err != nil {
		GetLogger().Error().Err(err).Msg("headless browser failed to start, console stores will be reported as errors")
	}
	defer browser.Close()

	aggregator := NewAggregator(
		&ITADClient{APIKey: cfg.ITADAPIKey},
		browser,
		NewRateCache(rateCacheTTL),
	)

	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		GetLogger().Fatal().Err(err).Msg("could not create chat session")
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentMessageContent

	bot := &Bot{session: session, aggregator: aggregator}
	session.AddHandler(bot.handleMessage)

	if err := session.Open(); err != nil {
		GetLogger().Fatal().Err(err).Msg("could not connect to chat gateway")
	}
	defer session.Close()

	StartKeepAlive(cfg.HTTPAddr)

	GetLogger().Info().Msg("price bot is running, press Ctrl+C to exit")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	GetLogger().Info().Msg("shutting down")
}

// parseCommand recognizes the price command: the prefix alone, or the prefix
// followed by whitespace and the query. "!priceless" is not a command.
func parseCommand(content string) (string, bool) {
	content = strings.TrimSpace(content)
	if len(content) < len(commandPrefix) || !strings.EqualFold(content[:len(commandPrefix)], commandPrefix) {
		return "", false
	}
	rest := content[len(commandPrefix):]
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return "", false
	}
	return strings.TrimSpace(rest), true
}

// handleMessage answers the price command. The placeholder reply goes out
// immediately; the slow aggregation runs off the handler goroutine and
// edits the placeholder into the final embed.
func (b *Bot) handleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}

	query, ok := parseCommand(m.Content)
	if !ok {
		return
	}
	if query == "" {
		if _, err := s.ChannelMessageSend(m.ChannelID, "Usage: `"+commandPrefix+" <game title>`"); err != nil {
			GetLogger().Error().Err(err).Msg("could not send usage reply")
		}
		return
	}

	GetLogger().Info().Str("user", m.Author.Username).Str("query", query).Msg("price check requested")

	placeholder, err := s.ChannelMessageSend(m.ChannelID, fmt.Sprintf("Checking the stores for **%s**…", query))
	if err != nil {
		GetLogger().Error().Err(err).Msg("could not send placeholder reply")
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
		defer cancel()

		agg := b.aggregator.Aggregate(ctx, query)
		embed := BuildEmbed(agg)

		edit := discordgo.NewMessageEdit(m.ChannelID, placeholder.ID).
			SetContent("").
			SetEmbed(embed)
		if _, err := s.ChannelMessageEditComplex(edit); err != nil {
			GetLogger().Error().Err(err).Msg("could not edit reply with results")
		}
	}()
}
