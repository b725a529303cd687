package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/zephyrtronium/bourse/message"
	"github.com/zephyrtronium/bourse/relay/discord"
)

// discord connects to the Discord gateway and handles messages until the
// context is canceled.
func (robo *Robot) discord(ctx context.Context, token string) error {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return fmt.Errorf("couldn't create Discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages | discordgo.IntentMessageContent

	session.AddHandler(func(s *discordgo.Session, ev *discordgo.Ready) {
		slog.InfoContext(ctx, "Discord ready", slog.String("user", ev.User.Username), slog.Int("guilds", len(ev.Guilds)))
	})
	session.AddHandler(func(s *discordgo.Session, ev *discordgo.MessageCreate) {
		robo.discordMessage(ctx, s, ev)
	})
	session.AddHandler(func(s *discordgo.Session, ev *discordgo.InteractionCreate) {
		robo.discordInteraction(ctx, s, ev)
	})

	if err := session.Open(); err != nil {
		return fmt.Errorf("couldn't connect to Discord: %w", err)
	}
	<-ctx.Done()
	if err := session.Close(); err != nil {
		slog.ErrorContext(ctx, "couldn't close Discord session", slog.Any("err", err))
	}
	return ctx.Err()
}

// discordMessage handles a message created in any channel the bot can see.
func (robo *Robot) discordMessage(ctx context.Context, s *discordgo.Session, ev *discordgo.MessageCreate) {
	// Ignore messages sent by bots, including ourselves.
	if ev.Author == nil || ev.Author.Bot {
		return
	}
	msg := message.Received{
		ID:        ev.ID,
		Platform:  message.Discord,
		To:        ev.ChannelID,
		Sender:    ev.Author.ID,
		Name:      ev.Author.Username,
		Text:      ev.Content,
		Timestamp: ev.Timestamp.UnixMilli(),
	}
	p := discord.Channel{
		Session: s,
		ID:      ev.ChannelID,
		Reply:   ev.ID,
		Views:   robo.views,
	}
	robo.receive(ctx, &msg, &p)
}

// discordInteraction handles presses of pagination controls.
func (robo *Robot) discordInteraction(ctx context.Context, s *discordgo.Session, ev *discordgo.InteractionCreate) {
	ok, err := discord.Interact(ctx, s, robo.views, ev.Interaction)
	if !ok {
		return
	}
	if err != nil {
		slog.ErrorContext(ctx, "couldn't handle Discord interaction", slog.String("id", ev.ID), slog.Any("err", err))
	}
}
