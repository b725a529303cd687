package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/zephyrtronium/bourse/message"
	"github.com/zephyrtronium/bourse/relay/telegram"
)

// telegram long-polls Telegram for updates and handles them until the context
// is canceled.
func (robo *Robot) telegram(ctx context.Context, token string, timeout int) error {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return fmt.Errorf("couldn't connect to Telegram: %w", err)
	}
	slog.InfoContext(ctx, "Telegram connected", slog.String("user", bot.Self.UserName))
	u := tgbotapi.NewUpdate(0)
	u.Timeout = timeout
	if u.Timeout <= 0 {
		u.Timeout = 60
	}
	updates := bot.GetUpdatesChan(u)
	defer bot.StopReceivingUpdates()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case up, ok := <-updates:
			if !ok {
				return errors.New("telegram updates closed")
			}
			switch {
			case up.Message != nil:
				robo.telegramMessage(ctx, bot, up.Message)
			case up.CallbackQuery != nil:
				ok, err := telegram.Interact(ctx, bot, robo.views, up.CallbackQuery)
				if ok && err != nil {
					slog.ErrorContext(ctx, "couldn't handle Telegram callback", slog.String("id", up.CallbackQuery.ID), slog.Any("err", err))
				}
			}
		}
	}
}

// telegramMessage handles a message sent to the bot or in a chat it is in.
func (robo *Robot) telegramMessage(ctx context.Context, bot *tgbotapi.BotAPI, m *tgbotapi.Message) {
	if m.From == nil || m.From.IsBot || m.Chat == nil {
		return
	}
	msg := message.Received{
		ID:        strconv.Itoa(m.MessageID),
		Platform:  message.Telegram,
		To:        strconv.FormatInt(m.Chat.ID, 10),
		Sender:    strconv.FormatInt(m.From.ID, 10),
		Name:      m.From.UserName,
		Text:      m.Text,
		Timestamp: int64(m.Date) * 1000,
	}
	p := telegram.Chat{
		Bot:   bot,
		ID:    m.Chat.ID,
		Reply: m.MessageID,
		Views: robo.views,
	}
	robo.receive(ctx, &msg, &p)
}
