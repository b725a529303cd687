package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/zephyrtronium/bourse/pager"
	"github.com/zephyrtronium/bourse/payload"
)

// Interact answers a callback query from pagination controls by moving the
// view to the requested page and editing the message in place. It reports
// false if the query isn't for pagination controls.
func Interact(ctx context.Context, bot Bot, views *pager.Store, q *tgbotapi.CallbackQuery) (bool, error) {
	data, ok := strings.CutPrefix(q.Data, callbackPrefix)
	if !ok || q.Message == nil || q.Message.Chat == nil {
		return false, nil
	}
	chat, id := q.Message.Chat.ID, q.Message.MessageID
	v, ok := views.Get(Key(chat, id))
	if !ok {
		_, err := bot.Request(tgbotapi.NewCallback(q.ID, "These pages have expired. Run the command again."))
		return true, err
	}
	// Stop the client's loading indicator.
	if _, err := bot.Request(tgbotapi.NewCallback(q.ID, "")); err != nil {
		return true, fmt.Errorf("couldn't answer callback: %w", err)
	}
	k, err := strconv.Atoi(data)
	if err != nil || !v.Select(k) {
		return true, nil
	}
	s := v.State()
	edit := tgbotapi.NewEditMessageTextAndMarkup(chat, id, pageText(s), keyboard(s))
	edit.ParseMode = tgbotapi.ModeHTML
	if _, err := bot.Send(edit); err != nil {
		return true, fmt.Errorf("couldn't edit page: %w", err)
	}
	if s.Page.Image != nil {
		c := Chat{Bot: bot, ID: chat}
		return true, c.photo(payload.Message{Title: s.Page.Title}, s.Page.Image, id)
	}
	return true, nil
}
