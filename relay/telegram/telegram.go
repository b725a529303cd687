// Package telegram relays command responses to Telegram chats.
package telegram

import (
	"context"
	"fmt"
	"html"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/zephyrtronium/bourse/pager"
	"github.com/zephyrtronium/bourse/payload"
	"github.com/zephyrtronium/bourse/relay"
)

const (
	// Limit is the longest description sent in one message. Telegram allows
	// 4096 characters of message text, which must also fit the title.
	Limit = 4000
	// captionLimit is the longest photo caption.
	captionLimit = 1024
)

// callbackPrefix marks callback data for pagination controls.
const callbackPrefix = "bourse:"

// jumps is the number of page buttons shown around the current page.
const jumps = 5

// Bot is the subset of *tgbotapi.BotAPI used to send responses.
type Bot interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

var _ Bot = (*tgbotapi.BotAPI)(nil)

// Chat is a relay.Platform that sends to a Telegram chat.
type Chat struct {
	// Bot is the Telegram bot API client.
	Bot Bot
	// ID is the chat ID.
	ID int64
	// Reply is the ID of the message to reply to, if any.
	Reply int
	// Views holds paginated responses for callback queries.
	Views *pager.Store
}

var _ relay.Platform = (*Chat)(nil)

// Text sends the message as HTML with the title in bold and the description
// preformatted.
func (c *Chat) Text(ctx context.Context, msg payload.Message) error {
	m := tgbotapi.NewMessage(c.ID, render(msg.Title, msg.Description, ""))
	m.ParseMode = tgbotapi.ModeHTML
	m.ReplyToMessageID = c.Reply
	if _, err := c.Bot.Send(m); err != nil {
		return fmt.Errorf("couldn't send to telegram chat %d: %w", c.ID, err)
	}
	return nil
}

// Image sends a photo with the message as its caption.
func (c *Chat) Image(ctx context.Context, msg payload.Message, f *payload.File) error {
	return c.photo(msg, f, c.Reply)
}

func (c *Chat) photo(msg payload.Message, f *payload.File, reply int) error {
	p := tgbotapi.NewPhoto(c.ID, tgbotapi.FilePath(f.Path()))
	p.Caption = truncate(fallback(msg.Title, msg.Description), captionLimit)
	p.ReplyToMessageID = reply
	if _, err := c.Bot.Send(p); err != nil {
		return fmt.Errorf("couldn't send photo to telegram chat %d: %w", c.ID, err)
	}
	return nil
}

// Paginate sends the view's first page with an inline keyboard and stores the
// view to answer callback queries from the keyboard.
func (c *Chat) Paginate(ctx context.Context, v *pager.View) error {
	s := v.State()
	m := tgbotapi.NewMessage(c.ID, pageText(s))
	m.ParseMode = tgbotapi.ModeHTML
	m.ReplyToMessageID = c.Reply
	if kb := keyboard(s); len(kb.InlineKeyboard) > 0 {
		m.ReplyMarkup = kb
	}
	sent, err := c.Bot.Send(m)
	if err != nil {
		return fmt.Errorf("couldn't send to telegram chat %d: %w", c.ID, err)
	}
	c.Views.Put(Key(c.ID, sent.MessageID), v)
	if s.Page.Image != nil {
		return c.photo(payload.Message{Title: s.Page.Title}, s.Page.Image, sent.MessageID)
	}
	return nil
}

// Limit returns the longest description that fits in one message.
func (c *Chat) Limit() int {
	return Limit
}

// Key returns the view key for a message.
func Key(chat int64, msg int) string {
	return strconv.FormatInt(chat, 10) + ":" + strconv.Itoa(msg)
}

func fallback(title, desc string) string {
	switch {
	case title == "":
		return desc
	case desc == "":
		return title
	default:
		return title + "\n" + desc
	}
}

// render formats a message as Telegram HTML.
func render(title, desc, footer string) string {
	var b strings.Builder
	if title != "" {
		b.WriteString("<b>")
		b.WriteString(html.EscapeString(title))
		b.WriteString("</b>\n")
	}
	if desc != "" {
		b.WriteString("<pre>")
		b.WriteString(html.EscapeString(desc))
		b.WriteString("</pre>\n")
	}
	if footer != "" {
		b.WriteString("<i>")
		b.WriteString(html.EscapeString(footer))
		b.WriteString("</i>")
	}
	return strings.TrimSpace(b.String())
}

func pageText(s pager.State) string {
	t := render(s.Page.Title, s.Page.Description, s.Footer())
	if s.Page.ImageURL != "" {
		// Telegram previews the link.
		t = `<a href="` + html.EscapeString(s.Page.ImageURL) + `">&#8205;</a>` + t
	}
	return t
}

// keyboard renders pagination controls. Telegram buttons can't be disabled,
// so disabled controls are left out.
func keyboard(s pager.State) tgbotapi.InlineKeyboardMarkup {
	var nav []tgbotapi.InlineKeyboardButton
	if !s.PrevDisabled {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("◀ Previous", callbackPrefix+strconv.Itoa(s.Cursor-1)))
	}
	if !s.NextDisabled {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("Next ▶", callbackPrefix+strconv.Itoa(s.Cursor+1)))
	}
	var pages []tgbotapi.InlineKeyboardButton
	lo := max(0, min(s.Cursor-jumps/2, s.Len-jumps))
	for i := lo; i < min(lo+jumps, s.Len); i++ {
		label := strconv.Itoa(i + 1)
		if i == s.Cursor {
			label = "· " + label + " ·"
		}
		pages = append(pages, tgbotapi.NewInlineKeyboardButtonData(label, callbackPrefix+strconv.Itoa(i)))
	}
	var rows [][]tgbotapi.InlineKeyboardButton
	if len(nav) > 0 {
		rows = append(rows, nav)
	}
	if len(pages) > 1 {
		rows = append(rows, pages)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	for i := range s {
		if n == 0 {
			return s[:i]
		}
		n--
	}
	return s
}
