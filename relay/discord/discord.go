// Package discord relays command responses to Discord channels as embeds.
package discord

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/bwmarrin/discordgo"

	"github.com/zephyrtronium/bourse/pager"
	"github.com/zephyrtronium/bourse/payload"
	"github.com/zephyrtronium/bourse/relay"
)

// Limit is the maximum length of an embed description.
const Limit = 4000

// Custom IDs of pagination components.
const (
	prevID   = "bourse:prev"
	nextID   = "bourse:next"
	selectID = "bourse:select"
)

// maxOptions is the most options Discord allows in a select menu.
const maxOptions = 25

// Session is the subset of *discordgo.Session used to send responses.
type Session interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
}

var _ Session = (*discordgo.Session)(nil)

// Channel is a relay.Platform that sends to a Discord channel.
type Channel struct {
	// Session is the Discord session.
	Session Session
	// ID is the channel ID.
	ID string
	// Reply is the ID of the message to reply to, if any.
	Reply string
	// Views holds paginated responses for interactions.
	Views *pager.Store
}

var _ relay.Platform = (*Channel)(nil)

func (c *Channel) send(ctx context.Context, m *discordgo.MessageSend) (*discordgo.Message, error) {
	if c.Reply != "" {
		m.Reference = &discordgo.MessageReference{MessageID: c.Reply, ChannelID: c.ID}
	}
	msg, err := c.Session.ChannelMessageSendComplex(c.ID, m, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("couldn't send to discord channel %s: %w", c.ID, err)
	}
	return msg, nil
}

// Text sends an embed with the message's title and description.
func (c *Channel) Text(ctx context.Context, msg payload.Message) error {
	_, err := c.send(ctx, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed(msg.Title, msg.Description)},
	})
	return err
}

// Image sends an embed displaying an uploaded image.
func (c *Channel) Image(ctx context.Context, msg payload.Message, f *payload.File) error {
	r, err := f.Open()
	if err != nil {
		return fmt.Errorf("couldn't open image: %w", err)
	}
	defer r.Close()
	e := embed(msg.Title, msg.Description)
	e.Image = &discordgo.MessageEmbedImage{URL: "attachment://" + f.Name()}
	_, err = c.send(ctx, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{e},
		Files:  []*discordgo.File{attachment(r)},
	})
	return err
}

// Paginate sends the view's first page with its controls and stores the
// view to answer interactions with the controls.
func (c *Channel) Paginate(ctx context.Context, v *pager.View) error {
	s := v.State()
	e, f, err := page(s)
	if err != nil {
		return err
	}
	m := discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{e},
		Components: components(v, s),
	}
	if f != nil {
		defer f.Close()
		m.Files = []*discordgo.File{attachment(f)}
	}
	msg, err := c.send(ctx, &m)
	if err != nil {
		return err
	}
	c.Views.Put(msg.ID, v)
	return nil
}

// Limit returns the maximum embed description length.
func (c *Channel) Limit() int {
	return Limit
}

func embed(title, desc string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       truncate(title, 256),
		Description: truncate(desc, 4096),
		Color:       0x00ff99,
	}
}

// page renders a view state as an embed. If the page has a local image, the
// result includes the open file to upload with it.
func page(s pager.State) (*discordgo.MessageEmbed, *os.File, error) {
	e := embed(s.Page.Title, s.Page.Description)
	e.Footer = &discordgo.MessageEmbedFooter{Text: s.Footer()}
	switch {
	case s.Page.ImageURL != "":
		e.Image = &discordgo.MessageEmbedImage{URL: s.Page.ImageURL}
	case s.Page.Image != nil:
		f, err := s.Page.Image.Open()
		if err != nil {
			return nil, nil, fmt.Errorf("couldn't open page image: %w", err)
		}
		e.Image = &discordgo.MessageEmbedImage{URL: "attachment://" + s.Page.Image.Name()}
		return e, f, nil
	}
	return e, nil, nil
}

func attachment(f *os.File) *discordgo.File {
	return &discordgo.File{Name: filepath.Base(f.Name()), ContentType: "image/png", Reader: f}
}

// components renders the pagination controls for a view state.
func components(v *pager.View, s pager.State) []discordgo.MessageComponent {
	buttons := discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.Button{Label: "Previous", Style: discordgo.SecondaryButton, CustomID: prevID, Disabled: s.PrevDisabled},
			discordgo.Button{Label: "Next", Style: discordgo.SecondaryButton, CustomID: nextID, Disabled: s.NextDisabled},
		},
	}
	choices := v.Choices()
	lo, hi := window(s.Cursor, len(choices), maxOptions)
	opts := make([]discordgo.SelectMenuOption, 0, hi-lo)
	for i := lo; i < hi; i++ {
		opts = append(opts, discordgo.SelectMenuOption{
			Label:       truncate(choices[i].Label, 100),
			Description: truncate(choices[i].Description, 100),
			Value:       strconv.Itoa(i),
			Default:     i == s.Cursor,
		})
	}
	sel := discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{
				MenuType:    discordgo.StringSelectMenu,
				CustomID:    selectID,
				Placeholder: "Jump to page",
				Options:     opts,
			},
		},
	}
	return []discordgo.MessageComponent{buttons, sel}
}

// window returns the bounds of a range of at most size indices out of n that
// includes cursor, centered on it where possible.
func window(cursor, n, size int) (lo, hi int) {
	if n <= size {
		return 0, n
	}
	lo = max(0, min(cursor-size/2, n-size))
	return lo, lo + size
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
