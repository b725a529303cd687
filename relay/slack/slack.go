// Package slack relays command responses to Slack channels with Block Kit.
package slack

import (
	"context"
	"fmt"
	"strconv"

	"github.com/slack-go/slack"

	"github.com/zephyrtronium/bourse/pager"
	"github.com/zephyrtronium/bourse/payload"
	"github.com/zephyrtronium/bourse/relay"
)

// Limit is the maximum length of the text in a section block.
const Limit = 3000

// Action IDs of pagination controls.
const (
	prevID   = "bourse_prev"
	nextID   = "bourse_next"
	selectID = "bourse_select"
)

// maxOptions is the most options Slack allows in a static select.
const maxOptions = 100

// Client is the subset of *slack.Client used to send responses.
type Client interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
	UpdateMessageContext(ctx context.Context, channelID, timestamp string, options ...slack.MsgOption) (string, string, string, error)
	UploadFileV2Context(ctx context.Context, params slack.UploadFileV2Parameters) (*slack.FileSummary, error)
}

var _ Client = (*slack.Client)(nil)

// Channel is a relay.Platform that sends to a Slack channel.
type Channel struct {
	// Client is the Slack web API client.
	Client Client
	// ID is the channel ID.
	ID string
	// Thread is the timestamp of the thread to reply in, if any.
	Thread string
	// Views holds paginated responses for interactions.
	Views *pager.Store
}

var _ relay.Platform = (*Channel)(nil)

func (c *Channel) post(ctx context.Context, fallback string, blocks []slack.Block) (string, error) {
	opts := []slack.MsgOption{
		slack.MsgOptionText(fallback, false),
		slack.MsgOptionBlocks(blocks...),
	}
	if c.Thread != "" {
		opts = append(opts, slack.MsgOptionTS(c.Thread))
	}
	_, ts, err := c.Client.PostMessageContext(ctx, c.ID, opts...)
	if err != nil {
		return "", fmt.Errorf("couldn't post to slack channel %s: %w", c.ID, err)
	}
	return ts, nil
}

// Text posts a header and a section with the message's text.
func (c *Channel) Text(ctx context.Context, msg payload.Message) error {
	_, err := c.post(ctx, fallback(msg.Title, msg.Description), textBlocks(msg.Title, msg.Description))
	return err
}

// Image uploads an image with the message as its comment.
func (c *Channel) Image(ctx context.Context, msg payload.Message, f *payload.File) error {
	return c.upload(ctx, c.Thread, msg, f)
}

func (c *Channel) upload(ctx context.Context, thread string, msg payload.Message, f *payload.File) error {
	r, err := f.Open()
	if err != nil {
		return fmt.Errorf("couldn't open image: %w", err)
	}
	defer r.Close()
	info, err := r.Stat()
	if err != nil {
		return fmt.Errorf("couldn't stat image: %w", err)
	}
	params := slack.UploadFileV2Parameters{
		Reader:          r,
		FileSize:        int(info.Size()),
		Filename:        f.Name(),
		Title:           msg.Title,
		InitialComment:  fallback(msg.Title, msg.Description),
		Channel:         c.ID,
		ThreadTimestamp: thread,
	}
	if _, err := c.Client.UploadFileV2Context(ctx, params); err != nil {
		return fmt.Errorf("couldn't upload image to slack channel %s: %w", c.ID, err)
	}
	return nil
}

// Paginate posts the view's first page with its controls and stores the view
// to answer interactions with the controls.
func (c *Channel) Paginate(ctx context.Context, v *pager.View) error {
	s := v.State()
	ts, err := c.post(ctx, fallback(s.Page.Title, s.Page.Description), blocks(v, s))
	if err != nil {
		return err
	}
	c.Views.Put(Key(c.ID, ts), v)
	if s.Page.Image != nil {
		return c.upload(ctx, ts, payload.Message{Title: s.Page.Title}, s.Page.Image)
	}
	return nil
}

// Limit returns the maximum section text length.
func (c *Channel) Limit() int {
	return Limit
}

// Key returns the view key for a message.
func Key(channel, ts string) string {
	return channel + ":" + ts
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

func textBlocks(title, desc string) []slack.Block {
	var r []slack.Block
	if title != "" {
		r = append(r, slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, truncate(title, 150), false, false)))
	}
	if desc != "" {
		r = append(r, slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, "```"+truncate(desc, Limit-6)+"```", false, false), nil, nil))
	}
	return r
}

// blocks renders a view state with its controls.
func blocks(v *pager.View, s pager.State) []slack.Block {
	r := textBlocks(s.Page.Title, s.Page.Description)
	if s.Page.ImageURL != "" {
		r = append(r, slack.NewImageBlock(s.Page.ImageURL, s.Page.Title, "", nil))
	}
	r = append(r, slack.NewContextBlock("", slack.NewTextBlockObject(slack.PlainTextType, s.Footer(), false, false)))
	// Slack buttons can't be disabled, so disabled controls are left out.
	var elems []slack.BlockElement
	if !s.PrevDisabled {
		elems = append(elems, slack.NewButtonBlockElement(prevID, strconv.Itoa(s.Cursor-1), slack.NewTextBlockObject(slack.PlainTextType, "Previous", false, false)))
	}
	if !s.NextDisabled {
		elems = append(elems, slack.NewButtonBlockElement(nextID, strconv.Itoa(s.Cursor+1), slack.NewTextBlockObject(slack.PlainTextType, "Next", false, false)))
	}
	choices := v.Choices()
	lo, hi := window(s.Cursor, len(choices), maxOptions)
	opts := make([]*slack.OptionBlockObject, 0, hi-lo)
	for i := lo; i < hi; i++ {
		var desc *slack.TextBlockObject
		if choices[i].Description != "" {
			desc = slack.NewTextBlockObject(slack.PlainTextType, truncate(choices[i].Description, 75), false, false)
		}
		label := slack.NewTextBlockObject(slack.PlainTextType, truncate(choices[i].Label, 75), false, false)
		opts = append(opts, slack.NewOptionBlockObject(strconv.Itoa(i), label, desc))
	}
	sel := slack.NewOptionsSelectBlockElement(slack.OptTypeStatic, slack.NewTextBlockObject(slack.PlainTextType, "Jump to page", false, false), selectID, opts...)
	sel.InitialOption = opts[s.Cursor-lo]
	elems = append(elems, sel)
	r = append(r, slack.NewActionBlock("bourse_pager", elems...))
	return r
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
