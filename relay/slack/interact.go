package slack

import (
	"context"
	"fmt"
	"strconv"

	"github.com/slack-go/slack"

	"github.com/zephyrtronium/bourse/pager"
	"github.com/zephyrtronium/bourse/payload"
)

// Interact answers a pagination control by moving the view and updating the
// message in place. It reports false if the callback isn't for pagination
// controls.
func Interact(ctx context.Context, c Client, views *pager.Store, cb *slack.InteractionCallback) (bool, error) {
	if cb.Type != slack.InteractionTypeBlockActions {
		return false, nil
	}
	var act *slack.BlockAction
	for _, a := range cb.ActionCallback.BlockActions {
		switch a.ActionID {
		case prevID, nextID, selectID:
			act = a
		}
	}
	if act == nil {
		return false, nil
	}
	channel := cb.Container.ChannelID
	if channel == "" {
		channel = cb.Channel.ID
	}
	ts := cb.Container.MessageTs
	v, ok := views.Get(Key(channel, ts))
	if !ok {
		// Expired. Drop the controls so nobody else tries them.
		_, _, _, err := c.UpdateMessageContext(ctx, channel, ts,
			slack.MsgOptionText("These pages have expired. Run the command again.", false),
			slack.MsgOptionBlocks(),
		)
		return true, err
	}
	switch act.ActionID {
	case prevID:
		v.Prev()
	case nextID:
		v.Next()
	case selectID:
		if k, err := strconv.Atoi(act.SelectedOption.Value); err == nil {
			v.Select(k)
		}
	}
	s := v.State()
	_, _, _, err := c.UpdateMessageContext(ctx, channel, ts,
		slack.MsgOptionText(fallback(s.Page.Title, s.Page.Description), false),
		slack.MsgOptionBlocks(blocks(v, s)...),
	)
	if err != nil {
		return true, fmt.Errorf("couldn't update page: %w", err)
	}
	if s.Page.Image != nil {
		ch := Channel{Client: c, ID: channel}
		return true, ch.upload(ctx, ts, payload.Message{Title: s.Page.Title}, s.Page.Image)
	}
	return true, nil
}
