package main

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"

	"github.com/zephyrtronium/bourse/message"
	slackrelay "github.com/zephyrtronium/bourse/relay/slack"
)

// slack connects to Slack in Socket Mode and handles events until the
// context is canceled.
func (robo *Robot) slack(ctx context.Context, token, appToken string) error {
	api := slack.New(token, slack.OptionAppLevelToken(appToken))
	client := socketmode.New(api)
	go robo.slackEvents(ctx, api, client)
	return client.RunContext(ctx)
}

// slackEvents handles events from the Socket Mode connection.
func (robo *Robot) slackEvents(ctx context.Context, api *slack.Client, client *socketmode.Client) {
	for {
		var evt socketmode.Event
		select {
		case <-ctx.Done():
			return
		case evt = <-client.Events:
		}
		switch evt.Type {
		case socketmode.EventTypeConnected:
			slog.InfoContext(ctx, "Slack connected")
		case socketmode.EventTypeEventsAPI:
			client.Ack(*evt.Request)
			ev, ok := evt.Data.(slackevents.EventsAPIEvent)
			if !ok {
				continue
			}
			if m, ok := ev.InnerEvent.Data.(*slackevents.MessageEvent); ok {
				robo.slackMessage(ctx, api, m)
			}
		case socketmode.EventTypeInteractive:
			client.Ack(*evt.Request)
			cb, ok := evt.Data.(slack.InteractionCallback)
			if !ok {
				continue
			}
			ok, err := slackrelay.Interact(ctx, api, robo.views, &cb)
			if ok && err != nil {
				slog.ErrorContext(ctx, "couldn't handle Slack interaction", slog.Any("err", err))
			}
		}
	}
}

// slackMessage handles a message posted in a channel the bot is in.
func (robo *Robot) slackMessage(ctx context.Context, api *slack.Client, ev *slackevents.MessageEvent) {
	// Ignore bots, edits, and other subtypes.
	if ev.BotID != "" || ev.SubType != "" || ev.User == "" {
		return
	}
	msg := message.Received{
		ID:        ev.TimeStamp,
		Platform:  message.Slack,
		To:        ev.Channel,
		Sender:    ev.User,
		Text:      ev.Text,
		Timestamp: slackTime(ev.TimeStamp),
	}
	p := slackrelay.Channel{
		Client: api,
		ID:     ev.Channel,
		Thread: ev.ThreadTimeStamp,
		Views:  robo.views,
	}
	robo.receive(ctx, &msg, &p)
}

// slackTime converts a Slack message timestamp, which is seconds with a
// fractional part, to milliseconds.
func slackTime(ts string) int64 {
	sec, frac, _ := strings.Cut(ts, ".")
	s, err := strconv.ParseInt(sec, 10, 64)
	if err != nil {
		return 0
	}
	frac = (frac + "000")[:3]
	ms, _ := strconv.ParseInt(frac, 10, 64)
	return s*1000 + ms
}
