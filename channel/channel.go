// Package channel holds per-destination state for the bot.
package channel

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/zephyrtronium/bourse/message"
)

// Channel is a place where commands are received and answered.
type Channel struct {
	// Platform is the platform the channel is on.
	Platform message.Platform
	// ID is the platform's identifier for the channel.
	ID string
	// Rate is the rate limiter for commands. Commands in excess of the rate
	// limit are dropped.
	Rate *rate.Limiter
	// History is the channel's recently handled messages.
	History *History
	// Block is the set of sender IDs whose commands are ignored.
	Block map[string]bool
}

// Limits is the command rate for a channel.
type Limits struct {
	// Every is the interval between commands at the sustained rate.
	Every time.Duration
	// Burst is the number of commands allowed at once.
	Burst int
}

// New creates a channel with the given rate limit.
// A non-positive Every means no limit.
func New(p message.Platform, id string, lim Limits) *Channel {
	r := rate.NewLimiter(rate.Inf, 0)
	if lim.Every > 0 {
		r = rate.NewLimiter(rate.Every(lim.Every), max(lim.Burst, 1))
	}
	return &Channel{
		Platform: p,
		ID:       id,
		Rate:     r,
		History:  NewHistory(),
	}
}

// Key returns the key identifying the channel across platforms.
// It is the same as message.Received.Where for messages in the channel.
func (ch *Channel) Key() string {
	return Key(ch.Platform, ch.ID)
}

// Key returns the key identifying a channel across platforms.
func Key(p message.Platform, id string) string {
	return string(p) + ":" + id
}

// Allow reports whether a message may be handled now. It is false for
// blocked senders, for messages already handled, and when the channel is over
// its rate limit.
func (ch *Channel) Allow(msg *message.Received) (bool, string) {
	if ch.Block[msg.Sender] {
		return false, "blocked"
	}
	if !ch.History.Add(msg.ID, msg.Sender, msg.Text) {
		return false, "duplicate"
	}
	if !ch.Rate.AllowN(msg.Time(), 1) {
		return false, "rate limited"
	}
	return true, ""
}
