// Package message describes chat messages independently of the platform they
// arrive on.
package message

import (
	"time"
)

// Platform identifies a chat platform.
type Platform string

const (
	Discord  Platform = "discord"
	Slack    Platform = "slack"
	Telegram Platform = "telegram"
	GroupMe  Platform = "groupme"
	// Console is the local command line.
	Console Platform = "console"
)

// Received is a message received from a platform.
type Received struct {
	// ID is the platform's identifier for the message.
	ID string
	// Platform is the platform the message arrived on.
	Platform Platform
	// To is the destination of the message, i.e. the identifier of the
	// channel, chat, or group.
	To string
	// Sender is a unique identifier for the message sender.
	Sender string
	// Name is the display name of the message sender.
	Name string
	// Text is the text of the message.
	Text string
	// Timestamp is the timestamp of the message as milliseconds since the
	// Unix epoch.
	Timestamp int64
}

func (m *Received) Time() time.Time {
	return time.UnixMilli(m.Timestamp)
}

// Where returns a key identifying the message's channel across platforms.
func (m *Received) Where() string {
	return string(m.Platform) + ":" + m.To
}
