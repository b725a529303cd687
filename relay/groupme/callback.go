package groupme

import (
	"fmt"
	"io"

	"github.com/go-json-experiment/json"

	"github.com/zephyrtronium/bourse/message"
)

// Callback is the body of a bot callback, sent by GroupMe for every message
// in the bot's group.
type Callback struct {
	ID         string `json:"id"`
	GroupID    string `json:"group_id"`
	SenderID   string `json:"sender_id"`
	SenderType string `json:"sender_type"`
	UserID     string `json:"user_id"`
	Name       string `json:"name"`
	Text       string `json:"text"`
	CreatedAt  int64  `json:"created_at"`
	System     bool   `json:"system"`
}

// ParseCallback decodes a bot callback. It reports false for messages that
// should not be handled, namely those from bots or the system.
func ParseCallback(r io.Reader) (*message.Received, bool, error) {
	b, err := io.ReadAll(io.LimitReader(r, 1<<20))
	if err != nil {
		return nil, false, fmt.Errorf("couldn't read callback: %w", err)
	}
	var cb Callback
	if err := json.Unmarshal(b, &cb); err != nil {
		return nil, false, fmt.Errorf("couldn't decode callback: %w", err)
	}
	if cb.System || cb.SenderType == "bot" {
		return nil, false, nil
	}
	m := message.Received{
		ID:        cb.ID,
		Platform:  message.GroupMe,
		To:        cb.GroupID,
		Sender:    cb.SenderID,
		Name:      cb.Name,
		Text:      cb.Text,
		Timestamp: cb.CreatedAt * 1000,
	}
	return &m, true, nil
}
