package message_test

import (
	"testing"
	"time"

	"github.com/zephyrtronium/bourse/message"
)

func TestReceived(t *testing.T) {
	m := message.Received{
		Platform:  message.Telegram,
		To:        "-1001",
		Timestamp: 1700000000123,
	}
	if got, want := m.Where(), "telegram:-1001"; got != want {
		t.Errorf("wrong where: want %q, got %q", want, got)
	}
	if got, want := m.Time(), time.UnixMilli(1700000000123); !got.Equal(want) {
		t.Errorf("wrong time: want %v, got %v", want, got)
	}
}
