package channel_test

import (
	"testing"
	"time"

	"github.com/zephyrtronium/bourse/channel"
	"github.com/zephyrtronium/bourse/message"
)

func TestAllow(t *testing.T) {
	ch := channel.New(message.Discord, "123", channel.Limits{Every: time.Minute, Burst: 2})
	ch.Block = map[string]bool{"ryo": true}
	now := time.Now().UnixMilli()
	msg := func(id, sender string, dt time.Duration) *message.Received {
		return &message.Received{ID: id, Platform: message.Discord, To: "123", Sender: sender, Timestamp: now + dt.Milliseconds()}
	}
	cases := []struct {
		name string
		msg  *message.Received
		want bool
		why  string
	}{
		{"first", msg("1", "bocchi", 0), true, ""},
		{"blocked", msg("2", "ryo", 0), false, "blocked"},
		{"duplicate", msg("1", "bocchi", 0), false, "duplicate"},
		{"burst", msg("3", "bocchi", 0), true, ""},
		{"limited", msg("4", "bocchi", time.Second), false, "rate limited"},
		{"recovered", msg("5", "bocchi", 2*time.Minute), true, ""},
	}
	// Cases share the channel and run in order.
	for _, c := range cases {
		ok, why := ch.Allow(c.msg)
		if ok != c.want || why != c.why {
			t.Errorf("%s: wrong result: want %t %q, got %t %q", c.name, c.want, c.why, ok, why)
		}
	}
	if got := ch.Key(); got != "discord:123" {
		t.Errorf("wrong key: want discord:123, got %q", got)
	}
}

func TestUnlimited(t *testing.T) {
	ch := channel.New(message.Slack, "C1", channel.Limits{})
	for i := range 100 {
		msg := message.Received{Sender: "kita", Timestamp: int64(i)}
		if ok, why := ch.Allow(&msg); !ok {
			t.Fatalf("message %d refused: %s", i, why)
		}
	}
}
