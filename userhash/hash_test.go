package userhash_test

import (
	"testing"
	"time"

	"github.com/zephyrtronium/bourse/message"
	"github.com/zephyrtronium/bourse/userhash"
)

func TestHasher(t *testing.T) {
	t.Parallel()
	// Every combination of key, platform, time, user, and location must
	// produce a distinct userhash.
	keys := []string{
		"madoka",
		"homura",
	}
	platforms := []message.Platform{
		message.Discord,
		message.Telegram,
	}
	users := []string{
		"bocchi",
		"nijika",
		"ryou",
		"kita",
	}
	locs := []string{
		"kaguya",
		"miyuki",
	}
	times := []time.Time{
		time.Unix(0, -userhash.TimeQuantum.Nanoseconds()),
		time.Unix(0, 0),
		time.Unix(0, userhash.TimeQuantum.Nanoseconds()),
	}
	u := make(map[userhash.Hash]bool)
	for _, key := range keys {
		hr := userhash.New([]byte(key))
		for _, p := range platforms {
			for _, user := range users {
				for _, loc := range locs {
					for _, when := range times {
						a := *hr.Hash(new(userhash.Hash), p, user, loc, when)
						if u[a] {
							t.Errorf("duplicate hash: %s/%s/%s/%s/%v gave %v", key, p, user, loc, when, a)
						}
						u[a] = true
						b := *hr.Hash(new(userhash.Hash), p, user, loc, when)
						if a != b {
							t.Errorf("repeated hash changed: %s/%s/%s/%s/%v gave first %v then %v", key, p, user, loc, when, a, b)
						}
					}
				}
			}
		}
	}
}

func TestOf(t *testing.T) {
	hr := userhash.New([]byte("madoka"))
	msg := message.Received{
		Platform:  message.Slack,
		To:        "C123",
		Sender:    "U456",
		Timestamp: 1e12,
	}
	want := *hr.Hash(new(userhash.Hash), msg.Platform, msg.Sender, msg.To, msg.Time())
	if got := hr.Of(&msg); got != want {
		t.Errorf("wrong hash: want %v, got %v", want, got)
	}
	later := msg
	later.Timestamp += userhash.TimeQuantum.Milliseconds()
	if hr.Of(&later) == want {
		t.Errorf("hash didn't change with time")
	}
}

func TestScan(t *testing.T) {
	var want userhash.Hash
	for i := range want {
		want[i] = byte(i)
	}
	cases := []struct {
		name string
		src  any
		err  bool
	}{
		{"bytes", want[:], false},
		{"hex", want.String(), false},
		{"short", want[:4], true},
		{"int", 4, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var got userhash.Hash
			err := got.Scan(c.src)
			if (err != nil) != c.err {
				t.Fatalf("wrong error: want error %t, got %v", c.err, err)
			}
			if !c.err && got != want {
				t.Errorf("wrong hash: want %v, got %v", want, got)
			}
		})
	}
	if got := want.Short(); got != "00010203" {
		t.Errorf("wrong short form: want 00010203, got %s", got)
	}
}
