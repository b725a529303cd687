package command

import (
	"fmt"
	"strings"
	"testing"
)

func TestSatisfies(t *testing.T) {
	cases := []struct {
		name string
		c    Constraint
		v    string
		want bool
	}{
		{"nil", nil, "", true},
		{"set-in", Allow("call", "put"), "put", true},
		{"set-out", Allow("call", "put"), "PUT", false},
		{"text", Pattern{FreeText}, "bocchi", true},
		{"text-empty", Pattern{FreeText}, " ", false},
		{"date", Pattern{Date}, "2024-01-19", true},
		{"date-bad-day", Pattern{Date}, "2024-02-30", false},
		{"date-shape", Pattern{Date}, "01/19/2024", false},
		{"int", Pattern{PositiveInt}, "10", true},
		{"int-zero", Pattern{PositiveInt}, "0", false},
		{"int-neg", Pattern{PositiveInt}, "-3", false},
		{"int-float", Pattern{PositiveInt}, "1.5", false},
		{"float", Pattern{SignedFloat}, "172.5", true},
		{"float-sign", Pattern{SignedFloat}, "-0.25", true},
		{"float-leading-dot", Pattern{SignedFloat}, ".5", true},
		{"float-nan", Pattern{SignedFloat}, "NaN", false},
		{"float-exp", Pattern{SignedFloat}, "1e9", false},
		{"symbol", Pattern{Symbol}, "BRK.B", true},
		{"symbol-index", Pattern{Symbol}, "^GSPC", true},
		{"symbol-lower", Pattern{Symbol}, "tsla", false},
		{"symbol-long", Pattern{Symbol}, "ABCDEFGHIJKLM", false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Satisfies(c.c, c.v); got != c.want {
				t.Errorf("wrong result for %q: want %t, got %t", c.v, c.want, got)
			}
		})
	}
}

func TestAllowDedup(t *testing.T) {
	s := Allow("b", "a", "b", "c")
	want := []string{"b", "a", "c"}
	got := s.Values()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("wrong values: want %v, got %v", want, got)
	}
}

func TestDescribe(t *testing.T) {
	if got, want := Describe(Allow("call", "put")), "Options: call, put"; got != want {
		t.Errorf("wrong hint: want %q, got %q", want, got)
	}
	if got, want := Describe(Pattern{Date}), "Expected a date as YYYY-MM-DD"; got != want {
		t.Errorf("wrong hint: want %q, got %q", want, got)
	}
	if got := Describe(nil); got != "" {
		t.Errorf("nil constraint should have no hint, got %q", got)
	}
}

func TestDescribeTruncates(t *testing.T) {
	vals := make([]string, 500)
	for i := range vals {
		vals[i] = fmt.Sprintf("T%03d", i)
	}
	got := Describe(Allow(vals...))
	if len(got) > maxHint {
		t.Errorf("hint too long: %d bytes", len(got))
	}
	if len(got) < maxHint-len(", T499") {
		t.Errorf("hint too short: %d bytes", len(got))
	}
	if !strings.HasPrefix(got, "Options: T000, T001, ") {
		t.Errorf("hint doesn't keep the first values: %q", got[:40])
	}
	if strings.HasSuffix(got, ", ") {
		t.Errorf("hint ends with a separator: %q", got[len(got)-10:])
	}
}

func TestOptions(t *testing.T) {
	cases := []struct {
		name   string
		values []string
		limit  int
		want   string
	}{
		{"all", []string{"a", "b"}, 100, "Options: a, b"},
		{"exact", []string{"a", "b"}, len("Options: a, b"), "Options: a, b"},
		{"cut", []string{"a", "b", "c"}, len("Options: a, b"), "Options: a, b"},
		{"none-fit", []string{"abcdef"}, len("Options: ab"), "Options: "},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := options(c.values, c.limit); got != c.want {
				t.Errorf("wrong options: want %q, got %q", c.want, got)
			}
		})
	}
}
