package roster_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/zephyrtronium/bourse/command"
	"github.com/zephyrtronium/bourse/roster"
)

func TestLoad(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "empty",
			in:   "",
			want: nil,
		},
		{
			name: "bare",
			in:   "tsla\naapl\nmsft\n",
			want: []string{"TSLA", "AAPL", "MSFT"},
		},
		{
			name: "header",
			in:   "name,symbol,exchange\nTesla,TSLA,NASDAQ\nApple, aapl ,NASDAQ\n",
			want: []string{"TSLA", "AAPL"},
		},
		{
			name: "ticker-header",
			in:   "Ticker\nGME\nAMC\n",
			want: []string{"GME", "AMC"},
		},
		{
			name: "duplicates",
			in:   "tsla\nTSLA\n\nspy\n",
			want: []string{"TSLA", "SPY"},
		},
		{
			name: "ragged",
			in:   "name,symbol\nTesla,TSLA\nnothing\nApple,AAPL\n",
			want: []string{"TSLA", "AAPL"},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r, err := roster.Load(strings.NewReader(c.in))
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(r.Symbols(), c.want); diff != "" {
				t.Errorf("wrong symbols (+got/-want):\n%s", diff)
			}
		})
	}
}

func TestConstraint(t *testing.T) {
	r, err := roster.Load(strings.NewReader("TSLA\nAAPL\n"))
	if err != nil {
		t.Fatal(err)
	}
	c := r.Constraint()
	if !command.Satisfies(c, "TSLA") {
		t.Errorf("listed ticker rejected")
	}
	if command.Satisfies(c, "GME") {
		t.Errorf("unlisted ticker accepted")
	}
	var empty *roster.Roster
	c = empty.Constraint()
	if !command.Satisfies(c, "GME") {
		t.Errorf("empty roster rejected a ticker")
	}
	if command.Satisfies(c, "not a ticker") {
		t.Errorf("empty roster accepted nonsense")
	}
}

func TestOpen(t *testing.T) {
	p := filepath.Join(t.TempDir(), "tickers.csv")
	if err := os.WriteFile(p, []byte("symbol\nnvda\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	r, err := roster.Open(p)
	if err != nil {
		t.Fatal(err)
	}
	if r.Len() != 1 {
		t.Errorf("wrong length: want 1, got %d", r.Len())
	}
	if _, err := roster.Open(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Errorf("missing file didn't fail")
	}
}
