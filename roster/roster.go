// Package roster loads the list of tickers the bot knows about.
package roster

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/zephyrtronium/bourse/command"
)

// Roster is a set of ticker symbols.
type Roster struct {
	symbols []string
}

// Load reads a CSV list of tickers. If the first row has a column named
// symbol or ticker, that column is used and the row is skipped. Otherwise
// every row's first column is a ticker. Symbols are upper-cased and
// duplicates are dropped.
func Load(r io.Reader) (*Roster, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true
	col := 0
	seen := make(map[string]bool)
	var syms []string
	for row := 0; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("couldn't read ticker list: %w", err)
		}
		if row == 0 {
			if k := header(rec); k >= 0 {
				col = k
				continue
			}
		}
		if col >= len(rec) {
			continue
		}
		s := strings.ToUpper(strings.TrimSpace(rec[col]))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		syms = append(syms, s)
	}
	return &Roster{symbols: syms}, nil
}

func header(rec []string) int {
	return slices.IndexFunc(rec, func(s string) bool {
		s = strings.ToLower(strings.TrimSpace(s))
		return s == "symbol" || s == "ticker"
	})
}

// Open loads a ticker list from a file.
func Open(path string) (*Roster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("couldn't open ticker list: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Len returns the number of tickers.
func (r *Roster) Len() int {
	return len(r.symbols)
}

// Symbols returns the tickers in file order.
func (r *Roster) Symbols() []string {
	return slices.Clone(r.symbols)
}

// Constraint returns the constraint for ticker arguments.
// An empty or nil roster accepts anything shaped like a ticker.
func (r *Roster) Constraint() command.Constraint {
	if r == nil || len(r.symbols) == 0 {
		return command.Pattern{Format: command.Symbol}
	}
	return command.Allow(r.symbols...)
}
