package command

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Constraint restricts the values of an argument. The only implementations
// are [AllowedSet] and [Pattern].
type Constraint interface {
	constraint()
}

// AllowedSet is a constraint permitting a finite set of literal values.
type AllowedSet struct {
	values []string
	set    map[string]struct{}
}

// Allow creates an AllowedSet. Duplicate values are ignored; the order of
// the remaining values is kept for hints.
func Allow(values ...string) AllowedSet {
	s := AllowedSet{
		values: make([]string, 0, len(values)),
		set:    make(map[string]struct{}, len(values)),
	}
	for _, v := range values {
		if _, ok := s.set[v]; ok {
			continue
		}
		s.set[v] = struct{}{}
		s.values = append(s.values, v)
	}
	return s
}

// Contains reports whether v is in the set.
func (s AllowedSet) Contains(v string) bool {
	_, ok := s.set[v]
	return ok
}

// Values returns the allowed values in order.
func (s AllowedSet) Values() []string {
	return slices.Clone(s.values)
}

// Len returns the number of allowed values.
func (s AllowedSet) Len() int {
	return len(s.values)
}

func (AllowedSet) constraint() {}

// Format is a kind of free-form argument.
type Format int

const (
	// FreeText is any non-empty text.
	FreeText Format = iota
	// Date is a calendar date formatted YYYY-MM-DD.
	Date
	// PositiveInt is a decimal integer greater than zero.
	PositiveInt
	// SignedFloat is a decimal number with an optional sign.
	SignedFloat
	// Symbol is text shaped like a ticker symbol.
	Symbol
)

// Pattern is a constraint requiring an argument to have a format.
type Pattern struct {
	Format Format
}

func (Pattern) constraint() {}

var (
	signedFloat = regexp.MustCompile(`^[-+]?(?:\d+\.?\d*|\.\d+)$`)
	symbol      = regexp.MustCompile(`^[A-Z0-9^][A-Z0-9.\-=^]{0,11}$`)
)

func (p Pattern) match(v string) bool {
	switch p.Format {
	case FreeText:
		return strings.TrimSpace(v) != ""
	case Date:
		_, err := time.Parse(time.DateOnly, v)
		return err == nil
	case PositiveInt:
		n, err := strconv.Atoi(v)
		return err == nil && n > 0
	case SignedFloat:
		return signedFloat.MatchString(v)
	case Symbol:
		return symbol.MatchString(v)
	default:
		panic("command: unknown format " + strconv.Itoa(int(p.Format)))
	}
}

func (p Pattern) describe() string {
	switch p.Format {
	case FreeText:
		return "Expected some text"
	case Date:
		return "Expected a date as YYYY-MM-DD"
	case PositiveInt:
		return "Expected a whole number greater than zero"
	case SignedFloat:
		return "Expected a number"
	case Symbol:
		return "Expected a ticker symbol"
	default:
		panic("command: unknown format " + strconv.Itoa(int(p.Format)))
	}
}

// Satisfies reports whether v satisfies c. A nil constraint accepts anything.
func Satisfies(c Constraint, v string) bool {
	switch c := c.(type) {
	case nil:
		return true
	case AllowedSet:
		return c.Contains(v)
	case Pattern:
		return c.match(v)
	default:
		panic("command: unknown constraint type")
	}
}

// maxHint is the longest options listing included in a hint.
const maxHint = 990

// Describe renders a hint for values that satisfy c.
// An options listing is truncated to the allowed values that fit in 990 bytes.
func Describe(c Constraint) string {
	switch c := c.(type) {
	case nil:
		return ""
	case AllowedSet:
		return options(c.values, maxHint)
	case Pattern:
		return c.describe()
	default:
		panic("command: unknown constraint type")
	}
}

// options renders "Options: a, b, c" keeping the first values that fit in
// limit bytes.
func options(values []string, limit int) string {
	const prefix = "Options: "
	var b strings.Builder
	b.WriteString(prefix)
	for i, v := range values {
		n := len(v)
		if i > 0 {
			n += 2
		}
		if b.Len()+n > limit {
			break
		}
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(v)
	}
	return b.String()
}
