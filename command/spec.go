package command

import (
	"strings"
)

// Spec describes a command.
type Spec struct {
	// Name is the full name of the command, like ta-rsi.
	Name string
	// Func is the command handler.
	Func Func
	// Required is the required arguments, in the order they are written.
	Required []Param
	// Optional is the optional arguments. They are only informational; the
	// text syntax has no way to supply them, so handlers use defaults.
	Optional []Param
	// Help is a short description of the command.
	Help string
}

// Param is a named argument.
type Param struct {
	Name       string
	Constraint Constraint
}

// Category returns the command's category, the part of its name before the
// first hyphen.
func (s *Spec) Category() string {
	return Category(s.Name)
}

// Usage renders the command's syntax, like dps-pos/sort/num.
func (s *Spec) Usage() string {
	var b strings.Builder
	b.WriteString(s.Name)
	for _, p := range s.Required {
		b.WriteByte('/')
		b.WriteString(p.Name)
	}
	return b.String()
}

// Category returns the part of a command name before the first hyphen.
// A name without a hyphen is its own category.
func Category(name string) string {
	cat, _, _ := strings.Cut(name, "-")
	return cat
}
