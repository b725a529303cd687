// Package command routes text commands to their handlers.
//
// A command is written as <trigger><category>-<subcommand>/<arg1>/<arg2>/...
// with required arguments in the order their command declares them.
package command

import (
	"context"
	"errors"

	"github.com/zephyrtronium/bourse/payload"
)

// Invocation is a command invocation. An Invocation and its fields must not
// be modified or retained by any command.
type Invocation struct {
	// Name is the name of the invoked command.
	Name string
	// Args is the validated arguments to the command.
	Args Args
	// Limit is the size in bytes of the longest description the relay can
	// send in one message, or zero if there is no limit. Commands should
	// split longer text into pages.
	Limit int
}

// Func executes a command.
// A Func must either return a non-nil payload or an error. If it returns an
// error, it must not leave behind any files it created.
type Func func(ctx context.Context, call *Invocation) (*payload.Payload, error)

// ErrNoResponse is reported when a command returns neither a payload nor an
// error.
var ErrNoResponse = errors.New("command gave no response")

// Args holds validated and coerced arguments by name.
type Args map[string]any

// String returns a string argument, or the empty string if there is none.
func (a Args) String(name string) string {
	s, _ := a[name].(string)
	return s
}

// Bool returns a boolean argument, or false if there is none.
func (a Args) Bool(name string) bool {
	b, _ := a[name].(bool)
	return b
}

// Int returns an integer argument, or 0 if there is none.
func (a Args) Int(name string) int {
	n, _ := a[name].(int)
	return n
}

// Float returns a floating-point argument, or 0 if there is none.
func (a Args) Float(name string) float64 {
	f, _ := a[name].(float64)
	return f
}
