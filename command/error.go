package command

import (
	"strings"

	"github.com/zephyrtronium/bourse/payload"
)

// Error is a failure to resolve or validate a command.
// Its Message is what the user sees.
type Error struct {
	// Kind is one of UnknownCategory, UnknownCommand, ArityMismatch, or
	// InvalidValue.
	Kind Outcome
	// Command is the command name as the user wrote it.
	Command string
	// Arg is the name of the offending argument for InvalidValue.
	Arg string
	// Value is the offending token for InvalidValue.
	Value string
	// Usage is the command's syntax for ArityMismatch and InvalidValue.
	Usage string
	// Hint is guidance for correcting the offending argument.
	Hint string
	// Suggestions lists categories or commands for UnknownCategory and
	// UnknownCommand.
	Suggestions []string
}

func (e *Error) Error() string {
	switch e.Kind {
	case UnknownCategory:
		return "unknown category in " + e.Command
	case UnknownCommand:
		return "unknown command " + e.Command
	case ArityMismatch:
		return "wrong number of arguments for " + e.Command
	case InvalidValue:
		return "invalid " + e.Arg + " for " + e.Command + ": " + e.Value
	default:
		return "command error " + e.Kind.String()
	}
}

// Message renders the error for the user.
func (e *Error) Message() payload.Message {
	var b strings.Builder
	switch e.Kind {
	case UnknownCategory:
		b.WriteString("Valid categories: ")
		b.WriteString(strings.Join(e.Suggestions, ", "))
	case UnknownCommand:
		b.WriteString("Valid commands in ")
		b.WriteString(Category(e.Command))
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Suggestions, ", "))
	case ArityMismatch:
		b.WriteString("Usage: ")
		b.WriteString(e.Usage)
	case InvalidValue:
		b.WriteString("Invalid ")
		b.WriteString(e.Arg)
		b.WriteString(": ")
		b.WriteString(e.Value)
		b.WriteString("\nUsage: ")
		b.WriteString(e.Usage)
		if e.Hint != "" {
			b.WriteByte('\n')
			b.WriteString(e.Hint)
		}
	}
	return payload.Message{Title: e.Command, Description: b.String()}
}

// HandlerError is an error returned from a command handler.
type HandlerError struct {
	// Command is the name of the command whose handler failed.
	Command string
	// Err is the handler's error.
	Err error
}

func (e *HandlerError) Error() string {
	return e.Command + ": " + e.Err.Error()
}

func (e *HandlerError) Unwrap() error {
	return e.Err
}
