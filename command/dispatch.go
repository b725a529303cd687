package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/zephyrtronium/bourse/metrics"
	"github.com/zephyrtronium/bourse/payload"
)

// Relay delivers responses to the place a command came from.
type Relay interface {
	// Text sends a text message.
	Text(ctx context.Context, msg payload.Message) error
	// Render sends a command's response. Render takes ownership of the
	// payload's files and releases them whether or not it succeeds.
	Render(ctx context.Context, p *payload.Payload) error
	// Limit returns the longest description in bytes that fits in one
	// message, or zero if there is no limit.
	Limit() int
}

// Dispatcher parses command text and runs the commands it names.
type Dispatcher struct {
	// Registry is the set of commands.
	Registry *Registry
	// Trigger is the prefix that marks text as a command, like "!".
	Trigger string
	// Coercion is the argument coercion rules.
	Coercion Coercion
	// Log is the logger for dispatch events. If nil, slog.Default is used.
	Log *slog.Logger
	// Latency records handler durations by command name. It may be nil.
	Latency metrics.Observer
}

// Parse splits command text into a lower-cased command name and its argument
// tokens. It reports false if the text doesn't start with the trigger or
// names no command.
func (d *Dispatcher) Parse(text string) (name string, tokens []string, ok bool) {
	text = strings.TrimSpace(text)
	text, ok = strings.CutPrefix(text, d.Trigger)
	if !ok {
		return "", nil, false
	}
	name, rest, found := strings.Cut(text, "/")
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "", nil, false
	}
	if found {
		tokens = strings.Split(rest, "/")
	}
	return name, tokens, true
}

// Resolve finds the command named by text and validates its arguments.
// If the text is not a command, the result is nil with a nil error.
// Otherwise, the error is an *Error describing why the command can't run.
func (d *Dispatcher) Resolve(text string) (*Spec, Args, error) {
	name, tokens, ok := d.Parse(text)
	if !ok {
		return nil, nil, nil
	}
	cat := Category(name)
	if !d.Registry.HasCategory(cat) {
		err := Error{
			Kind:        UnknownCategory,
			Command:     name,
			Suggestions: d.Registry.Categories(),
		}
		return nil, nil, &err
	}
	spec, ok := d.Registry.Lookup(name)
	if !ok {
		err := Error{
			Kind:        UnknownCommand,
			Command:     name,
			Suggestions: d.Registry.InCategory(cat),
		}
		return nil, nil, &err
	}
	args, err := d.Coercion.Validate(spec, tokens)
	if err != nil {
		return nil, nil, err
	}
	return spec, args, nil
}

// Dispatch runs the command in text and relays its response.
//
// Text that isn't a command gives Ignored. Unknown commands and invalid
// arguments are reported to the relay as one text message and give the
// corresponding outcome with a nil error. A handler error is returned as a
// *HandlerError with outcome HandlerFailed; it is not reported to the relay.
// Panics in handlers propagate.
func (d *Dispatcher) Dispatch(ctx context.Context, text string, r Relay) (Outcome, error) {
	log := d.Log
	if log == nil {
		log = slog.Default()
	}
	spec, args, err := d.Resolve(text)
	if err != nil {
		var cerr *Error
		if !errors.As(err, &cerr) {
			return Ignored, err
		}
		log.InfoContext(ctx, "bad command",
			slog.String("command", cerr.Command),
			slog.String("outcome", cerr.Kind.String()),
			slog.String("arg", cerr.Arg),
		)
		if err := r.Text(ctx, cerr.Message()); err != nil {
			return cerr.Kind, fmt.Errorf("couldn't send %s response: %w", cerr.Kind, err)
		}
		return cerr.Kind, nil
	}
	if spec == nil {
		return Ignored, nil
	}
	log.InfoContext(ctx, "command", slog.String("name", spec.Name), slog.Any("args", args))
	call := Invocation{
		Name:  spec.Name,
		Args:  args,
		Limit: r.Limit(),
	}
	start := time.Now()
	p, err := spec.Func(ctx, &call)
	if d.Latency != nil {
		d.Latency.Observe(time.Since(start).Seconds(), spec.Name)
	}
	if err == nil && p == nil {
		err = ErrNoResponse
	}
	if err != nil {
		if rerr := p.Release(); rerr != nil {
			log.WarnContext(ctx, "couldn't release files from failed command", slog.String("name", spec.Name), slog.Any("err", rerr))
		}
		return HandlerFailed, &HandlerError{Command: spec.Name, Err: err}
	}
	if err := r.Render(ctx, p); err != nil {
		return RelayFailed, fmt.Errorf("couldn't relay %s response: %w", spec.Name, err)
	}
	return Success, nil
}
