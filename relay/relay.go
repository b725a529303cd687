// Package relay delivers command responses to chat platforms.
//
// A [Relay] interprets a payload the same way for every platform and leaves
// the platform-specific work to a [Platform].
package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/zephyrtronium/bourse/command"
	"github.com/zephyrtronium/bourse/pager"
	"github.com/zephyrtronium/bourse/payload"
)

// Platform is the set of primitives a chat platform provides for sending
// responses to one destination.
type Platform interface {
	// Text sends a text message.
	Text(ctx context.Context, msg payload.Message) error
	// Image sends a message with an attached image. The caller releases the
	// file afterward.
	Image(ctx context.Context, msg payload.Message, f *payload.File) error
	// Paginate sends the first page of a view along with its controls.
	// If Paginate succeeds, it owns the view's files and must eventually
	// release them. Otherwise the caller releases them.
	Paginate(ctx context.Context, v *pager.View) error
	// Limit returns the longest description in bytes that fits in one
	// message, or zero if there is no limit.
	Limit() int
}

// Relay renders payloads through a platform.
type Relay struct {
	// Platform is the destination.
	Platform Platform
	// Debug causes handler errors and panics to propagate instead of being
	// reported to the user.
	Debug bool
	// Log is the logger for relay events. If nil, slog.Default is used.
	Log *slog.Logger
}

var _ command.Relay = (*Relay)(nil)

// New creates a relay to a platform.
func New(p Platform, log *slog.Logger) *Relay {
	return &Relay{Platform: p, Log: log}
}

func (r *Relay) log() *slog.Logger {
	if r.Log == nil {
		return slog.Default()
	}
	return r.Log
}

// Text sends a text message.
func (r *Relay) Text(ctx context.Context, msg payload.Message) error {
	return r.Platform.Text(ctx, msg)
}

// Limit returns the platform's message size limit.
func (r *Relay) Limit() int {
	return r.Platform.Limit()
}

// Render sends a payload. If the payload has pages, it becomes a paginated
// view; otherwise if it has an image, the image is sent with the text;
// otherwise only the text is sent. Every file in the payload is released
// unless a view took ownership of it.
func (r *Relay) Render(ctx context.Context, p *payload.Payload) error {
	switch {
	case len(p.Pages) > 0:
		if p.Image != nil {
			// Pages take precedence. The lone image is unused.
			r.release(ctx, p.Image.Release())
		}
		v, err := pager.New(p.Pages, p.Choices)
		if err != nil {
			r.release(ctx, p.Release())
			return fmt.Errorf("couldn't create view: %w", err)
		}
		if err := r.Platform.Paginate(ctx, v); err != nil {
			r.release(ctx, v.Release())
			return err
		}
		return nil
	case p.Image != nil:
		defer func() { r.release(ctx, p.Image.Release()) }()
		return r.Platform.Image(ctx, p.Message(), p.Image)
	default:
		return r.Platform.Text(ctx, p.Message())
	}
}

func (r *Relay) release(ctx context.Context, err error) {
	if err != nil {
		r.log().WarnContext(ctx, "couldn't release response files", slog.Any("err", err))
	}
}

// Expected is implemented by errors that describe an expected failure, such
// as a lack of data for a ticker, as opposed to a bug or an outage.
type Expected interface {
	error
	Expected() bool
}

// IsExpected reports whether any error in err's tree is an expected failure.
func IsExpected(err error) bool {
	var e Expected
	return errors.As(err, &e) && e.Expected()
}

// Handle dispatches command text and reports handler failures to the user.
//
// A handler error or panic becomes a single message titled with the command
// name whose text is the error. The failure is not returned. If r.Debug is
// set, handler errors are returned and panics propagate instead.
// The returned error is non-nil only when a response could not be delivered
// or in debug mode.
func (r *Relay) Handle(ctx context.Context, d *command.Dispatcher, text string) (o command.Outcome, err error) {
	defer func() {
		if r.Debug {
			return
		}
		x := recover()
		if x == nil {
			return
		}
		name, _, _ := d.Parse(text)
		r.log().ErrorContext(ctx, "command panicked", slog.String("name", name), slog.Any("panic", x))
		o = command.HandlerFailed
		err = r.Text(ctx, payload.Message{Title: name, Description: fmt.Sprint(x)})
	}()
	o, err = d.Dispatch(ctx, text, r)
	var herr *command.HandlerError
	if !errors.As(err, &herr) {
		return o, err
	}
	if IsExpected(herr.Err) {
		r.log().InfoContext(ctx, "command found nothing", slog.String("name", herr.Command), slog.Any("err", herr.Err))
	} else {
		r.log().ErrorContext(ctx, "command failed", slog.String("name", herr.Command), slog.Any("err", herr.Err))
	}
	if r.Debug {
		return o, err
	}
	msg := payload.Message{Title: herr.Command, Description: herr.Err.Error()}
	if err := r.Text(ctx, msg); err != nil {
		return o, fmt.Errorf("couldn't report failure of %s: %w", herr.Command, err)
	}
	return o, nil
}
