// Package console relays command responses to a local writer.
package console

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/zephyrtronium/bourse/pager"
	"github.com/zephyrtronium/bourse/payload"
	"github.com/zephyrtronium/bourse/relay"
)

// Writer is a relay.Platform that prints responses as plain text.
// Views are printed in full since there is nothing to click.
type Writer struct {
	// W is the destination for responses.
	W io.Writer
	// Keep is a directory to copy images into before they are released.
	// If empty, images are only named.
	Keep string
	// Width is the longest description in one message. Zero means no limit.
	Width int

	mu sync.Mutex
}

var _ relay.Platform = (*Writer)(nil)

// Text prints a message.
func (w *Writer) Text(ctx context.Context, msg payload.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.print(msg.Title, msg.Description, "")
}

// Image prints a message followed by the location of its image.
func (w *Writer) Image(ctx context.Context, msg payload.Message, f *payload.File) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	loc, err := w.keep(f)
	if err != nil {
		return err
	}
	return w.print(msg.Title, msg.Description, loc)
}

// Paginate prints every page of the view in order, then releases it.
func (w *Writer) Paginate(ctx context.Context, v *pager.View) error {
	defer v.Release()
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, p := range v.Pages() {
		s := pager.State{Page: p, Cursor: i, Len: v.Len()}
		loc := p.ImageURL
		if p.Image != nil {
			var err error
			loc, err = w.keep(p.Image)
			if err != nil {
				return err
			}
		}
		if err := w.print(p.Title+" ("+s.Footer()+")", p.Description, loc); err != nil {
			return err
		}
	}
	return nil
}

// Limit returns w.Width.
func (w *Writer) Limit() int {
	return w.Width
}

func (w *Writer) print(title, desc, image string) error {
	var b strings.Builder
	if title != "" {
		fmt.Fprintf(&b, "== %s ==\n", title)
	}
	if desc != "" {
		b.WriteString(desc)
		b.WriteByte('\n')
	}
	if image != "" {
		fmt.Fprintf(&b, "[image: %s]\n", image)
	}
	b.WriteByte('\n')
	if _, err := io.WriteString(w.W, b.String()); err != nil {
		return fmt.Errorf("couldn't write response: %w", err)
	}
	return nil
}

// keep copies an image into w.Keep and returns where it went.
func (w *Writer) keep(f *payload.File) (string, error) {
	if w.Keep == "" {
		return f.Name(), nil
	}
	src, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("couldn't open image: %w", err)
	}
	defer src.Close()
	if err := os.MkdirAll(w.Keep, 0o755); err != nil {
		return "", fmt.Errorf("couldn't create image directory: %w", err)
	}
	p := filepath.Join(w.Keep, f.Name())
	dst, err := os.Create(p)
	if err != nil {
		return "", fmt.Errorf("couldn't create image copy: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return "", fmt.Errorf("couldn't copy image: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("couldn't copy image: %w", err)
	}
	return p, nil
}
