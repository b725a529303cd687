// Package payload defines the declarative responses that commands produce and
// relays consume.
package payload

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// Message is a titled block of text.
type Message struct {
	Title       string
	Description string
}

// Page is one page of a paginated response.
type Page struct {
	// Title and Description are the page's text.
	Title       string
	Description string
	// ImageURL is a link to an image already hosted somewhere.
	ImageURL string
	// Image is a local image to upload with the page, if the platform can.
	Image *File
}

// Choice is a selector option for jumping directly to a page.
// Choices are index-aligned with pages.
type Choice struct {
	Label       string
	Description string
}

// Payload is the response to a command.
//
// Relays interpret a payload by what is present, in order: if Pages is
// non-empty, the response is a paginated view; otherwise if Image is non-nil,
// the response is a message with an attached image; otherwise it is text.
// The relay owns every File in the payload once it receives it.
type Payload struct {
	Title       string
	Description string
	Image       *File
	Pages       []Page
	Choices     []Choice
}

// Text creates a text-only payload.
func Text(title, desc string) *Payload {
	return &Payload{Title: title, Description: desc}
}

// Paged creates a paginated payload from a sequence of descriptions, all
// sharing the same title. A single chunk produces a text-only payload.
func Paged(title string, chunks []string) *Payload {
	switch len(chunks) {
	case 0:
		return Text(title, "")
	case 1:
		return Text(title, chunks[0])
	}
	p := Payload{
		Title: title,
		Pages: make([]Page, len(chunks)),
	}
	for i, c := range chunks {
		p.Pages[i] = Page{Title: title, Description: c}
	}
	return &p
}

// Message returns the payload's text as a message.
func (p *Payload) Message() Message {
	return Message{Title: p.Title, Description: p.Description}
}

// Release deletes every local file owned by the payload. It is safe to call
// on a nil payload and to call more than once.
func (p *Payload) Release() error {
	if p == nil {
		return nil
	}
	var errs []error
	if p.Image != nil {
		errs = append(errs, p.Image.Release())
	}
	for _, pg := range p.Pages {
		if pg.Image != nil {
			errs = append(errs, pg.Image.Release())
		}
	}
	return errors.Join(errs...)
}

// Chunk splits text into pieces of at most limit bytes, preferring to break
// at line boundaries. Lines longer than limit are split at rune boundaries.
// If limit is not positive, the result is the whole text.
func Chunk(text string, limit int) []string {
	if text == "" {
		return nil
	}
	if limit <= 0 || len(text) <= limit {
		return []string{text}
	}
	var r []string
	var b strings.Builder
	flush := func() {
		if s := strings.TrimRight(b.String(), "\n"); s != "" {
			r = append(r, s)
		}
		b.Reset()
	}
	for line := range strings.Lines(text) {
		if b.Len()+len(line) <= limit {
			b.WriteString(line)
			continue
		}
		flush()
		for len(line) > limit {
			k := limit
			for k > 0 && !utf8.RuneStart(line[k]) {
				k--
			}
			if k == 0 {
				// A single rune wider than the limit. Take it anyway.
				_, k = utf8.DecodeRuneInString(line)
			}
			r = append(r, line[:k])
			line = line[k:]
		}
		b.WriteString(line)
	}
	flush()
	return r
}
