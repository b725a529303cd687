// Package pager implements the state of paginated responses: a cursor over a
// fixed list of pages with previous, next, and jump-to-page controls.
package pager

import (
	"errors"
	"strconv"
	"sync"

	"github.com/zephyrtronium/bourse/payload"
)

// ErrNoPages is returned when creating a view with no pages.
var ErrNoPages = errors.New("pager: no pages")

// View is a cursor over an immutable list of pages.
// It is safe to use concurrently.
type View struct {
	pages   []payload.Page
	choices []payload.Choice

	mu     sync.Mutex
	cursor int
}

// New creates a view positioned at the first page.
// If choices is empty, one choice per page is derived from the page titles.
// Otherwise it must have exactly one choice per page.
func New(pages []payload.Page, choices []payload.Choice) (*View, error) {
	if len(pages) == 0 {
		return nil, ErrNoPages
	}
	if len(choices) == 0 {
		choices = defaultChoices(pages)
	}
	if len(choices) != len(pages) {
		return nil, errors.New("pager: choices don't match pages")
	}
	return &View{pages: pages, choices: choices}, nil
}

func defaultChoices(pages []payload.Page) []payload.Choice {
	r := make([]payload.Choice, len(pages))
	for i, p := range pages {
		n := strconv.Itoa(i + 1)
		switch {
		case p.Title == "":
			r[i] = payload.Choice{Label: "Page " + n}
		default:
			r[i] = payload.Choice{Label: p.Title, Description: "Page " + n}
		}
	}
	return r
}

// Next moves to the next page. It reports false and does nothing if the view
// is already on the last page.
func (v *View) Next() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.cursor >= len(v.pages)-1 {
		return false
	}
	v.cursor++
	return true
}

// Prev moves to the previous page. It reports false and does nothing if the
// view is already on the first page.
func (v *View) Prev() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.cursor <= 0 {
		return false
	}
	v.cursor--
	return true
}

// Select moves to page i. It reports false and does nothing if i is not a
// valid page index.
func (v *View) Select(i int) bool {
	if i < 0 || i >= len(v.pages) {
		return false
	}
	v.mu.Lock()
	v.cursor = i
	v.mu.Unlock()
	return true
}

// Cursor returns the index of the current page.
func (v *View) Cursor() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cursor
}

// Len returns the number of pages.
func (v *View) Len() int {
	return len(v.pages)
}

// Page returns the current page.
func (v *View) Page() payload.Page {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pages[v.cursor]
}

// State returns the current page along with the states of the controls,
// all observed at the same cursor position.
func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return State{
		Page:         v.pages[v.cursor],
		Cursor:       v.cursor,
		Len:          len(v.pages),
		PrevDisabled: v.cursor == 0,
		NextDisabled: v.cursor == len(v.pages)-1,
	}
}

// PrevDisabled reports whether the previous control is disabled, i.e. whether
// the view is on its first page.
func (v *View) PrevDisabled() bool {
	return v.Cursor() == 0
}

// NextDisabled reports whether the next control is disabled, i.e. whether the
// view is on its last page.
func (v *View) NextDisabled() bool {
	return v.Cursor() == len(v.pages)-1
}

// Choices returns the page selector options, index-aligned with pages.
// The result must not be modified.
func (v *View) Choices() []payload.Choice {
	return v.choices
}

// Pages returns all pages. The result must not be modified.
func (v *View) Pages() []payload.Page {
	return v.pages
}

// State is a snapshot of a view for rendering.
type State struct {
	Page         payload.Page
	Cursor       int
	Len          int
	PrevDisabled bool
	NextDisabled bool
}

// Footer returns a page indicator like "Page 2/5".
func (s State) Footer() string {
	return "Page " + strconv.Itoa(s.Cursor+1) + "/" + strconv.Itoa(s.Len)
}

// Release deletes the local files of all pages.
func (v *View) Release() error {
	p := payload.Payload{Pages: v.pages}
	return p.Release()
}
