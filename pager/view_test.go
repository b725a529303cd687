package pager_test

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/zephyrtronium/bourse/pager"
	"github.com/zephyrtronium/bourse/payload"
)

func pages(n int) []payload.Page {
	r := make([]payload.Page, n)
	for i := range r {
		r[i] = payload.Page{Title: "p", Description: string(rune('a' + i))}
	}
	return r
}

func TestNewEmpty(t *testing.T) {
	_, err := pager.New(nil, nil)
	if !errors.Is(err, pager.ErrNoPages) {
		t.Errorf("wrong error: want %v, got %v", pager.ErrNoPages, err)
	}
	_, err = pager.New(pages(2), []payload.Choice{{Label: "x"}})
	if err == nil {
		t.Errorf("mismatched choices should be an error")
	}
}

func TestThreePages(t *testing.T) {
	type state struct {
		Cursor       int
		PrevDisabled bool
		NextDisabled bool
	}
	v, err := pager.New(pages(3), nil)
	if err != nil {
		t.Fatal(err)
	}
	get := func() state {
		return state{v.Cursor(), v.PrevDisabled(), v.NextDisabled()}
	}
	if diff := cmp.Diff(get(), state{0, true, false}); diff != "" {
		t.Errorf("wrong initial state (+got/-want):\n%s", diff)
	}
	steps := []struct {
		ok   bool
		want state
	}{
		{true, state{1, false, false}},
		{true, state{2, false, true}},
		{false, state{2, false, true}},
	}
	for i, s := range steps {
		if ok := v.Next(); ok != s.ok {
			t.Errorf("wrong result from next %d: want %t, got %t", i, s.ok, ok)
		}
		if diff := cmp.Diff(get(), s.want); diff != "" {
			t.Errorf("wrong state after next %d (+got/-want):\n%s", i, diff)
		}
	}
	if got := v.Page().Description; got != "c" {
		t.Errorf("wrong page: want %q, got %q", "c", got)
	}
}

func TestSinglePage(t *testing.T) {
	v, err := pager.New(pages(1), nil)
	if err != nil {
		t.Fatal(err)
	}
	if !v.PrevDisabled() || !v.NextDisabled() {
		t.Errorf("both controls should be disabled on a single page")
	}
	if v.Next() || v.Prev() {
		t.Errorf("transitions on a single page should fail")
	}
}

func TestSelect(t *testing.T) {
	v, err := pager.New(pages(4), nil)
	if err != nil {
		t.Fatal(err)
	}
	cases := []struct {
		i    int
		ok   bool
		want int
	}{
		{2, true, 2},
		{-1, false, 2},
		{4, false, 2},
		{3, true, 3},
		{0, true, 0},
	}
	for _, c := range cases {
		if ok := v.Select(c.i); ok != c.ok {
			t.Errorf("wrong result selecting %d: want %t, got %t", c.i, c.ok, ok)
		}
		if got := v.Cursor(); got != c.want {
			t.Errorf("wrong cursor after selecting %d: want %d, got %d", c.i, c.want, got)
		}
		s := v.State()
		if s.PrevDisabled != (s.Cursor == 0) || s.NextDisabled != (s.Cursor == s.Len-1) {
			t.Errorf("controls disagree with cursor: %+v", s)
		}
	}
}

func TestRandomWalk(t *testing.T) {
	for n := 1; n <= 6; n++ {
		v, err := pager.New(pages(n), nil)
		if err != nil {
			t.Fatal(err)
		}
		for range 500 {
			before := v.Cursor()
			var ok bool
			if rand.IntN(2) == 0 {
				ok = v.Next()
				if ok != (before < n-1) {
					t.Fatalf("next at %d of %d gave %t", before, n, ok)
				}
			} else {
				ok = v.Prev()
				if ok != (before > 0) {
					t.Fatalf("prev at %d of %d gave %t", before, n, ok)
				}
			}
			c := v.Cursor()
			if c < 0 || c > n-1 {
				t.Fatalf("cursor %d out of bounds for %d pages", c, n)
			}
			if v.PrevDisabled() != (c == 0) || v.NextDisabled() != (c == n-1) {
				t.Fatalf("controls disagree with cursor %d of %d", c, n)
			}
		}
	}
}

func TestDefaultChoices(t *testing.T) {
	p := []payload.Page{{Title: "AAPL"}, {}}
	v, err := pager.New(p, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := []payload.Choice{
		{Label: "AAPL", Description: "Page 1"},
		{Label: "Page 2"},
	}
	if diff := cmp.Diff(v.Choices(), want); diff != "" {
		t.Errorf("wrong choices (+got/-want):\n%s", diff)
	}
}

func TestFooter(t *testing.T) {
	v, err := pager.New(pages(5), nil)
	if err != nil {
		t.Fatal(err)
	}
	v.Next()
	if got := v.State().Footer(); got != "Page 2/5" {
		t.Errorf("wrong footer: want %q, got %q", "Page 2/5", got)
	}
}
