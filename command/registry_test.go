package command_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/zephyrtronium/bourse/command"
	"github.com/zephyrtronium/bourse/payload"
)

func nop(ctx context.Context, call *command.Invocation) (*payload.Payload, error) {
	return payload.Text(call.Name, ""), nil
}

func TestNewRegistryErrors(t *testing.T) {
	cases := []struct {
		name  string
		specs []command.Spec
	}{
		{"no-name", []command.Spec{{Func: nop}}},
		{"no-func", []command.Spec{{Name: "dd-sec"}}},
		{"duplicate", []command.Spec{{Name: "dd-sec", Func: nop}, {Name: "dd-sec", Func: nop}}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r, err := command.NewRegistry(c.specs...)
			if err == nil {
				t.Errorf("expected error, got registry with %d commands", r.Len())
			}
		})
	}
}

func TestRegistry(t *testing.T) {
	r, err := command.NewRegistry(testSpecs(nop)...)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(r.Categories(), []string{"dd", "dps", "opt", "ta"}); diff != "" {
		t.Errorf("wrong categories (+got/-want):\n%s", diff)
	}
	if diff := cmp.Diff(r.InCategory("ta"), []string{"ta-recent", "ta-rsi"}); diff != "" {
		t.Errorf("wrong commands in ta (+got/-want):\n%s", diff)
	}
	if got := r.InCategory("bogus"); len(got) != 0 {
		t.Errorf("unknown category has commands %v", got)
	}
	var names []string
	for _, s := range r.All() {
		names = append(names, s.Name)
	}
	want := []string{"dd-analyst", "dd-sec", "dps-pos", "opt-hist", "ta-recent", "ta-rsi"}
	if diff := cmp.Diff(names, want); diff != "" {
		t.Errorf("wrong commands (+got/-want):\n%s", diff)
	}
	if _, ok := r.Lookup("ta-macd"); ok {
		t.Errorf("found unregistered command")
	}
	s, ok := r.Lookup("dps-pos")
	if !ok {
		t.Fatal("dps-pos missing")
	}
	if got, want := s.Usage(), "dps-pos/sort/num"; got != want {
		t.Errorf("wrong usage: want %q, got %q", want, got)
	}
}

func TestRegistryCopies(t *testing.T) {
	specs := testSpecs(nop)
	r, err := command.NewRegistry(specs...)
	if err != nil {
		t.Fatal(err)
	}
	specs[2].Required[0].Name = "mutated"
	s, _ := r.Lookup("dps-pos")
	if s.Required[0].Name != "sort" {
		t.Errorf("registry shares memory with its input")
	}
}

func TestCategory(t *testing.T) {
	cases := map[string]string{
		"ta-rsi":         "ta",
		"dd-analyst":     "dd",
		"help":           "help",
		"gov-lobbying-x": "gov",
	}
	for in, want := range cases {
		if got := command.Category(in); got != want {
			t.Errorf("wrong category for %q: want %q, got %q", in, want, got)
		}
	}
}
