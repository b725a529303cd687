package console_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/zephyrtronium/bourse/pager"
	"github.com/zephyrtronium/bourse/payload"
	"github.com/zephyrtronium/bourse/relay/console"
)

func TestText(t *testing.T) {
	var b strings.Builder
	w := console.Writer{W: &b}
	if err := w.Text(context.Background(), payload.Message{Title: "dd-sec", Description: "No available data found"}); err != nil {
		t.Fatal(err)
	}
	want := "== dd-sec ==\nNo available data found\n\n"
	if diff := cmp.Diff(b.String(), want); diff != "" {
		t.Errorf("wrong output (+got/-want):\n%s", diff)
	}
}

func TestImageKeep(t *testing.T) {
	scratch, keep := t.TempDir(), t.TempDir()
	f, fw, err := payload.CreateFile(scratch, ".png")
	if err != nil {
		t.Fatal(err)
	}
	fw.WriteString("png bytes")
	fw.Close()
	var b strings.Builder
	w := console.Writer{W: &b, Keep: keep}
	if err := w.Image(context.Background(), payload.Message{Title: "ta-view"}, f); err != nil {
		t.Fatal(err)
	}
	p := filepath.Join(keep, f.Name())
	got, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("couldn't read kept image: %v", err)
	}
	if string(got) != "png bytes" {
		t.Errorf("wrong image contents: %q", got)
	}
	want := "== ta-view ==\n[image: " + p + "]\n\n"
	if diff := cmp.Diff(b.String(), want); diff != "" {
		t.Errorf("wrong output (+got/-want):\n%s", diff)
	}
}

func TestPaginate(t *testing.T) {
	dir := t.TempDir()
	f, fw, err := payload.CreateFile(dir, ".png")
	if err != nil {
		t.Fatal(err)
	}
	fw.Close()
	v, err := pager.New([]payload.Page{
		{Title: "a", Description: "1", Image: f},
		{Title: "b", Description: "2", ImageURL: "https://example.com/b.png"},
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	var b strings.Builder
	w := console.Writer{W: &b}
	if err := w.Paginate(context.Background(), v); err != nil {
		t.Fatal(err)
	}
	want := "== a (Page 1/2) ==\n1\n[image: " + f.Name() + "]\n\n== b (Page 2/2) ==\n2\n[image: https://example.com/b.png]\n\n"
	if diff := cmp.Diff(b.String(), want); diff != "" {
		t.Errorf("wrong output (+got/-want):\n%s", diff)
	}
	ents, _ := os.ReadDir(dir)
	if len(ents) != 0 {
		t.Errorf("view files not released: %v", ents)
	}
}
