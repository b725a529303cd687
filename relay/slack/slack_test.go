package slack

import (
	"context"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/slack-go/slack"

	"github.com/zephyrtronium/bourse/pager"
	"github.com/zephyrtronium/bourse/payload"
)

type fakeClient struct {
	posts   int
	updates []string // timestamps of updated messages
	uploads []slack.UploadFileV2Parameters
	bodies  []string
}

func (c *fakeClient) PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error) {
	c.posts++
	return channelID, "1700000000.000100", nil
}

func (c *fakeClient) UpdateMessageContext(ctx context.Context, channelID, timestamp string, options ...slack.MsgOption) (string, string, string, error) {
	c.updates = append(c.updates, timestamp)
	return channelID, timestamp, "", nil
}

func (c *fakeClient) UploadFileV2Context(ctx context.Context, params slack.UploadFileV2Parameters) (*slack.FileSummary, error) {
	b, err := io.ReadAll(params.Reader)
	if err != nil {
		return nil, err
	}
	params.Reader = nil
	c.uploads = append(c.uploads, params)
	c.bodies = append(c.bodies, string(b))
	return &slack.FileSummary{ID: "F1", Title: params.Title}, nil
}

// actions returns the action IDs in a rendered view.
func actions(t *testing.T, bb []slack.Block) []string {
	t.Helper()
	a, ok := bb[len(bb)-1].(*slack.ActionBlock)
	if !ok {
		t.Fatalf("last block is %T, not actions", bb[len(bb)-1])
	}
	var r []string
	for _, e := range a.Elements.ElementSet {
		switch e := e.(type) {
		case *slack.ButtonBlockElement:
			r = append(r, e.ActionID)
		case *slack.SelectBlockElement:
			r = append(r, e.ActionID)
		}
	}
	return r
}

func TestBlocks(t *testing.T) {
	v, err := pager.New([]payload.Page{{Title: "a"}, {Title: "b"}, {Title: "c"}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	cases := []struct {
		cursor int
		want   []string
	}{
		{0, []string{nextID, selectID}},
		{1, []string{prevID, nextID, selectID}},
		{2, []string{prevID, selectID}},
	}
	for _, c := range cases {
		v.Select(c.cursor)
		got := actions(t, blocks(v, v.State()))
		if diff := cmp.Diff(got, c.want); diff != "" {
			t.Errorf("wrong controls at %d (+got/-want):\n%s", c.cursor, diff)
		}
	}
}

func TestUpload(t *testing.T) {
	f, w, err := payload.CreateFile(t.TempDir(), ".png")
	if err != nil {
		t.Fatal(err)
	}
	w.WriteString("png bytes")
	w.Close()
	var cl fakeClient
	c := Channel{Client: &cl, ID: "C1", Thread: "1.2", Views: pager.NewStore(0, nil)}
	if err := c.Image(context.Background(), payload.Message{Title: "ta-view", Description: "TSLA"}, f); err != nil {
		t.Fatal(err)
	}
	want := []slack.UploadFileV2Parameters{{
		FileSize:        len("png bytes"),
		Filename:        f.Name(),
		Title:           "ta-view",
		InitialComment:  "ta-view\nTSLA",
		Channel:         "C1",
		ThreadTimestamp: "1.2",
	}}
	if diff := cmp.Diff(cl.uploads, want); diff != "" {
		t.Errorf("wrong upload (+got/-want):\n%s", diff)
	}
	if cl.bodies[0] != "png bytes" {
		t.Errorf("wrong upload body %q", cl.bodies[0])
	}
}

func click(id, value string) *slack.InteractionCallback {
	cb := slack.InteractionCallback{
		Type:      slack.InteractionTypeBlockActions,
		Container: slack.Container{ChannelID: "C1", MessageTs: "1700000000.000100"},
	}
	a := slack.BlockAction{ActionID: id, Value: value}
	if id == selectID {
		a.SelectedOption = slack.OptionBlockObject{Value: value}
	}
	cb.ActionCallback.BlockActions = []*slack.BlockAction{&a}
	return &cb
}

func TestPaginate(t *testing.T) {
	var cl fakeClient
	views := pager.NewStore(0, nil)
	c := Channel{Client: &cl, ID: "C1", Views: views}
	v, err := pager.New([]payload.Page{{Title: "a"}, {Title: "b"}, {Title: "c"}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Paginate(context.Background(), v); err != nil {
		t.Fatal(err)
	}
	if cl.posts != 1 {
		t.Errorf("wrong number of posts: want 1, got %d", cl.posts)
	}
	steps := []struct {
		cb   *slack.InteractionCallback
		want int
	}{
		{click(nextID, "1"), 1},
		{click(nextID, "2"), 2},
		{click(selectID, "0"), 0},
		{click(prevID, "-1"), 0},
	}
	for k, s := range steps {
		ok, err := Interact(context.Background(), &cl, views, s.cb)
		if !ok || err != nil {
			t.Fatalf("step %d: callback not handled: %v", k, err)
		}
		if v.Cursor() != s.want {
			t.Errorf("step %d: wrong cursor: want %d, got %d", k, s.want, v.Cursor())
		}
	}
	if len(cl.updates) != len(steps) {
		t.Errorf("wrong number of updates: want %d, got %d", len(steps), len(cl.updates))
	}
}

func TestInteractIgnores(t *testing.T) {
	var cl fakeClient
	views := pager.NewStore(0, nil)
	cb := click("someone_else", "")
	if ok, _ := Interact(context.Background(), &cl, views, cb); ok {
		t.Errorf("handled a foreign action")
	}
	cb = &slack.InteractionCallback{Type: slack.InteractionTypeViewSubmission}
	if ok, _ := Interact(context.Background(), &cl, views, cb); ok {
		t.Errorf("handled a view submission")
	}
}

func TestInteractExpired(t *testing.T) {
	var cl fakeClient
	ok, err := Interact(context.Background(), &cl, pager.NewStore(0, nil), click(nextID, "1"))
	if !ok || err != nil {
		t.Fatalf("callback not handled: %v", err)
	}
	if len(cl.updates) != 1 {
		t.Errorf("expired view not updated")
	}
}

func TestFallback(t *testing.T) {
	cases := []struct{ title, desc, want string }{
		{"t", "d", "t\nd"},
		{"", "d", "d"},
		{"t", "", "t"},
	}
	for _, c := range cases {
		if got := fallback(c.title, c.desc); got != c.want {
			t.Errorf("fallback(%q, %q): want %q, got %q", c.title, c.desc, c.want, got)
		}
	}
}
