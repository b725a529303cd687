package discord

import (
	"context"
	"io"
	"strconv"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/google/go-cmp/cmp"

	"github.com/zephyrtronium/bourse/pager"
	"github.com/zephyrtronium/bourse/payload"
)

type fakeSession struct {
	sent      []*discordgo.MessageSend
	files     []string // contents of uploaded files
	responses []*discordgo.InteractionResponse
}

func (s *fakeSession) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	s.sent = append(s.sent, data)
	for _, f := range data.Files {
		b, err := io.ReadAll(f.Reader)
		if err != nil {
			return nil, err
		}
		s.files = append(s.files, string(b))
	}
	return &discordgo.Message{ID: "m" + strconv.Itoa(len(s.sent)), ChannelID: channelID}, nil
}

func (s *fakeSession) InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error {
	s.responses = append(s.responses, resp)
	return nil
}

func TestText(t *testing.T) {
	var s fakeSession
	c := Channel{Session: &s, ID: "c1", Reply: "r1", Views: pager.NewStore(0, nil)}
	if err := c.Text(context.Background(), payload.Message{Title: "dd-sec", Description: "No available data found"}); err != nil {
		t.Fatal(err)
	}
	if len(s.sent) != 1 {
		t.Fatalf("wrong number of sends: want 1, got %d", len(s.sent))
	}
	m := s.sent[0]
	if m.Reference == nil || m.Reference.MessageID != "r1" {
		t.Errorf("message isn't a reply: %+v", m.Reference)
	}
	if got := m.Embeds[0].Description; got != "No available data found" {
		t.Errorf("wrong description: %q", got)
	}
}

func TestImage(t *testing.T) {
	f, w, err := payload.CreateFile(t.TempDir(), ".png")
	if err != nil {
		t.Fatal(err)
	}
	w.WriteString("png bytes")
	w.Close()
	var s fakeSession
	c := Channel{Session: &s, ID: "c1", Views: pager.NewStore(0, nil)}
	if err := c.Image(context.Background(), payload.Message{Title: "ta-view"}, f); err != nil {
		t.Fatal(err)
	}
	m := s.sent[0]
	if got, want := m.Embeds[0].Image.URL, "attachment://"+f.Name(); got != want {
		t.Errorf("wrong image url: want %q, got %q", want, got)
	}
	if diff := cmp.Diff(s.files, []string{"png bytes"}); diff != "" {
		t.Errorf("wrong uploads (+got/-want):\n%s", diff)
	}
}

func buttons(t *testing.T, comps []discordgo.MessageComponent) (prev, next bool) {
	t.Helper()
	row := comps[0].(discordgo.ActionsRow)
	return row.Components[0].(discordgo.Button).Disabled, row.Components[1].(discordgo.Button).Disabled
}

func press(id string, values ...string) *discordgo.Interaction {
	return &discordgo.Interaction{
		Type:    discordgo.InteractionMessageComponent,
		Message: &discordgo.Message{ID: "m1"},
		Data:    discordgo.MessageComponentInteractionData{CustomID: id, Values: values},
	}
}

func TestPaginate(t *testing.T) {
	var s fakeSession
	views := pager.NewStore(0, nil)
	c := Channel{Session: &s, ID: "c1", Views: views}
	v, err := pager.New([]payload.Page{
		{Title: "a", Description: "1"},
		{Title: "b", Description: "2", ImageURL: "https://example.com/b.png"},
		{Title: "c", Description: "3"},
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Paginate(context.Background(), v); err != nil {
		t.Fatal(err)
	}
	if got, ok := views.Get("m1"); !ok || got != v {
		t.Fatalf("view not stored under the sent message")
	}
	prev, next := buttons(t, s.sent[0].Components)
	if !prev || next {
		t.Errorf("wrong initial controls: prev disabled %t, next disabled %t", prev, next)
	}
	if got := s.sent[0].Embeds[0].Footer.Text; got != "Page 1/3" {
		t.Errorf("wrong footer: %q", got)
	}

	steps := []struct {
		i      *discordgo.Interaction
		cursor int
		prev   bool
		next   bool
	}{
		{press(nextID), 1, false, false},
		{press(nextID), 2, false, true},
		{press(nextID), 2, false, true},
		{press(selectID, "0"), 0, true, false},
		{press(prevID), 0, true, false},
		{press(selectID, "9"), 0, true, false},
	}
	for k, st := range steps {
		ok, err := Interact(context.Background(), &s, views, st.i)
		if !ok || err != nil {
			t.Fatalf("step %d: interaction not handled: %v", k, err)
		}
		if v.Cursor() != st.cursor {
			t.Errorf("step %d: wrong cursor: want %d, got %d", k, st.cursor, v.Cursor())
		}
		resp := s.responses[len(s.responses)-1]
		if resp.Type != discordgo.InteractionResponseUpdateMessage {
			t.Errorf("step %d: wrong response type %v", k, resp.Type)
		}
		prev, next := buttons(t, resp.Data.Components)
		if prev != st.prev || next != st.next {
			t.Errorf("step %d: wrong controls: want %t %t, got %t %t", k, st.prev, st.next, prev, next)
		}
	}
	if got := s.responses[0].Data.Embeds[0].Image.URL; got != "https://example.com/b.png" {
		t.Errorf("wrong image on page 2: %q", got)
	}
}

func TestInteractExpired(t *testing.T) {
	var s fakeSession
	ok, err := Interact(context.Background(), &s, pager.NewStore(0, nil), press(nextID))
	if !ok || err != nil {
		t.Fatalf("interaction not handled: %v", err)
	}
	if s.responses[0].Data.Flags != discordgo.MessageFlagsEphemeral {
		t.Errorf("expiry notice should be ephemeral")
	}
}

func TestInteractOther(t *testing.T) {
	var s fakeSession
	i := &discordgo.Interaction{Type: discordgo.InteractionApplicationCommand}
	if ok, _ := Interact(context.Background(), &s, pager.NewStore(0, nil), i); ok {
		t.Errorf("handled a slash command")
	}
	if ok, _ := Interact(context.Background(), &s, pager.NewStore(0, nil), press("other:thing")); ok {
		t.Errorf("handled a foreign component")
	}
}

func TestWindow(t *testing.T) {
	cases := []struct {
		cursor, n, size int
		lo, hi          int
	}{
		{0, 5, 25, 0, 5},
		{0, 100, 25, 0, 25},
		{50, 100, 25, 38, 63},
		{99, 100, 25, 75, 100},
	}
	for _, c := range cases {
		lo, hi := window(c.cursor, c.n, c.size)
		if lo != c.lo || hi != c.hi {
			t.Errorf("window(%d, %d, %d): want %d %d, got %d %d", c.cursor, c.n, c.size, c.lo, c.hi, lo, hi)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("ぼっちざろっく", 3); got != "ぼっち" {
		t.Errorf("wrong truncation: %q", got)
	}
	if got := truncate("ryo", 10); got != "ryo" {
		t.Errorf("wrong truncation: %q", got)
	}
}
