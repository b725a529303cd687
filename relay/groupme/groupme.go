// Package groupme relays command responses to GroupMe groups through the bots
// API.
package groupme

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/go-json-experiment/json"

	"github.com/zephyrtronium/bourse/pager"
	"github.com/zephyrtronium/bourse/payload"
	"github.com/zephyrtronium/bourse/relay"
)

const (
	// Limit is the longest description sent in one message.
	Limit = 990
	// textLimit is the longest text GroupMe accepts in one message.
	textLimit = 1000
)

const (
	defaultAPI    = "https://api.groupme.com/v3"
	defaultImages = "https://image.groupme.com"
)

// Bot is a relay.Platform that posts as a GroupMe bot.
// A GroupMe bot belongs to exactly one group.
type Bot struct {
	// HTTP is the HTTP client for performing requests.
	// If nil, http.DefaultClient is used.
	HTTP *http.Client
	// ID is the bot ID.
	ID string
	// Token is the access token for the image service.
	Token string
	// API and Images are the base URLs of the GroupMe API and image service.
	// If empty, the public services are used.
	API    string
	Images string
}

var _ relay.Platform = (*Bot)(nil)

type attachment struct {
	Type string `json:"type"`
	URL  string `json:"url,omitempty"`
}

type post struct {
	BotID       string       `json:"bot_id"`
	Text        string       `json:"text"`
	Attachments []attachment `json:"attachments,omitempty"`
}

// Text posts the message. If the title and description don't fit in one
// message together, the title is sent first on its own.
func (b *Bot) Text(ctx context.Context, msg payload.Message) error {
	return b.texts(ctx, msg.Title, msg.Description, nil)
}

func (b *Bot) texts(ctx context.Context, title, desc string, att []attachment) error {
	t := join(title, desc)
	if len(t) <= textLimit {
		return b.post(ctx, t, att)
	}
	if err := b.post(ctx, title, nil); err != nil {
		return err
	}
	return b.post(ctx, desc, att)
}

// Image uploads an image to the GroupMe image service and posts it with the
// message.
func (b *Bot) Image(ctx context.Context, msg payload.Message, f *payload.File) error {
	u, err := b.upload(ctx, f)
	if err != nil {
		return err
	}
	return b.texts(ctx, msg.Title, msg.Description, []attachment{{Type: "image", URL: u}})
}

// Paginate posts every page in order. GroupMe has no interactive components,
// so the view is released once all pages are sent.
func (b *Bot) Paginate(ctx context.Context, v *pager.View) error {
	defer v.Release()
	for i, p := range v.Pages() {
		s := pager.State{Page: p, Cursor: i, Len: v.Len()}
		desc := p.Description
		var att []attachment
		switch {
		case p.Image != nil:
			u, err := b.upload(ctx, p.Image)
			if err != nil {
				return err
			}
			att = []attachment{{Type: "image", URL: u}}
		case p.ImageURL != "":
			desc = join(desc, p.ImageURL)
		}
		if err := b.texts(ctx, p.Title+" ("+s.Footer()+")", desc, att); err != nil {
			return err
		}
	}
	return nil
}

// Limit returns the longest description that fits in one message.
func (b *Bot) Limit() int {
	return Limit
}

func (b *Bot) client() *http.Client {
	if b.HTTP == nil {
		return http.DefaultClient
	}
	return b.HTTP
}

func (b *Bot) post(ctx context.Context, text string, att []attachment) error {
	body, err := json.Marshal(post{BotID: b.ID, Text: text, Attachments: att})
	if err != nil {
		return fmt.Errorf("couldn't encode groupme post: %w", err)
	}
	u := b.API
	if u == "" {
		u = defaultAPI
	}
	req, err := http.NewRequestWithContext(ctx, "POST", u+"/bots/post", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("couldn't make request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	_, err = do(b.client(), req)
	return err
}

// upload sends an image to the GroupMe image service and returns its URL.
func (b *Bot) upload(ctx context.Context, f *payload.File) (string, error) {
	r, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("couldn't open image: %w", err)
	}
	defer r.Close()
	u := b.Images
	if u == "" {
		u = defaultImages
	}
	req, err := http.NewRequestWithContext(ctx, "POST", u+"/pictures", r)
	if err != nil {
		return "", fmt.Errorf("couldn't make request: %w", err)
	}
	req.Header.Set("Content-Type", "image/png")
	req.Header.Set("X-Access-Token", b.Token)
	if info, err := r.Stat(); err == nil {
		req.ContentLength = info.Size()
	}
	resp, err := do(b.client(), req)
	if err != nil {
		return "", err
	}
	var pic struct {
		Payload struct {
			URL        string `json:"url"`
			PictureURL string `json:"picture_url"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(resp, &pic); err != nil {
		return "", fmt.Errorf("couldn't decode image service response: %w", err)
	}
	if pic.Payload.PictureURL == "" {
		return pic.Payload.URL, nil
	}
	return pic.Payload.PictureURL, nil
}

// do performs a request and returns the response body, truncated to 2 MB.
func do(hc *http.Client, req *http.Request) ([]byte, error) {
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("couldn't %s: %w", req.Method, err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return nil, fmt.Errorf("couldn't read response: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("groupme request failed: %s (%s)", bytes.TrimSpace(b), resp.Status)
	}
	return b, nil
}

func join(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + "\n" + b
	}
}
