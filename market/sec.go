package market

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// EDGAR is the URL of the SEC EDGAR company browser.
var EDGAR = "https://www.sec.gov/cgi-bin/browse-edgar"

// Filing is a document filed with the SEC.
type Filing struct {
	Form  string
	Title string
	Link  string
	Date  time.Time
}

// Filings fetches a company's recent SEC filings, newest first.
func (c *Client) Filings(ctx context.Context, ticker string) ([]Filing, error) {
	v := url.Values{
		"action": {"getcompany"},
		"CIK":    {ticker},
		"type":   {""},
		"dateb":  {""},
		"owner":  {"include"},
		"count":  {"40"},
		"output": {"atom"},
	}
	b, err := c.get(ctx, "sec", EDGAR+"?"+v.Encode(), true)
	if err != nil {
		return nil, fmt.Errorf("couldn't get filings for %s: %w", ticker, notFound(err))
	}
	return parseFilings(b)
}

func parseFilings(b []byte) ([]Filing, error) {
	if !bytes.Contains(b, []byte("<feed")) {
		// EDGAR answers unknown companies with an HTML page.
		return nil, ErrUnknownTicker
	}
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("couldn't parse filings feed: %w", err)
	}
	r := make([]Filing, 0, len(feed.Items))
	for _, it := range feed.Items {
		f := Filing{
			Title: strings.TrimSpace(it.Title),
			Link:  it.Link,
		}
		f.Form, _, _ = strings.Cut(f.Title, " - ")
		for _, c := range it.Categories {
			f.Form = c
			break
		}
		switch {
		case it.UpdatedParsed != nil:
			f.Date = *it.UpdatedParsed
		case it.PublishedParsed != nil:
			f.Date = *it.PublishedParsed
		}
		r = append(r, f)
	}
	if len(r) == 0 {
		return nil, ErrNoData
	}
	return r, nil
}
