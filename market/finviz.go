package market

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/zephyrtronium/bourse/payload"
)

var (
	// Finviz is the base URL of Finviz quote pages.
	Finviz = "https://finviz.com/quote.ashx"
	// FinvizCharts is the base URL of Finviz chart images.
	FinvizCharts = "https://charts2.finviz.com/chart.ashx"
)

// Rating is one analyst rating action.
type Rating struct {
	Date   string
	Action string
	Firm   string
	Rating string
	Target string
}

// Analysts fetches recent analyst ratings for a ticker.
func (c *Client) Analysts(ctx context.Context, ticker string) ([]Rating, error) {
	u := Finviz + "?" + url.Values{"t": {ticker}, "p": {"d"}}.Encode()
	b, err := c.get(ctx, "finviz", u, true)
	if err != nil {
		return nil, fmt.Errorf("couldn't get quote page for %s: %w", ticker, notFound(err))
	}
	return parseRatings(b)
}

func parseRatings(b []byte) ([]Rating, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("couldn't parse quote page: %w", err)
	}
	var r []Rating
	doc.Find("table.js-table-ratings tr, table.fullview-ratings-outer table tr").Each(func(_ int, row *goquery.Selection) {
		var cells []string
		row.Find("td").Each(func(_ int, td *goquery.Selection) {
			cells = append(cells, strings.Join(strings.Fields(td.Text()), " "))
		})
		if len(cells) < 5 {
			return
		}
		r = append(r, Rating{
			Date:   cells[0],
			Action: cells[1],
			Firm:   cells[2],
			Rating: cells[3],
			Target: cells[4],
		})
	})
	if len(r) == 0 {
		return nil, ErrNoData
	}
	return r, nil
}

// ChartImage downloads a daily candlestick chart for a ticker.
// The caller owns the returned file.
func (c *Client) ChartImage(ctx context.Context, ticker string) (*payload.File, error) {
	v := url.Values{"t": {ticker}, "ty": {"c"}, "ta": {"1"}, "p": {"d"}, "s": {"l"}}
	b, err := c.get(ctx, "finviz", FinvizCharts+"?"+v.Encode(), false)
	if err != nil {
		return nil, fmt.Errorf("couldn't get chart image for %s: %w", ticker, notFound(err))
	}
	if len(b) == 0 {
		return nil, ErrNoData
	}
	f, w, err := payload.CreateFile(c.Scratch, ".png")
	if err != nil {
		return nil, err
	}
	_, err = w.Write(b)
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		f.Release()
		return nil, fmt.Errorf("couldn't write chart image: %w", err)
	}
	return f, nil
}
