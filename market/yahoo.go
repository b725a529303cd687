package market

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/go-json-experiment/json"
)

// Yahoo is the base URL of the Yahoo Finance chart API.
var Yahoo = "https://query1.finance.yahoo.com/v8/finance/chart/"

// Bar is one interval of trading.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// Series is a sequence of bars for one symbol.
type Series struct {
	Symbol   string
	Currency string
	// Price is the latest regular market price.
	Price float64
	Bars  []Bar
}

// Closes returns the closing prices of the series' bars.
func (s *Series) Closes() []float64 {
	r := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		r[i] = b.Close
	}
	return r
}

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta struct {
		Symbol             string  `json:"symbol"`
		Currency           string  `json:"currency"`
		RegularMarketPrice float64 `json:"regularMarketPrice"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Open   []*float64 `json:"open"`
			High   []*float64 `json:"high"`
			Low    []*float64 `json:"low"`
			Close  []*float64 `json:"close"`
			Volume []*int64   `json:"volume"`
		} `json:"quote"`
	} `json:"indicators"`
}

// Chart fetches bars for a symbol. Interval is a Yahoo interval like 1d or
// 5m, and span is a range like 1mo or 5d.
func (c *Client) Chart(ctx context.Context, symbol, interval, span string) (*Series, error) {
	v := url.Values{"interval": {interval}, "range": {span}}
	u := Yahoo + url.PathEscape(symbol) + "?" + v.Encode()
	b, err := c.get(ctx, "yahoo", u, true)
	if err != nil {
		return nil, fmt.Errorf("couldn't get chart for %s: %w", symbol, notFound(err))
	}
	return parseChart(b)
}

func parseChart(b []byte) (*Series, error) {
	var resp chartResponse
	if err := json.Unmarshal(b, &resp); err != nil {
		return nil, fmt.Errorf("couldn't decode chart: %w", err)
	}
	if e := resp.Chart.Error; e != nil {
		if e.Code == "Not Found" {
			return nil, ErrUnknownTicker
		}
		return nil, fmt.Errorf("chart error: %s", e.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, ErrNoData
	}
	r := resp.Chart.Result[0]
	s := Series{
		Symbol:   r.Meta.Symbol,
		Currency: r.Meta.Currency,
		Price:    r.Meta.RegularMarketPrice,
	}
	if len(r.Indicators.Quote) == 0 {
		return nil, ErrNoData
	}
	q := r.Indicators.Quote[0]
	for i, ts := range r.Timestamp {
		// Bars without a close are halts or the current unfinished interval.
		if i >= len(q.Close) || q.Close[i] == nil {
			continue
		}
		s.Bars = append(s.Bars, Bar{
			Time:   time.Unix(ts, 0).UTC(),
			Open:   at(q.Open, i),
			High:   at(q.High, i),
			Low:    at(q.Low, i),
			Close:  *q.Close[i],
			Volume: at(q.Volume, i),
		})
	}
	if len(s.Bars) == 0 {
		return nil, ErrNoData
	}
	return &s, nil
}

func at[T any](s []*T, i int) T {
	if i >= len(s) || s[i] == nil {
		var zero T
		return zero
	}
	return *s[i]
}

// OptionHistory fetches daily bars for an option contract.
func (c *Client) OptionHistory(ctx context.Context, opt Option) (*Series, error) {
	s, err := c.Chart(ctx, opt.Symbol(), "1d", "3mo")
	if errors.Is(err, ErrUnknownTicker) {
		// Yahoo forgets contracts that never traded.
		return nil, ErrNoData
	}
	return s, err
}
