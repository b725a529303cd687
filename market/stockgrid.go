package market

import (
	"context"
	"fmt"
	"net/url"

	"github.com/go-json-experiment/json"
)

// Stockgrid is the URL of the Stockgrid dark pool data API.
var Stockgrid = "https://www.stockgrid.io/get_dark_pool_data"

// DarkPoolSorts maps short sort names to Stockgrid columns.
var DarkPoolSorts = map[string]string{
	"sv":         "Short Volume",
	"sv_pct":     "Short Volume %",
	"nsv":        "Net Short Volume",
	"nsv_dollar": "Net Short Volume $",
	"dpp":        "Dark Pools Position",
	"dpp_dollar": "Dark Pools Position $",
}

// Position is a ticker's dark pool activity for a day.
type Position struct {
	Ticker                 string  `json:"Ticker"`
	Date                   string  `json:"Date"`
	ShortVolume            float64 `json:"Short Volume"`
	ShortVolumePct         float64 `json:"Short Volume %"`
	NetShortVolume         float64 `json:"Net Short Volume"`
	NetShortVolumeDollar   float64 `json:"Net Short Volume $"`
	DarkPoolPosition       float64 `json:"Dark Pools Position"`
	DarkPoolPositionDollar float64 `json:"Dark Pools Position $"`
}

// DarkPools fetches the top n tickers by a dark pool statistic, given as a
// key of DarkPoolSorts.
func (c *Client) DarkPools(ctx context.Context, sort string, n int) ([]Position, error) {
	col, ok := DarkPoolSorts[sort]
	if !ok {
		return nil, fmt.Errorf("unknown dark pool sort %q", sort)
	}
	u := Stockgrid + "?" + url.Values{"top": {col}, "minmax": {"desc"}}.Encode()
	b, err := c.get(ctx, "stockgrid", u, true)
	if err != nil {
		return nil, fmt.Errorf("couldn't get dark pool data: %w", err)
	}
	var resp struct {
		Data []Position `json:"data"`
	}
	if err := json.Unmarshal(b, &resp); err != nil {
		return nil, fmt.Errorf("couldn't decode dark pool data: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, ErrNoData
	}
	return resp.Data[:min(n, len(resp.Data))], nil
}
