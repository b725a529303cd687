package finance

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zephyrtronium/bourse/command"
	"github.com/zephyrtronium/bourse/market"
	"github.com/zephyrtronium/bourse/payload"
)

// filingsPerPage is the number of SEC filings on each page of dd-sec.
const filingsPerPage = 10

func (robo *Robot) analysts(ctx context.Context, call *command.Invocation) (*payload.Payload, error) {
	t := call.Args.String(command.ArgTicker)
	rr, err := robo.Market.Analysts(ctx, t)
	if err != nil {
		return nil, err
	}
	rows := [][]string{{"Date", "Action", "Firm", "Rating", "Target"}}
	for _, r := range rr {
		rows = append(rows, []string{r.Date, r.Action, r.Firm, r.Rating, r.Target})
	}
	return payload.Paged("Analyst ratings for "+t, payload.Chunk(table(rows), call.Limit)), nil
}

func (robo *Robot) filings(ctx context.Context, call *command.Invocation) (*payload.Payload, error) {
	t := call.Args.String(command.ArgTicker)
	ff, err := robo.Market.Filings(ctx, t)
	if err != nil {
		return nil, err
	}
	title := "SEC filings for " + t
	var p payload.Payload
	p.Title = title
	for chunk := range slices.Chunk(ff, filingsPerPage) {
		var b strings.Builder
		for i, f := range chunk {
			if i > 0 {
				b.WriteByte('\n')
			}
			fmt.Fprintf(&b, "%s %s: %s", f.Date.Format(time.DateOnly), f.Form, f.Link)
		}
		desc := b.String()
		if call.Limit > 0 && len(desc) > call.Limit {
			desc = payload.Chunk(desc, call.Limit)[0]
		}
		p.Pages = append(p.Pages, payload.Page{Title: title, Description: desc})
		p.Choices = append(p.Choices, payload.Choice{
			Label:       chunk[0].Date.Format(time.DateOnly) + " to " + chunk[len(chunk)-1].Date.Format(time.DateOnly),
			Description: strconv.Itoa(len(chunk)) + " filings",
		})
	}
	if len(p.Pages) == 1 {
		return payload.Text(title, p.Pages[0].Description), nil
	}
	return &p, nil
}

func (robo *Robot) darkPools(ctx context.Context, call *command.Invocation) (*payload.Payload, error) {
	sort := call.Args.String("sort")
	// num is validated but not coerced, so it arrives as text.
	n, _ := strconv.Atoi(call.Args.String("num"))
	pp, err := robo.Market.DarkPools(ctx, sort, n)
	if err != nil {
		return nil, err
	}
	rows := [][]string{{"Ticker", "Date", "Short Vol", "Short %", "Net Short Vol", "Net Short $", "DP Position", "DP Position $"}}
	for _, p := range pp {
		rows = append(rows, []string{
			p.Ticker,
			p.Date,
			robo.print.Sprintf("%.0f", p.ShortVolume),
			robo.print.Sprintf("%.2f%%", p.ShortVolumePct),
			robo.print.Sprintf("%.0f", p.NetShortVolume),
			robo.print.Sprintf("$%.0f", p.NetShortVolumeDollar),
			robo.print.Sprintf("%.0f", p.DarkPoolPosition),
			robo.print.Sprintf("$%.0f", p.DarkPoolPositionDollar),
		})
	}
	title := fmt.Sprintf("Top %d dark pool positions by %s", len(pp), market.DarkPoolSorts[sort])
	return payload.Paged(title, payload.Chunk(table(rows), call.Limit)), nil
}

// RSI parameters used by ta-rsi.
const (
	rsiLength = 14
	rsiScalar = 100
	// rsiShown is the number of recent values listed.
	rsiShown = 10
)

func (robo *Robot) rsi(ctx context.Context, call *command.Invocation) (*payload.Payload, error) {
	t := call.Args.String(command.ArgTicker)
	s, err := robo.Market.Chart(ctx, t, "1d", "6mo")
	if err != nil {
		return nil, err
	}
	rr := market.RSI(s.Closes(), rsiLength, rsiScalar)
	if rr == nil {
		return nil, market.ErrNoData
	}
	var b strings.Builder
	last := len(rr) - 1
	fmt.Fprintf(&b, "RSI(%d) %.2f, close %s on %s", rsiLength, rr[last], robo.print.Sprintf("%.2f", s.Bars[last].Close), s.Bars[last].Time.Format(time.DateOnly))
	for i := last; i > last-rsiShown && i >= rsiLength; i-- {
		fmt.Fprintf(&b, "\n%s %6.2f %s", s.Bars[i].Time.Format(time.DateOnly), rr[i], zone(rr[i]))
	}
	return payload.Text(t+" RSI", b.String()), nil
}

// zone labels an RSI value.
func zone(v float64) string {
	switch {
	case v >= 70:
		return "overbought"
	case v <= 30:
		return "oversold"
	default:
		return ""
	}
}

func (robo *Robot) view(ctx context.Context, call *command.Invocation) (*payload.Payload, error) {
	t := call.Args.String(command.ArgTicker)
	f, err := robo.Market.ChartImage(ctx, t)
	if err != nil {
		return nil, err
	}
	return &payload.Payload{Title: t + " daily chart", Image: f}, nil
}

// recentBars is the number of bars shown by ta-recent.
const recentBars = 12

func (robo *Robot) recent(ctx context.Context, call *command.Invocation) (*payload.Payload, error) {
	t := call.Args.String(command.ArgTicker)
	iv := call.Args.Int(command.ArgInterval)
	span := "1d"
	if iv >= 30 {
		span = "5d"
	}
	s, err := robo.Market.Chart(ctx, t, strconv.Itoa(iv)+"m", span)
	if err != nil {
		return nil, err
	}
	bars := s.Bars[max(len(s.Bars)-recentBars, 0):]
	rows := [][]string{{"Time", "Open", "High", "Low", "Close", "Volume"}}
	for _, b := range slices.Backward(bars) {
		rows = append(rows, robo.bar(b, "15:04"))
	}
	title := fmt.Sprintf("%s %d minute bars", t, iv)
	return payload.Paged(title, payload.Chunk(table(rows), call.Limit)), nil
}

func (robo *Robot) bar(b market.Bar, layout string) []string {
	return []string{
		b.Time.Format(layout),
		robo.print.Sprintf("%.2f", b.Open),
		robo.print.Sprintf("%.2f", b.High),
		robo.print.Sprintf("%.2f", b.Low),
		robo.print.Sprintf("%.2f", b.Close),
		robo.print.Sprintf("%d", b.Volume),
	}
}

func (robo *Robot) optionHistory(ctx context.Context, call *command.Invocation) (*payload.Payload, error) {
	exp, err := time.Parse(time.DateOnly, call.Args.String("expiry"))
	if err != nil {
		return nil, fmt.Errorf("bad expiry: %w", err)
	}
	opt := market.Option{
		Underlying: call.Args.String(command.ArgTicker),
		Expiry:     exp,
		Strike:     decimal.NewFromFloat(call.Args.Float(command.ArgStrike)),
		Put:        call.Args.String("type") == "put",
	}
	s, err := robo.Market.OptionHistory(ctx, opt)
	if err != nil {
		return nil, err
	}
	title := opt.String()
	if call.Args.Bool(command.ArgRaw) {
		rows := [][]string{{"Date", "Open", "High", "Low", "Close", "Volume"}}
		for _, b := range slices.Backward(s.Bars) {
			rows = append(rows, robo.bar(b, time.DateOnly))
		}
		return payload.Paged(title, payload.Chunk(table(rows), call.Limit)), nil
	}
	first, last := s.Bars[0], s.Bars[len(s.Bars)-1]
	hi, lo := first.High, first.Low
	var vol int64
	for _, b := range s.Bars {
		hi, lo = max(hi, b.High), min(lo, b.Low)
		vol += b.Volume
	}
	var change string
	if first.Close != 0 {
		change = robo.print.Sprintf(" (%+.1f%%)", 100*(last.Close-first.Close)/first.Close)
	}
	desc := robo.print.Sprintf("Last %.2f on %s%s\nRange %.2f to %.2f over %d sessions\nVolume %d",
		last.Close, last.Time.Format(time.DateOnly), change, lo, hi, len(s.Bars), vol)
	return payload.Text(title, desc), nil
}

func (robo *Robot) help(ctx context.Context, call *command.Invocation) (*payload.Payload, error) {
	reg := robo.registry
	var p payload.Payload
	p.Title = "Commands"
	for _, cat := range reg.Categories() {
		var b strings.Builder
		for i, name := range reg.InCategory(cat) {
			s, _ := reg.Lookup(name)
			if i > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(s.Usage())
			if s.Help != "" {
				b.WriteString(": ")
				b.WriteString(s.Help)
			}
		}
		for _, d := range payload.Chunk(b.String(), call.Limit) {
			p.Pages = append(p.Pages, payload.Page{Title: "Commands: " + cat, Description: d})
			p.Choices = append(p.Choices, payload.Choice{Label: cat, Description: "Page " + strconv.Itoa(len(p.Pages))})
		}
	}
	if len(p.Pages) == 1 {
		return payload.Text(p.Pages[0].Title, p.Pages[0].Description), nil
	}
	return &p, nil
}
