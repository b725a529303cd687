package command_test

import (
	"context"
	"sync"

	"github.com/zephyrtronium/bourse/command"
	"github.com/zephyrtronium/bourse/payload"
)

// spyRelay records what is sent through it.
type spyRelay struct {
	mu       sync.Mutex
	texts    []payload.Message
	rendered []*payload.Payload
	limit    int
	err      error
}

func (r *spyRelay) Text(ctx context.Context, msg payload.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.texts = append(r.texts, msg)
	return r.err
}

func (r *spyRelay) Render(ctx context.Context, p *payload.Payload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rendered = append(r.rendered, p)
	p.Release()
	return r.err
}

func (r *spyRelay) Limit() int { return r.limit }

var _ command.Relay = (*spyRelay)(nil)

// counter is a handler that counts its calls and records its arguments.
type counter struct {
	mu    sync.Mutex
	calls []command.Args
	resp  *payload.Payload
	err   error
}

func (c *counter) fn(ctx context.Context, call *command.Invocation) (*payload.Payload, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, call.Args)
	if c.err != nil {
		return nil, c.err
	}
	if c.resp != nil {
		return c.resp, nil
	}
	return payload.Text(call.Name, "ok"), nil
}

var sorts = command.Allow("sv", "sv_pct", "nsv", "nsv_dollar", "dpp", "dpp_dollar")

var tickers = command.Allow("AAPL", "MSFT", "TSLA")

// testSpecs builds a small registry shaped like the finance commands.
func testSpecs(fn command.Func) []command.Spec {
	return []command.Spec{
		{
			Name:     "dd-analyst",
			Func:     fn,
			Required: []command.Param{{Name: "ticker", Constraint: tickers}},
		},
		{
			Name:     "dd-sec",
			Func:     fn,
			Required: []command.Param{{Name: "ticker", Constraint: tickers}},
		},
		{
			Name: "dps-pos",
			Func: fn,
			Required: []command.Param{
				{Name: "sort", Constraint: sorts},
				{Name: "num", Constraint: command.Pattern{Format: command.PositiveInt}},
			},
		},
		{
			Name:     "ta-rsi",
			Func:     fn,
			Required: []command.Param{{Name: "ticker", Constraint: tickers}},
			Optional: []command.Param{
				{Name: "length", Constraint: command.Pattern{Format: command.PositiveInt}},
				{Name: "scalar", Constraint: command.Pattern{Format: command.PositiveInt}},
				{Name: "start", Constraint: command.Pattern{Format: command.Date}},
			},
		},
		{
			Name: "opt-hist",
			Func: fn,
			Required: []command.Param{
				{Name: "ticker", Constraint: tickers},
				{Name: "expiry", Constraint: command.Pattern{Format: command.Date}},
				{Name: "strike", Constraint: command.Pattern{Format: command.SignedFloat}},
				{Name: "type", Constraint: command.Allow("call", "put")},
				{Name: "raw"},
			},
		},
		{
			Name: "ta-recent",
			Func: fn,
			Required: []command.Param{
				{Name: "ticker", Constraint: tickers},
				{Name: "interval", Constraint: command.Allow("1", "5", "15", "30", "60")},
			},
		},
	}
}
