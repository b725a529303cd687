// Package finance implements the bot's market data commands.
package finance

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/zephyrtronium/bourse/command"
	"github.com/zephyrtronium/bourse/market"
	"github.com/zephyrtronium/bourse/payload"
)

// Source is the market data used by commands. *market.Client implements it.
type Source interface {
	Chart(ctx context.Context, symbol, interval, span string) (*market.Series, error)
	OptionHistory(ctx context.Context, opt market.Option) (*market.Series, error)
	Analysts(ctx context.Context, ticker string) ([]market.Rating, error)
	ChartImage(ctx context.Context, ticker string) (*payload.File, error)
	DarkPools(ctx context.Context, sort string, n int) ([]market.Position, error)
	Filings(ctx context.Context, ticker string) ([]market.Filing, error)
}

var _ Source = (*market.Client)(nil)

// Robot is the state shared by commands.
type Robot struct {
	// Market is the source of market data.
	Market Source
	// Log is the logger for commands.
	Log *slog.Logger

	registry *command.Registry
	print    *message.Printer
}

// New creates the command registry backed by a market data source.
// Ticker arguments are checked against tickers.
func New(src Source, tickers command.Constraint, log *slog.Logger) (*Robot, *command.Registry, error) {
	if log == nil {
		log = slog.Default()
	}
	robo := &Robot{
		Market: src,
		Log:    log,
		print:  message.NewPrinter(language.English),
	}
	reg, err := command.NewRegistry(Commands(robo, tickers)...)
	if err != nil {
		return nil, nil, fmt.Errorf("couldn't build command registry: %w", err)
	}
	robo.registry = reg
	return robo, reg, nil
}

// Argument constraints shared by commands.
var (
	sorts     = command.Allow("sv", "sv_pct", "nsv", "nsv_dollar", "dpp", "dpp_dollar")
	intervals = command.Allow("1", "5", "15", "30", "60")
	kinds     = command.Allow("call", "put")

	positive = command.Pattern{Format: command.PositiveInt}
	date     = command.Pattern{Format: command.Date}
	number   = command.Pattern{Format: command.SignedFloat}
)

// Commands returns the specs of all commands.
func Commands(robo *Robot, tickers command.Constraint) []command.Spec {
	ticker := command.Param{Name: command.ArgTicker, Constraint: tickers}
	return []command.Spec{
		{
			Name:     "dd-analyst",
			Func:     robo.analysts,
			Required: []command.Param{ticker},
			Help:     "Recent analyst ratings and price targets.",
		},
		{
			Name:     "dd-sec",
			Func:     robo.filings,
			Required: []command.Param{ticker},
			Help:     "Recent SEC filings.",
		},
		{
			Name: "dps-pos",
			Func: robo.darkPools,
			Required: []command.Param{
				{Name: "sort", Constraint: sorts},
				{Name: "num", Constraint: positive},
			},
			Help: "Tickers with the most dark pool activity.",
		},
		{
			Name:     "ta-rsi",
			Func:     robo.rsi,
			Required: []command.Param{ticker},
			Optional: []command.Param{
				{Name: "length", Constraint: positive},
				{Name: "scalar", Constraint: positive},
				{Name: "start", Constraint: date},
			},
			Help: "Relative strength index of daily closes.",
		},
		{
			Name:     "ta-view",
			Func:     robo.view,
			Required: []command.Param{ticker},
			Help:     "Daily candlestick chart.",
		},
		{
			Name: "ta-recent",
			Func: robo.recent,
			Required: []command.Param{
				ticker,
				{Name: command.ArgInterval, Constraint: intervals},
			},
			Help: "Today's most recent bars at an interval in minutes.",
		},
		{
			Name: "opt-hist",
			Func: robo.optionHistory,
			Required: []command.Param{
				ticker,
				{Name: "expiry", Constraint: date},
				{Name: command.ArgStrike, Constraint: number},
				{Name: "type", Constraint: kinds},
				{Name: command.ArgRaw},
			},
			Help: "Price history of an option contract.",
		},
		{
			Name: "help-commands",
			Func: robo.help,
			Help: "List every command.",
		},
	}
}

// table renders rows with cells separated by bars.
func table(rows [][]string) string {
	var b strings.Builder
	for i, r := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(strings.Join(r, " | "))
	}
	return b.String()
}
