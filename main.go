package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/zephyrtronium/bourse/audit"
	"github.com/zephyrtronium/bourse/cache"
	"github.com/zephyrtronium/bourse/command"
	"github.com/zephyrtronium/bourse/finance"
	"github.com/zephyrtronium/bourse/market"
	"github.com/zephyrtronium/bourse/message"
	"github.com/zephyrtronium/bourse/metrics"
	"github.com/zephyrtronium/bourse/relay/console"
	"github.com/zephyrtronium/bourse/relay/groupme"
)

var app = cli.Command{
	Name:  "bourse",
	Usage: "Market data chat bot",

	Flags: []cli.Flag{
		&flagConfig,
		&flagLog,
		&flagLogFormat,
	},
	Commands: []*cli.Command{
		{
			Name:      "check",
			Aliases:   []string{"run", "try"},
			Usage:     "Run commands locally and print the responses",
			ArgsUsage: "[command text...]",
			Description: "Each argument is run as one command, like !ta-rsi/TSLA. " +
				"With no arguments, commands are read from standard input, one per line.",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "keep",
					Usage: "Directory in which to keep images from responses",
				},
				&cli.IntFlag{
					Name:  "width",
					Usage: "Longest response text per message, or 0 for no limit",
					Value: 2000,
				},
				&cli.BoolFlag{
					Name:  "debug",
					Usage: "Return handler errors instead of reporting them as responses",
				},
			},
			Action: cliCheck,
		},
		{
			Name:    "commands",
			Aliases: []string{"help-commands"},
			Usage:   "List available commands",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "category",
					Usage: "Only list commands in this category",
				},
			},
			Action: cliCommands,
		},
		{
			Name:  "audit",
			Usage: "Print recently handled commands",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "n",
					Usage: "Number of commands to print",
					Value: 20,
				},
				&cli.DurationFlag{
					Name:  "since",
					Usage: "Window over which to count outcomes",
					Value: 24 * time.Hour,
				},
			},
			Action: cliAudit,
		},
		{
			Name:   "init",
			Usage:  "Create the audit log schema",
			Action: cliInit,
		},
	},
	Action: cliRun,

	Authors: []any{
		"Branden J Brown  @zephyrtronium",
	},
	Copyright: "Copyright 2024 Branden J Brown",
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	go func() {
		<-ctx.Done()
		stop()
	}()
	err := app.Run(ctx, os.Args)
	if err != nil {
		fmt.Println(err)
	}
}

func cliRun(ctx context.Context, cmd *cli.Command) error {
	slog.SetDefault(loggerFromFlags(cmd))
	cfg, md, err := loadConfig(ctx, cmd)
	if err != nil {
		return err
	}
	secrets, err := loadSecrets(cfg.SecretFile)
	if err != nil {
		return err
	}
	aud, c, err := loadDBs(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer c.Close()
	if aud != nil {
		defer aud.Close()
	}
	mets := newMetrics()
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	robo, err := newRobot(ctx, cfg, secrets, c, mets, workers)
	if err != nil {
		return err
	}
	robo.SetAudit(aud)

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		robo.views.Run(ctx, time.Minute)
		return nil
	})
	group.Go(func() error {
		c.RunGC(ctx, 5*time.Minute)
		return nil
	})
	if md.IsDefined("discord") {
		token, err := loadToken(cfg.Discord.TokenFile)
		if err != nil {
			return fmt.Errorf("couldn't load Discord token: %w", err)
		}
		robo.SetLimits(message.Discord, cfg.Discord.Rate.limits(cfg.Global.Rate))
		group.Go(func() error { return robo.discord(ctx, token) })
	}
	if md.IsDefined("slack") {
		token, err := loadToken(cfg.Slack.TokenFile)
		if err != nil {
			return fmt.Errorf("couldn't load Slack bot token: %w", err)
		}
		appToken, err := loadToken(cfg.Slack.AppTokenFile)
		if err != nil {
			return fmt.Errorf("couldn't load Slack app token: %w", err)
		}
		robo.SetLimits(message.Slack, cfg.Slack.Rate.limits(cfg.Global.Rate))
		group.Go(func() error { return robo.slack(ctx, token, appToken) })
	}
	if md.IsDefined("telegram") {
		token, err := loadToken(cfg.Telegram.TokenFile)
		if err != nil {
			return fmt.Errorf("couldn't load Telegram token: %w", err)
		}
		robo.SetLimits(message.Telegram, cfg.Telegram.Rate.limits(cfg.Global.Rate))
		group.Go(func() error { return robo.telegram(ctx, token, cfg.Telegram.Timeout) })
	}
	robo.SetLimits(message.GroupMe, cfg.Global.Rate.limits(cfg.Global.Rate))
	for name, g := range cfg.GroupMe {
		var token string
		if g.TokenFile != "" {
			token, err = loadToken(g.TokenFile)
			if err != nil {
				return fmt.Errorf("couldn't load token for GroupMe bot %s: %w", name, err)
			}
		}
		// Rate limits are per platform, so the first bot with its own wins.
		if g.Rate.Every > 0 {
			robo.SetLimits(message.GroupMe, g.Rate.limits(cfg.Global.Rate))
		}
		robo.SetGroupMe(name, g.Group, &groupme.Bot{ID: g.Bot, Token: token})
		slog.InfoContext(ctx, "GroupMe bot", slog.String("name", name), slog.String("group", g.Group))
	}
	if cfg.HTTP.Listen != "" {
		group.Go(func() error {
			return robo.api(ctx, cfg.HTTP.Listen, new(http.ServeMux), mets.Collectors())
		})
	} else if len(cfg.GroupMe) != 0 {
		slog.WarnContext(ctx, "GroupMe bots configured without an HTTP listen address; they will receive nothing")
	}

	err = group.Wait()
	if errors.Is(err, context.Canceled) {
		// If the first error is context canceled, then we are shutting down
		// normally in response to a sigint.
		err = nil
	}
	return err
}

func cliCheck(ctx context.Context, cmd *cli.Command) error {
	slog.SetDefault(loggerFromFlags(cmd))
	cfg, _, err := loadConfig(ctx, cmd)
	if err != nil {
		return err
	}
	// The serving cache may be locked by a running bot, so use a fresh one.
	c, err := cache.Open("", "", fseconds(cfg.DB.CacheTTL))
	if err != nil {
		return err
	}
	defer c.Close()
	robo, err := newRobot(ctx, cfg, &keys{}, c, metrics.Nop(), 1)
	if err != nil {
		return err
	}
	robo.debug = robo.debug || cmd.Bool("debug")
	w := console.Writer{
		W:     os.Stdout,
		Keep:  cmd.String("keep"),
		Width: int(cmd.Int("width")),
	}
	run := func(text string) {
		msg := message.Received{
			ID:        uuid.NewString(),
			Platform:  message.Console,
			To:        "console",
			Sender:    "console",
			Text:      command.Normalize(text, message.Console),
			Timestamp: time.Now().UnixMilli(),
		}
		if o := robo.handle(ctx, &msg, robo.relay(&w, nil)); o == command.Ignored {
			fmt.Fprintf(os.Stderr, "not a command: %q\n", text)
		}
	}
	if cmd.Args().Present() {
		for _, text := range cmd.Args().Slice() {
			run(text)
		}
		return nil
	}
	return eachLine(ctx, os.Stdin, run)
}

// eachLine calls f with each non-empty line of r.
func eachLine(ctx context.Context, r io.Reader, f func(string)) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s := strings.TrimSpace(sc.Text()); s != "" {
			f(s)
		}
	}
	return sc.Err()
}

func cliCommands(ctx context.Context, cmd *cli.Command) error {
	slog.SetDefault(loggerFromFlags(cmd))
	cfg, _, err := loadConfig(ctx, cmd)
	if err != nil {
		return err
	}
	tickers, err := loadTickers(ctx, cfg.Tickers)
	if err != nil {
		return err
	}
	_, reg, err := finance.New(nil, tickers, slog.Default())
	if err != nil {
		return err
	}
	cats := reg.Categories()
	if c := cmd.String("category"); c != "" {
		if !reg.HasCategory(c) {
			return fmt.Errorf("no category %q; categories are %s", c, strings.Join(cats, ", "))
		}
		cats = []string{c}
	}
	for _, cat := range cats {
		fmt.Printf("%s:\n", cat)
		for _, name := range reg.InCategory(cat) {
			s, _ := reg.Lookup(name)
			fmt.Printf("  %s%s\n", cfg.Trigger, s.Usage())
			if s.Help != "" {
				fmt.Printf("      %s\n", s.Help)
			}
		}
	}
	return nil
}

func cliAudit(ctx context.Context, cmd *cli.Command) error {
	slog.SetDefault(loggerFromFlags(cmd))
	db, err := openAudit(ctx, cmd)
	if err != nil {
		return err
	}
	defer db.Close()
	ents, err := audit.Recent(ctx, db, int(cmd.Int("n")))
	if err != nil {
		return err
	}
	for _, e := range slices.Backward(ents) {
		fmt.Printf("%s  %-8s %-12s %s  %-14s %-16s %v\n",
			e.Time.Format(time.DateTime), e.Platform, e.Channel, e.User.Short(),
			e.Command, e.Outcome, e.Cost.Round(time.Millisecond),
		)
	}
	since := time.Now().Add(-cmd.Duration("since"))
	counts, err := audit.Counts(ctx, db, since)
	if err != nil {
		return err
	}
	outcomes := make([]string, 0, len(counts))
	for o := range counts {
		outcomes = append(outcomes, o)
	}
	slices.Sort(outcomes)
	fmt.Printf("\nsince %s:\n", since.Format(time.DateTime))
	for _, o := range outcomes {
		fmt.Printf("  %-16s %d\n", o, counts[o])
	}
	return nil
}

func cliInit(ctx context.Context, cmd *cli.Command) error {
	slog.SetDefault(loggerFromFlags(cmd))
	db, err := openAudit(ctx, cmd)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := audit.Init(ctx, db); err != nil {
		return err
	}
	slog.InfoContext(ctx, "audit schema ready")
	return nil
}

// loadConfig loads the config file named by the command's flags.
func loadConfig(ctx context.Context, cmd *cli.Command) (*Config, *toml.MetaData, error) {
	r, err := os.Open(cmd.String("config"))
	if err != nil {
		return nil, nil, fmt.Errorf("couldn't open config file: %w", err)
	}
	defer r.Close()
	cfg, md, err := Load(ctx, r)
	if err != nil {
		return nil, nil, fmt.Errorf("couldn't load config: %w", err)
	}
	return cfg, md, nil
}

// openAudit opens the audit log named by the config.
func openAudit(ctx context.Context, cmd *cli.Command) (*sqlitex.Pool, error) {
	cfg, _, err := loadConfig(ctx, cmd)
	if err != nil {
		return nil, err
	}
	if cfg.DB.Audit == "" {
		return nil, errors.New("no audit db configured")
	}
	db, err := sqlitex.NewPool(cfg.DB.Audit, sqlitex.PoolOptions{})
	if err != nil {
		return nil, fmt.Errorf("couldn't open audit db: %w", err)
	}
	return db, nil
}

// newRobot creates a robot with the commands and settings from cfg.
func newRobot(ctx context.Context, cfg *Config, secrets *keys, c *cache.Cache, mets *metrics.Metrics, workers int) (*Robot, error) {
	tickers, err := loadTickers(ctx, cfg.Tickers)
	if err != nil {
		return nil, err
	}
	timeout := fseconds(cfg.Market.Timeout)
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	mc := market.Client{
		HTTP:    &http.Client{Timeout: timeout},
		Cache:   c,
		Agents:  market.Agents(cfg.Market.Agents),
		Log:     slog.Default(),
		Metrics: mets,
		Scratch: cfg.Scratch,
	}
	_, reg, err := finance.New(&mc, tickers, slog.Default())
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "commands", slog.Int("count", reg.Len()), slog.Any("categories", reg.Categories()))
	d := command.Dispatcher{
		Registry: reg,
		Trigger:  cfg.Trigger,
		Coercion: command.Coercion{StrictBool: cfg.StrictBool},
	}
	robo := New(&d, secrets, workers, mets)
	robo.debug = cfg.Debug
	robo.SetBlock(cfg.Global.Block)
	// Telegram clients only offer completion for commands that start with
	// a slash.
	robo.SetTrigger(message.Telegram, "/")
	if cfg.Views > 0 {
		robo.SetViews(fseconds(cfg.Views))
	}
	return robo, nil
}

var (
	flagConfig = cli.StringFlag{
		Name:       "config",
		Required:   true,
		Usage:      "TOML config file",
		Persistent: true,
		Action: func(ctx context.Context, cmd *cli.Command, s string) error {
			i, err := os.Stat(s)
			if err != nil {
				return err
			}
			if !i.Mode().IsRegular() {
				return errors.New("config must be a regular file")
			}
			return nil
		},
	}

	flagLog = cli.StringFlag{
		Name:       "log",
		Usage:      "Logging level, one of debug, info, warn, error",
		Value:      "info",
		Persistent: true,
		Action: func(ctx context.Context, c *cli.Command, s string) error {
			var l slog.Level
			return l.UnmarshalText([]byte(s))
		},
	}

	flagLogFormat = cli.StringFlag{
		Name:       "log-format",
		Usage:      "Logging format, either text or json",
		Value:      "text",
		Persistent: true,
		Action: func(ctx context.Context, c *cli.Command, s string) error {
			switch strings.ToLower(s) {
			case "text", "json":
				return nil
			default:
				return errors.New("unknown logging format")
			}
		},
	}
)

func loggerFromFlags(cmd *cli.Command) *slog.Logger {
	var l slog.Level
	if err := l.UnmarshalText([]byte(cmd.String("log"))); err != nil {
		panic(err)
	}
	var h slog.Handler
	switch strings.ToLower(cmd.String("log-format")) {
	case "text":
		h = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})
	case "json":
		h = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: l})
	}
	return slog.New(h)
}

// metrics configuration
func newMetrics() *metrics.Metrics {
	return &metrics.Metrics{
		CommandCount: metrics.NewPromCounterVec(
			prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "bourse",
					Subsystem: "commands",
					Name:      "handled",
					Help:      "Number of commands handled by platform and outcome.",
				},
				[]string{"platform", "outcome"},
			),
		),
		HandlerLatency: metrics.NewPromObserverVec(
			prometheus.NewHistogramVec(
				prometheus.HistogramOpts{
					Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
					Namespace: "bourse",
					Subsystem: "commands",
					Name:      "latency",
					Help:      "How long command handlers take in seconds.",
				},
				[]string{"command"},
			),
		),
		UpstreamLatency: metrics.NewPromObserverVec(
			prometheus.NewHistogramVec(
				prometheus.HistogramOpts{
					Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
					Namespace: "bourse",
					Subsystem: "market",
					Name:      "latency",
					Help:      "How long upstream data requests take in seconds.",
				},
				[]string{"source"},
			),
		),
		CacheHits: metrics.NewPromCounterVec(
			prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "bourse",
					Subsystem: "cache",
					Name:      "hits",
					Help:      "Number of upstream requests served from the cache.",
				},
				[]string{"source"},
			),
		),
		CacheMisses: metrics.NewPromCounterVec(
			prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "bourse",
					Subsystem: "cache",
					Name:      "misses",
					Help:      "Number of upstream requests not in the cache.",
				},
				[]string{"source"},
			),
		),
		Views: metrics.NewPromGauge(
			prometheus.NewGauge(
				prometheus.GaugeOpts{
					Namespace: "bourse",
					Subsystem: "pager",
					Name:      "views",
					Help:      "Number of live paginated responses.",
				},
			),
		),
		Dropped: metrics.NewPromCounterVec(
			prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "bourse",
					Subsystem: "commands",
					Name:      "dropped",
					Help:      "Number of commands dropped before dispatch by reason.",
				},
				[]string{"reason"},
			),
		),
	}
}
