package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/zephyrtronium/bourse/audit"
	"github.com/zephyrtronium/bourse/channel"
	"github.com/zephyrtronium/bourse/command"
	"github.com/zephyrtronium/bourse/message"
	"github.com/zephyrtronium/bourse/metrics"
	"github.com/zephyrtronium/bourse/pager"
	"github.com/zephyrtronium/bourse/relay"
	"github.com/zephyrtronium/bourse/syncmap"
	"github.com/zephyrtronium/bourse/userhash"
)

// Robot is the bot's shared state.
type Robot struct {
	// dispatch runs commands.
	dispatch *command.Dispatcher
	// channels are the channels the bot has seen, keyed by platform and ID.
	channels *syncmap.Map[string, *channel.Channel]
	// limits is the command rate limit per platform.
	limits map[message.Platform]channel.Limits
	// triggers overrides the dispatcher's trigger per platform.
	triggers map[message.Platform]string
	// block is the set of senders to ignore, as platform:id.
	block map[string]bool
	// views holds live paginated responses.
	views *pager.Store
	// audit is the audit log. It may be nil.
	audit *sqlitex.Pool
	// secrets are the bot's keys.
	secrets *keys
	// metrics are the bot's metrics.
	metrics *metrics.Metrics
	// groupme is the GroupMe bots by callback name.
	groupme map[string]*groupmeBot
	// works is the worker pool.
	works chan chan job
	// debug causes handler failures to go only to the log.
	debug bool
}

// New creates a new robot instance. poolSize is the maximum number of
// commands handled concurrently.
func New(d *command.Dispatcher, secrets *keys, poolSize int, mets *metrics.Metrics) *Robot {
	if mets == nil {
		mets = metrics.Nop()
	}
	d.Latency = mets.HandlerLatency
	return &Robot{
		dispatch: d,
		channels: syncmap.New[string, *channel.Channel](),
		limits:   make(map[message.Platform]channel.Limits),
		triggers: make(map[message.Platform]string),
		block:    make(map[string]bool),
		views:    pager.NewStore(pager.Lifetime, mets.Views),
		secrets:  secrets,
		metrics:  mets,
		works:    make(chan chan job, poolSize),
	}
}

// SetLimits sets the command rate limit for new channels on a platform.
func (robo *Robot) SetLimits(p message.Platform, lim channel.Limits) {
	robo.limits[p] = lim
}

// SetTrigger sets the command trigger for a platform.
func (robo *Robot) SetTrigger(p message.Platform, trigger string) {
	robo.triggers[p] = trigger
}

// SetBlock sets the senders to ignore everywhere. Each is platform:id.
func (robo *Robot) SetBlock(ids []string) {
	clear(robo.block)
	for _, id := range ids {
		robo.block[id] = true
	}
}

// SetAudit sets the audit log database.
func (robo *Robot) SetAudit(db *sqlitex.Pool) {
	robo.audit = db
}

// SetViews replaces the store for paginated responses.
func (robo *Robot) SetViews(ttl time.Duration) {
	robo.views = pager.NewStore(ttl, robo.metrics.Views)
}

// channel gets the state for a channel, creating it if it doesn't exist.
func (robo *Robot) channel(p message.Platform, id string) *channel.Channel {
	key := channel.Key(p, id)
	if ch, ok := robo.channels.Load(key); ok {
		return ch
	}
	ch := channel.New(p, id, robo.limits[p])
	ch.Block = make(map[string]bool)
	prefix := string(p) + ":"
	for k := range robo.block {
		if s, ok := strings.CutPrefix(k, prefix); ok {
			ch.Block[s] = true
		}
	}
	ch, _ = robo.channels.LoadOrStore(key, ch)
	return ch
}

// relay creates a relay to a platform with the robot's settings.
func (robo *Robot) relay(p relay.Platform, log *slog.Logger) *relay.Relay {
	r := relay.New(p, log)
	r.Debug = robo.debug
	return r
}

// handle processes a message that might be a command.
// The message's text should already be normalized.
func (robo *Robot) handle(ctx context.Context, msg *message.Received, r *relay.Relay) command.Outcome {
	d := *robo.dispatch
	if t, ok := robo.triggers[msg.Platform]; ok {
		d.Trigger = t
	}
	name, _, ok := d.Parse(msg.Text)
	if !ok {
		return command.Ignored
	}
	trace := uuid.New()
	log := slog.With(
		slog.String("trace", trace.String()),
		slog.String("platform", string(msg.Platform)),
		slog.String("in", msg.To),
	)
	r.Log = log
	ch := robo.channel(msg.Platform, msg.To)
	if ok, why := ch.Allow(msg); !ok {
		log.InfoContext(ctx, "dropped command", slog.String("name", name), slog.String("reason", why))
		robo.metrics.Dropped.Observe(1, why)
		return command.Ignored
	}
	d.Log = log
	start := time.Now()
	o, err := r.Handle(ctx, &d, msg.Text)
	cost := time.Since(start)
	if err != nil {
		log.ErrorContext(ctx, "command failed", slog.String("name", name), slog.String("outcome", o.String()), slog.Any("err", err))
	}
	robo.metrics.CommandCount.Observe(1, string(msg.Platform), o.String())
	robo.record(ctx, log, msg, name, o, cost, trace.String())
	return o
}

// record adds a command to the audit log.
func (robo *Robot) record(ctx context.Context, log *slog.Logger, msg *message.Received, name string, o command.Outcome, cost time.Duration, trace string) {
	if robo.audit == nil {
		return
	}
	e := audit.Entry{
		Time:     msg.Time(),
		Platform: msg.Platform,
		Channel:  msg.To,
		User:     userhash.New(robo.secrets.userhash).Of(msg),
		Command:  name,
		Outcome:  o.String(),
		Cost:     cost,
		Trace:    trace,
	}
	if err := audit.Record(ctx, robo.audit, &e); err != nil {
		log.ErrorContext(ctx, "couldn't record command", slog.Any("err", err))
	}
}

// receive normalizes a message and hands it to a worker to handle.
// Responses go to p.
func (robo *Robot) receive(ctx context.Context, msg *message.Received, p relay.Platform) {
	msg.Text = command.Normalize(msg.Text, msg.Platform)
	if msg.Text == "" {
		return
	}
	work := func(ctx context.Context) {
		robo.handle(ctx, msg, robo.relay(p, nil))
	}
	robo.enqueue(ctx, work)
}
