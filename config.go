package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/sha3"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/zephyrtronium/bourse/audit"
	"github.com/zephyrtronium/bourse/cache"
	"github.com/zephyrtronium/bourse/channel"
	"github.com/zephyrtronium/bourse/command"
	"github.com/zephyrtronium/bourse/roster"
)

// Load loads the bot's TOML configuration.
func Load(ctx context.Context, r io.Reader) (*Config, *toml.MetaData, error) {
	var cfg Config
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("couldn't decode config: %w", err)
	}
	expandcfg(&cfg, os.Getenv)
	if cfg.Trigger == "" {
		cfg.Trigger = "!"
	}
	return &cfg, &md, nil
}

type keys struct {
	// userhash is the key for userhashes.
	userhash []byte
}

// loadSecrets reads the secret key file and derives the per-domain keys.
func loadSecrets(file string) (*keys, error) {
	k, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("couldn't read secret key: %w", err)
	}
	k = []byte(strings.TrimSpace(string(k)))
	if len(k) == 0 {
		return nil, fmt.Errorf("secret key file %s is empty", file)
	}
	r := keys{
		userhash: domainkey(make([]byte, 64), k, []byte("userhash")),
	}
	return &r, nil
}

// domainkey fills o with a key derived from k for the given domain. Panics if
// a key cannot be expanded.
func domainkey(o, k, domain []byte) []byte {
	kr := hkdf.Expand(sha3.New224, k, domain)
	if _, err := io.ReadFull(kr, o); err != nil {
		panic(err)
	}
	return o
}

// loadToken reads a token from a file, trimming surrounding space.
func loadToken(file string) (string, error) {
	b, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("couldn't read token: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

// loadDBs opens the audit log pool and the upstream response cache.
// The audit pool is nil if no audit database is configured.
func loadDBs(ctx context.Context, cfg DBCfg) (aud *sqlitex.Pool, c *cache.Cache, err error) {
	slog.DebugContext(ctx, "response cache", slog.String("path", cfg.Cache), slog.String("flags", cfg.CacheFlag))
	c, err = cache.Open(cfg.Cache, cfg.CacheFlag, fseconds(cfg.CacheTTL))
	if err != nil {
		return nil, nil, err
	}
	if cfg.Audit == "" {
		slog.WarnContext(ctx, "no audit db; commands will not be recorded")
		return nil, c, nil
	}
	slog.DebugContext(ctx, "audit db", slog.String("path", cfg.Audit))
	aud, err = sqlitex.NewPool(cfg.Audit, sqlitex.PoolOptions{})
	if err != nil {
		c.Close()
		return nil, nil, fmt.Errorf("couldn't open audit db: %w", err)
	}
	if err := audit.Init(ctx, aud); err != nil {
		aud.Close()
		c.Close()
		return nil, nil, err
	}
	return aud, c, nil
}

// loadTickers loads the ticker roster named by the config.
// With no roster, any ticker-shaped symbol is accepted.
func loadTickers(ctx context.Context, file string) (command.Constraint, error) {
	if file == "" {
		slog.InfoContext(ctx, "no ticker roster; accepting any symbol")
		return new(roster.Roster).Constraint(), nil
	}
	r, err := roster.Open(file)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "ticker roster", slog.String("file", file), slog.Int("symbols", r.Len()))
	return r.Constraint(), nil
}

func fseconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// Config is the marshaled structure of the bot's configuration.
type Config struct {
	// SecretFile is the path to a file containing a secret key used to create
	// userhashes for the audit log.
	SecretFile string `toml:"secret"`
	// Trigger is the prefix marking a message as a command. Default is "!".
	Trigger string `toml:"trigger"`
	// StrictBool requires boolean arguments to be true or false.
	StrictBool bool `toml:"strict_bool"`
	// Debug reports handler failures to the log instead of the chat.
	Debug bool `toml:"debug"`
	// Tickers is the path to a CSV roster of accepted ticker symbols.
	Tickers string `toml:"tickers"`
	// Scratch is the directory for temporary image files.
	Scratch string `toml:"scratch"`
	// Views is the time in seconds that paginated responses stay interactive.
	Views float64 `toml:"views"`
	// Workers is the maximum number of commands handled concurrently.
	// Default is GOMAXPROCS.
	Workers int `toml:"workers"`
	// DB is the table of database connection strings.
	DB DBCfg `toml:"db"`
	// Market is the upstream data configuration.
	Market MarketCfg `toml:"market"`
	// Global is the table of settings applied to every channel.
	Global Global `toml:"global"`
	// HTTP is the metrics and callback server configuration.
	HTTP struct {
		Listen string `toml:"listen"`
	} `toml:"http"`

	Discord  DiscordCfg             `toml:"discord"`
	Slack    SlackCfg               `toml:"slack"`
	Telegram TelegramCfg            `toml:"telegram"`
	GroupMe  map[string]*GroupMeCfg `toml:"groupme"`
}

// DBCfg is the configuration of databases.
type DBCfg struct {
	// Audit is the sqlite connection string for the audit log.
	Audit string `toml:"audit"`
	// Cache is the badger directory for the upstream response cache.
	// If empty, the cache is in memory.
	Cache string `toml:"cache"`
	// CacheFlag is a badger superflag string of options for the cache.
	CacheFlag string `toml:"cacheflag"`
	// CacheTTL is the lifetime of cached responses in seconds.
	CacheTTL float64 `toml:"cachettl"`
}

// MarketCfg is the configuration of upstream requests.
type MarketCfg struct {
	// Timeout is the upstream request timeout in seconds.
	Timeout float64 `toml:"timeout"`
	// Agents is the user agents and their weights.
	Agents map[string]int `toml:"agents"`
}

// Global is the configuration for globally applied options.
type Global struct {
	// Rate is the default command rate limit for each channel.
	Rate Rate `toml:"rate"`
	// Block is the list of sender IDs to ignore everywhere, in the form
	// platform:id.
	Block []string `toml:"block"`
}

// Rate is a rate limit configuration.
type Rate struct {
	Every float64 `toml:"every"`
	Num   int     `toml:"num"`
}

// limits returns the rate limit, falling back to a default.
func (r Rate) limits(def Rate) channel.Limits {
	if r.Every <= 0 {
		r = def
	}
	return channel.Limits{Every: fseconds(r.Every), Burst: r.Num}
}

// DiscordCfg is the configuration for connecting to Discord.
type DiscordCfg struct {
	// TokenFile is the path to a file containing the bot token.
	TokenFile string `toml:"token"`
	// Rate overrides the global per-channel rate limit.
	Rate Rate `toml:"rate"`
}

// SlackCfg is the configuration for connecting to Slack in Socket Mode.
type SlackCfg struct {
	// TokenFile is the path to a file containing the bot token (xoxb-).
	TokenFile string `toml:"token"`
	// AppTokenFile is the path to a file containing the app-level token
	// (xapp-) used for Socket Mode.
	AppTokenFile string `toml:"app_token"`
	// Rate overrides the global per-channel rate limit.
	Rate Rate `toml:"rate"`
}

// TelegramCfg is the configuration for connecting to Telegram.
type TelegramCfg struct {
	// TokenFile is the path to a file containing the bot token.
	TokenFile string `toml:"token"`
	// Timeout is the long polling timeout in seconds.
	Timeout int `toml:"timeout"`
	// Rate overrides the global per-channel rate limit.
	Rate Rate `toml:"rate"`
}

// GroupMeCfg is the configuration of one GroupMe bot. Each bot belongs to
// exactly one group, and GroupMe posts the group's messages to the bot's
// callback URL, /groupme/<name>.
type GroupMeCfg struct {
	// Bot is the bot ID.
	Bot string `toml:"bot"`
	// Group is the group ID.
	Group string `toml:"group"`
	// TokenFile is the path to a file containing an access token for image
	// uploads.
	TokenFile string `toml:"token"`
	// Rate overrides the global per-channel rate limit.
	Rate Rate `toml:"rate"`
}

func expandcfg(cfg *Config, expand func(s string) string) {
	fields := []*string{
		&cfg.SecretFile,
		&cfg.Tickers,
		&cfg.Scratch,
		&cfg.DB.Audit,
		&cfg.DB.Cache,
		&cfg.DB.CacheFlag,
		&cfg.HTTP.Listen,
		&cfg.Discord.TokenFile,
		&cfg.Slack.TokenFile,
		&cfg.Slack.AppTokenFile,
		&cfg.Telegram.TokenFile,
	}
	for _, f := range fields {
		*f = os.Expand(*f, expand)
	}
	for _, v := range cfg.GroupMe {
		v.Bot = os.Expand(v.Bot, expand)
		v.Group = os.Expand(v.Group, expand)
		v.TokenFile = os.Expand(v.TokenFile, expand)
	}
}
