package main_test

import (
	"context"
	_ "embed"
	"strings"
	"testing"

	main "github.com/zephyrtronium/bourse"
)

//go:embed example.toml
var exampleToml string

func eqcase[T comparable](t *testing.T, name string, val T, eq T) {
	t.Helper()
	if val != eq {
		t.Errorf("wrong %s: want %#v, got %#v", name, eq, val)
	}
}

func TestExampleConfig(t *testing.T) {
	t.Setenv("ROOT", "/var/bourse")
	cfg, md, err := main.Load(context.Background(), strings.NewReader(exampleToml))
	if err != nil {
		t.Fatalf("failed to load example.toml: %v", err)
	}

	eqcase(t, "SecretFile", cfg.SecretFile, "/var/bourse/key")
	eqcase(t, "Trigger", cfg.Trigger, "!")
	eqcase(t, "StrictBool", cfg.StrictBool, false)
	eqcase(t, "Tickers", cfg.Tickers, "/var/bourse/tickers.csv")
	eqcase(t, "Scratch", cfg.Scratch, "/tmp/bourse")
	eqcase(t, "Views", cfg.Views, 900)
	eqcase(t, "Workers", cfg.Workers, 8)
	eqcase(t, "DB.Audit", cfg.DB.Audit, "file:/var/bourse/audit.sql")
	eqcase(t, "DB.Cache", cfg.DB.Cache, "")
	eqcase(t, "DB.CacheFlag", cfg.DB.CacheFlag, "numversionsstokeep=1")
	eqcase(t, "DB.CacheTTL", cfg.DB.CacheTTL, 300)
	eqcase(t, "Market.Timeout", cfg.Market.Timeout, 20.5)
	eqcase(t, "len(Market.Agents)", len(cfg.Market.Agents), 2)
	eqcase(t, "Global.Rate.Every", cfg.Global.Rate.Every, 2.5)
	eqcase(t, "Global.Rate.Num", cfg.Global.Rate.Num, 3)
	eqcase(t, "len(Global.Block)", len(cfg.Global.Block), 2)
	eqcase(t, "Global.Block[0]", cfg.Global.Block[0], "discord:1234567890")
	eqcase(t, "HTTP.Listen", cfg.HTTP.Listen, ":4959")
	eqcase(t, "Discord.TokenFile", cfg.Discord.TokenFile, "/var/bourse/discord_token")
	eqcase(t, "Slack.TokenFile", cfg.Slack.TokenFile, "/var/bourse/slack_bot_token")
	eqcase(t, "Slack.AppTokenFile", cfg.Slack.AppTokenFile, "/var/bourse/slack_app_token")
	eqcase(t, "Slack.Rate.Every", cfg.Slack.Rate.Every, 10)
	eqcase(t, "Telegram.TokenFile", cfg.Telegram.TokenFile, "/var/bourse/telegram_token")
	eqcase(t, "Telegram.Timeout", cfg.Telegram.Timeout, 30)
	g := cfg.GroupMe["kessoku"]
	if g == nil {
		t.Fatal("no GroupMe bot kessoku")
	}
	eqcase(t, "GroupMe[kessoku].Bot", g.Bot, "b0cc41d0e5")
	eqcase(t, "GroupMe[kessoku].Group", g.Group, "12345678")
	eqcase(t, "GroupMe[kessoku].TokenFile", g.TokenFile, "/var/bourse/groupme_token")
	for _, k := range []string{"discord", "slack", "telegram", "groupme"} {
		if !md.IsDefined(k) {
			t.Errorf("%s not defined", k)
		}
	}
}

func TestDefaultTrigger(t *testing.T) {
	cfg, md, err := main.Load(context.Background(), strings.NewReader(`secret = "key"`))
	if err != nil {
		t.Fatal(err)
	}
	eqcase(t, "Trigger", cfg.Trigger, "!")
	if md.IsDefined("discord") {
		t.Error("discord defined in empty config")
	}
}
