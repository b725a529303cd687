package main

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/zephyrtronium/bourse/relay/groupme"
)

// groupmeBot is a GroupMe bot and the group it belongs to.
type groupmeBot struct {
	bot   *groupme.Bot
	group string
}

// SetGroupMe adds a GroupMe bot whose callbacks arrive at /groupme/<name>.
func (robo *Robot) SetGroupMe(name, group string, bot *groupme.Bot) {
	if robo.groupme == nil {
		robo.groupme = make(map[string]*groupmeBot)
	}
	robo.groupme[name] = &groupmeBot{bot: bot, group: group}
}

// apiGroupMe handles a GroupMe bot callback. Commands are handled with ctx
// rather than the request context so that they outlive the request.
func (robo *Robot) apiGroupMe(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := slog.With(slog.String("api", "groupme"), slog.Any("trace", uuid.New()))
	log.DebugContext(r.Context(), "handle", slog.String("route", r.Pattern), slog.String("remote", r.RemoteAddr))
	w.Header().Set("Content-Type", "application/json")
	name := r.PathValue("bot")
	b := robo.groupme[name]
	if b == nil {
		log.WarnContext(r.Context(), "no such bot", slog.String("bot", name))
		jsonerror(w, http.StatusNotFound, "no such bot")
		return
	}
	msg, ok, err := groupme.ParseCallback(r.Body)
	if err != nil {
		log.WarnContext(r.Context(), "bad callback", slog.Any("err", err))
		jsonerror(w, http.StatusBadRequest, "invalid callback")
		return
	}
	w.WriteHeader(http.StatusNoContent)
	if !ok {
		return
	}
	if b.group != "" && msg.To != b.group {
		log.WarnContext(r.Context(), "callback for wrong group", slog.String("bot", name), slog.String("group", msg.To))
		return
	}
	robo.receive(ctx, msg, b.bot)
}
