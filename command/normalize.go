package command

import (
	"strings"
	"unicode"

	"github.com/zephyrtronium/bourse/message"
)

// Normalize rewrites command text from a platform into the canonical
// <trigger><category>-<subcommand>/<args> form.
//
// In the command name, underscores become hyphens and any @botname suffix is
// removed. A space after the name is treated as the first argument separator.
// Other arguments are left alone, except that Telegram commands take all
// their arguments separated by spaces, which become slashes.
func Normalize(text string, p message.Platform) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	// Leave the trigger alone.
	trig := text[:1]
	if trig != "!" && trig != "/" {
		trig = ""
	}
	body := text[len(trig):]
	k := strings.IndexFunc(body, func(r rune) bool { return r == '/' || unicode.IsSpace(r) })
	if k < 0 {
		k = len(body)
	}
	name, rest := body[:k], body[k:]
	name, _, _ = strings.Cut(name, "@")
	name = strings.ReplaceAll(name, "_", "-")
	if p == message.Telegram {
		// Allow both /cmd a b and /cmd/a/b.
		f := strings.FieldsFunc(rest, func(r rune) bool { return r == '/' || unicode.IsSpace(r) })
		if len(f) == 0 {
			return trig + name
		}
		return trig + name + "/" + strings.Join(f, "/")
	}
	rest = strings.TrimSpace(rest)
	if rest != "" && rest[0] != '/' {
		// A space after the name separates the first argument.
		rest = "/" + rest
	}
	return trig + name + rest
}
