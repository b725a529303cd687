package discord

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"

	"github.com/zephyrtronium/bourse/pager"
)

// Interact answers a press of a pagination control by moving the view and
// updating the message in place. It reports false if the interaction isn't
// for pagination controls.
func Interact(ctx context.Context, s Session, views *pager.Store, i *discordgo.Interaction) (bool, error) {
	if i.Type != discordgo.InteractionMessageComponent || i.Message == nil {
		return false, nil
	}
	data := i.MessageComponentData()
	switch data.CustomID {
	case prevID, nextID, selectID: // do nothing
	default:
		return false, nil
	}
	v, ok := views.Get(i.Message.ID)
	if !ok {
		err := s.InteractionRespond(i, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content: "These pages have expired. Run the command again.",
				Flags:   discordgo.MessageFlagsEphemeral,
			},
		}, discordgo.WithContext(ctx))
		return true, err
	}
	switch data.CustomID {
	case prevID:
		v.Prev()
	case nextID:
		v.Next()
	case selectID:
		if len(data.Values) == 0 {
			break
		}
		if k, err := strconv.Atoi(data.Values[0]); err == nil {
			v.Select(k)
		}
	}
	st := v.State()
	e, f, err := page(st)
	if err != nil {
		return true, err
	}
	resp := discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{e},
			Components: components(v, st),
		},
	}
	if f != nil {
		defer f.Close()
		resp.Data.Files = []*discordgo.File{attachment(f)}
	}
	if err := s.InteractionRespond(i, &resp, discordgo.WithContext(ctx)); err != nil {
		return true, fmt.Errorf("couldn't update page: %w", err)
	}
	return true, nil
}
