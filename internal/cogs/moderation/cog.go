// Package moderation provides the kick, ban, and clear slash commands.
// Every completed action lands in the moderation audit log.
package moderation

import (
	"context"
	"fmt"

	"github.com/guildkeeper/guildkeeper/internal/logging"
	"github.com/guildkeeper/guildkeeper/internal/platform"
	"github.com/guildkeeper/guildkeeper/internal/statsdb"
	"github.com/rs/zerolog"
)

// Actor is the subset of the chat platform the moderation commands need.
type Actor interface {
	KickMember(ctx context.Context, guildID, userID, reason string) error
	BanMember(ctx context.Context, guildID, userID, reason string) error
	PurgeMessages(ctx context.Context, channelID string, limit int) (int, error)
}

// Cog implements the moderation slash commands.
type Cog struct {
	client Actor
	audit  *statsdb.DB
	log    zerolog.Logger
}

// New creates the moderation cog. audit may be nil, in which case actions
// are not recorded.
func New(client Actor, audit *statsdb.DB) *Cog {
	return &Cog{
		client: client,
		audit:  audit,
		log:    logging.GetLogger("moderation"),
	}
}

// Name implements bot.Cog.
func (c *Cog) Name() string { return "moderation" }

// Commands implements bot.CommandProvider.
func (c *Cog) Commands() []platform.Command {
	return []platform.Command{
		{
			Name:        "kick",
			Description: "Kick a member from the server",
			AdminOnly:   true,
			Options: []platform.CommandOption{
				{Name: "user", Description: "Member to kick", Type: platform.OptionUser, Required: true},
				{Name: "reason", Description: "Reason for the kick", Type: platform.OptionString},
			},
			Handler: c.handleKick,
		},
		{
			Name:        "ban",
			Description: "Ban a member from the server",
			AdminOnly:   true,
			Options: []platform.CommandOption{
				{Name: "user", Description: "Member to ban", Type: platform.OptionUser, Required: true},
				{Name: "reason", Description: "Reason for the ban", Type: platform.OptionString},
			},
			Handler: c.handleBan,
		},
		{
			Name:        "clear",
			Description: "Delete the most recent messages in this channel",
			AdminOnly:   true,
			Options: []platform.CommandOption{
				{Name: "amount", Description: "Number of messages to delete (1-100)", Type: platform.OptionInteger, Required: true},
			},
			Handler: c.handleClear,
		},
	}
}

func (c *Cog) handleKick(ctx context.Context, ic *platform.Interaction) {
	userID := ic.String("user", "")
	reason := ic.String("reason", "no reason given")

	if err := c.client.KickMember(ctx, ic.GuildID, userID, reason); err != nil {
		c.log.Warn().Err(err).Str("guild", ic.GuildID).Str("user", userID).Msg("kick failed")
		ic.Respond("I don't have permission to kick that member.", true)
		return
	}

	c.record(ctx, ic.GuildID, userID, "kick", reason)
	ic.Respond(fmt.Sprintf("👢 %s was kicked. Reason: %s", platform.UserMention(userID), reason), false)
}

func (c *Cog) handleBan(ctx context.Context, ic *platform.Interaction) {
	userID := ic.String("user", "")
	reason := ic.String("reason", "no reason given")

	if err := c.client.BanMember(ctx, ic.GuildID, userID, reason); err != nil {
		c.log.Warn().Err(err).Str("guild", ic.GuildID).Str("user", userID).Msg("ban failed")
		ic.Respond("I don't have permission to ban that member.", true)
		return
	}

	c.record(ctx, ic.GuildID, userID, "ban", reason)
	ic.Respond(fmt.Sprintf("🔨 %s was banned. Reason: %s", platform.UserMention(userID), reason), false)
}

func (c *Cog) handleClear(ctx context.Context, ic *platform.Interaction) {
	amount := int(ic.Int("amount", 0))
	if amount < 1 || amount > 100 {
		ic.Respond("Please give a number between 1 and 100.", true)
		return
	}

	deleted, err := c.client.PurgeMessages(ctx, ic.ChannelID, amount)
	if err != nil {
		c.log.Warn().Err(err).Str("guild", ic.GuildID).Str("channel", ic.ChannelID).Msg("purge failed")
		ic.Respond("I couldn't delete messages in this channel.", true)
		return
	}

	c.record(ctx, ic.GuildID, ic.UserID, "clear", fmt.Sprintf("%d messages in %s", deleted, platform.ChannelMention(ic.ChannelID)))
	ic.Respond(fmt.Sprintf("🧹 Deleted %d message(s).", deleted), true)
}

func (c *Cog) record(ctx context.Context, guildID, userID, action, detail string) {
	if c.audit == nil {
		return
	}
	err := c.audit.RecordModAction(ctx, statsdb.ModAction{
		GuildID: guildID,
		UserID:  userID,
		Action:  action,
		Trigger: "moderation command",
		Detail:  detail,
	})
	if err != nil {
		c.log.Warn().Err(err).Str("guild", guildID).Msg("failed to write audit entry")
	}
}
