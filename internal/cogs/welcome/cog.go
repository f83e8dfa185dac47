// Package welcome greets joining members and announces departures.
package welcome

import (
	"context"

	"github.com/guildkeeper/guildkeeper/internal/logging"
	"github.com/guildkeeper/guildkeeper/internal/platform"
	"github.com/guildkeeper/guildkeeper/internal/rules"
	"github.com/guildkeeper/guildkeeper/internal/store"
	"github.com/rs/zerolog"
)

// Feature is the store key for the per-guild welcome settings.
const Feature = "welcome"

// Settings is the persisted per-guild welcome configuration. Messages
// support the {user}, {username} and {server} template tokens.
type Settings struct {
	Enabled      bool   `json:"enabled"`
	ChannelID    string `json:"channelId"`
	JoinMessage  string `json:"joinMessage"`
	LeaveMessage string `json:"leaveMessage"`
}

// NewSettings returns disabled settings with the stock messages.
func NewSettings() *Settings {
	return &Settings{
		JoinMessage:  "Welcome to {server}, {user}!",
		LeaveMessage: "{username} has left the server.",
	}
}

// Cog posts join and leave announcements.
type Cog struct {
	store  *store.Store
	client platform.Client
	log    zerolog.Logger
}

// New creates the welcome cog.
func New(st *store.Store, client platform.Client) *Cog {
	return &Cog{
		store:  st,
		client: client,
		log:    logging.GetLogger("welcome"),
	}
}

// Name implements bot.Cog.
func (c *Cog) Name() string { return "welcome" }

func (c *Cog) announce(ctx context.Context, ev platform.MemberEvent, pick func(*Settings) string) {
	var s Settings
	if err := c.store.Get(ev.GuildID, Feature, &s); err != nil {
		return
	}
	if !s.Enabled || s.ChannelID == "" {
		return
	}
	text := pick(&s)
	if text == "" {
		return
	}
	text = rules.Expand(text, rules.TemplateContext{
		UserMention: platform.UserMention(ev.UserID),
		Username:    ev.UserName,
		ServerName:  ev.GuildName,
	})
	if err := c.client.SendMessage(ctx, s.ChannelID, text); err != nil {
		c.log.Warn().Err(err).Str("guild", ev.GuildID).Msg("failed to post announcement")
	}
}

// OnMemberJoin implements bot.MemberJoinHandler.
func (c *Cog) OnMemberJoin(ctx context.Context, ev platform.MemberEvent) {
	c.announce(ctx, ev, func(s *Settings) string { return s.JoinMessage })
}

// OnMemberLeave implements bot.MemberLeaveHandler.
func (c *Cog) OnMemberLeave(ctx context.Context, ev platform.MemberEvent) {
	c.announce(ctx, ev, func(s *Settings) string { return s.LeaveMessage })
}

// Commands implements bot.CommandProvider.
func (c *Cog) Commands() []platform.Command {
	return []platform.Command{
		{
			Name:        "welcome-setup",
			Description: "Configure join and leave announcements",
			AdminOnly:   true,
			Options: []platform.CommandOption{
				{Name: "channel", Description: "Announcement channel", Type: platform.OptionChannel, Required: true},
				{Name: "join_message", Description: "Message for new members", Type: platform.OptionString},
				{Name: "leave_message", Description: "Message for departures", Type: platform.OptionString},
			},
			Handler: c.handleSetup,
		},
		{
			Name:        "welcome-toggle",
			Description: "Enable or disable announcements",
			AdminOnly:   true,
			Options: []platform.CommandOption{
				{Name: "enabled", Description: "New state", Type: platform.OptionBoolean, Required: true},
			},
			Handler: c.handleToggle,
		},
	}
}

func (c *Cog) handleSetup(ctx context.Context, ic *platform.Interaction) {
	channelID := ic.String("channel", "")
	if channelID == "" {
		ic.Respond("A channel is required.", true)
		return
	}
	err := store.Update(c.store, ic.GuildID, Feature, NewSettings, func(s *Settings) error {
		s.Enabled = true
		s.ChannelID = channelID
		if m := ic.String("join_message", ""); m != "" {
			s.JoinMessage = m
		}
		if m := ic.String("leave_message", ""); m != "" {
			s.LeaveMessage = m
		}
		return nil
	})
	if err != nil {
		ic.Respond("Something went wrong saving the settings.", true)
		return
	}
	ic.Respond("Announcements will be posted in "+platform.ChannelMention(channelID)+".", true)
}

func (c *Cog) handleToggle(ctx context.Context, ic *platform.Interaction) {
	enabled := ic.Bool("enabled", true)
	err := store.Update(c.store, ic.GuildID, Feature, NewSettings, func(s *Settings) error {
		s.Enabled = enabled
		return nil
	})
	if err != nil {
		ic.Respond("Something went wrong.", true)
		return
	}
	if enabled {
		ic.Respond("Announcements enabled.", true)
	} else {
		ic.Respond("Announcements disabled.", true)
	}
}
