// Package reactroles grants and revokes roles when members react to
// designated messages with bound emoji.
package reactroles

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/guildkeeper/guildkeeper/internal/logging"
	"github.com/guildkeeper/guildkeeper/internal/platform"
	"github.com/guildkeeper/guildkeeper/internal/store"
	"github.com/rs/zerolog"
)

// Feature is the store key for the per-guild reaction role bindings.
const Feature = "reaction_roles"

// RoleManager is the subset of the chat platform this cog needs.
type RoleManager interface {
	AddRole(ctx context.Context, guildID, userID, roleID string) error
	RemoveRole(ctx context.Context, guildID, userID, roleID string) error
	React(ctx context.Context, channelID, messageID, emoji string) error
}

// Binding maps the emoji on one message to role IDs.
type Binding struct {
	ChannelID string            `json:"channelId"`
	Roles     map[string]string `json:"roles"`
}

// Data holds a guild's reaction role bindings keyed by message ID.
type Data struct {
	Bindings map[string]*Binding `json:"bindings"`
}

// NewData returns an empty binding set.
func NewData() *Data {
	return &Data{Bindings: map[string]*Binding{}}
}

// Cog reacts to emoji reactions by toggling the bound role.
type Cog struct {
	store  *store.Store
	client RoleManager
	log    zerolog.Logger
}

// New creates the reaction roles cog.
func New(st *store.Store, client RoleManager) *Cog {
	return &Cog{
		store:  st,
		client: client,
		log:    logging.GetLogger("reactroles"),
	}
}

// Name implements bot.Cog.
func (c *Cog) Name() string { return "reactroles" }

func (c *Cog) lookup(guildID, messageID, emoji string) (string, bool) {
	var d Data
	if err := c.store.Get(guildID, Feature, &d); err != nil {
		return "", false
	}
	b := d.Bindings[messageID]
	if b == nil {
		return "", false
	}
	roleID, ok := b.Roles[emoji]
	return roleID, ok
}

// OnReactionAdd implements bot.ReactionAddHandler.
func (c *Cog) OnReactionAdd(ctx context.Context, ev platform.ReactionEvent) {
	roleID, ok := c.lookup(ev.GuildID, ev.MessageID, ev.Emoji)
	if !ok {
		return
	}
	if err := c.client.AddRole(ctx, ev.GuildID, ev.UserID, roleID); err != nil {
		c.log.Warn().Err(err).Str("guild", ev.GuildID).Str("user", ev.UserID).Str("role", roleID).Msg("failed to grant role")
	}
}

// OnReactionRemove implements bot.ReactionRemoveHandler.
func (c *Cog) OnReactionRemove(ctx context.Context, ev platform.ReactionEvent) {
	roleID, ok := c.lookup(ev.GuildID, ev.MessageID, ev.Emoji)
	if !ok {
		return
	}
	if err := c.client.RemoveRole(ctx, ev.GuildID, ev.UserID, roleID); err != nil {
		c.log.Warn().Err(err).Str("guild", ev.GuildID).Str("user", ev.UserID).Str("role", roleID).Msg("failed to revoke role")
	}
}

// Commands implements bot.CommandProvider.
func (c *Cog) Commands() []platform.Command {
	return []platform.Command{
		{
			Name:        "reactionrole-add",
			Description: "Bind an emoji on a message to a role",
			AdminOnly:   true,
			Options: []platform.CommandOption{
				{Name: "channel", Description: "Channel containing the message", Type: platform.OptionChannel, Required: true},
				{Name: "message", Description: "Message ID", Type: platform.OptionString, Required: true},
				{Name: "emoji", Description: "Emoji to bind", Type: platform.OptionString, Required: true},
				{Name: "role", Description: "Role to grant", Type: platform.OptionRole, Required: true},
			},
			Handler: c.handleAdd,
		},
		{
			Name:        "reactionrole-remove",
			Description: "Remove an emoji binding from a message",
			AdminOnly:   true,
			Options: []platform.CommandOption{
				{Name: "message", Description: "Message ID", Type: platform.OptionString, Required: true},
				{Name: "emoji", Description: "Emoji to unbind", Type: platform.OptionString, Required: true},
			},
			Handler: c.handleRemove,
		},
		{
			Name:        "reactionrole-list",
			Description: "List this server's reaction role bindings",
			AdminOnly:   true,
			Handler:     c.handleList,
		},
	}
}

func (c *Cog) handleAdd(ctx context.Context, ic *platform.Interaction) {
	channelID := ic.String("channel", "")
	messageID := strings.TrimSpace(ic.String("message", ""))
	emoji := strings.TrimSpace(ic.String("emoji", ""))
	roleID := ic.String("role", "")
	if messageID == "" || emoji == "" || roleID == "" {
		ic.Respond("Message, emoji, and role are all required.", true)
		return
	}

	// Seed the reaction so members have something to click.
	if err := c.client.React(ctx, channelID, messageID, emoji); err != nil {
		ic.Respond("I couldn't react to that message. Check the message ID and emoji.", true)
		return
	}

	err := store.Update(c.store, ic.GuildID, Feature, NewData, func(d *Data) error {
		if d.Bindings == nil {
			d.Bindings = map[string]*Binding{}
		}
		b := d.Bindings[messageID]
		if b == nil {
			b = &Binding{ChannelID: channelID, Roles: map[string]string{}}
			d.Bindings[messageID] = b
		}
		b.Roles[emoji] = roleID
		return nil
	})
	if err != nil {
		ic.Respond("Something went wrong saving the binding.", true)
		return
	}
	ic.Respond(fmt.Sprintf("✅ %s now grants %s on that message.", emoji, platform.RoleMention(roleID)), true)
}

func (c *Cog) handleRemove(ctx context.Context, ic *platform.Interaction) {
	messageID := strings.TrimSpace(ic.String("message", ""))
	emoji := strings.TrimSpace(ic.String("emoji", ""))

	removed := false
	err := store.Update(c.store, ic.GuildID, Feature, NewData, func(d *Data) error {
		b := d.Bindings[messageID]
		if b == nil {
			return nil
		}
		if _, ok := b.Roles[emoji]; !ok {
			return nil
		}
		delete(b.Roles, emoji)
		if len(b.Roles) == 0 {
			delete(d.Bindings, messageID)
		}
		removed = true
		return nil
	})
	if err != nil || !removed {
		ic.Respond("No such binding.", true)
		return
	}
	ic.Respond(fmt.Sprintf("Binding for %s removed.", emoji), true)
}

func (c *Cog) handleList(ctx context.Context, ic *platform.Interaction) {
	var d Data
	if err := c.store.Get(ic.GuildID, Feature, &d); err != nil || len(d.Bindings) == 0 {
		ic.Respond("No reaction roles configured.", true)
		return
	}

	messageIDs := make([]string, 0, len(d.Bindings))
	for id := range d.Bindings {
		messageIDs = append(messageIDs, id)
	}
	sort.Strings(messageIDs)

	var b strings.Builder
	for _, id := range messageIDs {
		binding := d.Bindings[id]
		fmt.Fprintf(&b, "Message `%s` in %s:\n", id, platform.ChannelMention(binding.ChannelID))
		emojis := make([]string, 0, len(binding.Roles))
		for e := range binding.Roles {
			emojis = append(emojis, e)
		}
		sort.Strings(emojis)
		for _, e := range emojis {
			fmt.Fprintf(&b, "- %s grants %s\n", e, platform.RoleMention(binding.Roles[e]))
		}
	}
	ic.Respond(b.String(), true)
}
