// Package autoreply matches incoming messages against per-guild reply
// rules and dispatches the configured response.
package autoreply

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/guildkeeper/guildkeeper/internal/bot"
	"github.com/guildkeeper/guildkeeper/internal/dispatch"
	"github.com/guildkeeper/guildkeeper/internal/logging"
	"github.com/guildkeeper/guildkeeper/internal/platform"
	"github.com/guildkeeper/guildkeeper/internal/rules"
	"github.com/guildkeeper/guildkeeper/internal/store"
	"github.com/rs/zerolog"
)

// Feature is the store key for the per-guild rule document.
const Feature = "auto_reply"

// Cog evaluates messages against the guild's auto-reply rules.
type Cog struct {
	store      *store.Store
	dispatcher *dispatch.Dispatcher
	hub        *bot.Hub
	log        zerolog.Logger
}

// New creates the auto-reply cog.
func New(st *store.Store, d *dispatch.Dispatcher, hub *bot.Hub) *Cog {
	return &Cog{
		store:      st,
		dispatcher: d,
		hub:        hub,
		log:        logging.GetLogger("autoreply"),
	}
}

// Name implements bot.Cog.
func (c *Cog) Name() string { return "autoreply" }

// OnMessage evaluates the guild's rules against the message and, on a
// match, dispatches the configured action. Telemetry counters are only
// bumped when the action was actually delivered.
func (c *Cog) OnMessage(ctx context.Context, msg platform.Message) {
	var doc rules.Document
	if err := c.store.Get(msg.GuildID, Feature, &doc); err != nil {
		return
	}

	res := rules.Evaluate(&doc, rules.Message{
		ChannelID:   msg.ChannelID,
		AuthorRoles: msg.AuthorRoles,
		Content:     msg.Content,
	})
	if res == nil {
		return
	}

	action, ok := res.Rule.Action()
	if !ok {
		c.log.Warn().Int("rule", res.Rule.ID).Str("replyType", string(res.Rule.ReplyType)).
			Msg("rule has unrecognized reply type, skipping")
		return
	}

	outcome := c.dispatcher.Dispatch(ctx, action, msg)
	if c.hub != nil {
		c.hub.Publish(bot.Event{
			GuildID: msg.GuildID,
			Kind:    "autoreply",
			Detail:  fmt.Sprintf("rule %d %s delivered=%t", res.Rule.ID, action.Kind, outcome.Delivered),
		})
	}
	if !outcome.Delivered {
		return
	}

	ruleID := res.Rule.ID
	err := store.Update(c.store, msg.GuildID, Feature, rules.NewDocument, func(d *rules.Document) error {
		if r := d.Find(ruleID); r != nil {
			r.TriggeredCount++
			now := time.Now().UTC()
			r.LastTriggered = &now
		}
		return nil
	})
	if err != nil {
		c.log.Warn().Err(err).Str("guild", msg.GuildID).Msg("failed to persist trigger count")
	}
}

// Commands implements bot.CommandProvider.
func (c *Cog) Commands() []platform.Command {
	return []platform.Command{
		{
			Name:        "autoreply-add",
			Description: "Add an auto-reply rule",
			AdminOnly:   true,
			Options: []platform.CommandOption{
				{Name: "trigger", Description: "Text or pattern to match", Type: platform.OptionString, Required: true},
				{Name: "reply", Description: "Response text", Type: platform.OptionString, Required: true},
				{Name: "match", Description: "Match type", Type: platform.OptionString,
					Choices: []string{"exact", "contains", "startsWith", "endsWith", "regex"}},
				{Name: "type", Description: "Response type", Type: platform.OptionString,
					Choices: []string{"reply", "message", "dm", "react"}},
				{Name: "case_sensitive", Description: "Match case exactly", Type: platform.OptionBoolean},
			},
			Handler: c.handleAdd,
		},
		{
			Name:        "autoreply-list",
			Description: "List this server's auto-reply rules",
			AdminOnly:   true,
			Handler:     c.handleList,
		},
		{
			Name:        "autoreply-delete",
			Description: "Delete an auto-reply rule",
			AdminOnly:   true,
			Options: []platform.CommandOption{
				{Name: "id", Description: "Rule ID", Type: platform.OptionInteger, Required: true},
			},
			Handler: c.handleDelete,
		},
		{
			Name:        "autoreply-toggle",
			Description: "Enable or disable auto-reply for this server",
			AdminOnly:   true,
			Options: []platform.CommandOption{
				{Name: "enabled", Description: "New state", Type: platform.OptionBoolean, Required: true},
			},
			Handler: c.handleToggle,
		},
	}
}

func (c *Cog) handleAdd(ctx context.Context, ic *platform.Interaction) {
	matchType := rules.MatchType(ic.String("match", string(rules.MatchContains)))
	if !rules.ValidMatchType(matchType) {
		ic.Respond("Unknown match type.", true)
		return
	}
	replyType := rules.ReplyType(ic.String("type", string(rules.ReplyReply)))
	if !rules.ValidReplyType(replyType) {
		ic.Respond("Unknown response type.", true)
		return
	}

	rule := rules.Rule{
		Trigger:       ic.String("trigger", ""),
		Reply:         ic.String("reply", ""),
		MatchType:     matchType,
		ReplyType:     replyType,
		Enabled:       true,
		CaseSensitive: ic.Bool("case_sensitive", false),
		CreatedAt:     time.Now().UTC(),
		CreatedBy:     ic.UserID,
	}
	if rule.Trigger == "" {
		ic.Respond("Trigger must not be empty.", true)
		return
	}

	var id int
	err := store.Update(c.store, ic.GuildID, Feature, rules.NewDocument, func(d *rules.Document) error {
		rule.ID = d.NextID()
		id = rule.ID
		d.Rules = append(d.Rules, rule)
		return nil
	})
	if err != nil {
		c.log.Error().Err(err).Str("guild", ic.GuildID).Msg("failed to save rule")
		ic.Respond("Something went wrong saving the rule.", true)
		return
	}
	ic.Respond(fmt.Sprintf("Rule #%d added: \"%s\" → \"%s\"", id, rule.Trigger, rule.Reply), true)
}

func (c *Cog) handleList(ctx context.Context, ic *platform.Interaction) {
	var doc rules.Document
	if err := c.store.Get(ic.GuildID, Feature, &doc); err != nil {
		ic.Respond("No auto-reply rules configured yet.", true)
		return
	}
	if len(doc.Rules) == 0 {
		ic.Respond("No auto-reply rules configured yet.", true)
		return
	}

	var b strings.Builder
	state := "enabled"
	if !doc.Enabled {
		state = "disabled"
	}
	fmt.Fprintf(&b, "Auto-reply is **%s**. %d rule(s):\n", state, len(doc.Rules))
	for _, r := range doc.Rules {
		mark := "✅"
		if !r.Enabled {
			mark = "❌"
		}
		fmt.Fprintf(&b, "%s `#%d` [%s/%s] \"%s\" (fired %d times)\n",
			mark, r.ID, r.MatchType, r.ReplyType, r.Trigger, r.TriggeredCount)
	}
	ic.Respond(b.String(), true)
}

func (c *Cog) handleDelete(ctx context.Context, ic *platform.Interaction) {
	id := int(ic.Int("id", 0))
	removed := false
	err := store.Update(c.store, ic.GuildID, Feature, rules.NewDocument, func(d *rules.Document) error {
		removed = d.Remove(id)
		return nil
	})
	if err != nil || !removed {
		ic.Respond(fmt.Sprintf("No rule with ID %d.", id), true)
		return
	}
	ic.Respond(fmt.Sprintf("Rule #%d deleted.", id), true)
}

func (c *Cog) handleToggle(ctx context.Context, ic *platform.Interaction) {
	enabled := ic.Bool("enabled", true)
	err := store.Update(c.store, ic.GuildID, Feature, rules.NewDocument, func(d *rules.Document) error {
		d.Enabled = enabled
		return nil
	})
	if err != nil {
		ic.Respond("Something went wrong.", true)
		return
	}
	if enabled {
		ic.Respond("Auto-reply enabled.", true)
	} else {
		ic.Respond("Auto-reply disabled.", true)
	}
}
