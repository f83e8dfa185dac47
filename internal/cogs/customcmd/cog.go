// Package customcmd lets admins define prefix commands with canned
// responses, e.g. "!rules" posting the server rules.
package customcmd

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/guildkeeper/guildkeeper/internal/logging"
	"github.com/guildkeeper/guildkeeper/internal/platform"
	"github.com/guildkeeper/guildkeeper/internal/rules"
	"github.com/guildkeeper/guildkeeper/internal/store"
	"github.com/rs/zerolog"
)

// Feature is the store key for the per-guild custom command map.
const Feature = "custom_commands"

// Entry is one stored command with its response and usage counter.
type Entry struct {
	Response string `json:"response"`
	Uses     int    `json:"uses"`
}

// Data maps lowercase command names to entries.
type Data struct {
	Commands map[string]*Entry `json:"commands"`
}

// NewData returns an empty command map.
func NewData() *Data {
	return &Data{Commands: map[string]*Entry{}}
}

// Cog answers prefix commands from the guild's custom command map.
type Cog struct {
	store  *store.Store
	client platform.Client
	prefix string
	log    zerolog.Logger
}

// New creates the custom command cog. prefix is the command sigil,
// normally "!".
func New(st *store.Store, client platform.Client, prefix string) *Cog {
	if prefix == "" {
		prefix = "!"
	}
	return &Cog{
		store:  st,
		client: client,
		prefix: prefix,
		log:    logging.GetLogger("customcmd"),
	}
}

// Name implements bot.Cog.
func (c *Cog) Name() string { return "customcmd" }

// OnMessage answers the message if it is a known prefix command.
func (c *Cog) OnMessage(ctx context.Context, msg platform.Message) {
	if !strings.HasPrefix(msg.Content, c.prefix) {
		return
	}
	fields := strings.Fields(msg.Content[len(c.prefix):])
	if len(fields) == 0 {
		return
	}
	name := strings.ToLower(fields[0])

	var d Data
	if err := c.store.Get(msg.GuildID, Feature, &d); err != nil {
		return
	}
	entry, ok := d.Commands[name]
	if !ok {
		return
	}

	text := rules.Expand(entry.Response, rules.TemplateContext{
		UserMention:    platform.UserMention(msg.AuthorID),
		Username:       msg.AuthorName,
		ServerName:     msg.GuildName,
		ChannelMention: platform.ChannelMention(msg.ChannelID),
	})
	if err := c.client.SendMessage(ctx, msg.ChannelID, text); err != nil {
		c.log.Warn().Err(err).Str("guild", msg.GuildID).Str("command", name).Msg("failed to respond")
		return
	}

	err := store.Update(c.store, msg.GuildID, Feature, NewData, func(d *Data) error {
		if e, ok := d.Commands[name]; ok {
			e.Uses++
		}
		return nil
	})
	if err != nil {
		c.log.Warn().Err(err).Str("guild", msg.GuildID).Str("command", name).Msg("failed to record use")
	}
}

// Commands implements bot.CommandProvider.
func (c *Cog) Commands() []platform.Command {
	return []platform.Command{
		{
			Name:        "command-add",
			Description: "Add or replace a custom prefix command",
			AdminOnly:   true,
			Options: []platform.CommandOption{
				{Name: "name", Description: "Command name without the prefix", Type: platform.OptionString, Required: true},
				{Name: "response", Description: "Text the bot should post", Type: platform.OptionString, Required: true},
			},
			Handler: c.handleAdd,
		},
		{
			Name:        "command-remove",
			Description: "Remove a custom prefix command",
			AdminOnly:   true,
			Options: []platform.CommandOption{
				{Name: "name", Description: "Command name without the prefix", Type: platform.OptionString, Required: true},
			},
			Handler: c.handleRemove,
		},
		{
			Name:        "command-list",
			Description: "List this server's custom commands",
			Handler:     c.handleList,
		},
	}
}

func (c *Cog) handleAdd(ctx context.Context, ic *platform.Interaction) {
	name := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ic.String("name", "")), c.prefix))
	response := ic.String("response", "")
	if name == "" || strings.ContainsAny(name, " \t\n") {
		ic.Respond("Command names must be a single word.", true)
		return
	}
	if response == "" {
		ic.Respond("A response is required.", true)
		return
	}

	err := store.Update(c.store, ic.GuildID, Feature, NewData, func(d *Data) error {
		if d.Commands == nil {
			d.Commands = map[string]*Entry{}
		}
		if e, ok := d.Commands[name]; ok {
			e.Response = response
		} else {
			d.Commands[name] = &Entry{Response: response}
		}
		return nil
	})
	if err != nil {
		ic.Respond("Something went wrong saving the command.", true)
		return
	}
	ic.Respond(fmt.Sprintf("Command `%s%s` saved.", c.prefix, name), true)
}

func (c *Cog) handleRemove(ctx context.Context, ic *platform.Interaction) {
	name := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ic.String("name", "")), c.prefix))
	removed := false
	err := store.Update(c.store, ic.GuildID, Feature, NewData, func(d *Data) error {
		if _, ok := d.Commands[name]; ok {
			delete(d.Commands, name)
			removed = true
		}
		return nil
	})
	if err != nil || !removed {
		ic.Respond(fmt.Sprintf("No command named `%s%s`.", c.prefix, name), true)
		return
	}
	ic.Respond(fmt.Sprintf("Command `%s%s` removed.", c.prefix, name), true)
}

func (c *Cog) handleList(ctx context.Context, ic *platform.Interaction) {
	var d Data
	if err := c.store.Get(ic.GuildID, Feature, &d); err != nil || len(d.Commands) == 0 {
		ic.Respond("No custom commands configured.", true)
		return
	}

	names := make([]string, 0, len(d.Commands))
	for name := range d.Commands {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "%d custom command(s):\n", len(names))
	for _, name := range names {
		fmt.Fprintf(&b, "- `%s%s` (used %d times)\n", c.prefix, name, d.Commands[name].Uses)
	}
	ic.Respond(b.String(), true)
}
