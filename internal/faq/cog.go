package faq

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/guildkeeper/guildkeeper/internal/logging"
	"github.com/guildkeeper/guildkeeper/internal/platform"
	"github.com/guildkeeper/guildkeeper/internal/store"
	"github.com/rs/zerolog"
)

// Feature is the store key for the persisted per-guild FAQ entries.
const Feature = "faq"

// Entry is one question/answer pair.
type Entry struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Data is the persisted per-guild FAQ list. The vector index is rebuilt
// from it on startup.
type Data struct {
	Entries []Entry `json:"entries"`
}

// NewData returns an empty FAQ list.
func NewData() *Data {
	return &Data{Entries: []Entry{}}
}

// Cog answers questions that score above the similarity threshold.
type Cog struct {
	store     *store.Store
	client    platform.Client
	index     *Index
	threshold float32
	log       zerolog.Logger
}

// New creates the FAQ cog.
func New(st *store.Store, client platform.Client, index *Index, threshold float32) *Cog {
	return &Cog{
		store:     st,
		client:    client,
		index:     index,
		threshold: threshold,
		log:       logging.GetLogger("faq"),
	}
}

// Name implements bot.Cog.
func (c *Cog) Name() string { return "faq" }

// LoadGuild rebuilds the guild's vector collection from the store.
func (c *Cog) LoadGuild(ctx context.Context, guildID string) error {
	var d Data
	if err := c.store.Get(guildID, Feature, &d); err != nil {
		return nil
	}
	for _, e := range d.Entries {
		if err := c.index.Add(ctx, guildID, e.ID, e.Question, e.Answer); err != nil {
			return fmt.Errorf("rebuilding faq index for guild %s: %w", guildID, err)
		}
	}
	return nil
}

// OnMessage answers messages that look like questions when a knowledge
// base entry scores above the threshold.
func (c *Cog) OnMessage(ctx context.Context, msg platform.Message) {
	content := strings.TrimSpace(msg.Content)
	if !strings.HasSuffix(content, "?") {
		return
	}

	match, err := c.index.Search(ctx, msg.GuildID, content)
	if err != nil {
		c.log.Warn().Err(err).Str("guild", msg.GuildID).Msg("faq search failed")
		return
	}
	if match == nil || match.Similarity < c.threshold {
		return
	}

	if err := c.client.Reply(ctx, msg, match.Answer, false); err != nil {
		c.log.Warn().Err(err).Str("guild", msg.GuildID).Msg("failed to send faq answer")
	}
}

// Commands implements bot.CommandProvider.
func (c *Cog) Commands() []platform.Command {
	return []platform.Command{
		{
			Name:        "faq-add",
			Description: "Add a question to the FAQ knowledge base",
			AdminOnly:   true,
			Options: []platform.CommandOption{
				{Name: "question", Description: "The question", Type: platform.OptionString, Required: true},
				{Name: "answer", Description: "The answer the bot should give", Type: platform.OptionString, Required: true},
			},
			Handler: c.handleAdd,
		},
		{
			Name:        "faq-remove",
			Description: "Remove an FAQ entry",
			AdminOnly:   true,
			Options: []platform.CommandOption{
				{Name: "id", Description: "Entry ID", Type: platform.OptionString, Required: true},
			},
			Handler: c.handleRemove,
		},
		{
			Name:        "faq-list",
			Description: "List the FAQ knowledge base",
			Handler:     c.handleList,
		},
	}
}

func (c *Cog) handleAdd(ctx context.Context, ic *platform.Interaction) {
	question := strings.TrimSpace(ic.String("question", ""))
	answer := strings.TrimSpace(ic.String("answer", ""))
	if question == "" || answer == "" {
		ic.Respond("Both a question and an answer are required.", true)
		return
	}

	entry := Entry{ID: uuid.NewString(), Question: question, Answer: answer}
	err := store.Update(c.store, ic.GuildID, Feature, NewData, func(d *Data) error {
		d.Entries = append(d.Entries, entry)
		return nil
	})
	if err != nil {
		ic.Respond("Something went wrong saving the entry.", true)
		return
	}
	if err := c.index.Add(ctx, ic.GuildID, entry.ID, entry.Question, entry.Answer); err != nil {
		c.log.Warn().Err(err).Str("guild", ic.GuildID).Msg("failed to index faq entry")
	}
	ic.Respond(fmt.Sprintf("FAQ entry `%s` added.", entry.ID), true)
}

func (c *Cog) handleRemove(ctx context.Context, ic *platform.Interaction) {
	id := ic.String("id", "")
	removed := false
	err := store.Update(c.store, ic.GuildID, Feature, NewData, func(d *Data) error {
		for i := range d.Entries {
			if d.Entries[i].ID == id {
				d.Entries = append(d.Entries[:i], d.Entries[i+1:]...)
				removed = true
				return nil
			}
		}
		return nil
	})
	if err != nil || !removed {
		ic.Respond("No FAQ entry with that ID.", true)
		return
	}
	if err := c.index.Remove(ctx, ic.GuildID, id); err != nil {
		c.log.Warn().Err(err).Str("guild", ic.GuildID).Msg("failed to remove faq entry from index")
	}
	ic.Respond("FAQ entry removed.", true)
}

func (c *Cog) handleList(ctx context.Context, ic *platform.Interaction) {
	var d Data
	if err := c.store.Get(ic.GuildID, Feature, &d); err != nil || len(d.Entries) == 0 {
		ic.Respond("The FAQ knowledge base is empty.", true)
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d FAQ entr(ies):\n", len(d.Entries))
	for _, e := range d.Entries {
		fmt.Fprintf(&b, "- `%s` %s\n", e.ID, e.Question)
	}
	ic.Respond(b.String(), true)
}
