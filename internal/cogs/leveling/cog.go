// Package leveling awards XP for chat activity and announces level-ups.
package leveling

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/guildkeeper/guildkeeper/internal/logging"
	"github.com/guildkeeper/guildkeeper/internal/memstate"
	"github.com/guildkeeper/guildkeeper/internal/platform"
	"github.com/guildkeeper/guildkeeper/internal/store"
	"github.com/rs/zerolog"
)

// Feature is the store key for the per-guild leveling data.
const Feature = "leveling"

const (
	xpMin      = 15
	xpMax      = 25
	xpCooldown = 60 * time.Second
)

// XPForLevel returns the XP required to advance from the given level to
// the next one.
func XPForLevel(level int) int {
	if level < 1 {
		level = 1
	}
	return 100 + (level-1)*50
}

// Profile is one member's progress within a guild.
type Profile struct {
	XP       int `json:"xp"`
	Level    int `json:"level"`
	Messages int `json:"messages"`
}

// Data is the persisted per-guild leveling state.
type Data struct {
	Enabled bool                `json:"enabled"`
	Users   map[string]*Profile `json:"users"`
}

// NewData returns empty, enabled leveling data.
func NewData() *Data {
	return &Data{Enabled: true, Users: map[string]*Profile{}}
}

// Cog tracks XP per message with a per-member cooldown.
type Cog struct {
	store    *store.Store
	client   platform.Client
	cooldown *memstate.TTLMap[struct{}]
	rollXP   func() int
	log      zerolog.Logger
}

// New creates the leveling cog.
func New(st *store.Store, client platform.Client) *Cog {
	return &Cog{
		store:    st,
		client:   client,
		cooldown: memstate.New[struct{}](),
		rollXP:   func() int { return xpMin + rand.Intn(xpMax-xpMin+1) },
		log:      logging.GetLogger("leveling"),
	}
}

// Name implements bot.Cog.
func (c *Cog) Name() string { return "leveling" }

// OnMessage awards XP for the message unless the author is still on
// cooldown. A level-up is announced in the triggering channel.
func (c *Cog) OnMessage(ctx context.Context, msg platform.Message) {
	key := memstate.Key{GuildID: msg.GuildID, UserID: msg.AuthorID}
	if _, onCooldown := c.cooldown.Get(key); onCooldown {
		return
	}

	// Skip the read-modify-write entirely when the guild has leveling
	// switched off. A missing document means the defaults apply.
	var current Data
	if err := c.store.Get(msg.GuildID, Feature, &current); err == nil && !current.Enabled {
		return
	}

	gain := c.rollXP()
	leveledTo := 0
	err := store.Update(c.store, msg.GuildID, Feature, NewData, func(d *Data) error {
		if !d.Enabled {
			return nil
		}
		if d.Users == nil {
			d.Users = map[string]*Profile{}
		}
		p := d.Users[msg.AuthorID]
		if p == nil {
			p = &Profile{Level: 1}
			d.Users[msg.AuthorID] = p
		}
		p.Messages++
		p.XP += gain
		for p.XP >= XPForLevel(p.Level) {
			p.XP -= XPForLevel(p.Level)
			p.Level++
			leveledTo = p.Level
		}
		return nil
	})
	if err != nil {
		c.log.Warn().Err(err).Str("guild", msg.GuildID).Msg("failed to persist xp")
		return
	}

	c.cooldown.Set(key, struct{}{}, xpCooldown)

	if leveledTo > 0 {
		text := fmt.Sprintf("🎉 %s reached level %d!", platform.UserMention(msg.AuthorID), leveledTo)
		if err := c.client.SendMessage(ctx, msg.ChannelID, text); err != nil {
			c.log.Warn().Err(err).Str("guild", msg.GuildID).Msg("failed to announce level-up")
		}
	}
}

// Commands implements bot.CommandProvider.
func (c *Cog) Commands() []platform.Command {
	return []platform.Command{
		{
			Name:        "rank",
			Description: "Show your level and XP",
			Options: []platform.CommandOption{
				{Name: "user", Description: "Member to look up", Type: platform.OptionUser},
			},
			Handler: c.handleRank,
		},
		{
			Name:        "leaderboard",
			Description: "Show the server's top members by level",
			Handler:     c.handleLeaderboard,
		},
	}
}

func (c *Cog) handleRank(ctx context.Context, ic *platform.Interaction) {
	userID := ic.String("user", ic.UserID)

	var d Data
	if err := c.store.Get(ic.GuildID, Feature, &d); err != nil {
		ic.Respond("No activity recorded yet.", true)
		return
	}
	p := d.Users[userID]
	if p == nil {
		ic.Respond("No activity recorded for that member yet.", true)
		return
	}
	ic.Respond(fmt.Sprintf("%s is level %d with %d/%d XP (%d messages).",
		platform.UserMention(userID), p.Level, p.XP, XPForLevel(p.Level), p.Messages), false)
}

func (c *Cog) handleLeaderboard(ctx context.Context, ic *platform.Interaction) {
	var d Data
	if err := c.store.Get(ic.GuildID, Feature, &d); err != nil || len(d.Users) == 0 {
		ic.Respond("No activity recorded yet.", true)
		return
	}

	type entry struct {
		userID string
		p      *Profile
	}
	entries := make([]entry, 0, len(d.Users))
	for id, p := range d.Users {
		entries = append(entries, entry{id, p})
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i].p, entries[j].p
		if a.Level != b.Level {
			return a.Level > b.Level
		}
		return a.XP > b.XP
	})
	if len(entries) > 10 {
		entries = entries[:10]
	}

	text := "**Leaderboard**\n"
	for i, e := range entries {
		text += fmt.Sprintf("%d. %s: level %d (%d XP)\n", i+1, platform.UserMention(e.userID), e.p.Level, e.p.XP)
	}
	ic.Respond(text, false)
}
