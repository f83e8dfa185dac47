// Package daily implements the daily check-in reward with streaks.
package daily

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/guildkeeper/guildkeeper/internal/logging"
	"github.com/guildkeeper/guildkeeper/internal/platform"
	"github.com/guildkeeper/guildkeeper/internal/store"
	"github.com/rs/zerolog"
)

// Feature is the store key for the per-guild daily check-in data.
const Feature = "daily"

const (
	baseReward     = 100
	streakBonusCap = 100
	dayFormat      = "2006-01-02"
)

// StreakBonus returns the extra coins for the given streak length.
func StreakBonus(streak int) int {
	bonus := streak * 5
	if bonus > streakBonusCap {
		bonus = streakBonusCap
	}
	return bonus
}

// Record is one member's check-in state.
type Record struct {
	Coins     int    `json:"coins"`
	Streak    int    `json:"streak"`
	LastClaim string `json:"lastClaim"` // UTC date, empty if never claimed
}

// Data is the persisted per-guild check-in state.
type Data struct {
	Users map[string]*Record `json:"users"`
}

// NewData returns empty check-in data.
func NewData() *Data {
	return &Data{Users: map[string]*Record{}}
}

// Cog hands out the daily reward.
type Cog struct {
	store *store.Store
	now   func() time.Time
	log   zerolog.Logger
}

// New creates the daily check-in cog.
func New(st *store.Store) *Cog {
	return &Cog{
		store: st,
		now:   time.Now,
		log:   logging.GetLogger("daily"),
	}
}

// Name implements bot.Cog.
func (c *Cog) Name() string { return "daily" }

// Commands implements bot.CommandProvider.
func (c *Cog) Commands() []platform.Command {
	return []platform.Command{
		{
			Name:        "daily",
			Description: "Claim your daily reward",
			Handler:     c.handleClaim,
		},
		{
			Name:        "coins",
			Description: "Show your coin balance and streak",
			Handler:     c.handleBalance,
		},
		{
			Name:        "coins-leaderboard",
			Description: "Show the richest members",
			Handler:     c.handleLeaderboard,
		},
	}
}

func (c *Cog) handleClaim(ctx context.Context, ic *platform.Interaction) {
	today := c.now().UTC().Format(dayFormat)
	yesterday := c.now().UTC().AddDate(0, 0, -1).Format(dayFormat)

	var claimed *Record
	alreadyClaimed := false
	err := store.Update(c.store, ic.GuildID, Feature, NewData, func(d *Data) error {
		if d.Users == nil {
			d.Users = map[string]*Record{}
		}
		r := d.Users[ic.UserID]
		if r == nil {
			r = &Record{}
			d.Users[ic.UserID] = r
		}
		if r.LastClaim == today {
			alreadyClaimed = true
			return nil
		}
		if r.LastClaim == yesterday {
			r.Streak++
		} else {
			r.Streak = 1
		}
		r.Coins += baseReward + StreakBonus(r.Streak)
		r.LastClaim = today
		rc := *r
		claimed = &rc
		return nil
	})
	if err != nil {
		c.log.Warn().Err(err).Str("guild", ic.GuildID).Msg("failed to persist claim")
		ic.Respond("Something went wrong claiming your reward.", true)
		return
	}
	if alreadyClaimed {
		ic.Respond("You already claimed today's reward. Come back tomorrow!", true)
		return
	}
	ic.Respond(fmt.Sprintf("You claimed %d coins (day %d streak, +%d bonus). Balance: %d.",
		baseReward+StreakBonus(claimed.Streak), claimed.Streak, StreakBonus(claimed.Streak), claimed.Coins), false)
}

func (c *Cog) handleBalance(ctx context.Context, ic *platform.Interaction) {
	var d Data
	if err := c.store.Get(ic.GuildID, Feature, &d); err != nil {
		ic.Respond("You have no coins yet. Try /daily!", true)
		return
	}
	r := d.Users[ic.UserID]
	if r == nil {
		ic.Respond("You have no coins yet. Try /daily!", true)
		return
	}
	ic.Respond(fmt.Sprintf("You have %d coins with a %d-day streak.", r.Coins, r.Streak), true)
}

func (c *Cog) handleLeaderboard(ctx context.Context, ic *platform.Interaction) {
	var d Data
	if err := c.store.Get(ic.GuildID, Feature, &d); err != nil || len(d.Users) == 0 {
		ic.Respond("Nobody has claimed a reward yet.", true)
		return
	}

	type entry struct {
		userID string
		r      *Record
	}
	entries := make([]entry, 0, len(d.Users))
	for id, r := range d.Users {
		entries = append(entries, entry{id, r})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].r.Coins > entries[j].r.Coins
	})
	if len(entries) > 10 {
		entries = entries[:10]
	}

	text := "**Coin leaderboard**\n"
	for i, e := range entries {
		text += fmt.Sprintf("%d. %s: %d coins\n", i+1, platform.UserMention(e.userID), e.r.Coins)
	}
	ic.Respond(text, false)
}
