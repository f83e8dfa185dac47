// Package stats records per-guild message activity and exposes summary
// queries to the dashboard and a slash command.
package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/guildkeeper/guildkeeper/internal/logging"
	"github.com/guildkeeper/guildkeeper/internal/platform"
	"github.com/guildkeeper/guildkeeper/internal/statsdb"
	"github.com/rs/zerolog"
)

// Cog counts messages into the statistics database.
type Cog struct {
	db  *statsdb.DB
	now func() time.Time
	log zerolog.Logger
}

// New creates the stats cog.
func New(db *statsdb.DB) *Cog {
	return &Cog{
		db:  db,
		now: time.Now,
		log: logging.GetLogger("stats"),
	}
}

// Name implements bot.Cog.
func (c *Cog) Name() string { return "stats" }

// OnMessage bumps the message counter. Counting failures are logged and
// otherwise ignored.
func (c *Cog) OnMessage(ctx context.Context, msg platform.Message) {
	if err := c.db.RecordMessage(ctx, msg.GuildID, msg.ChannelID, msg.AuthorID, c.now()); err != nil {
		c.log.Warn().Err(err).Str("guild", msg.GuildID).Msg("failed to record message")
	}
}

// Commands implements bot.CommandProvider.
func (c *Cog) Commands() []platform.Command {
	return []platform.Command{
		{
			Name:        "serverstats",
			Description: "Show this server's activity over the last 7 days",
			Handler:     c.handleStats,
		},
	}
}

func (c *Cog) handleStats(ctx context.Context, ic *platform.Interaction) {
	since := statsdb.Day(c.now().AddDate(0, 0, -7))
	s, err := c.db.GuildSummary(ctx, ic.GuildID, since, 5)
	if err != nil {
		c.log.Warn().Err(err).Str("guild", ic.GuildID).Msg("failed to query stats")
		ic.Respond("Statistics are unavailable right now.", true)
		return
	}

	text := fmt.Sprintf("**Last 7 days**: %d messages from %d members.\n", s.TotalMessages, s.ActiveUsers)
	for i, u := range s.TopUsers {
		text += fmt.Sprintf("%d. %s: %d messages\n", i+1, platform.UserMention(u.UserID), u.Count)
	}
	ic.Respond(text, false)
}
