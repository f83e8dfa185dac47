// Package statsdb persists per-guild message statistics and the
// moderation audit log in SQLite. The JSON store is fine for settings
// documents; counters written on every message need something that can
// upsert.
package statsdb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB with guildkeeper-specific helpers.
type DB struct {
	*sql.DB
	path string
}

// Open creates or opens a SQLite database at the given path.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	d := &DB{DB: sqlDB, path: path}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return d, nil
}

// OpenMemory creates an in-memory SQLite database (useful for testing).
func OpenMemory() (*DB, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory database: %w", err)
	}

	d := &DB{DB: sqlDB, path: ":memory:"}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return d, nil
}

// migrate runs all schema migrations.
func (d *DB) migrate() error {
	_, err := d.Exec(schema)
	return err
}

// schema contains the full database schema. New tables are added here.
const schema = `
CREATE TABLE IF NOT EXISTS message_stats (
    guild_id TEXT NOT NULL,
    channel_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    day TEXT NOT NULL,
    count INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY(guild_id, channel_id, user_id, day)
);

CREATE INDEX IF NOT EXISTS idx_message_stats_guild_day ON message_stats(guild_id, day);
CREATE INDEX IF NOT EXISTS idx_message_stats_user ON message_stats(guild_id, user_id);

CREATE TABLE IF NOT EXISTS mod_actions (
    id TEXT PRIMARY KEY,
    guild_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    action TEXT NOT NULL,
    trigger TEXT NOT NULL DEFAULT '',
    detail TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_mod_actions_guild ON mod_actions(guild_id, created_at);
`

// Day formats a time as the statistics bucket key (UTC date).
func Day(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// RecordMessage bumps the message counter for the given bucket.
func (d *DB) RecordMessage(ctx context.Context, guildID, channelID, userID string, at time.Time) error {
	_, err := d.ExecContext(ctx, `
		INSERT INTO message_stats (guild_id, channel_id, user_id, day, count)
		VALUES (?, ?, ?, ?, 1)
		ON CONFLICT(guild_id, channel_id, user_id, day)
		DO UPDATE SET count = count + 1`,
		guildID, channelID, userID, Day(at))
	if err != nil {
		return fmt.Errorf("recording message stat: %w", err)
	}
	return nil
}

// Summary aggregates a guild's message activity since the given day.
type Summary struct {
	TotalMessages int         `json:"total_messages"`
	ActiveUsers   int         `json:"active_users"`
	TopUsers      []UserCount `json:"top_users"`
}

// UserCount pairs a user with a message count.
type UserCount struct {
	UserID string `json:"user_id"`
	Count  int    `json:"count"`
}

// GuildSummary returns aggregate activity for the guild since sinceDay
// (inclusive, "YYYY-MM-DD").
func (d *DB) GuildSummary(ctx context.Context, guildID, sinceDay string, topN int) (*Summary, error) {
	s := &Summary{}

	row := d.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(count), 0), COUNT(DISTINCT user_id)
		FROM message_stats WHERE guild_id = ? AND day >= ?`,
		guildID, sinceDay)
	if err := row.Scan(&s.TotalMessages, &s.ActiveUsers); err != nil {
		return nil, fmt.Errorf("aggregating guild stats: %w", err)
	}

	rows, err := d.QueryContext(ctx, `
		SELECT user_id, SUM(count) AS total
		FROM message_stats WHERE guild_id = ? AND day >= ?
		GROUP BY user_id ORDER BY total DESC LIMIT ?`,
		guildID, sinceDay, topN)
	if err != nil {
		return nil, fmt.Errorf("querying top users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var uc UserCount
		if err := rows.Scan(&uc.UserID, &uc.Count); err != nil {
			return nil, fmt.Errorf("scanning top user: %w", err)
		}
		s.TopUsers = append(s.TopUsers, uc)
	}
	return s, rows.Err()
}

// ModAction is one entry in the moderation audit log.
type ModAction struct {
	ID        string    `json:"id"`
	GuildID   string    `json:"guild_id"`
	UserID    string    `json:"user_id"`
	Action    string    `json:"action"`
	Trigger   string    `json:"trigger"`
	Detail    string    `json:"detail"`
	CreatedAt time.Time `json:"created_at"`
}

// RecordModAction appends an entry to the audit log. The ID is assigned
// here.
func (d *DB) RecordModAction(ctx context.Context, a ModAction) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	_, err := d.ExecContext(ctx, `
		INSERT INTO mod_actions (id, guild_id, user_id, action, trigger, detail)
		VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.GuildID, a.UserID, a.Action, a.Trigger, a.Detail)
	if err != nil {
		return fmt.Errorf("recording mod action: %w", err)
	}
	return nil
}

// RecentModActions returns the guild's newest audit entries.
func (d *DB) RecentModActions(ctx context.Context, guildID string, limit int) ([]ModAction, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.QueryContext(ctx, `
		SELECT id, guild_id, user_id, action, trigger, detail, created_at
		FROM mod_actions WHERE guild_id = ?
		ORDER BY created_at DESC LIMIT ?`,
		guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying mod actions: %w", err)
	}
	defer rows.Close()

	var out []ModAction
	for rows.Next() {
		var a ModAction
		if err := rows.Scan(&a.ID, &a.GuildID, &a.UserID, &a.Action, &a.Trigger, &a.Detail, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning mod action: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
