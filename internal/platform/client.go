package platform

import (
	"context"
	"time"
)

// Client is the outbound surface of the chat platform. Every call performs
// exactly one externally-visible side effect and reports the platform's
// error unwrapped; callers decide whether to log or swallow it.
type Client interface {
	// Reply sends a threaded reply to the given message. mentionAuthor
	// controls whether the reply pings the original author.
	Reply(ctx context.Context, msg Message, text string, mentionAuthor bool) error

	// SendMessage posts a new message to a channel.
	SendMessage(ctx context.Context, channelID, text string) error

	// SendTransient posts a message that the platform deletes after the
	// given duration. Used for moderation notices.
	SendTransient(ctx context.Context, channelID, text string, after time.Duration) error

	// SendDM attempts a direct message to the user. Fails if the
	// recipient blocks DMs.
	SendDM(ctx context.Context, userID, text string) error

	// React attaches an emoji reaction to a message.
	React(ctx context.Context, channelID, messageID, emoji string) error

	// DeleteMessage removes a message from its channel.
	DeleteMessage(ctx context.Context, channelID, messageID string) error

	// TimeoutMember mutes a guild member for the given duration.
	TimeoutMember(ctx context.Context, guildID, userID string, d time.Duration, reason string) error
}

// Directory exposes the bot's view of its guilds for the dashboard.
type Directory interface {
	Bot() BotInfo
	Guilds() []GuildInfo
	GuildName(guildID string) string
	// Membership reports whether the user is a member of the guild and
	// whether they hold the Administrator permission there.
	Membership(guildID, userID string) (member, admin bool)
}
