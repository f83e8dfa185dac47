// Package platform abstracts the chat platform behind a small client
// interface so cogs and the dispatcher never touch the SDK directly.
package platform

// Message is an incoming chat message as seen by the cogs and the rule
// engine. Read-only input; IDs are the platform's string snowflakes.
type Message struct {
	ID          string
	GuildID     string
	GuildName   string
	ChannelID   string
	AuthorID    string
	AuthorName  string
	AuthorBot   bool
	AuthorRoles []string
	Content     string
}

// ReactionEvent describes an emoji reaction being added to or removed
// from a message. Emoji is the unicode emoji, or name:id for custom ones.
type ReactionEvent struct {
	GuildID   string
	ChannelID string
	MessageID string
	UserID    string
	Emoji     string
}

// MemberEvent describes a member joining or leaving a guild.
type MemberEvent struct {
	GuildID   string
	GuildName string
	UserID    string
	UserName  string
}

// GuildInfo is a summary of a guild the bot is a member of.
type GuildInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	IconURL     string `json:"icon"`
	MemberCount int    `json:"member_count"`
}

// BotInfo is a summary of the bot's own identity.
type BotInfo struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar"`
}
