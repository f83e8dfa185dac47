package platform

import "context"

// OptionType enumerates the supported slash command option types.
type OptionType int

const (
	OptionString OptionType = iota
	OptionInteger
	OptionBoolean
	OptionUser
	OptionChannel
	OptionRole
)

// CommandOption describes one slash command parameter.
type CommandOption struct {
	Name        string
	Description string
	Type        OptionType
	Required    bool
	Choices     []string
}

// Command is a slash command contributed by a cog.
type Command struct {
	Name        string
	Description string
	Options     []CommandOption
	AdminOnly   bool
	Handler     func(ctx context.Context, ic *Interaction)
}

// Interaction is a received slash command invocation. Respond must be
// called exactly once.
type Interaction struct {
	GuildID   string
	GuildName string
	ChannelID string
	UserID    string
	UserName  string
	IsAdmin   bool

	opts    map[string]any
	respond func(text string, ephemeral bool) error
}

// NewInteraction builds an Interaction; used by platform adapters and tests.
func NewInteraction(guildID, guildName, channelID, userID, userName string, admin bool, opts map[string]any, respond func(string, bool) error) *Interaction {
	if opts == nil {
		opts = map[string]any{}
	}
	return &Interaction{
		GuildID:   guildID,
		GuildName: guildName,
		ChannelID: channelID,
		UserID:    userID,
		UserName:  userName,
		IsAdmin:   admin,
		opts:      opts,
		respond:   respond,
	}
}

// Respond sends the command response. Ephemeral responses are visible only
// to the invoking user.
func (ic *Interaction) Respond(text string, ephemeral bool) error {
	return ic.respond(text, ephemeral)
}

// String returns the named string option, or def if absent.
func (ic *Interaction) String(name, def string) string {
	if v, ok := ic.opts[name].(string); ok {
		return v
	}
	return def
}

// Int returns the named integer option, or def if absent.
func (ic *Interaction) Int(name string, def int64) int64 {
	if v, ok := ic.opts[name].(int64); ok {
		return v
	}
	return def
}

// Bool returns the named boolean option, or def if absent.
func (ic *Interaction) Bool(name string, def bool) bool {
	if v, ok := ic.opts[name].(bool); ok {
		return v
	}
	return def
}

// Has reports whether the named option was provided.
func (ic *Interaction) Has(name string) bool {
	_, ok := ic.opts[name]
	return ok
}

// UserMention renders a mention for the given user ID.
func UserMention(userID string) string { return "<@" + userID + ">" }

// ChannelMention renders a mention for the given channel ID.
func ChannelMention(channelID string) string { return "<#" + channelID + ">" }

// RoleMention renders a mention for the given role ID.
func RoleMention(roleID string) string { return "<@&" + roleID + ">" }
