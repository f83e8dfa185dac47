// Package security implements the banned-word filter. It reuses the
// message-classification engine: the configured word list is compiled
// into an ordered rule set on each evaluation.
package security

import (
	"context"
	"fmt"
	"time"

	"github.com/guildkeeper/guildkeeper/internal/bot"
	"github.com/guildkeeper/guildkeeper/internal/dispatch"
	"github.com/guildkeeper/guildkeeper/internal/logging"
	"github.com/guildkeeper/guildkeeper/internal/platform"
	"github.com/guildkeeper/guildkeeper/internal/rules"
	"github.com/guildkeeper/guildkeeper/internal/statsdb"
	"github.com/guildkeeper/guildkeeper/internal/store"
	"github.com/rs/zerolog"
)

// Feature is the store key for the per-guild security settings.
const Feature = "security"

// WordAction selects what happens when a banned word is detected.
type WordAction string

const (
	ActionTimeout WordAction = "timeout" // mute the author and delete the message
	ActionDelete  WordAction = "delete"  // delete the message only
	ActionWarn    WordAction = "warn"    // reply with a warning, keep the message
)

// ValidWordAction reports whether a is a recognized word action.
func ValidWordAction(a WordAction) bool {
	switch a {
	case ActionTimeout, ActionDelete, ActionWarn:
		return true
	}
	return false
}

// Word is one banned-word entry.
type Word struct {
	Word      string          `json:"word"`
	MatchType rules.MatchType `json:"matchType"`
	Action    WordAction      `json:"action"`
}

// Settings is the persisted per-guild security configuration. Unlike
// auto-reply's channel/role allow-lists, the whitelists here are
// exemptions: listed roles and channels bypass the filter.
type Settings struct {
	Enabled           bool     `json:"enabled"`
	Words             []Word   `json:"words"`
	WhitelistRoles    []string `json:"whitelistRoles"`
	WhitelistChannels []string `json:"whitelistChannels"`
	TimeoutSeconds    int      `json:"timeoutSeconds"`
}

// NewSettings returns empty, disabled settings with the default mute
// duration.
func NewSettings() *Settings {
	return &Settings{Words: []Word{}, TimeoutSeconds: 300}
}

// Cog watches messages for banned words and applies the configured
// moderation action.
type Cog struct {
	store      *store.Store
	dispatcher *dispatch.Dispatcher
	audit      *statsdb.DB
	hub        *bot.Hub
	log        zerolog.Logger
}

// New creates the security cog. audit may be nil, in which case no audit
// log entries are written.
func New(st *store.Store, d *dispatch.Dispatcher, audit *statsdb.DB, hub *bot.Hub) *Cog {
	return &Cog{
		store:      st,
		dispatcher: d,
		audit:      audit,
		hub:        hub,
		log:        logging.GetLogger("security"),
	}
}

// Name implements bot.Cog.
func (c *Cog) Name() string { return "security" }

// compile lowers the word list into the shared rule representation.
// Rule index i corresponds to Words[i].
func compile(s *Settings) *rules.Document {
	doc := &rules.Document{Enabled: s.Enabled, Rules: make([]rules.Rule, 0, len(s.Words))}
	for i, w := range s.Words {
		mt := w.MatchType
		if mt == "" {
			mt = rules.MatchContains
		}
		doc.Rules = append(doc.Rules, rules.Rule{
			ID:        i + 1,
			Trigger:   w.Word,
			MatchType: mt,
			Enabled:   true,
		})
	}
	return doc
}

// action maps a word entry to the dispatchable action.
func (s *Settings) action(w Word) rules.Action {
	switch w.Action {
	case ActionTimeout:
		timeout := time.Duration(s.TimeoutSeconds) * time.Second
		if timeout <= 0 {
			timeout = 5 * time.Minute
		}
		return rules.Action{
			Kind:          rules.ActionTimeout,
			Duration:      timeout,
			DeleteMessage: true,
			Notice:        "{user} has been muted for using a banned word.",
		}
	case ActionWarn:
		return rules.Action{
			Kind:          rules.ActionReply,
			Text:          "Please watch your language, {username}.",
			MentionAuthor: true,
		}
	default:
		return rules.Action{
			Kind:   rules.ActionDeleteOnly,
			Notice: "{user}, that message is not allowed here.",
		}
	}
}

// exempt reports whether the message is excluded from filtering.
func exempt(s *Settings, msg platform.Message) bool {
	for _, ch := range s.WhitelistChannels {
		if ch == msg.ChannelID {
			return true
		}
	}
	for _, wr := range s.WhitelistRoles {
		for _, role := range msg.AuthorRoles {
			if role == wr {
				return true
			}
		}
	}
	return false
}

// OnMessage checks the message against the guild's banned words.
func (c *Cog) OnMessage(ctx context.Context, msg platform.Message) {
	var settings Settings
	if err := c.store.Get(msg.GuildID, Feature, &settings); err != nil {
		return
	}
	if !settings.Enabled || len(settings.Words) == 0 || exempt(&settings, msg) {
		return
	}

	res := rules.Evaluate(compile(&settings), rules.Message{
		ChannelID:   msg.ChannelID,
		AuthorRoles: msg.AuthorRoles,
		Content:     msg.Content,
	})
	if res == nil {
		return
	}

	word := settings.Words[res.Index]
	outcome := c.dispatcher.Dispatch(ctx, settings.action(word), msg)

	if c.hub != nil {
		c.hub.Publish(bot.Event{
			GuildID: msg.GuildID,
			Kind:    "security",
			Detail:  fmt.Sprintf("word %q %s delivered=%t", word.Word, word.Action, outcome.Delivered),
		})
	}
	if c.audit != nil && outcome.Delivered {
		err := c.audit.RecordModAction(ctx, statsdb.ModAction{
			GuildID: msg.GuildID,
			UserID:  msg.AuthorID,
			Action:  string(word.Action),
			Trigger: word.Word,
			Detail:  "banned word filter",
		})
		if err != nil {
			c.log.Warn().Err(err).Str("guild", msg.GuildID).Msg("failed to write audit entry")
		}
	}
}
