package rules

import "time"

// ActionKind enumerates the dispatchable side effects. The set is closed:
// the dispatcher switches exhaustively and an unknown kind dispatches
// nothing.
type ActionKind string

const (
	ActionReply          ActionKind = "reply"
	ActionChannelMessage ActionKind = "channelMessage"
	ActionDirectMessage  ActionKind = "directMessage"
	ActionReact          ActionKind = "react"
	ActionTimeout        ActionKind = "timeout"
	ActionDeleteOnly     ActionKind = "deleteOnly"
)

// Action is the resolved side effect of a matched rule, ready for the
// dispatcher. Text still carries raw template tokens; substitution happens
// at dispatch time.
type Action struct {
	Kind          ActionKind
	Text          string
	MentionAuthor bool
	Emoji         string
	Duration      time.Duration // timeout mute duration
	DeleteMessage bool          // timeout/deleteOnly: remove the triggering message
	Notice        string        // transient channel notice after timeout/delete
}

const defaultReaction = "👍"

// Action resolves the rule's persisted replyType into a dispatchable
// Action. ok is false for an unrecognized replyType; such rules match but
// dispatch nothing.
func (r *Rule) Action() (Action, bool) {
	switch r.ReplyType {
	case ReplyReply:
		return Action{Kind: ActionReply, Text: r.Reply, MentionAuthor: r.MentionUser}, true
	case ReplyMessage:
		return Action{Kind: ActionChannelMessage, Text: r.Reply}, true
	case ReplyDM:
		return Action{Kind: ActionDirectMessage, Text: r.Reply}, true
	case ReplyReact:
		emoji := r.Reaction
		if emoji == "" {
			emoji = defaultReaction
		}
		return Action{Kind: ActionReact, Emoji: emoji}, true
	}
	return Action{}, false
}
