// Package dispatch executes the side effect of a matched rule through the
// platform client. One effect per call, no retries; delivery failures are
// logged and swallowed so the message path never sees them.
package dispatch

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/guildkeeper/guildkeeper/internal/logging"
	"github.com/guildkeeper/guildkeeper/internal/platform"
	"github.com/guildkeeper/guildkeeper/internal/rules"
)

// Outcome reports what a dispatch attempt did. Delivered is true only when
// the platform accepted the primary side effect; Err carries the platform
// error for callers that want to log it.
type Outcome struct {
	Kind      rules.ActionKind
	Delivered bool
	Err       error
}

const (
	timeoutNoticeTTL = 10 * time.Second
	deleteNoticeTTL  = 5 * time.Second
)

// Dispatcher executes rule actions against the platform client.
type Dispatcher struct {
	client platform.Client
	log    zerolog.Logger
}

// New creates a Dispatcher over the given client.
func New(client platform.Client) *Dispatcher {
	return &Dispatcher{
		client: client,
		log:    logging.GetLogger("dispatch"),
	}
}

// Dispatch performs the action's side effect for the triggering message.
// Template tokens in the action text are substituted before sending.
func (d *Dispatcher) Dispatch(ctx context.Context, action rules.Action, msg platform.Message) Outcome {
	tc := rules.TemplateContext{
		UserMention:    platform.UserMention(msg.AuthorID),
		Username:       msg.AuthorName,
		ServerName:     msg.GuildName,
		ChannelMention: platform.ChannelMention(msg.ChannelID),
	}
	text := rules.Expand(action.Text, tc)
	notice := rules.Expand(action.Notice, tc)

	out := Outcome{Kind: action.Kind}

	switch action.Kind {
	case rules.ActionReply:
		out.Err = d.client.Reply(ctx, msg, text, action.MentionAuthor)
		if out.Err != nil {
			d.log.Warn().Err(out.Err).Str("channel", msg.ChannelID).Msg("reply failed")
		}

	case rules.ActionChannelMessage:
		out.Err = d.client.SendMessage(ctx, msg.ChannelID, text)
		if out.Err != nil {
			d.log.Warn().Err(out.Err).Str("channel", msg.ChannelID).Msg("channel message failed")
		}

	case rules.ActionDirectMessage:
		// Recipient may block DMs; that is not worth a warning.
		out.Err = d.client.SendDM(ctx, msg.AuthorID, text)
		if out.Err != nil {
			d.log.Debug().Err(out.Err).Str("user", msg.AuthorID).Msg("dm failed")
		}

	case rules.ActionReact:
		out.Err = d.client.React(ctx, msg.ChannelID, msg.ID, action.Emoji)
		if out.Err != nil {
			d.log.Debug().Err(out.Err).Str("emoji", action.Emoji).Msg("reaction failed")
		}

	case rules.ActionTimeout:
		out.Err = d.client.TimeoutMember(ctx, msg.GuildID, msg.AuthorID, action.Duration, "matched filter rule")
		if out.Err != nil {
			// Missing permission aborts the mute; the message stays.
			d.log.Warn().Err(out.Err).Str("user", msg.AuthorID).Msg("timeout failed")
			return out
		}
		if action.DeleteMessage {
			if err := d.client.DeleteMessage(ctx, msg.ChannelID, msg.ID); err != nil {
				d.log.Warn().Err(err).Str("message", msg.ID).Msg("delete after timeout failed")
			}
		}
		if notice != "" {
			if err := d.client.SendTransient(ctx, msg.ChannelID, notice, timeoutNoticeTTL); err != nil {
				d.log.Debug().Err(err).Msg("timeout notice failed")
			}
		}

	case rules.ActionDeleteOnly:
		out.Err = d.client.DeleteMessage(ctx, msg.ChannelID, msg.ID)
		if out.Err != nil {
			d.log.Warn().Err(out.Err).Str("message", msg.ID).Msg("delete failed")
			return out
		}
		if notice != "" {
			if err := d.client.SendTransient(ctx, msg.ChannelID, notice, deleteNoticeTTL); err != nil {
				d.log.Debug().Err(err).Msg("delete notice failed")
			}
		}

	default:
		// Unknown kinds dispatch nothing; the rule data is from disk and
		// may be ahead of or behind this binary.
		d.log.Warn().Str("kind", string(action.Kind)).Msg("unknown action kind")
		return out
	}

	out.Delivered = out.Err == nil
	return out
}
