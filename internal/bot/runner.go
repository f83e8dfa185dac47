package bot

import (
	"context"

	"github.com/guildkeeper/guildkeeper/internal/logging"
	"github.com/guildkeeper/guildkeeper/internal/platform"
	"github.com/rs/zerolog"
)

// Runner dispatches platform events to registered cogs.
type Runner struct {
	cogs []Cog
	hub  *Hub
	log  zerolog.Logger
}

// NewRunner creates a runner over the given cogs.
func NewRunner(hub *Hub, cogs ...Cog) *Runner {
	return &Runner{
		cogs: cogs,
		hub:  hub,
		log:  logging.GetLogger("bot"),
	}
}

// Hub returns the runner's event hub.
func (r *Runner) Hub() *Hub {
	return r.hub
}

// Handlers builds the platform handler set backed by the cogs.
func (r *Runner) Handlers() platform.Handlers {
	return platform.Handlers{
		OnMessage:        r.onMessage,
		OnMemberJoin:     r.onMemberJoin,
		OnMemberLeave:    r.onMemberLeave,
		OnReactionAdd:    r.onReactionAdd,
		OnReactionRemove: r.onReactionRemove,
	}
}

// Commands collects the slash commands from every contributing cog.
func (r *Runner) Commands() []platform.Command {
	var out []platform.Command
	for _, c := range r.cogs {
		if cp, ok := c.(CommandProvider); ok {
			out = append(out, cp.Commands()...)
		}
	}
	return out
}

func (r *Runner) onMessage(ctx context.Context, msg platform.Message) {
	if msg.AuthorBot {
		return
	}
	for _, c := range r.cogs {
		if mh, ok := c.(MessageHandler); ok {
			mh.OnMessage(ctx, msg)
		}
	}
}

func (r *Runner) onReactionAdd(ctx context.Context, ev platform.ReactionEvent) {
	for _, c := range r.cogs {
		if h, ok := c.(ReactionAddHandler); ok {
			h.OnReactionAdd(ctx, ev)
		}
	}
}

func (r *Runner) onReactionRemove(ctx context.Context, ev platform.ReactionEvent) {
	for _, c := range r.cogs {
		if h, ok := c.(ReactionRemoveHandler); ok {
			h.OnReactionRemove(ctx, ev)
		}
	}
}

func (r *Runner) onMemberJoin(ctx context.Context, ev platform.MemberEvent) {
	r.log.Debug().Str("guild", ev.GuildID).Str("user", ev.UserID).Msg("member joined")
	for _, c := range r.cogs {
		if h, ok := c.(MemberJoinHandler); ok {
			h.OnMemberJoin(ctx, ev)
		}
	}
}

func (r *Runner) onMemberLeave(ctx context.Context, ev platform.MemberEvent) {
	r.log.Debug().Str("guild", ev.GuildID).Str("user", ev.UserID).Msg("member left")
	for _, c := range r.cogs {
		if h, ok := c.(MemberLeaveHandler); ok {
			h.OnMemberLeave(ctx, ev)
		}
	}
}
