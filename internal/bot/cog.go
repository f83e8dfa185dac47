// Package bot wires feature cogs into the chat platform. Each cog is a
// self-contained feature; the runner fans platform events out to every
// cog that declares an interest in them.
package bot

import (
	"context"

	"github.com/guildkeeper/guildkeeper/internal/platform"
)

// Cog is the minimal contract every feature implements.
type Cog interface {
	Name() string
}

// MessageHandler is implemented by cogs that react to chat messages.
type MessageHandler interface {
	OnMessage(ctx context.Context, msg platform.Message)
}

// MemberJoinHandler is implemented by cogs that react to members joining.
type MemberJoinHandler interface {
	OnMemberJoin(ctx context.Context, ev platform.MemberEvent)
}

// MemberLeaveHandler is implemented by cogs that react to members leaving.
type MemberLeaveHandler interface {
	OnMemberLeave(ctx context.Context, ev platform.MemberEvent)
}

// ReactionAddHandler is implemented by cogs that react to emoji
// reactions being added.
type ReactionAddHandler interface {
	OnReactionAdd(ctx context.Context, ev platform.ReactionEvent)
}

// ReactionRemoveHandler is implemented by cogs that react to emoji
// reactions being removed.
type ReactionRemoveHandler interface {
	OnReactionRemove(ctx context.Context, ev platform.ReactionEvent)
}

// CommandProvider is implemented by cogs that contribute slash commands.
type CommandProvider interface {
	Commands() []platform.Command
}
