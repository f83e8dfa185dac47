package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/guildkeeper/guildkeeper/internal/cogs/autoreply"
	"github.com/guildkeeper/guildkeeper/internal/rules"
	"github.com/guildkeeper/guildkeeper/internal/statsdb"
)

// handleListGuilds lists every guild with stored data.
func (s *Server) handleListGuilds(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	guilds, err := s.store.Guilds()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing guilds failed: %v", err)), nil
	}
	if len(guilds) == 0 {
		return mcp.NewToolResultText("No guild data stored yet."), nil
	}
	return mcp.NewToolResultText(strings.Join(guilds, "\n")), nil
}

// handleListRules formats a guild's auto-reply rule document.
func (s *Server) handleListRules(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	guildID, err := request.RequireString("guild_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: guild_id"), nil
	}

	var doc rules.Document
	if err := s.store.Get(guildID, autoreply.Feature, &doc); err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("Guild %s has no auto-reply rules.", guildID)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Auto-reply enabled: %t. %d rule(s).\n", doc.Enabled, len(doc.Rules))
	for _, r := range doc.Rules {
		fmt.Fprintf(&b, "#%d [%s/%s] trigger=%q reply=%q enabled=%t fired=%d\n",
			r.ID, r.MatchType, r.ReplyType, r.Trigger, r.Reply, r.Enabled, r.TriggeredCount)
	}
	return mcp.NewToolResultText(b.String()), nil
}

// handleGuildStats summarizes a guild's recent activity.
func (s *Server) handleGuildStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	guildID, err := request.RequireString("guild_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: guild_id"), nil
	}
	if s.stats == nil {
		return mcp.NewToolResultError("statistics database is not configured"), nil
	}

	days := request.GetInt("days", 7)
	if days <= 0 {
		days = 7
	}
	since := statsdb.Day(time.Now().AddDate(0, 0, -days))

	summary, err := s.stats.GuildSummary(ctx, guildID, since, 10)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("querying stats failed: %v", err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Last %d days: %d messages from %d members.\n", days, summary.TotalMessages, summary.ActiveUsers)
	for i, u := range summary.TopUsers {
		fmt.Fprintf(&b, "%d. %s: %d messages\n", i+1, u.UserID, u.Count)
	}
	return mcp.NewToolResultText(b.String()), nil
}

// handleAuditLog returns recent moderation actions.
func (s *Server) handleAuditLog(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	guildID, err := request.RequireString("guild_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: guild_id"), nil
	}
	if s.stats == nil {
		return mcp.NewToolResultError("statistics database is not configured"), nil
	}

	limit := request.GetInt("limit", 20)
	actions, err := s.stats.RecentModActions(ctx, guildID, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("querying audit log failed: %v", err)), nil
	}
	if len(actions) == 0 {
		return mcp.NewToolResultText("No moderation actions recorded."), nil
	}

	var b strings.Builder
	for _, a := range actions {
		fmt.Fprintf(&b, "%s user=%s action=%s trigger=%q %s\n",
			a.CreatedAt.Format(time.RFC3339), a.UserID, a.Action, a.Trigger, a.Detail)
	}
	return mcp.NewToolResultText(b.String()), nil
}
