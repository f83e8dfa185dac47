package mcp

import "github.com/mark3labs/mcp-go/mcp"

// listGuildsTool defines the list_guilds MCP tool.
var listGuildsTool = mcp.NewTool("list_guilds",
	mcp.WithDescription("List the guild IDs the bot has stored data for."),
)

// listRulesTool defines the list_rules MCP tool.
var listRulesTool = mcp.NewTool("list_rules",
	mcp.WithDescription("List a guild's auto-reply rules with their triggers, actions, and hit counts."),
	mcp.WithString("guild_id",
		mcp.Required(),
		mcp.Description("Guild ID to inspect"),
	),
)

// guildStatsTool defines the guild_stats MCP tool.
var guildStatsTool = mcp.NewTool("guild_stats",
	mcp.WithDescription("Get a guild's message activity summary."),
	mcp.WithString("guild_id",
		mcp.Required(),
		mcp.Description("Guild ID to inspect"),
	),
	mcp.WithNumber("days",
		mcp.Description("Look-back window in days (default 7)"),
	),
)

// auditLogTool defines the audit_log MCP tool.
var auditLogTool = mcp.NewTool("audit_log",
	mcp.WithDescription("Get a guild's recent moderation actions from the word filter."),
	mcp.WithString("guild_id",
		mcp.Required(),
		mcp.Description("Guild ID to inspect"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of entries to return (default 20)"),
	),
)
