package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/guildkeeper/guildkeeper/internal/config"
	"github.com/guildkeeper/guildkeeper/internal/mcp"
	"github.com/guildkeeper/guildkeeper/internal/statsdb"
	"github.com/guildkeeper/guildkeeper/internal/store"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for guild administration tools",
	Long: `Starts a Model Context Protocol server on stdio exposing read-only
tools over the bot's stored data: guild lists, auto-reply rules,
activity statistics, and the moderation audit log.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		st, err := store.New(cfg.DataDir)
		if err != nil {
			return fmt.Errorf("opening store: %w", err)
		}

		db, err := statsdb.Open(filepath.Join(cfg.DataDir, "stats.db"))
		if err != nil {
			return fmt.Errorf("opening statistics database: %w", err)
		}
		defer db.Close()

		mcp.Version = Version
		return mcp.NewServer(st, db).Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
