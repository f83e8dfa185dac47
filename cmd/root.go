package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	verbosity int
)

var rootCmd = &cobra.Command{
	Use:   "guildkeeper",
	Short: "Community-management chatbot with a web dashboard",
	Long: `Guildkeeper moderates and animates Discord communities: auto-reply
rules, a banned-word filter, leveling, daily rewards, welcome messages,
custom commands, support tickets, and activity statistics, all
configurable per server through slash commands or the web dashboard.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "guildkeeper.yml", "config file path")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity (-v, -vv)")
}
