package cmd

import (
	"github.com/spf13/cobra"

	"github.com/guildkeeper/guildkeeper/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize guildkeeper with an interactive wizard",
	Long:  `Runs an interactive wizard to configure the bot and generates a guildkeeper.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
