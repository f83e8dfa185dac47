package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/guildkeeper/guildkeeper/internal/config"
)

var backupDest string

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Copy all per-guild data files to a backup directory",
	Long: `Copies every guild's JSON documents and the statistics database into
a timestamped directory under the backup destination. The bot does not
need to be stopped; documents are copied one at a time.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBackup()
	},
}

func init() {
	backupCmd.Flags().StringVarP(&backupDest, "dest", "d", "backups", "backup destination directory")
	rootCmd.AddCommand(backupCmd)
}

func runBackup() error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	dataFS := os.DirFS(cfg.DataDir)
	matches, err := doublestar.Glob(dataFS, "**/*.{json,db,html}")
	if err != nil {
		return fmt.Errorf("globbing data files: %w", err)
	}
	if len(matches) == 0 {
		fmt.Println("Nothing to back up.")
		return nil
	}

	destDir := filepath.Join(backupDest, time.Now().UTC().Format("2006-01-02T15-04-05Z"))
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("creating backup directory: %w", err)
	}

	bar := progressbar.NewOptions(len(matches),
		progressbar.OptionSetDescription("Backing up"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	for _, rel := range matches {
		if err := copyFile(filepath.Join(cfg.DataDir, rel), filepath.Join(destDir, rel)); err != nil {
			return fmt.Errorf("copying %s: %w", rel, err)
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	fmt.Printf("Backed up %d file(s) to %s\n", len(matches), destDir)
	return nil
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
