package cli

import (
	"github.com/spf13/cobra"
)

var (
	configPath string
	dbPath     string
)

var rootCmd = &cobra.Command{
	Use:          "flashdeck",
	Short:        "Flashcards with spaced repetition and study streaks",
	Long:         "Flashdeck serves flashcard sets over HTTP, decays mastery between reviews, and tracks daily study streaks. Single Go binary backed by SQLite.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a TOML config file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (overrides config and FLASHDECK_DB)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(dueCmd)
	rootCmd.AddCommand(streakCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(summaryCmd)
}
