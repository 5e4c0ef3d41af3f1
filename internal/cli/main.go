// Package cli defines the tvcut command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	root := &cobra.Command{
		Use:           "tvcut",
		Short:         "Find and cut short-video clips from TV series subtitles",
		Long:          "tvcut scores SRT subtitle files for highlight moments, optionally asks an LLM to pick and narrate clips, and cuts them from the source videos with ffmpeg.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)

	root.PersistentFlags().String("config", "tvcut.yaml", "Config file path")
	root.PersistentFlags().String("log-level", "", "Log level override (debug, info, warn, error)")

	root.AddCommand(
		analyzeCmd(),
		clipCmd(),
		watchCmd(),
		setupCmd(),
		providersCmd(),
		doctorCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
