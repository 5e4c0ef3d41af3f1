package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dkrasnov/tvcut/internal/config"
	"github.com/dkrasnov/tvcut/internal/logger"
	"github.com/dkrasnov/tvcut/internal/pipeline"
	"github.com/dkrasnov/tvcut/internal/ports"
	"github.com/dkrasnov/tvcut/internal/ports/adapters/factory"
)

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [srt-file-or-dir]",
		Short: "Analyze subtitle files and write clip reports",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, args, false)
		},
	}
	cmd.Flags().String("mode", "", "Analysis mode override (rule, ai, hybrid)")
	return cmd
}

func clipCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clip [srt-file-or-dir]",
		Short: "Analyze subtitles and cut the recommended clips from matching videos",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, args, true)
		},
	}
	cmd.Flags().String("mode", "", "Analysis mode override (rule, ai, hybrid)")
	return cmd
}

func watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the subtitle directory and process new files as they arrive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			render, _ := cmd.Flags().GetBool("render")

			cfg, log, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()

			p, err := pipeline.New(ctx, cfg, log)
			if err != nil {
				return err
			}
			if err := p.Watch(ctx, render); err != nil && err != context.Canceled {
				return err
			}
			return nil
		},
	}
	cmd.Flags().Bool("render", false, "Also cut clips from matching videos")
	cmd.Flags().String("mode", "", "Analysis mode override (rule, ai, hybrid)")
	return cmd
}

// runBatch processes the whole SRT directory, a directory given as the
// argument, or a single subtitle file.
func runBatch(cmd *cobra.Command, args []string, render bool) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var single string
	if len(args) == 1 {
		st, err := os.Stat(args[0])
		if err != nil {
			return err
		}
		if st.IsDir() {
			cfg.Paths.SRT = args[0]
		} else {
			single = args[0]
		}
	}

	ctx, cancel := signalContext()
	defer cancel()

	p, err := pipeline.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	if single != "" {
		_, err := p.ProcessFile(ctx, single, render)
		return err
	}
	return p.Run(ctx, render)
}

func setupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Create the workspace directories and a starter config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")

			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := pipeline.EnsureWorkspace(cfg); err != nil {
				return err
			}

			if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
				if err := os.WriteFile(cfgPath, []byte(starterConfig), 0o644); err != nil {
					return fmt.Errorf("write %s: %w", cfgPath, err)
				}
				cmd.Printf("wrote starter config: %s\n", cfgPath)
			}

			for _, d := range []string{cfg.Paths.SRT, cfg.Paths.Videos, cfg.Paths.Clips, cfg.Paths.Reports} {
				n, err := countFiles(d)
				if err != nil {
					return err
				}
				cmd.Printf("%-12s %d file(s)\n", d, n)
			}
			cmd.Println("drop .srt files into the subtitle directory and run: tvcut analyze")
			return nil
		},
	}
}

func providersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List supported LLM providers",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("%-12s %-8s %-28s %s\n", "ID", "API", "DEFAULT MODEL", "BASE URL")
			for _, p := range config.Providers() {
				cmd.Printf("%-12s %-8s %-28s %s\n", p.ID, p.APIType, p.DefaultModel, p.BaseURL)
			}
		},
	}
}

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check config, ffmpeg and provider connectivity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			cmd.Printf("config ok: provider=%s model=%s mode=%s\n", cfg.Provider, cfg.Model, cfg.Analysis.Mode)

			for _, d := range []string{cfg.Paths.SRT, cfg.Paths.Videos, cfg.Paths.Clips, cfg.Paths.Reports} {
				if st, err := os.Stat(d); err != nil || !st.IsDir() {
					cmd.Printf("dir missing: %s (run: tvcut setup)\n", d)
				}
			}

			if _, err := exec.LookPath(cfg.Render.FFmpegPath); err != nil {
				cmd.Printf("ffmpeg: NOT FOUND (%s), clip rendering will fail\n", cfg.Render.FFmpegPath)
			} else {
				cmd.Printf("ffmpeg ok: %s\n", cfg.Render.FFmpegPath)
			}

			if cfg.Analysis.Mode == config.ModeRule {
				cmd.Println("analysis mode is rule, no provider check needed")
				return nil
			}
			return checkProvider(cmd, cfg)
		},
	}
}

// checkProvider streams a trivial prompt to verify key, base URL and
// model in one round trip.
func checkProvider(cmd *cobra.Command, cfg config.Config) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	chat, err := factory.New(ctx, cfg)
	if err != nil {
		return err
	}

	req := ports.ChatRequest{
		Model: cfg.Model,
		Messages: []ports.Message{
			{Role: ports.RoleUser, Text: "Reply with the single word: ok"},
		},
		MaxTokens: 10,
	}
	var got string
	err = chat.Stream(ctx, req, func(delta string) error {
		got += delta
		return nil
	})
	if err != nil {
		return fmt.Errorf("provider check failed: %w", err)
	}
	cmd.Printf("provider ok: %s replied %q\n", cfg.Provider, got)
	return nil
}

func loadConfig(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, nil, err
	}

	if mode, _ := cmd.Flags().GetString("mode"); mode != "" {
		cfg.Analysis.Mode = mode
		if err := cfg.Validate(); err != nil {
			return config.Config{}, nil, err
		}
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Logging.Level = lvl
	}

	return cfg, logger.New(os.Stderr, cfg.Logging.Level), nil
}

func countFiles(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, e := range entries {
		if !e.IsDir() {
			n++
		}
	}
	return n, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

const starterConfig = `# tvcut configuration
provider: openai        # run "tvcut providers" for the full list
# api_key: sk-...       # or set TVCUT_API_KEY in .env
# model: gpt-4o-mini

analysis:
  mode: rule            # rule, ai or hybrid
  min_clip_sec: 60
  max_clip_sec: 180
  max_clips: 5

paths:
  srt: srt
  videos: videos
  clips: clips
  reports: reports

report:
  format: text          # text, docx or both
`
