// Package pipeline wires adapters to the usecase and drives whole-series
// runs: discover subtitle files, process each episode, write the series
// summary and the machine-readable manifest.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/dkrasnov/tvcut/internal/analyst"
	"github.com/dkrasnov/tvcut/internal/cache"
	"github.com/dkrasnov/tvcut/internal/config"
	"github.com/dkrasnov/tvcut/internal/domain/subtitles"
	"github.com/dkrasnov/tvcut/internal/logger"
	"github.com/dkrasnov/tvcut/internal/ports"
	"github.com/dkrasnov/tvcut/internal/ports/adapters/factory"
	"github.com/dkrasnov/tvcut/internal/ports/adapters/ffmpeg"
	"github.com/dkrasnov/tvcut/internal/report"
	"github.com/dkrasnov/tvcut/internal/types"
	"github.com/dkrasnov/tvcut/internal/usecase"
	"github.com/dkrasnov/tvcut/internal/watcher"
)

type Pipeline struct {
	cfg     config.Config
	uc      *usecase.Usecase
	reports *report.Writer
	log     *slog.Logger
}

// New builds the adapter stack for cfg. The chat adapter is only
// constructed when the analysis mode needs one.
func New(ctx context.Context, cfg config.Config, log *slog.Logger) (*Pipeline, error) {
	if err := EnsureWorkspace(cfg); err != nil {
		return nil, err
	}

	var chat ports.ChatCompleter
	if cfg.Analysis.Mode != config.ModeRule {
		var err error
		chat, err = factory.New(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("chat adapter: %w", err)
		}
	}

	store, err := cache.New(cfg.Paths.Cache)
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}

	reports := report.NewWriter(cfg.Paths.Reports, cfg.Report.Format)
	uc := usecase.New(usecase.Deps{
		Analyst: analyst.New(chat, cfg.Model, cfg.Analysis, log),
		Cache:   store,
		Reports: reports,
		Video:   ffmpeg.New(cfg.Render.FFmpegPath, cfg.Render.FFprobePath, cfg.Render.Preset, cfg.Render.CRF),
		Log:     log,
	}, cfg)

	return &Pipeline{cfg: cfg, uc: uc, reports: reports, log: log}, nil
}

// EnsureWorkspace creates the working directory layout.
func EnsureWorkspace(cfg config.Config) error {
	for _, d := range []string{cfg.Paths.SRT, cfg.Paths.Videos, cfg.Paths.Clips, cfg.Paths.Reports, cfg.Paths.Cache} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", d, err)
		}
	}
	return nil
}

// Run processes every subtitle file in the SRT directory in episode
// order. One bad episode does not stop the batch; all failures are
// aggregated and reported at the end.
func (p *Pipeline) Run(ctx context.Context, render bool) error {
	files, err := DiscoverSRT(p.cfg.Paths.SRT)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no .srt files in %s", p.cfg.Paths.SRT)
	}
	p.log.Info("starting batch", slog.Int("episodes", len(files)), slog.String("mode", p.cfg.Analysis.Mode))

	summary := report.SeriesSummary{
		Failures:  map[string]string{},
		StartedAt: time.Now(),
	}
	manifest := types.Manifest{
		SRTDir: p.cfg.Paths.SRT,
		Mode:   p.cfg.Analysis.Mode,
		Model:  p.cfg.Model,
	}
	if render {
		manifest.VideoDir = p.cfg.Paths.Videos
	}

	var errs *multierror.Error
	for _, f := range files {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		res, err := p.uc.ProcessEpisode(ctx, usecase.Input{SRTPath: f, Render: render})
		if err != nil {
			p.log.Error("episode failed", slog.String("file", filepath.Base(f)), logger.Err(err))
			summary.Failures[filepath.Base(f)] = err.Error()
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", filepath.Base(f), err))
			continue
		}
		summary.Episodes = append(summary.Episodes, res.Analysis)
		summary.TotalClips += len(res.Analysis.Clips)
		manifest.Clips = append(manifest.Clips, res.Clips...)
	}
	summary.FinishedAt = time.Now()

	if _, err := p.reports.SeriesReport(summary); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("series report: %w", err))
	}
	if err := p.writeManifest(manifest); err != nil {
		errs = multierror.Append(errs, err)
	}

	p.log.Info("batch done",
		slog.Int("ok", len(summary.Episodes)),
		slog.Int("failed", len(summary.Failures)),
		slog.Int("clips", summary.TotalClips))
	return errs.ErrorOrNil()
}

// ProcessFile handles a single subtitle file, including its manifest
// entry appended to the existing manifest.
func (p *Pipeline) ProcessFile(ctx context.Context, path string, render bool) (usecase.Result, error) {
	return p.uc.ProcessEpisode(ctx, usecase.Input{SRTPath: path, Render: render})
}

// Watch blocks, processing subtitle files as they are dropped into the
// SRT directory, until ctx is cancelled.
func (p *Pipeline) Watch(ctx context.Context, render bool) error {
	handler := func(ctx context.Context, path string) error {
		_, err := p.ProcessFile(ctx, path, render)
		return err
	}
	w, err := watcher.New(p.cfg.Paths.SRT, handler, p.log,
		p.cfg.Watch.MaxConcurrent, p.cfg.Watch.SettleDelay)
	if err != nil {
		return err
	}
	defer w.Close()
	return w.Run(ctx)
}

func (p *Pipeline) writeManifest(m types.Manifest) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	path := filepath.Join(p.cfg.Paths.Reports, "manifest.json")
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	p.log.Info("manifest written", slog.String("path", path), slog.Int("clips", len(m.Clips)))
	return nil
}

// DiscoverSRT lists subtitle files in dir sorted by episode number,
// falling back to name order when numbers tie or are missing.
func DiscoverSRT(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".srt") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Slice(files, func(i, j int) bool {
		ni, nj := episodeSortKey(files[i]), episodeSortKey(files[j])
		if ni != nj {
			return ni < nj
		}
		return files[i] < files[j]
	})
	return files, nil
}

func episodeSortKey(path string) string {
	// Zero-padded numbers compare correctly as strings.
	n := subtitles.EpisodeNumber(filepath.Base(path))
	if n == "" {
		return "\xff"
	}
	return n
}
