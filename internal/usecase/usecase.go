// Package usecase orchestrates the per-episode flow: parse subtitles,
// score candidates, analyze, cache, render and report.
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/dkrasnov/tvcut/internal/cache"
	"github.com/dkrasnov/tvcut/internal/config"
	"github.com/dkrasnov/tvcut/internal/domain/highlights"
	"github.com/dkrasnov/tvcut/internal/domain/subtitles"
	"github.com/dkrasnov/tvcut/internal/logger"
	"github.com/dkrasnov/tvcut/internal/ports"
	"github.com/dkrasnov/tvcut/internal/report"
	"github.com/dkrasnov/tvcut/internal/types"
)

// Analyzer produces an episode analysis from parsed subtitles and rule
// candidates.
type Analyzer interface {
	Analyze(ctx context.Context, ep types.Episode, cands []types.Candidate, series types.SeriesContext) (types.EpisodeAnalysis, error)
}

type Deps struct {
	Analyst Analyzer
	Cache   *cache.Store
	Reports *report.Writer
	// Video is nil when clip rendering is disabled.
	Video ports.VideoTool
	Log   *slog.Logger
}

type Usecase struct {
	d   Deps
	cfg config.Config
}

func New(d Deps, cfg config.Config) *Usecase {
	return &Usecase{d: d, cfg: cfg}
}

type Input struct {
	// SRTPath is the subtitle file to process.
	SRTPath string
	// Render requests clip rendering when a matching video exists.
	Render bool
}

type Result struct {
	Analysis    types.EpisodeAnalysis
	ReportPaths []string
	Clips       []types.ManifestClip
}

// ProcessEpisode runs the whole flow for one subtitle file. Analysis
// results are cached by subtitle content, so re-running a series only
// pays for new or changed episodes.
func (u *Usecase) ProcessEpisode(ctx context.Context, in Input) (Result, error) {
	raw, err := os.ReadFile(in.SRTPath)
	if err != nil {
		return Result{}, fmt.Errorf("read subtitles: %w", err)
	}

	lines, err := subtitles.Parse(string(raw))
	if err != nil {
		return Result{}, fmt.Errorf("parse %s: %w", filepath.Base(in.SRTPath), err)
	}

	ep := types.Episode{
		Path:   in.SRTPath,
		Name:   filepath.Base(in.SRTPath),
		Number: subtitles.EpisodeNumber(filepath.Base(in.SRTPath)),
		Lines:  lines,
	}

	analysis, err := u.analyze(ctx, ep, string(raw))
	if err != nil {
		return Result{}, err
	}

	res := Result{Analysis: analysis}

	res.ReportPaths, err = u.d.Reports.EpisodeReport(analysis)
	if err != nil {
		return Result{}, err
	}

	res.Clips, err = u.emitClips(ctx, ep, analysis, in.Render)
	if err != nil {
		return Result{}, err
	}

	u.d.Log.Info("episode done",
		slog.String("episode", ep.Name),
		slog.Int("clips", len(analysis.Clips)),
		slog.Bool("from_cache", analysis.FromCache))
	return res, nil
}

func (u *Usecase) analyze(ctx context.Context, ep types.Episode, raw string) (types.EpisodeAnalysis, error) {
	key := cache.Key(raw, u.cfg.Model, u.cfg.Analysis.Mode)
	if a, ok := u.d.Cache.LoadAnalysis(key); ok {
		u.d.Log.Info("analysis cache hit", slog.String("episode", ep.Name))
		return a, nil
	}

	cands := highlights.BuildCandidates(ep,
		u.cfg.Analysis.MinClip(), u.cfg.Analysis.MaxClip(), u.cfg.Analysis.MinScore)
	series := u.d.Cache.LoadSeriesContext()

	analysis, err := u.d.Analyst.Analyze(ctx, ep, cands, series)
	if err != nil {
		return types.EpisodeAnalysis{}, fmt.Errorf("analyze %s: %w", ep.Name, err)
	}

	if err := u.d.Cache.SaveAnalysis(key, analysis); err != nil {
		u.d.Log.Warn("cache write failed", slog.String("episode", ep.Name), logger.Err(err))
	}
	series.Episodes[analysis.Number] = types.EpisodeSummary{
		Theme:      analysis.Theme,
		Genre:      analysis.Genre,
		Summary:    analysis.Continuity,
		AnalyzedAt: analysis.AnalyzedAt,
	}
	if err := u.d.Cache.SaveSeriesContext(series); err != nil {
		u.d.Log.Warn("series context write failed", logger.Err(err))
	}
	return analysis, nil
}

// emitClips writes per-clip subtitle and narration files, renders the
// video cut when possible, and returns manifest entries.
func (u *Usecase) emitClips(ctx context.Context, ep types.Episode, a types.EpisodeAnalysis, render bool) ([]types.ManifestClip, error) {
	if len(a.Clips) == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(u.cfg.Paths.Clips, 0o755); err != nil {
		return nil, err
	}

	var videoPath string
	if render && u.d.Video != nil {
		videoPath = findVideo(u.cfg.Paths.Videos, a.Number)
		if videoPath == "" {
			u.d.Log.Warn("no matching video, skipping render",
				slog.String("episode", ep.Name), slog.String("number", a.Number))
		}
	}

	var out []types.ManifestClip
	for i, c := range a.Clips {
		id := fmt.Sprintf("E%s_clip%02d", a.Number, i+1)

		srtPath := filepath.Join(u.cfg.Paths.Clips, id+".srt")
		cut := subtitles.Slice(ep.Lines, c.Start, c.End)
		if err := os.WriteFile(srtPath, []byte(subtitles.Render(cut, c.Start)), 0o644); err != nil {
			return nil, fmt.Errorf("write clip subtitles: %w", err)
		}

		narrPath := filepath.Join(u.cfg.Paths.Clips, id+"_narration.srt")
		if err := os.WriteFile(narrPath, []byte(report.NarrationSRT(c)), 0o644); err != nil {
			return nil, fmt.Errorf("write narration: %w", err)
		}

		mc := types.ManifestClip{
			ID:           id,
			Episode:      ep.Name,
			StartSec:     c.Start.Seconds(),
			EndSec:       c.End.Seconds(),
			Score:        c.Score,
			Source:       c.Source,
			Title:        c.Title,
			Significance: c.Significance,
			Tone:         c.Tone,
			Narration:    filepath.ToSlash(narrPath),
		}

		if videoPath != "" {
			clipFile := filepath.Join(u.cfg.Paths.Clips, id+"_"+slugify(c.Title)+".mp4")
			if err := u.d.Video.RenderClip(ctx, videoPath, c.Start, c.End, clipFile); err != nil {
				return nil, fmt.Errorf("render %s: %w", id, err)
			}
			mc.File = filepath.ToSlash(clipFile)
		}
		out = append(out, mc)
	}
	return out, nil
}

var videoExts = map[string]bool{
	".mp4": true, ".mkv": true, ".mov": true, ".avi": true, ".webm": true, ".ts": true,
}

// findVideo locates the source video for an episode number by matching
// the number extracted from each filename in dir.
func findVideo(dir, number string) string {
	if number == "" {
		return ""
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	for _, e := range entries {
		if e.IsDir() || !videoExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		if subtitles.EpisodeNumber(e.Name()) == number {
			return filepath.Join(dir, e.Name())
		}
	}
	return ""
}

// slugify keeps filenames portable while preserving CJK titles.
func slugify(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case b.Len() > 0 && !strings.HasSuffix(b.String(), "_"):
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), "_")
	if out == "" {
		return "clip"
	}
	return truncateRunes(out, 40)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
