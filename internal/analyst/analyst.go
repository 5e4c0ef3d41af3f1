// Package analyst turns parsed episodes into clip recommendations,
// using rule heuristics, a chat model, or a weighted blend of both.
package analyst

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dkrasnov/tvcut/internal/config"
	"github.com/dkrasnov/tvcut/internal/domain/highlights"
	"github.com/dkrasnov/tvcut/internal/logger"
	"github.com/dkrasnov/tvcut/internal/ports"
	"github.com/dkrasnov/tvcut/internal/types"
)

// minClipGap keeps selected clips from butting against each other.
const minClipGap = 2 * time.Second

type Analyst struct {
	chat  ports.ChatCompleter // nil in rule mode
	model string
	cfg   config.AnalysisConfig
	log   *slog.Logger
}

func New(chat ports.ChatCompleter, model string, cfg config.AnalysisConfig, log *slog.Logger) *Analyst {
	if log == nil {
		log = slog.Default()
	}
	return &Analyst{chat: chat, model: model, cfg: cfg, log: log}
}

// Analyze produces the episode analysis. Model failures never fail the
// episode: the rule-based result stands in.
func (a *Analyst) Analyze(ctx context.Context, ep types.Episode, cands []types.Candidate, series types.SeriesContext) (types.EpisodeAnalysis, error) {
	if a.cfg.Mode == config.ModeRule || a.chat == nil {
		return a.ruleAnalysis(ep, cands), nil
	}

	analysis, err := a.aiAnalysis(ctx, ep, cands, series)
	if err != nil {
		a.log.Warn("model analysis failed, using rule fallback",
			"episode", ep.Name, logger.Err(err))
		return a.ruleAnalysis(ep, cands), nil
	}
	return analysis, nil
}

func (a *Analyst) aiAnalysis(ctx context.Context, ep types.Episode, cands []types.Candidate, series types.SeriesContext) (types.EpisodeAnalysis, error) {
	prompt := buildPrompt(ep, cands, series, a.cfg.PromptLines)

	resp, err := a.chat.Complete(ctx, ports.ChatRequest{
		Model: a.model,
		Messages: []ports.Message{
			{Role: ports.RoleSystem, Text: systemPrompt},
			{Role: ports.RoleUser, Text: prompt},
		},
		MaxTokens:   a.cfg.MaxTokens,
		Temperature: a.cfg.Temperature,
	})
	if err != nil {
		return types.EpisodeAnalysis{}, err
	}

	parsed, err := parseModelResponse(resp.Content)
	if err != nil {
		return types.EpisodeAnalysis{}, err
	}

	analysis := a.toAnalysis(ep, parsed)
	if len(analysis.Clips) == 0 {
		return types.EpisodeAnalysis{}, fmt.Errorf("model returned no usable segments")
	}

	if a.cfg.Mode == config.ModeHybrid {
		for i := range analysis.Clips {
			c := &analysis.Clips[i]
			rule := highlights.ScoreRange(ep.Lines, c.Start, c.End)
			c.Score = a.cfg.RuleWeight*rule + a.cfg.AIWeight*c.Score
			c.Source = config.ModeHybrid
		}
	}
	return analysis, nil
}

// toAnalysis validates the model output against the episode: clamps
// ranges to the subtitle span, enforces duration bounds, drops
// overlaps, backfills missing fields.
func (a *Analyst) toAnalysis(ep types.Episode, parsed modelAnalysis) types.EpisodeAnalysis {
	spanStart, spanEnd := ep.Span()
	minClip, maxClip := a.cfg.MinClip(), a.cfg.MaxClip()

	out := types.EpisodeAnalysis{
		Episode:    ep.Name,
		Number:     ep.Number,
		Theme:      parsed.Theme,
		Genre:      normalizeGenre(parsed.Genre),
		Continuity: parsed.Continuity,
		AnalyzedAt: time.Now().UTC(),
	}

	var kept []types.ClipSpec
	for _, seg := range parsed.Segments {
		start, end, ok := seg.timeRange()
		if !ok {
			continue
		}
		if start < spanStart {
			start = spanStart
		}
		if end > spanEnd {
			end = spanEnd
		}
		if end-start < minClip || end-start > maxClip {
			continue
		}
		if !distinct(kept, start, end) {
			continue
		}

		spec := types.ClipSpec{
			Start:        start,
			End:          end,
			Title:        orDefault(seg.Title, "Highlight"),
			Significance: seg.Significance,
			Summary:      seg.Summary,
			Tip:          seg.Tip,
			Tone:         normalizeTone(seg.Tone),
			Narration:    seg.Narration,
			Score:        clampScore(seg.Score),
			Source:       config.ModeAI,
		}
		if spec.Narration.FullScript == "" {
			spec.Narration.FullScript = joinScript(spec.Narration)
		}
		kept = append(kept, spec)
		if len(kept) >= a.cfg.MaxClips {
			break
		}
	}
	out.Clips = kept
	return out
}

// ruleAnalysis is the deterministic path: top candidates become clips
// with synthesized metadata.
func (a *Analyst) ruleAnalysis(ep types.Episode, cands []types.Candidate) types.EpisodeAnalysis {
	top := highlights.SelectTop(cands, a.cfg.MaxClips, minClipGap)

	out := types.EpisodeAnalysis{
		Episode:    ep.Name,
		Number:     ep.Number,
		Theme:      fmt.Sprintf("Episode %s highlights", orDefault(ep.Number, "?")),
		Genre:      "general",
		AnalyzedAt: time.Now().UTC(),
	}
	for _, c := range top {
		out.Clips = append(out.Clips, types.ClipSpec{
			Start:   c.Start,
			End:     c.End,
			Title:   ruleTitle(c),
			Summary: truncateRunes(c.Text, 50),
			Tone:    "dramatic",
			Score:   c.RuleScore,
			Source:  config.ModeRule,
		})
	}
	return out
}

// ruleTitle names a clip after its dominant keyword category.
func ruleTitle(c types.Candidate) string {
	names := map[string]string{
		"plot_twist":   "Plot twist",
		"revelation":   "Key revelation",
		"emotion_turn": "Emotional turn",
		"twist_setup":  "Twist setup",
		"character":    "Character moment",
		"recap":        "Story recap",
		"progression":  "Plot progression",
		"causal_link":  "Cause and effect",
	}
	best, bestN := "", 0
	for cat, n := range c.Categories {
		if n > bestN {
			best, bestN = cat, n
		}
	}
	if t, ok := names[best]; ok {
		return t
	}
	return "Highlight"
}

func distinct(existing []types.ClipSpec, start, end time.Duration) bool {
	for _, e := range existing {
		if start < e.End+minClipGap && end > e.Start-minClipGap {
			return false
		}
	}
	return true
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 10 {
		return 10
	}
	return s
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}

func joinScript(n types.Narration) string {
	var parts []string
	for _, p := range []string{n.Opening, n.Main, n.Highlight, n.Closing} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	out := parts[0]
	for _, p := range parts[1:] {
		out += " " + p
	}
	return out
}
