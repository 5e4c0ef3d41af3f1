package analyst

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dkrasnov/tvcut/internal/domain/subtitles"
	"github.com/dkrasnov/tvcut/internal/types"
)

const systemPrompt = "You are a professional TV-drama content analyst. " +
	"You select the most clip-worthy scenes from episode subtitles for short-video editing. " +
	"You always answer with strictly valid JSON and nothing else: no markdown, no code fences, no commentary."

// buildPrompt assembles the fixed-format analysis request: series
// context, pre-ranked candidate ranges, a bounded subtitle excerpt and
// the exact JSON shape the parser expects.
func buildPrompt(ep types.Episode, cands []types.Candidate, series types.SeriesContext, promptLines int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Analyze episode %s of a TV series (subtitle file %q) and pick the best clip segments.\n\n",
		orDefault(ep.Number, "?"), ep.Name)

	if ctx := seriesContextBlock(series, ep.Number); ctx != "" {
		b.WriteString("Story so far (earlier episodes):\n")
		b.WriteString(ctx)
		b.WriteString("\n")
	}

	if len(cands) > 0 {
		b.WriteString("Pre-ranked candidate ranges (keyword heuristics, strongest first):\n")
		n := len(cands)
		if n > 10 {
			n = 10
		}
		for i := 0; i < n; i++ {
			c := cands[i]
			fmt.Fprintf(&b, "- %s --> %s (rule score %.1f): %s\n",
				subtitles.FormatTimestamp(c.Start), subtitles.FormatTimestamp(c.End),
				c.RuleScore, truncateRunes(c.Text, 80))
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Subtitles (first %d lines):\n", promptLines)
	for i, ln := range ep.Lines {
		if i >= promptLines {
			break
		}
		fmt.Fprintf(&b, "[%s] %s\n", subtitles.FormatTimestamp(ln.Start), ln.Text)
	}

	b.WriteString(`
Return JSON exactly in this shape:
{
  "episode_theme": "core theme, at most 15 words",
  "genre_type": "one of legal/crime/romance/family/medical/business/general",
  "continuity_notes": "how this episode connects to earlier plot",
  "highlight_segments": [
    {
      "title": "segment title",
      "start_time": "00:05:30,000",
      "end_time": "00:07:45,000",
      "score": 8.5,
      "plot_significance": "why this scene matters to the plot",
      "professional_narration": {
        "opening_line": "hook, under 3 seconds of speech",
        "main_explanation": "what is happening, 5-8 seconds",
        "highlight_moment": "the key beat, under 3 seconds",
        "closing_line": "payoff or cliffhanger, under 2 seconds",
        "full_script": "the four parts joined into one flowing script"
      },
      "highlight_tip": "one-line on-screen teaser",
      "emotional_tone": "one of tense/dramatic/romantic/warm/suspenseful",
      "content_summary": "summary, at most 50 words"
    }
  ]
}
Rules: segments must not overlap, start_time must be before end_time, and
timestamps must come from the subtitle timeline above. Score is 0 to 10.`)

	return b.String()
}

func seriesContextBlock(series types.SeriesContext, currentEp string) string {
	if len(series.Episodes) == 0 {
		return ""
	}
	nums := make([]string, 0, len(series.Episodes))
	for n := range series.Episodes {
		if n == currentEp {
			continue
		}
		nums = append(nums, n)
	}
	sort.Strings(nums)

	var b strings.Builder
	for _, n := range nums {
		s := series.Episodes[n]
		line := s.Theme
		if s.Summary != "" {
			line += " - " + s.Summary
		}
		fmt.Fprintf(&b, "- E%s: %s\n", n, truncateRunes(line, 120))
	}
	return b.String()
}

var genres = map[string]bool{
	"legal": true, "crime": true, "romance": true,
	"family": true, "medical": true, "business": true, "general": true,
}

func normalizeGenre(g string) string {
	g = strings.ToLower(strings.TrimSpace(g))
	if genres[g] {
		return g
	}
	return "general"
}

var tones = map[string]bool{
	"tense": true, "dramatic": true, "romantic": true,
	"warm": true, "suspenseful": true,
}

func normalizeTone(t string) string {
	t = strings.ToLower(strings.TrimSpace(t))
	if tones[t] {
		return t
	}
	return "dramatic"
}
