// Package report renders episode analyses into the files editors
// actually work from: per-episode reports, per-clip narration SRTs and
// a series-level summary.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dkrasnov/tvcut/internal/config"
	"github.com/dkrasnov/tvcut/internal/domain/subtitles"
	"github.com/dkrasnov/tvcut/internal/types"
)

type Writer struct {
	dir    string
	format string
}

func NewWriter(dir, format string) *Writer {
	if format == "" {
		format = config.ReportText
	}
	return &Writer{dir: dir, format: format}
}

// EpisodeReport writes the analysis report in the configured formats
// and returns the written paths.
func (w *Writer) EpisodeReport(a types.EpisodeAnalysis) ([]string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, err
	}
	base := fmt.Sprintf("E%s_analysis_report", orUnknown(a.Number))
	title := fmt.Sprintf("Episode %s analysis", orUnknown(a.Number))
	return w.write(base, title, episodeReportBody(a))
}

// SeriesSummary describes one whole batch run.
type SeriesSummary struct {
	Episodes   []types.EpisodeAnalysis
	Failures   map[string]string // episode file -> error text
	TotalClips int
	StartedAt  time.Time
	FinishedAt time.Time
}

func (w *Writer) SeriesReport(s SeriesSummary) ([]string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, err
	}
	return w.write("series_summary", "Series analysis summary", seriesReportBody(s))
}

func (w *Writer) write(base, title, body string) ([]string, error) {
	var paths []string
	if w.format == config.ReportText || w.format == config.ReportBoth {
		p := filepath.Join(w.dir, base+".txt")
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			return nil, fmt.Errorf("write report %s: %w", p, err)
		}
		paths = append(paths, p)
	}
	if w.format == config.ReportDocx || w.format == config.ReportBoth {
		p := filepath.Join(w.dir, base+".docx")
		if err := writeDocx(title, body, p); err != nil {
			return nil, fmt.Errorf("write report %s: %w", p, err)
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func episodeReportBody(a types.EpisodeAnalysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Episode %s - %s\n\n", orUnknown(a.Number), orUnknown(a.Theme))
	fmt.Fprintf(&b, "Source: %s\n", a.Episode)
	fmt.Fprintf(&b, "Genre: %s\n", a.Genre)
	fmt.Fprintf(&b, "Analyzed: %s\n", a.AnalyzedAt.Format(time.RFC3339))
	if a.Continuity != "" {
		fmt.Fprintf(&b, "Continuity: %s\n", a.Continuity)
	}
	fmt.Fprintf(&b, "\n## Recommended clips (%d)\n\n", len(a.Clips))

	for i, c := range a.Clips {
		fmt.Fprintf(&b, "### %d. %s\n", i+1, c.Title)
		fmt.Fprintf(&b, "- Range: %s --> %s (%.0fs)\n",
			subtitles.FormatTimestamp(c.Start), subtitles.FormatTimestamp(c.End),
			(c.End - c.Start).Seconds())
		fmt.Fprintf(&b, "- Score: %.1f (%s)\n", c.Score, c.Source)
		if c.Tone != "" {
			fmt.Fprintf(&b, "- Tone: %s\n", c.Tone)
		}
		if c.Significance != "" {
			fmt.Fprintf(&b, "- Significance: %s\n", c.Significance)
		}
		if c.Tip != "" {
			fmt.Fprintf(&b, "- Teaser: %s\n", c.Tip)
		}
		if c.Summary != "" {
			fmt.Fprintf(&b, "- Summary: %s\n", c.Summary)
		}
		if script := c.Narration.FullScript; script != "" {
			fmt.Fprintf(&b, "- Narration: %s\n", script)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func seriesReportBody(s SeriesSummary) string {
	var b strings.Builder
	b.WriteString("# Series analysis summary\n\n")
	fmt.Fprintf(&b, "Episodes analyzed: %d\n", len(s.Episodes))
	fmt.Fprintf(&b, "Episodes failed: %d\n", len(s.Failures))
	fmt.Fprintf(&b, "Total clips: %d\n", s.TotalClips)
	if !s.StartedAt.IsZero() {
		fmt.Fprintf(&b, "Run time: %s\n", s.FinishedAt.Sub(s.StartedAt).Round(time.Second))
	}

	if len(s.Episodes) > 0 {
		b.WriteString("\n## Episode themes\n\n")
		for _, a := range s.Episodes {
			fmt.Fprintf(&b, "- E%s: %s (%d clips)\n", orUnknown(a.Number), orUnknown(a.Theme), len(a.Clips))
		}
	}
	if len(s.Failures) > 0 {
		b.WriteString("\n## Failures\n\n")
		names := make([]string, 0, len(s.Failures))
		for name := range s.Failures {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&b, "- %s: %s\n", name, s.Failures[name])
		}
	}
	return b.String()
}

// NarrationSRT renders the clip's voiceover script as a clip-local SRT
// with pacing derived from the four script parts.
func NarrationSRT(c types.ClipSpec) string {
	parts := []struct {
		text string
		dur  time.Duration
	}{
		{c.Narration.Opening, 3 * time.Second},
		{c.Narration.Main, 8 * time.Second},
		{c.Narration.Highlight, 3 * time.Second},
		{c.Narration.Closing, 2 * time.Second},
	}

	clipDur := c.End - c.Start
	var lines []types.Line
	at := time.Duration(0)
	for _, p := range parts {
		if strings.TrimSpace(p.text) == "" {
			continue
		}
		end := at + p.dur
		if end > clipDur {
			end = clipDur
		}
		if end <= at {
			break
		}
		lines = append(lines, types.Line{Start: at, End: end, Text: strings.TrimSpace(p.text)})
		at = end
	}

	if len(lines) == 0 && strings.TrimSpace(c.Narration.FullScript) != "" {
		end := clipDur
		if end > 16*time.Second {
			end = 16 * time.Second
		}
		lines = append(lines, types.Line{Start: 0, End: end, Text: strings.TrimSpace(c.Narration.FullScript)})
	}
	return subtitles.Render(lines, 0)
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "?"
	}
	return s
}
