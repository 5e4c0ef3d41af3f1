package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dkrasnov/tvcut/internal/config"
	"github.com/dkrasnov/tvcut/internal/types"
)

func sampleAnalysis() types.EpisodeAnalysis {
	return types.EpisodeAnalysis{
		Episode:    "show.E03.srt",
		Number:     "03",
		Theme:      "The betrayal surfaces",
		Genre:      "suspense",
		Continuity: "Lin knows about the letter now.",
		AnalyzedAt: time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
		Clips: []types.ClipSpec{
			{
				Start:        90 * time.Second,
				End:          210 * time.Second,
				Title:        "The letter changes everything",
				Significance: "Reveals who sent it",
				Summary:      "Lin confronts her brother.",
				Tip:          "Nobody expected the sender",
				Tone:         "tense",
				Score:        8.5,
				Source:       "ai",
				Narration: types.Narration{
					Opening:    "She thought the letter was lost.",
					Main:       "But her brother kept it all along.",
					Highlight:  "Watch her face when she reads the name.",
					Closing:    "Episode three, do not skip.",
					FullScript: "She thought the letter was lost. But her brother kept it all along.",
				},
			},
		},
	}
}

func TestEpisodeReportText(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, config.ReportText)

	paths, err := w.EpisodeReport(sampleAnalysis())
	if err != nil {
		t.Fatalf("EpisodeReport: %v", err)
	}
	if len(paths) != 1 {
		t.Fatalf("got %d paths, want 1", len(paths))
	}
	if got, want := filepath.Base(paths[0]), "E03_analysis_report.txt"; got != want {
		t.Fatalf("report name = %q, want %q", got, want)
	}

	body, err := os.ReadFile(paths[0])
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"The betrayal surfaces",
		"00:01:30,000 --> 00:03:30,000 (120s)",
		"Score: 8.5 (ai)",
		"Teaser: Nobody expected the sender",
		"Lin knows about the letter now.",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("report missing %q\n%s", want, body)
		}
	}
}

func TestEpisodeReportBothFormats(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, config.ReportBoth)

	paths, err := w.EpisodeReport(sampleAnalysis())
	if err != nil {
		t.Fatalf("EpisodeReport: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("got %d paths, want 2", len(paths))
	}
	if !strings.HasSuffix(paths[0], ".txt") || !strings.HasSuffix(paths[1], ".docx") {
		t.Fatalf("unexpected paths: %v", paths)
	}
	for _, p := range paths {
		st, err := os.Stat(p)
		if err != nil {
			t.Fatalf("stat %s: %v", p, err)
		}
		if st.Size() == 0 {
			t.Errorf("%s is empty", p)
		}
	}
}

func TestSeriesReport(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, config.ReportText)

	s := SeriesSummary{
		Episodes: []types.EpisodeAnalysis{sampleAnalysis()},
		Failures: map[string]string{
			"show.E09.srt": "read error",
			"show.E04.srt": "no subtitle lines",
			"show.E06.srt": "read error",
		},
		TotalClips: 1,
		StartedAt:  time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
		FinishedAt: time.Date(2026, 2, 1, 10, 2, 30, 0, time.UTC),
	}
	paths, err := w.SeriesReport(s)
	if err != nil {
		t.Fatalf("SeriesReport: %v", err)
	}
	body, err := os.ReadFile(paths[0])
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"Episodes analyzed: 1",
		"Episodes failed: 3",
		"Run time: 2m30s",
		"E03: The betrayal surfaces (1 clips)",
		"show.E04.srt: no subtitle lines",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("summary missing %q\n%s", want, body)
		}
	}

	// Failure entries come out in name order, run after run.
	i4 := strings.Index(string(body), "show.E04.srt")
	i6 := strings.Index(string(body), "show.E06.srt")
	i9 := strings.Index(string(body), "show.E09.srt")
	if i4 < 0 || i6 < 0 || i9 < 0 || !(i4 < i6 && i6 < i9) {
		t.Errorf("failures not sorted by episode file:\n%s", body)
	}
}

func TestNarrationSRT(t *testing.T) {
	clip := sampleAnalysis().Clips[0]
	srt := NarrationSRT(clip)

	for _, want := range []string{
		"1\n00:00:00,000 --> 00:00:03,000\nShe thought the letter was lost.",
		"2\n00:00:03,000 --> 00:00:11,000\nBut her brother kept it all along.",
		"4\n00:00:14,000 --> 00:00:16,000\nEpisode three, do not skip.",
	} {
		if !strings.Contains(srt, want) {
			t.Errorf("narration missing %q\n%s", want, srt)
		}
	}
}

func TestNarrationSRTFullScriptFallback(t *testing.T) {
	clip := types.ClipSpec{
		Start:     0,
		End:       60 * time.Second,
		Narration: types.Narration{FullScript: "One line covers it."},
	}
	srt := NarrationSRT(clip)
	if !strings.Contains(srt, "00:00:00,000 --> 00:00:16,000\nOne line covers it.") {
		t.Errorf("unexpected fallback narration:\n%s", srt)
	}
}

func TestNarrationSRTShortClip(t *testing.T) {
	clip := sampleAnalysis().Clips[0]
	clip.End = clip.Start + 5*time.Second

	srt := NarrationSRT(clip)
	if strings.Contains(srt, "00:00:05,001") {
		t.Errorf("narration exceeds clip duration:\n%s", srt)
	}
	if !strings.Contains(srt, "00:00:03,000 --> 00:00:05,000") {
		t.Errorf("second cue not clamped to clip end:\n%s", srt)
	}
}
