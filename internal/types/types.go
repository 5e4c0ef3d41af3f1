package types

import "time"

// Line is a single parsed SRT subtitle entry.
type Line struct {
	Index int
	Start time.Duration
	End   time.Duration
	Text  string
}

// Episode is one parsed subtitle file.
type Episode struct {
	Path   string
	Name   string
	Number string
	Lines  []Line
}

// Span returns the time range covered by the episode's subtitles.
func (e Episode) Span() (time.Duration, time.Duration) {
	if len(e.Lines) == 0 {
		return 0, 0
	}
	return e.Lines[0].Start, e.Lines[len(e.Lines)-1].End
}

type Candidate struct {
	Start time.Duration
	End   time.Duration
	Text  string

	RuleScore float64
	// Categories counts keyword-category hits that produced the score,
	// e.g. "plot_twist" -> 2.
	Categories map[string]int
}

// Narration is the four-part voiceover script the analyst asks the
// model to produce for each clip.
type Narration struct {
	Opening    string `json:"opening_line"`
	Main       string `json:"main_explanation"`
	Highlight  string `json:"highlight_moment"`
	Closing    string `json:"closing_line"`
	FullScript string `json:"full_script"`
}

type ClipSpec struct {
	Start time.Duration
	End   time.Duration

	Title        string
	Significance string
	Summary      string
	Tip          string
	Tone         string
	Narration    Narration

	Score float64
	// Source is "rule", "ai" or "hybrid" depending on what produced the
	// final score.
	Source string
}

type EpisodeAnalysis struct {
	Episode    string     `json:"episode"`
	Number     string     `json:"episode_number"`
	Theme      string     `json:"episode_theme"`
	Genre      string     `json:"genre_type"`
	Clips      []ClipSpec `json:"clips"`
	Continuity string     `json:"continuity_notes,omitempty"`
	AnalyzedAt time.Time  `json:"analyzed_at"`
	FromCache  bool       `json:"-"`
}

type Manifest struct {
	SRTDir   string         `json:"srt_dir"`
	VideoDir string         `json:"video_dir,omitempty"`
	Mode     string         `json:"mode"`
	Model    string         `json:"model,omitempty"`
	Clips    []ManifestClip `json:"clips"`
}

type ManifestClip struct {
	ID           string  `json:"id"`
	Episode      string  `json:"episode"`
	StartSec     float64 `json:"start_sec"`
	EndSec       float64 `json:"end_sec"`
	Score        float64 `json:"score"`
	Source       string  `json:"source"`
	Title        string  `json:"title"`
	Significance string  `json:"significance,omitempty"`
	Tone         string  `json:"tone,omitempty"`
	File         string  `json:"file,omitempty"`
	Narration    string  `json:"narration,omitempty"`
	Report       string  `json:"report,omitempty"`
}

// SeriesContext accumulates per-episode summaries across runs so later
// episodes can be analyzed with knowledge of earlier plot.
type SeriesContext struct {
	Series   string                    `json:"series,omitempty"`
	Episodes map[string]EpisodeSummary `json:"episodes"`
}

type EpisodeSummary struct {
	Theme      string    `json:"theme"`
	Genre      string    `json:"genre,omitempty"`
	Summary    string    `json:"summary,omitempty"`
	AnalyzedAt time.Time `json:"analyzed_at"`
}
