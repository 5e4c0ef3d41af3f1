package analyst

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dkrasnov/tvcut/internal/domain/subtitles"
	"github.com/dkrasnov/tvcut/internal/types"
)

// modelAnalysis mirrors the JSON shape requested in the prompt.
type modelAnalysis struct {
	Theme      string         `json:"episode_theme"`
	Genre      string         `json:"genre_type"`
	Continuity string         `json:"continuity_notes"`
	Segments   []modelSegment `json:"highlight_segments"`
}

type modelSegment struct {
	Title        string          `json:"title"`
	StartTime    string          `json:"start_time"`
	EndTime      string          `json:"end_time"`
	Score        float64         `json:"score"`
	Significance string          `json:"plot_significance"`
	Narration    types.Narration `json:"professional_narration"`
	Tip          string          `json:"highlight_tip"`
	Tone         string          `json:"emotional_tone"`
	Summary      string          `json:"content_summary"`
}

func (s modelSegment) timeRange() (time.Duration, time.Duration, bool) {
	start, err1 := subtitles.ParseTimestamp(s.StartTime)
	end, err2 := subtitles.ParseTimestamp(s.EndTime)
	if err1 != nil || err2 != nil || end <= start {
		return 0, 0, false
	}
	return start, end, true
}

func parseModelResponse(content string) (modelAnalysis, error) {
	clean, err := extractJSONObject(content)
	if err != nil {
		return modelAnalysis{}, err
	}
	var out modelAnalysis
	if err := json.Unmarshal([]byte(clean), &out); err != nil {
		return modelAnalysis{}, fmt.Errorf("unmarshal model response: %w", err)
	}
	if len(out.Segments) == 0 {
		return modelAnalysis{}, errors.New("model response has no highlight_segments")
	}
	return out, nil
}

// extractJSONObject pulls the first JSON object out of a model reply,
// tolerating markdown fences and chatter around it.
func extractJSONObject(s string) (string, error) {
	t := strings.TrimSpace(s)
	if t == "" {
		return "", errors.New("empty model response")
	}

	if strings.HasPrefix(t, "```") {
		if i := strings.Index(t, "\n"); i >= 0 {
			t = t[i+1:]
		}
		if j := strings.LastIndex(t, "```"); j >= 0 {
			t = t[:j]
		}
		t = strings.TrimSpace(t)
	}

	start := strings.Index(t, "{")
	end := strings.LastIndex(t, "}")
	if start >= 0 && end > start {
		return t[start : end+1], nil
	}
	return "", fmt.Errorf("no JSON object in model response: %q", truncateRunes(t, 200))
}
