package highlights

import (
	"testing"
	"time"

	"github.com/dkrasnov/tvcut/internal/types"
)

// denseEpisode builds an episode with continuous dialogue and one
// strongly twist-flavored line in the middle.
func denseEpisode(lineDur, gap time.Duration, n int) types.Episode {
	ep := types.Episode{Name: "E01.srt", Number: "01"}
	at := time.Duration(0)
	for i := 0; i < n; i++ {
		text := "普通的对话内容"
		if i == n/2 {
			text = "原来真相是他伪造了关键证据！"
		}
		ep.Lines = append(ep.Lines, types.Line{
			Index: i + 1,
			Start: at,
			End:   at + lineDur,
			Text:  text,
		})
		at += lineDur + gap
	}
	return ep
}

func TestBuildCandidates_RespectsBounds(t *testing.T) {
	ep := denseEpisode(3*time.Second, time.Second, 120)
	minClip := 30 * time.Second
	maxClip := 90 * time.Second

	cands := BuildCandidates(ep, minClip, maxClip, 3.0)
	if len(cands) == 0 {
		t.Fatalf("expected candidates")
	}
	for _, c := range cands {
		d := c.End - c.Start
		if d < minClip || d > maxClip {
			t.Fatalf("candidate duration %v outside %v..%v", d, minClip, maxClip)
		}
	}
}

func TestBuildCandidates_StopsAtSceneGap(t *testing.T) {
	// Two scenes separated by a 30s silence; the twist line is in the
	// second scene, so no candidate may reach into the first.
	ep := types.Episode{Name: "E02.srt"}
	at := time.Duration(0)
	for i := 0; i < 20; i++ {
		ep.Lines = append(ep.Lines, types.Line{Index: i + 1, Start: at, End: at + 3*time.Second, Text: "闲聊"})
		at += 4 * time.Second
	}
	sceneStart := at + 30*time.Second
	at = sceneStart
	for i := 20; i < 60; i++ {
		text := "对峙继续"
		if i == 40 {
			text = "原来真相是他伪造了关键证据！"
		}
		ep.Lines = append(ep.Lines, types.Line{Index: i + 1, Start: at, End: at + 3*time.Second, Text: text})
		at += 4 * time.Second
	}

	cands := BuildCandidates(ep, 30*time.Second, 120*time.Second, 3.0)
	if len(cands) == 0 {
		t.Fatalf("expected candidates")
	}
	for _, c := range cands {
		if c.Start < sceneStart {
			t.Fatalf("candidate crossed scene gap: starts at %v", c.Start)
		}
	}
}

func TestBuildCandidates_EmptyEpisode(t *testing.T) {
	if got := BuildCandidates(types.Episode{}, time.Minute, 3*time.Minute, 3.0); got != nil {
		t.Fatalf("expected nil for empty episode, got %d", len(got))
	}
}

func TestBuildCandidates_DegenerateInput(t *testing.T) {
	single := types.Episode{Lines: []types.Line{
		{Index: 1, Start: time.Second, End: 4 * time.Second, Text: "原来真相是他伪造了关键证据！"},
	}}

	tests := []struct {
		name    string
		ep      types.Episode
		minClip time.Duration
		maxClip time.Duration
		wantAny bool
	}{
		{"single line within bounds", single, time.Second, time.Minute, true},
		{"single line too short", single, 30 * time.Second, time.Minute, false},
		{"inverted bounds", single, time.Minute, time.Second, false},
		{"zero max", single, time.Second, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildCandidates(tt.ep, tt.minClip, tt.maxClip, 3.0)
			if gotAny := len(got) > 0; gotAny != tt.wantAny {
				t.Fatalf("got %d candidates, wantAny=%v", len(got), tt.wantAny)
			}
		})
	}
}

func TestSelectTop_DistinctAndOrdered(t *testing.T) {
	cands := []types.Candidate{
		{Start: 100 * time.Second, End: 160 * time.Second, RuleScore: 9},
		{Start: 110 * time.Second, End: 170 * time.Second, RuleScore: 8}, // overlaps the first
		{Start: 300 * time.Second, End: 360 * time.Second, RuleScore: 7},
		{Start: 10 * time.Second, End: 70 * time.Second, RuleScore: 6},
	}
	got := SelectTop(cands, 3, 2*time.Second)
	if len(got) != 3 {
		t.Fatalf("expected 3 selected, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].Start >= got[i].Start {
			t.Fatalf("expected timeline order")
		}
	}
	for _, c := range got {
		if c.Start == 110*time.Second {
			t.Fatalf("overlapping candidate must be dropped")
		}
	}
}
