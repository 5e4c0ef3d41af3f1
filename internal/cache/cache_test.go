package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dkrasnov/tvcut/internal/types"
)

func testAnalysis() types.EpisodeAnalysis {
	return types.EpisodeAnalysis{
		Episode: "E01.srt",
		Number:  "01",
		Theme:   "The setup",
		Genre:   "crime",
		Clips: []types.ClipSpec{
			{Start: 80 * time.Second, End: 170 * time.Second, Title: "Plot twist", Score: 8, Source: "rule"},
		},
		AnalyzedAt: time.Now().UTC().Truncate(time.Second),
	}
}

func TestKey(t *testing.T) {
	k1 := Key("subs", "model-a", "ai")
	k2 := Key("subs", "model-b", "ai")
	k3 := Key("subs", "model-a", "rule")
	if k1 == k2 || k1 == k3 {
		t.Fatalf("model and mode must participate in the key")
	}
	if len(k1) != 16 {
		t.Fatalf("key length = %d", len(k1))
	}
}

func TestAnalysisRoundTrip(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	key := Key("content", "m", "ai")

	if _, ok := s.LoadAnalysis(key); ok {
		t.Fatalf("expected miss on empty cache")
	}

	want := testAnalysis()
	if err := s.SaveAnalysis(key, want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, ok := s.LoadAnalysis(key)
	if !ok {
		t.Fatalf("expected hit")
	}
	if !got.FromCache {
		t.Fatalf("expected FromCache set")
	}
	if got.Theme != want.Theme || len(got.Clips) != 1 || got.Clips[0].Start != want.Clips[0].Start {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestLoadAnalysis_CorruptFileIsMiss(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	key := Key("x", "m", "ai")
	if err := os.WriteFile(filepath.Join(dir, "analysis", key+".json"), []byte("{broken"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, ok := s.LoadAnalysis(key); ok {
		t.Fatalf("corrupt cache entry must be a miss")
	}
}

func TestSeriesContextRoundTrip(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	sc := s.LoadSeriesContext()
	if sc.Episodes == nil || len(sc.Episodes) != 0 {
		t.Fatalf("expected empty initialized context, got %+v", sc)
	}

	sc.Episodes["01"] = types.EpisodeSummary{Theme: "The setup", AnalyzedAt: time.Now().UTC()}
	if err := s.SaveSeriesContext(sc); err != nil {
		t.Fatalf("save: %v", err)
	}

	got := s.LoadSeriesContext()
	if got.Episodes["01"].Theme != "The setup" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}
