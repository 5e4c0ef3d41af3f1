// Package cache persists episode analyses and the rolling series
// context between runs. Everything is plain JSON under the cache dir;
// corruption is treated as a miss, never an error.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dkrasnov/tvcut/internal/types"
)

const seriesContextFile = "series_context.json"

type Store struct {
	dir string
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(dir, "analysis"), 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Key derives the analysis cache key. Subtitle content, model and mode
// all participate: changing any of them must invalidate the entry.
func Key(subtitleContent, model, mode string) string {
	sum := sha256.Sum256([]byte(mode + "\x00" + model + "\x00" + subtitleContent))
	return hex.EncodeToString(sum[:])[:16]
}

func (s *Store) analysisPath(key string) string {
	return filepath.Join(s.dir, "analysis", key+".json")
}

func (s *Store) LoadAnalysis(key string) (types.EpisodeAnalysis, bool) {
	b, err := os.ReadFile(s.analysisPath(key))
	if err != nil {
		return types.EpisodeAnalysis{}, false
	}
	var a types.EpisodeAnalysis
	if err := json.Unmarshal(b, &a); err != nil || len(a.Clips) == 0 {
		return types.EpisodeAnalysis{}, false
	}
	a.FromCache = true
	return a, true
}

func (s *Store) SaveAnalysis(key string, a types.EpisodeAnalysis) error {
	b, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}
	if err := os.WriteFile(s.analysisPath(key), b, 0o644); err != nil {
		return fmt.Errorf("write analysis cache: %w", err)
	}
	return nil
}

func (s *Store) LoadSeriesContext() types.SeriesContext {
	out := types.SeriesContext{Episodes: map[string]types.EpisodeSummary{}}
	b, err := os.ReadFile(filepath.Join(s.dir, seriesContextFile))
	if err != nil {
		return out
	}
	var sc types.SeriesContext
	if err := json.Unmarshal(b, &sc); err != nil {
		return out
	}
	if sc.Episodes == nil {
		sc.Episodes = map[string]types.EpisodeSummary{}
	}
	return sc
}

func (s *Store) SaveSeriesContext(sc types.SeriesContext) error {
	b, err := json.MarshalIndent(sc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal series context: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, seriesContextFile), b, 0o644); err != nil {
		return fmt.Errorf("write series context: %w", err)
	}
	return nil
}
