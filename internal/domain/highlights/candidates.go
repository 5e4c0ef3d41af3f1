package highlights

import (
	"sort"
	"strings"
	"time"

	"github.com/dkrasnov/tvcut/internal/types"
)

const (
	maxCandidates = 200
	// A dialogue gap this long marks a scene boundary when expanding
	// ranges around a high-scoring center line.
	sceneGap = 8 * time.Second
)

// BuildCandidates scores every subtitle line and expands the strongest
// ones into coherent clip ranges within the duration bounds. Results
// are sorted by rule score, strongest first.
func BuildCandidates(ep types.Episode, minClip, maxClip time.Duration, minScore float64) []types.Candidate {
	if minClip <= 0 {
		minClip = time.Second
	}
	if maxClip <= 0 || maxClip < minClip {
		return nil
	}
	lines := ep.Lines
	if len(lines) == 0 {
		return nil
	}

	type scoredLine struct {
		idx   int
		score float64
		hits  map[string]int
	}
	var centers []scoredLine
	for i, ln := range lines {
		s, hits := Score(ln.Text)
		if s >= minScore {
			centers = append(centers, scoredLine{idx: i, score: s, hits: hits})
		}
	}
	sort.SliceStable(centers, func(i, j int) bool { return centers[i].score > centers[j].score })

	var out []types.Candidate
	for _, c := range centers {
		if len(out) >= maxCandidates {
			break
		}
		lo, hi := coherentRange(lines, c.idx, minClip, maxClip)
		start := lines[lo].Start
		end := lines[hi].End
		dur := end - start
		if dur < minClip || dur > maxClip {
			continue
		}
		if overlapsAny(out, start, end) {
			continue
		}

		score, hits := rangeScore(lines, lo, hi)
		out = append(out, types.Candidate{
			Start:      start,
			End:        end,
			Text:       joinText(lines, lo, hi),
			RuleScore:  score,
			Categories: hits,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].RuleScore == out[j].RuleScore {
			return out[i].Start < out[j].Start
		}
		return out[i].RuleScore > out[j].RuleScore
	})
	return out
}

// coherentRange grows a window around center until either the duration
// budget is spent or a scene boundary (long dialogue gap) is crossed.
func coherentRange(lines []types.Line, center int, minClip, maxClip time.Duration) (int, int) {
	lo, hi := center, center

	for {
		dur := lines[hi].End - lines[lo].Start
		if dur >= maxClip {
			break
		}

		canLeft := lo > 0 && lines[lo].Start-lines[lo-1].End < sceneGap
		canRight := hi < len(lines)-1 && lines[hi+1].Start-lines[hi].End < sceneGap

		if dur >= minClip && !canLeft && !canRight {
			break
		}
		if !canLeft && !canRight {
			// Scene boundaries on both sides but still short: cross the
			// smaller gap rather than produce an unusable range.
			canLeft = lo > 0
			canRight = hi < len(lines)-1
			if !canLeft && !canRight {
				break
			}
		}

		// Prefer extending toward the smaller gap so the range stays
		// within one conversation.
		leftGap := time.Duration(1<<62 - 1)
		rightGap := time.Duration(1<<62 - 1)
		if canLeft {
			leftGap = lines[lo].Start - lines[lo-1].End
		}
		if canRight {
			rightGap = lines[hi+1].Start - lines[hi].End
		}
		if leftGap <= rightGap {
			if lines[hi].End-lines[lo-1].Start > maxClip {
				if !canRight || lines[hi+1].End-lines[lo].Start > maxClip {
					break
				}
				hi++
				continue
			}
			lo--
		} else {
			if lines[hi+1].End-lines[lo].Start > maxClip {
				if !canLeft || lines[hi].End-lines[lo-1].Start > maxClip {
					break
				}
				lo--
				continue
			}
			hi++
		}
	}
	return lo, hi
}

func rangeScore(lines []types.Line, lo, hi int) (float64, map[string]int) {
	var total float64
	merged := make(map[string]int)
	n := 0
	for i := lo; i <= hi; i++ {
		s, hits := Score(lines[i].Text)
		total += s
		for k, v := range hits {
			merged[k] += v
		}
		n++
	}
	if n == 0 {
		return 0, nil
	}
	if len(merged) == 0 {
		merged = nil
	}
	// Average over lines with a small density bonus for ranges where
	// several categories fire together.
	score := total/float64(n) + 0.3*float64(len(merged))
	return clamp(score, 0, 10), merged
}

func joinText(lines []types.Line, lo, hi int) string {
	parts := make([]string, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		if t := strings.TrimSpace(lines[i].Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

func overlapsAny(existing []types.Candidate, start, end time.Duration) bool {
	for _, c := range existing {
		if start < c.End && end > c.Start {
			return true
		}
	}
	return false
}

// ScoreRange rates the dialogue falling inside [start, end) the same
// way candidate ranges are scored.
func ScoreRange(lines []types.Line, start, end time.Duration) float64 {
	lo, hi := -1, -1
	for i, ln := range lines {
		if ln.End <= start || ln.Start >= end {
			continue
		}
		if lo < 0 {
			lo = i
		}
		hi = i
	}
	if lo < 0 {
		return 0
	}
	s, _ := rangeScore(lines, lo, hi)
	return s
}

// SelectTop picks up to n highest-scoring candidates that stay at
// least minGap apart, returned in timeline order.
func SelectTop(cands []types.Candidate, n int, minGap time.Duration) []types.Candidate {
	if n <= 0 || len(cands) == 0 {
		return nil
	}
	ranked := make([]types.Candidate, len(cands))
	copy(ranked, cands)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].RuleScore == ranked[j].RuleScore {
			return ranked[i].Start < ranked[j].Start
		}
		return ranked[i].RuleScore > ranked[j].RuleScore
	})

	var out []types.Candidate
	for _, c := range ranked {
		if len(out) >= n {
			break
		}
		if !isDistinct(out, c.Start, c.End, minGap) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

func isDistinct(existing []types.Candidate, start, end, minGap time.Duration) bool {
	for _, e := range existing {
		if start < e.End+minGap && end > e.Start-minGap {
			return false
		}
	}
	return true
}
