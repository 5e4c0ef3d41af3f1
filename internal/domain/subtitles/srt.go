package subtitles

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dkrasnov/tvcut/internal/types"
)

var timeRangeRE = regexp.MustCompile(`(\d{2}:\d{2}:\d{2}[,.]\d{3})\s*-->\s*(\d{2}:\d{2}:\d{2}[,.]\d{3})`)

// Parse reads SRT content into subtitle lines. Malformed blocks are
// skipped; parsing only fails when nothing usable is found in
// non-empty input.
func Parse(content string) ([]types.Line, error) {
	content = strings.TrimPrefix(content, "\uFEFF")
	content = CorrectTypos(content)
	content = strings.ReplaceAll(content, "\r\n", "\n")

	blocks := regexp.MustCompile(`\n\s*\n`).Split(strings.TrimSpace(content), -1)
	var out []types.Line
	for _, block := range blocks {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		if len(lines) < 2 {
			continue
		}

		// Index line is optional in the wild; the timestamp line is not.
		idxLine := 0
		index, err := strconv.Atoi(strings.TrimSpace(lines[0]))
		if err == nil {
			idxLine = 1
		} else {
			index = len(out) + 1
		}
		if idxLine >= len(lines) {
			continue
		}

		m := timeRangeRE.FindStringSubmatch(lines[idxLine])
		if m == nil {
			continue
		}
		start, err1 := ParseTimestamp(m[1])
		end, err2 := ParseTimestamp(m[2])
		if err1 != nil || err2 != nil || end <= start {
			continue
		}

		text := strings.TrimSpace(strings.Join(lines[idxLine+1:], "\n"))
		if text == "" {
			continue
		}

		out = append(out, types.Line{Index: index, Start: start, End: end, Text: text})
	}

	if len(out) == 0 && strings.TrimSpace(content) != "" {
		return nil, fmt.Errorf("no subtitle entries found")
	}
	return out, nil
}

// ParseTimestamp parses HH:MM:SS,mmm (comma or dot separator).
func ParseTimestamp(s string) (time.Duration, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ".", ","))
	var h, m, sec, ms int
	if _, err := fmt.Sscanf(s, "%02d:%02d:%02d,%03d", &h, &m, &sec, &ms); err != nil {
		return 0, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(sec)*time.Second +
		time.Duration(ms)*time.Millisecond, nil
}

// FormatTimestamp renders a duration as HH:MM:SS,mmm.
func FormatTimestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d / time.Hour)
	d -= time.Duration(h) * time.Hour
	m := int(d / time.Minute)
	d -= time.Duration(m) * time.Minute
	s := int(d / time.Second)
	d -= time.Duration(s) * time.Second
	ms := int(d / time.Millisecond)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

// Render writes lines back out as SRT with clip-local timestamps
// shifted by offset. Narration files per clip are produced this way.
func Render(lines []types.Line, offset time.Duration) string {
	var b strings.Builder
	for i, ln := range lines {
		start := ln.Start - offset
		end := ln.End - offset
		if end <= 0 {
			continue
		}
		if start < 0 {
			start = 0
		}
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n", i+1, FormatTimestamp(start), FormatTimestamp(end), ln.Text)
	}
	return b.String()
}

// Slice returns the lines overlapping [start, end).
func Slice(lines []types.Line, start, end time.Duration) []types.Line {
	var out []types.Line
	for _, ln := range lines {
		if ln.End <= start || ln.Start >= end {
			continue
		}
		out = append(out, ln)
	}
	return out
}

var episodeNumRE = []*regexp.Regexp{
	regexp.MustCompile(`(?i)[Ee][Pp]?(\d{1,3})`),
	regexp.MustCompile(`第(\d{1,3})[集话]`),
	regexp.MustCompile(`(\d{1,3})`),
}

// EpisodeNumber extracts a zero-padded episode number from a subtitle
// or video filename. Empty when nothing numeric is present.
func EpisodeNumber(filename string) string {
	for _, re := range episodeNumRE {
		if m := re.FindStringSubmatch(filename); m != nil {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			return fmt.Sprintf("%02d", n)
		}
	}
	return ""
}
