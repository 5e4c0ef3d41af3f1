package subtitles

import (
	"strings"
	"testing"
	"time"

	"github.com/dkrasnov/tvcut/internal/types"
)

const sampleSRT = "1\n00:00:01,000 --> 00:00:03,500\n你说的话是真的吗\n\n" +
	"2\n00:00:04,000 --> 00:00:06,000\n原来他就是凶手\n\n" +
	"garbage block without timestamps\n\n" +
	"3\n00:00:07,250 --> 00:00:09,000\n我不相信\n"

func TestParse(t *testing.T) {
	lines, err := Parse(sampleSRT)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0].Start != time.Second || lines[0].End != 3500*time.Millisecond {
		t.Fatalf("unexpected first range: %v -> %v", lines[0].Start, lines[0].End)
	}
	if lines[1].Text != "原来他就是凶手" {
		t.Fatalf("unexpected text: %q", lines[1].Text)
	}
	if lines[2].Index != 3 {
		t.Fatalf("expected index 3, got %d", lines[2].Index)
	}
}

func TestParse_CRLFAndBOM(t *testing.T) {
	in := "\uFEFF1\r\n00:00:00,000 --> 00:00:02,000\r\nhello\r\n"
	lines, err := Parse(in)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(lines) != 1 || lines[0].Text != "hello" {
		t.Fatalf("unexpected result: %+v", lines)
	}
}

func TestParse_AppliesTypoCorrections(t *testing.T) {
	in := "1\n00:00:00,000 --> 00:00:02,000\n検察官發現了証據"
	// 検 is untouched; only mapped sequences are rewritten.
	lines, err := Parse(in)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !strings.Contains(lines[0].Text, "发现") || !strings.Contains(lines[0].Text, "证据") {
		t.Fatalf("expected corrected text, got %q", lines[0].Text)
	}
}

func TestParse_GarbageOnly(t *testing.T) {
	if _, err := Parse("not a subtitle file at all"); err == nil {
		t.Fatalf("expected error for unusable input")
	}
}

func TestTimestampRoundTrip(t *testing.T) {
	tests := []string{"00:00:00,000", "00:05:30,250", "01:59:59,999"}
	for _, in := range tests {
		d, err := ParseTimestamp(in)
		if err != nil {
			t.Fatalf("parse %q: %v", in, err)
		}
		if got := FormatTimestamp(d); got != in {
			t.Fatalf("round trip %q -> %q", in, got)
		}
	}
}

func TestSliceAndRender(t *testing.T) {
	lines := []types.Line{
		{Index: 1, Start: 10 * time.Second, End: 12 * time.Second, Text: "a"},
		{Index: 2, Start: 13 * time.Second, End: 15 * time.Second, Text: "b"},
		{Index: 3, Start: 30 * time.Second, End: 32 * time.Second, Text: "c"},
	}
	got := Slice(lines, 9*time.Second, 16*time.Second)
	if len(got) != 2 {
		t.Fatalf("expected 2 lines in slice, got %d", len(got))
	}

	srt := Render(got, 9*time.Second)
	if !strings.Contains(srt, "00:00:01,000 --> 00:00:03,000") {
		t.Fatalf("expected shifted timestamps, got:\n%s", srt)
	}
	if !strings.HasPrefix(srt, "1\n") || !strings.Contains(srt, "\n2\n") {
		t.Fatalf("expected renumbered entries, got:\n%s", srt)
	}
}

func TestEpisodeNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Show.S01E05.srt", "05"},
		{"第12集.srt", "12"},
		{"ep3.mkv", "03"},
		{"07.srt", "07"},
		{"finale.srt", ""},
	}
	for _, tt := range tests {
		if got := EpisodeNumber(tt.in); got != tt.want {
			t.Fatalf("EpisodeNumber(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
