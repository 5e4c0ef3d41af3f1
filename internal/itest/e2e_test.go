//go:build integration

package itest

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dkrasnov/tvcut/internal/types"
)

const itestConfig = `analysis:
  mode: rule
  min_clip_sec: 2
  max_clip_sec: 20
  min_score: 1.0
`

const itestSRT = `1
00:00:01,000 --> 00:00:04,000
真相其实没那么简单

2
00:00:05,000 --> 00:00:08,000
原来一切都是他安排的

3
00:00:10,000 --> 00:00:14,000
但是没想到事情突然反转了

4
00:00:15,000 --> 00:00:18,000
他到底隐瞒了什么秘密
`

// ruleWorkspace prepares a throwaway working directory with config and
// one subtitle file, ready for CLI runs.
func ruleWorkspace(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmp, "tvcut.yaml"), []byte(itestConfig), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(tmp, "srt"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tmp, "srt", "show_E01.srt"), []byte(itestSRT), 0o644); err != nil {
		t.Fatal(err)
	}
	return tmp
}

func TestE2E_AnalyzeRuleMode(t *testing.T) {
	repoRoot := mustRepoRoot(t)
	tmp := ruleWorkspace(t)

	res := runCLI(t, repoRoot, tmp, []string{"analyze"}, nil)
	if res.exitCode != 0 {
		t.Fatalf("analyze exited %d:\n%s", res.exitCode, res.output)
	}

	report := filepath.Join(tmp, "reports", "E01_analysis_report.txt")
	b, err := os.ReadFile(report)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(b), "Recommended clips") {
		t.Fatalf("unexpected report:\n%s", b)
	}

	mb, err := os.ReadFile(filepath.Join(tmp, "reports", "manifest.json"))
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	var m types.Manifest
	if err := json.Unmarshal(mb, &m); err != nil {
		t.Fatalf("decode manifest: %v", err)
	}
	if m.Mode != "rule" || len(m.Clips) == 0 {
		t.Fatalf("unexpected manifest: %+v", m)
	}

	// Second run must come from cache and still succeed.
	res = runCLI(t, repoRoot, tmp, []string{"analyze"}, nil)
	if res.exitCode != 0 {
		t.Fatalf("cached analyze exited %d:\n%s", res.exitCode, res.output)
	}
}

func TestE2E_ClipRendersVideo(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not installed")
	}
	repoRoot := mustRepoRoot(t)
	tmp := ruleWorkspace(t)

	if err := os.MkdirAll(filepath.Join(tmp, "videos"), 0o755); err != nil {
		t.Fatal(err)
	}
	video := filepath.Join(tmp, "videos", "show_E01.mp4")
	gen := exec.Command("ffmpeg", "-y",
		"-f", "lavfi", "-i", "color=c=black:s=320x240:d=30",
		"-f", "lavfi", "-i", "anullsrc=r=44100:cl=mono",
		"-shortest", "-c:v", "libx264", "-pix_fmt", "yuv420p",
		video,
	)
	if b, err := gen.CombinedOutput(); err != nil {
		t.Fatalf("generate test video: %v\n%s", err, b)
	}

	res := runCLI(t, repoRoot, tmp, []string{"clip"}, nil)
	if res.exitCode != 0 {
		t.Fatalf("clip exited %d:\n%s", res.exitCode, res.output)
	}

	mb, err := os.ReadFile(filepath.Join(tmp, "reports", "manifest.json"))
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	var m types.Manifest
	if err := json.Unmarshal(mb, &m); err != nil {
		t.Fatalf("decode manifest: %v", err)
	}
	if len(m.Clips) == 0 {
		t.Fatal("manifest has no clips")
	}

	for _, c := range m.Clips {
		if c.File == "" {
			t.Fatalf("clip %s has no rendered file", c.ID)
		}
		// Manifest paths are relative to the working directory.
		got, err := probeDurationSeconds(filepath.Join(tmp, c.File))
		if err != nil {
			t.Fatalf("probe %s: %v", c.File, err)
		}
		want := c.EndSec - c.StartSec
		if got < want-1.5 || got > want+1.5 {
			t.Errorf("clip %s duration = %.2fs, want about %.2fs", c.ID, got, want)
		}
	}
}
