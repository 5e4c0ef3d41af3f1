//go:build integration

package itest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type robustCase struct {
	name         string
	args         []string
	env          map[string]string
	config       string
	wantContains []string
}

func TestRobustness_ArgsAndConfig(t *testing.T) {
	repoRoot := mustRepoRoot(t)

	cases := []robustCase{
		{
			name:         "unknown command",
			args:         []string{"frobnicate"},
			wantContains: []string{`unknown command "frobnicate"`},
		},
		{
			name:         "unknown flag",
			args:         []string{"analyze", "--wat"},
			wantContains: []string{"unknown flag: --wat"},
		},
		{
			name:         "analyze rejects extra args",
			args:         []string{"analyze", "a.srt", "b.srt"},
			wantContains: []string{"accepts at most 1 arg(s), received 2"},
		},
		{
			name:         "analyze missing path argument",
			args:         []string{"analyze", "does-not-exist.srt"},
			wantContains: []string{"does-not-exist.srt"},
		},
		{
			name:         "bad mode flag",
			args:         []string{"analyze", "--mode", "psychic"},
			wantContains: []string{`unknown analysis mode "psychic"`},
		},
		{
			name:         "ai mode without key",
			args:         []string{"analyze", "--mode", "ai"},
			env:          map[string]string{"TVCUT_API_KEY": ""},
			wantContains: []string{"requires an API key"},
		},
		{
			name:         "unknown provider in config",
			args:         []string{"analyze"},
			config:       "provider: nonsense\n",
			wantContains: []string{`unknown provider "nonsense"`},
		},
		{
			name:         "bad report format in config",
			args:         []string{"analyze"},
			config:       "report:\n  format: pdf\n",
			wantContains: []string{`unknown report format "pdf"`},
		},
		{
			name:         "empty subtitle dir",
			args:         []string{"analyze"},
			wantContains: []string{"no .srt files"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tmp := t.TempDir()
			if tc.config != "" {
				if err := os.WriteFile(filepath.Join(tmp, "tvcut.yaml"), []byte(tc.config), 0o644); err != nil {
					t.Fatal(err)
				}
			}

			res := runCLI(t, repoRoot, tmp, tc.args, tc.env)
			if res.exitCode == 0 {
				t.Fatalf("expected non-zero exit code\noutput:\n%s", res.output)
			}
			for _, want := range tc.wantContains {
				if !strings.Contains(res.output, want) {
					t.Fatalf("expected output to contain %q\noutput:\n%s", want, res.output)
				}
			}
		})
	}
}

func TestRobustness_ProvidersAndSetup(t *testing.T) {
	repoRoot := mustRepoRoot(t)

	t.Run("providers lists registry", func(t *testing.T) {
		res := runCLI(t, repoRoot, t.TempDir(), []string{"providers"}, nil)
		if res.exitCode != 0 {
			t.Fatalf("providers exited %d:\n%s", res.exitCode, res.output)
		}
		for _, want := range []string{"openai", "gemini", "openrouter", "deepseek"} {
			if !strings.Contains(res.output, want) {
				t.Fatalf("providers output missing %q:\n%s", want, res.output)
			}
		}
	})

	t.Run("setup creates workspace", func(t *testing.T) {
		tmp := t.TempDir()
		res := runCLI(t, repoRoot, tmp, []string{"setup"}, nil)
		if res.exitCode != 0 {
			t.Fatalf("setup exited %d:\n%s", res.exitCode, res.output)
		}
		for _, d := range []string{"srt", "videos", "clips", "reports", "tvcut.yaml"} {
			if _, err := os.Stat(filepath.Join(tmp, d)); err != nil {
				t.Errorf("setup did not create %s: %v", d, err)
			}
		}
	})
}
