package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/caarlos0/env/v9"
	"gopkg.in/yaml.v3"
)

// Analysis modes.
const (
	ModeRule   = "rule"
	ModeAI     = "ai"
	ModeHybrid = "hybrid"
)

// Report output formats.
const (
	ReportText = "text"
	ReportDocx = "docx"
	ReportBoth = "both"
)

type Config struct {
	Provider string `yaml:"provider" env:"TVCUT_PROVIDER"`
	APIKey   string `yaml:"api_key" env:"TVCUT_API_KEY"`
	BaseURL  string `yaml:"base_url" env:"TVCUT_BASE_URL"`
	Model    string `yaml:"model" env:"TVCUT_MODEL"`

	Analysis AnalysisConfig `yaml:"analysis"`
	Paths    PathsConfig    `yaml:"paths"`
	Render   RenderConfig   `yaml:"render"`
	Watch    WatchConfig    `yaml:"watch"`
	Report   ReportConfig   `yaml:"report"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type AnalysisConfig struct {
	Mode       string  `yaml:"mode" env:"TVCUT_MODE"`
	RuleWeight float64 `yaml:"rule_weight"`
	AIWeight   float64 `yaml:"ai_weight"`
	MinScore   float64 `yaml:"min_score"`
	MinClipSec int     `yaml:"min_clip_sec"`
	MaxClipSec int     `yaml:"max_clip_sec"`
	MaxClips   int     `yaml:"max_clips"`
	// PromptLines bounds how many subtitle lines are inlined into the
	// model prompt.
	PromptLines int     `yaml:"prompt_lines"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

func (a AnalysisConfig) MinClip() time.Duration { return time.Duration(a.MinClipSec) * time.Second }
func (a AnalysisConfig) MaxClip() time.Duration { return time.Duration(a.MaxClipSec) * time.Second }

type PathsConfig struct {
	SRT     string `yaml:"srt" env:"TVCUT_SRT_DIR"`
	Videos  string `yaml:"videos" env:"TVCUT_VIDEO_DIR"`
	Clips   string `yaml:"clips" env:"TVCUT_CLIPS_DIR"`
	Reports string `yaml:"reports" env:"TVCUT_REPORTS_DIR"`
	Cache   string `yaml:"cache" env:"TVCUT_CACHE_DIR"`
}

type RenderConfig struct {
	FFmpegPath  string `yaml:"ffmpeg_path"`
	FFprobePath string `yaml:"ffprobe_path"`
	Preset      string `yaml:"preset"`
	CRF         int    `yaml:"crf"`
}

type WatchConfig struct {
	MaxConcurrent int           `yaml:"max_concurrent"`
	SettleDelay   time.Duration `yaml:"settle_delay"`
}

type ReportConfig struct {
	Format string `yaml:"format" env:"TVCUT_REPORT_FORMAT"`
}

type LoggingConfig struct {
	Level string `yaml:"level" env:"TVCUT_LOG_LEVEL"`
}

// Load reads the YAML config at path (missing file is fine: defaults
// apply), overlays environment variables, then validates.
func Load(path string) (Config, error) {
	var cfg Config

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
			// run on defaults + env
		default:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing env config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate applies defaults and rejects inconsistent settings.
func (c *Config) Validate() error {
	if c.Provider == "" {
		c.Provider = "openai"
	}
	p, err := LookupProvider(c.Provider)
	if err != nil {
		return err
	}
	if c.BaseURL == "" {
		c.BaseURL = p.BaseURL
	}
	if c.Model == "" {
		c.Model = p.DefaultModel
	}
	if c.Provider == "custom" && c.BaseURL == "" {
		return fmt.Errorf("provider custom requires base_url")
	}
	if c.Model == "" {
		return fmt.Errorf("provider %s requires model", c.Provider)
	}

	a := &c.Analysis
	if a.Mode == "" {
		a.Mode = ModeRule
	}
	switch a.Mode {
	case ModeRule, ModeAI, ModeHybrid:
	default:
		return fmt.Errorf("unknown analysis mode %q (want rule, ai or hybrid)", a.Mode)
	}
	if a.Mode != ModeRule && c.APIKey == "" {
		return fmt.Errorf("analysis mode %s requires an API key", a.Mode)
	}
	if a.RuleWeight == 0 && a.AIWeight == 0 {
		a.RuleWeight, a.AIWeight = 0.7, 0.3
	}
	if a.RuleWeight < 0 || a.AIWeight < 0 {
		return fmt.Errorf("score weights must be >= 0")
	}
	// Normalize so blended scores stay on the same scale.
	if sum := a.RuleWeight + a.AIWeight; math.Abs(sum-1) > 1e-9 {
		a.RuleWeight /= sum
		a.AIWeight /= sum
	}
	if a.MinScore == 0 {
		a.MinScore = 3.0
	}
	if a.MinClipSec == 0 {
		a.MinClipSec = 60
	}
	if a.MaxClipSec == 0 {
		a.MaxClipSec = 180
	}
	if a.MinClipSec <= 0 || a.MaxClipSec <= 0 || a.MinClipSec > a.MaxClipSec {
		return fmt.Errorf("invalid clip duration bounds %d..%d", a.MinClipSec, a.MaxClipSec)
	}
	if a.MaxClips == 0 {
		a.MaxClips = 5
	}
	if a.MaxClips < 0 {
		return fmt.Errorf("max_clips must be > 0")
	}
	if a.PromptLines == 0 {
		a.PromptLines = 120
	}
	if a.MaxTokens == 0 {
		a.MaxTokens = 2000
	}
	if a.Temperature == 0 {
		a.Temperature = 0.7
	}

	if c.Paths.SRT == "" {
		c.Paths.SRT = "srt"
	}
	if c.Paths.Videos == "" {
		c.Paths.Videos = "videos"
	}
	if c.Paths.Clips == "" {
		c.Paths.Clips = "clips"
	}
	if c.Paths.Reports == "" {
		c.Paths.Reports = "reports"
	}
	if c.Paths.Cache == "" {
		c.Paths.Cache = ".cache"
	}

	if c.Render.FFmpegPath == "" {
		c.Render.FFmpegPath = "ffmpeg"
	}
	if c.Render.FFprobePath == "" {
		c.Render.FFprobePath = "ffprobe"
	}
	if c.Render.Preset == "" {
		c.Render.Preset = "veryfast"
	}
	if c.Render.CRF == 0 {
		c.Render.CRF = 18
	}

	if c.Watch.MaxConcurrent <= 0 {
		c.Watch.MaxConcurrent = 2
	}
	if c.Watch.SettleDelay <= 0 {
		c.Watch.SettleDelay = 500 * time.Millisecond
	}

	if c.Report.Format == "" {
		c.Report.Format = ReportText
	}
	switch c.Report.Format {
	case ReportText, ReportDocx, ReportBoth:
	default:
		return fmt.Errorf("unknown report format %q (want text, docx or both)", c.Report.Format)
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	return nil
}

// ProviderInfo resolves the configured provider entry.
func (c Config) ProviderInfo() (Provider, error) {
	return LookupProvider(c.Provider)
}
