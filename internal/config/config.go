package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Defaults for the automation thresholds. These mirror the behavior the
// assistant shipped with and are overridable via deskmate.yaml or env.
const (
	DefaultFocusThresholdMinutes = 30
	DefaultBreakIntervalMinutes  = 25
	DefaultNightModeStartHour    = 20
	DefaultNightModeEndHour      = 7
	DefaultNightBrightness       = 4
	DefaultDayBrightness         = 12
	DefaultAutoSaveIntervalSec   = 300
	DefaultDailySummaryCron      = "0 21 * * *"
)

// Config holds all deskmate settings.
type Config struct {
	// StatePath is where deskmate keeps its own files (auto-saves, logs, chat db).
	StatePath string `yaml:"state_path"`
	// CapturePath is the directory the external capture process writes
	// live_output.json and prediction_output.json into.
	CapturePath string `yaml:"capture_path"`
	// CaptureProcess is the process name of the external capture tool,
	// used only for health reporting.
	CaptureProcess string `yaml:"capture_process"`

	FocusThresholdMinutes int      `yaml:"focus_threshold_minutes"`
	BreakIntervalMinutes  int      `yaml:"break_interval_minutes"` // informational
	NightModeStartHour    int      `yaml:"night_mode_start_hour"`
	NightModeEndHour      int      `yaml:"night_mode_end_hour"`
	NightBrightness       int      `yaml:"night_brightness_level"`
	DayBrightness         int      `yaml:"day_brightness_level"`
	NightDarkMode         bool     `yaml:"night_mode_dark_mode"`
	DistractionSites      []string `yaml:"distraction_sites"`
	AutoSaveIntervalSec   int      `yaml:"auto_save_interval_seconds"` // informational
	DailySummaryCron      string   `yaml:"daily_summary_cron"`

	// BlockScript is the helper invoked (via sudo) to edit the hosts file.
	BlockScript string `yaml:"block_script"`

	LLM     LLMConfig     `yaml:"llm"`
	Discord DiscordConfig `yaml:"discord"`
}

// LLMConfig configures the Ollama text-generation endpoint.
type LLMConfig struct {
	Endpoint   string `yaml:"endpoint"`
	Model      string `yaml:"model"`
	TimeoutMs  int    `yaml:"timeout_ms"`
	MaxRetries int    `yaml:"max_retries"`
}

// DiscordConfig configures the optional Discord chat channel.
type DiscordConfig struct {
	Token     string `yaml:"token"`
	ChannelID string `yaml:"channel_id"`
	OwnerID   string `yaml:"owner_id"`
}

// Default returns a Config populated with defaults.
func Default() *Config {
	return &Config{
		StatePath:             "state",
		CapturePath:           "output",
		CaptureProcess:        "activity_analyzer",
		FocusThresholdMinutes: DefaultFocusThresholdMinutes,
		BreakIntervalMinutes:  DefaultBreakIntervalMinutes,
		NightModeStartHour:    DefaultNightModeStartHour,
		NightModeEndHour:      DefaultNightModeEndHour,
		NightBrightness:       DefaultNightBrightness,
		DayBrightness:         DefaultDayBrightness,
		DistractionSites: []string{
			"facebook.com", "twitter.com", "instagram.com",
			"youtube.com", "reddit.com", "tiktok.com", "m.youtube.com",
		},
		AutoSaveIntervalSec: DefaultAutoSaveIntervalSec,
		DailySummaryCron:    DefaultDailySummaryCron,
		BlockScript:         "./block_sites.sh",
		LLM: LLMConfig{
			Endpoint:   "http://localhost:11434",
			Model:      "llama3.2",
			TimeoutMs:  30000,
			MaxRetries: 1,
		},
	}
}

// Load reads a YAML config file, applies it over the defaults, then applies
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("DESKMATE_STATE_PATH"); v != "" {
		c.StatePath = v
	}
	if v := os.Getenv("DESKMATE_CAPTURE_PATH"); v != "" {
		c.CapturePath = v
	}
	if v := os.Getenv("DESKMATE_FOCUS_THRESHOLD_MIN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.FocusThresholdMinutes = n
		}
	}
	if v := os.Getenv("OLLAMA_ENDPOINT"); v != "" {
		c.LLM.Endpoint = v
	}
	if v := os.Getenv("OLLAMA_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("DISCORD_TOKEN"); v != "" {
		c.Discord.Token = v
	}
	if v := os.Getenv("DISCORD_CHANNEL_ID"); v != "" {
		c.Discord.ChannelID = v
	}
	if v := os.Getenv("DISCORD_OWNER_ID"); v != "" {
		c.Discord.OwnerID = v
	}
}

func (c *Config) validate() error {
	if c.FocusThresholdMinutes <= 0 {
		return fmt.Errorf("focus_threshold_minutes must be positive, got %d", c.FocusThresholdMinutes)
	}
	if c.NightModeStartHour < 0 || c.NightModeStartHour > 23 {
		return fmt.Errorf("night_mode_start_hour out of range: %d", c.NightModeStartHour)
	}
	if c.NightModeEndHour < 0 || c.NightModeEndHour > 23 {
		return fmt.Errorf("night_mode_end_hour out of range: %d", c.NightModeEndHour)
	}
	return nil
}
