package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.FocusThresholdMinutes != 30 {
		t.Errorf("Expected focus threshold 30, got %d", cfg.FocusThresholdMinutes)
	}
	if cfg.NightModeStartHour != 20 || cfg.NightModeEndHour != 7 {
		t.Errorf("Expected night window 20-7, got %d-%d", cfg.NightModeStartHour, cfg.NightModeEndHour)
	}
	if len(cfg.DistractionSites) == 0 {
		t.Error("Expected default distraction sites")
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deskmate.yaml")
	content := `
focus_threshold_minutes: 45
night_mode_start_hour: 22
distraction_sites:
  - news.example.com
llm:
  model: qwen2.5:7b
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.FocusThresholdMinutes != 45 {
		t.Errorf("Expected focus threshold 45, got %d", cfg.FocusThresholdMinutes)
	}
	if cfg.NightModeStartHour != 22 {
		t.Errorf("Expected night start 22, got %d", cfg.NightModeStartHour)
	}
	if len(cfg.DistractionSites) != 1 || cfg.DistractionSites[0] != "news.example.com" {
		t.Errorf("Expected overridden site list, got %v", cfg.DistractionSites)
	}
	if cfg.LLM.Model != "qwen2.5:7b" {
		t.Errorf("Expected LLM model override, got %s", cfg.LLM.Model)
	}
	// Untouched fields keep defaults
	if cfg.NightModeEndHour != 7 {
		t.Errorf("Expected night end default 7, got %d", cfg.NightModeEndHour)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deskmate.yaml")
	if err := os.WriteFile(path, []byte("state_path: fromfile\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("DESKMATE_STATE_PATH", "fromenv")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.StatePath != "fromenv" {
		t.Errorf("Expected env to win, got %s", cfg.StatePath)
	}
}

func TestLoad_RejectsBadHours(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deskmate.yaml")
	if err := os.WriteFile(path, []byte("night_mode_start_hour: 25\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Expected error for out-of-range hour")
	}
}
