package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vthunder/deskmate/internal/automation"
	"github.com/vthunder/deskmate/internal/autosave"
	"github.com/vthunder/deskmate/internal/chat"
	"github.com/vthunder/deskmate/internal/config"
	"github.com/vthunder/deskmate/internal/decisions"
	"github.com/vthunder/deskmate/internal/effectors"
	"github.com/vthunder/deskmate/internal/llm"
	"github.com/vthunder/deskmate/internal/logging"
	"github.com/vthunder/deskmate/internal/schedule"
	"github.com/vthunder/deskmate/internal/snapshot"
)

// app holds everything the commands can wire together.
type app struct {
	cfg    *config.Config
	reader *snapshot.Reader
	system *effectors.System
	saves  *autosave.Store
	sched  *schedule.Scheduler
	log    *decisions.Log
	llm    llm.Client
	engine *automation.Engine
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if err := godotenv.Load(); err == nil {
		logging.Debug("config", "loaded .env file")
	}

	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	return config.Load(path)
}

func buildApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.StatePath, 0o755); err != nil {
		return nil, fmt.Errorf("creating state dir: %w", err)
	}

	reader := snapshot.NewReader(cfg.CapturePath)
	runner := effectors.ExecRunner{}
	system := effectors.NewSystem(runner, cfg.BlockScript)

	saves, err := autosave.NewStore(filepath.Join(cfg.StatePath, "autosaves.json"))
	if err != nil {
		return nil, err
	}

	client := llm.NewOllama(llm.Config{
		Endpoint:   cfg.LLM.Endpoint,
		Model:      cfg.LLM.Model,
		Timeout:    time.Duration(cfg.LLM.TimeoutMs) * time.Millisecond,
		MaxRetries: cfg.LLM.MaxRetries,
	})

	sched := schedule.New(runner, client)
	log := decisions.New(cfg.StatePath)

	return &app{
		cfg:    cfg,
		reader: reader,
		system: system,
		saves:  saves,
		sched:  sched,
		log:    log,
		llm:    client,
		engine: automation.New(*cfg, reader, system, saves, sched, log),
	}, nil
}

func (a *app) chatEngine() (*chat.Engine, *chat.History, error) {
	history, err := chat.NewHistory(filepath.Join(a.cfg.StatePath, "chat.db"))
	if err != nil {
		return nil, nil, err
	}
	return chat.NewEngine(a.llm, history, a.reader, a.system), history, nil
}
