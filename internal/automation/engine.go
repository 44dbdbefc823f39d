// Package automation runs the decision rules: focus mode, break reminders,
// night mode, auto-save, and meeting scheduling. Each rule is a scheduled
// job over the latest activity snapshot; slow work stays inside the job and
// overlapping runs of the same rule are skipped.
package automation

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/vthunder/deskmate/internal/autosave"
	"github.com/vthunder/deskmate/internal/config"
	"github.com/vthunder/deskmate/internal/decisions"
	"github.com/vthunder/deskmate/internal/effectors"
	"github.com/vthunder/deskmate/internal/logging"
	"github.com/vthunder/deskmate/internal/schedule"
	"github.com/vthunder/deskmate/internal/snapshot"
)

const (
	focusInterval    = "@every 60s"
	breakInterval    = "@every 300s"
	nightInterval    = "@every 300s"
	autosaveInterval = "@every 10s"
	meetingInterval  = "@every 10s"

	tickTimeout = 90 * time.Second
)

// Engine owns the rule state and the job scheduler.
type Engine struct {
	cfg    config.Config
	reader *snapshot.Reader
	system *effectors.System
	saves  *autosave.Store
	sched  *schedule.Scheduler
	log    *decisions.Log
	cron   *cron.Cron
	now    func() time.Time

	mu             sync.Mutex
	watcher        *snapshot.Watcher
	focusActive    bool
	focusManual    bool
	focusStart     time.Time
	nonCodingStart time.Time
	lastBreak      time.Time
	nightActive    bool
	intensityScore float64
	lastWindow     string
	lastMeeting    string
}

// New wires an engine. sched may be nil to disable meeting scheduling.
func New(cfg config.Config, reader *snapshot.Reader, system *effectors.System,
	saves *autosave.Store, sched *schedule.Scheduler, log *decisions.Log) *Engine {
	return &Engine{
		cfg:    cfg,
		reader: reader,
		system: system,
		saves:  saves,
		sched:  sched,
		log:    log,
		now:    time.Now,
	}
}

// Start registers all rules and starts the scheduler.
func (e *Engine) Start() error {
	e.cron = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DiscardLogger),
		cron.Recover(cron.DefaultLogger),
	))

	jobs := []struct {
		spec string
		name string
		fn   func()
	}{
		{focusInterval, "focus", e.focusTick},
		{breakInterval, "breaks", e.breakTick},
		{nightInterval, "night", e.nightTick},
		{autosaveInterval, "autosave", e.autosaveTick},
		{meetingInterval, "meetings", e.meetingTick},
		{e.cfg.DailySummaryCron, "summary", e.summaryTick},
	}
	for _, job := range jobs {
		if job.spec == "" {
			continue
		}
		// Each tick republishes state for out-of-process readers.
		tick := job.fn
		if _, err := e.cron.AddFunc(job.spec, func() {
			tick()
			e.publishStatus()
		}); err != nil {
			return err
		}
		logging.Debug("automation", "registered rule %s (%s)", job.name, job.spec)
	}

	e.publishStatus()
	e.cron.Start()
	logging.Info("automation", "engine started with %d rules", len(jobs))
	return nil
}

// Stop halts the scheduler and waits for in-flight rules to finish.
func (e *Engine) Stop() {
	if e.cron == nil {
		return
	}
	<-e.cron.Stop().Done()
	logging.Info("automation", "engine stopped")
}

func (e *Engine) tickContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), tickTimeout)
}

func (e *Engine) record(entry decisions.Entry) {
	if err := e.log.Record(entry); err != nil {
		logging.Info("automation", "decision log write failed: %v", err)
	}
}
