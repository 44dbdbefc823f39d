package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vthunder/deskmate/internal/automation"
	"github.com/vthunder/deskmate/internal/logging"
	"github.com/vthunder/deskmate/internal/mcpserver"
	"github.com/vthunder/deskmate/internal/senses"
	"github.com/vthunder/deskmate/internal/snapshot"
)

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the automation daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd)
			if err != nil {
				return err
			}

			if a.cfg.CaptureProcess != "" && !snapshot.CaptureRunning(a.cfg.CaptureProcess) {
				logging.Warn("main", "capture process %q not running; rules will idle until it starts",
					a.cfg.CaptureProcess)
			}

			watcher := snapshot.NewWatcher(a.cfg.CapturePath, snapshot.DefaultStaleAfter)
			if err := watcher.Start(); err != nil {
				logging.Warn("main", "capture watcher unavailable: %v", err)
			} else {
				defer watcher.Stop()
				a.engine.SetWatcher(watcher)
			}

			if err := a.engine.Start(); err != nil {
				return err
			}
			defer a.engine.Stop()

			var discord *senses.DiscordChannel
			if a.cfg.Discord.Token != "" {
				engine, history, err := a.chatEngine()
				if err != nil {
					return err
				}
				defer history.Close()

				discord, err = senses.NewDiscordChannel(senses.DiscordConfig{
					Token:     a.cfg.Discord.Token,
					ChannelID: a.cfg.Discord.ChannelID,
					OwnerID:   a.cfg.Discord.OwnerID,
				}, engine)
				if err != nil {
					return err
				}
				if err := discord.Start(); err != nil {
					return err
				}
				defer discord.Stop()
			}

			logging.Info("main", "deskmate running, ctrl-c to stop")
			sig := make(chan os.Signal, 1)
			signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
			<-sig
			logging.Info("main", "shutting down")
			return nil
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show capture health and recent decisions",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd)
			if err != nil {
				return err
			}

			if a.cfg.CaptureProcess != "" {
				running := snapshot.CaptureRunning(a.cfg.CaptureProcess)
				fmt.Printf("capture process %q running: %v\n", a.cfg.CaptureProcess, running)
			}

			if st, err := automation.ReadStatus(a.cfg.StatePath); err == nil {
				fmt.Printf("focus mode: %v  night mode: %v  intensity: %.2f  (published %s)\n",
					st.FocusActive, st.NightActive, st.Intensity,
					st.UpdatedAt.Format(time.DateTime))
			} else {
				fmt.Println("no published engine state (daemon not running?)")
			}

			snap := a.reader.Read()
			if snap.Analyzed != nil {
				fmt.Printf("current activity: %s (confidence %.2f)\n",
					snap.Analyzed.Activity, snap.Analyzed.Confidence)
			} else {
				fmt.Println("current activity: unknown (no analyzed snapshot)")
			}
			if snap.ActiveWindow != "" {
				fmt.Printf("active window: %s\n", snap.ActiveWindow)
			}

			entries, err := a.log.Recent(10)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("no decisions recorded yet")
				return nil
			}
			fmt.Println("recent decisions:")
			for _, e := range entries {
				fmt.Printf("  %s  %-13s %s\n",
					e.Timestamp.Format(time.DateTime), e.Type, e.Summary)
			}
			return nil
		},
	}
}

func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat [message]",
		Short: "Talk to the assistant (interactive when no message given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd)
			if err != nil {
				return err
			}
			engine, history, err := a.chatEngine()
			if err != nil {
				return err
			}
			defer history.Close()

			respond := func(message string) error {
				ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
				defer cancel()
				reply, err := engine.Respond(ctx, message)
				if err != nil {
					return err
				}
				fmt.Println(reply)
				return nil
			}

			if len(args) > 0 {
				return respond(strings.Join(args, " "))
			}

			scanner := bufio.NewScanner(os.Stdin)
			fmt.Print("> ")
			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				if line == "exit" || line == "quit" {
					break
				}
				if line != "" {
					if err := respond(line); err != nil {
						fmt.Fprintln(os.Stderr, err)
					}
				}
				fmt.Print("> ")
			}
			return scanner.Err()
		},
	}
}

func autosavesCmd() *cobra.Command {
	var clear bool
	cmd := &cobra.Command{
		Use:   "autosaves",
		Short: "List or clear auto-saved work snippets",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd)
			if err != nil {
				return err
			}

			if clear {
				if err := a.saves.Clear(); err != nil {
					return err
				}
				fmt.Println("cleared")
				return nil
			}

			entries := a.saves.List()
			if len(entries) == 0 {
				fmt.Println("no auto-saved work")
				return nil
			}
			for _, e := range entries {
				fmt.Printf("%s  [%s -> %s]\n%s\n\n",
					e.Timestamp.Format(time.DateTime), e.FromWindow, e.ToWindow,
					logging.Truncate(e.Content, 300))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&clear, "clear", false, "delete all saved snippets")
	return cmd
}

func scheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule <event text>",
		Short: "Schedule a calendar event from free text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			source, err := a.sched.Schedule(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Printf("scheduled via %s\n", source)
			return nil
		},
	}
}

func mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve assistant tools over MCP stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd)
			if err != nil {
				return err
			}
			return mcpserver.New(a.cfg.StatePath, a.saves, a.sched).ServeStdio()
		},
	}
}
