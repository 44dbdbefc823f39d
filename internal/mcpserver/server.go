// Package mcpserver exposes the running assistant to MCP clients over
// stdio: current state, saved work, and on-demand scheduling.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/vthunder/deskmate/internal/automation"
	"github.com/vthunder/deskmate/internal/autosave"
	"github.com/vthunder/deskmate/internal/schedule"
)

// Server wires assistant internals into MCP tools. State comes from the
// files the daemon maintains, so the tools work from any process.
type Server struct {
	statePath string
	saves     *autosave.Store
	sched     *schedule.Scheduler
}

func New(statePath string, saves *autosave.Store, sched *schedule.Scheduler) *Server {
	return &Server{statePath: statePath, saves: saves, sched: sched}
}

// MCPServer builds the stdio server with all tools registered.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer(
		"deskmate",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	srv.AddTool(statusTool(), s.handleStatus)
	srv.AddTool(autosavesTool(), s.handleAutosaves)
	srv.AddTool(clearAutosavesTool(), s.handleClearAutosaves)
	srv.AddTool(scheduleTool(), s.handleSchedule)

	return srv
}

// ServeStdio blocks serving MCP requests on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.MCPServer())
}

func statusTool() mcp.Tool {
	return mcp.NewTool("deskmate_status",
		mcp.WithDescription("Assistant state as last published by the running daemon: focus mode, night mode, work intensity, last break and last detected meeting."),
	)
}

func (s *Server) handleStatus(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := automation.ReadStatus(s.statePath)
	if err != nil {
		return mcp.NewToolResultError("no published status; start the daemon with 'deskmate run'"), nil
	}
	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding status: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func autosavesTool() mcp.Tool {
	return mcp.NewTool("deskmate_autosaves",
		mcp.WithDescription("List auto-saved work snippets captured on window switches, oldest first."),
	)
}

func (s *Server) handleAutosaves(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries := s.saves.List()
	if len(entries) == 0 {
		return mcp.NewToolResultText("No auto-saved work."), nil
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding autosaves: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func clearAutosavesTool() mcp.Tool {
	return mcp.NewTool("deskmate_clear_autosaves",
		mcp.WithDescription("Delete all auto-saved work snippets."),
	)
}

func (s *Server) handleClearAutosaves(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.saves.Clear(); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("clearing autosaves: %v", err)), nil
	}
	return mcp.NewToolResultText("Cleared."), nil
}

func scheduleTool() mcp.Tool {
	return mcp.NewTool("deskmate_schedule",
		mcp.WithDescription("Schedule a calendar event from free text, e.g. 'meet tomorrow at 3pm to discuss the roadmap'."),
		mcp.WithString("event",
			mcp.Required(),
			mcp.Description("Free-text event description including date, time and purpose"),
		),
	)
}

func (s *Server) handleSchedule(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := req.Params.Arguments.(map[string]any)
	event, _ := args["event"].(string)
	if event == "" {
		return mcp.NewToolResultError("event is required"), nil
	}

	source, err := s.sched.Schedule(ctx, event)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scheduling failed: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Scheduled via %s: %s", source, event)), nil
}
