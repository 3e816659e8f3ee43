// Package mcp exposes the trust engine to agent runtimes over the Model
// Context Protocol on stdio.
package mcp

import (
	"context"
	"fmt"
	"os"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/moltbot/trustwatch/internal/history"
	"github.com/moltbot/trustwatch/internal/intel"
	"github.com/moltbot/trustwatch/internal/trust"
)

// Config holds MCP server configuration.
type Config struct {
	Engine      trust.Config
	HistoryPath string // empty disables the evaluation history log
}

// Server wraps the MCP SDK server around the trust engine.
type Server struct {
	mcpServer *mcpsdk.Server
	engine    *trust.Engine
	hist      *history.Log
}

// New creates an MCP server with a loaded engine and registered tools.
// Store-load warnings go to stderr; only unrecoverable setup fails.
func New(cfg Config) (*Server, error) {
	engine, err := trust.New(cfg.Engine)
	if err != nil {
		return nil, fmt.Errorf("failed to create trust engine: %w", err)
	}
	for _, w := range engine.Warnings() {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	var hist *history.Log
	if cfg.HistoryPath != "" {
		hist, err = history.Open(cfg.HistoryPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open history: %w", err)
		}
	}

	s := &Server{engine: engine, hist: hist}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    "trustwatch",
			Version: "0.1.0",
		},
		nil,
	)

	s.registerTools()
	return s, nil
}

// Run serves MCP on stdio and hot-reloads the threat-intel store when its
// file changes. Blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	watcher, err := intel.NewWatcher(s.engine.IntelStore())
	if err != nil {
		fmt.Fprintf(os.Stderr, "intel watcher disabled: %v\n", err)
	} else {
		go func() {
			if err := watcher.Run(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "intel watcher stopped: %v\n", err)
			}
		}()
	}

	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// Close flushes the baseline and releases the history log.
func (s *Server) Close() error {
	if err := s.engine.FlushBaseline(); err != nil {
		return err
	}
	if s.hist != nil {
		return s.hist.Close()
	}
	return nil
}

// registerTools adds all trustwatch tools to the MCP server.
func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "trustwatch_evaluate",
		Description: "Evaluate the trust level of a candidate agent command before execution. Returns a verdict (trusted/verified/unverified/suspicious/malicious) and a recommendation.",
	}, s.handleEvaluate)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "trustwatch_check_intel",
		Description: "Check text against known threat signatures (built-in and custom patterns, blocked IPs and domains) without rendering a full verdict.",
	}, s.handleCheckIntel)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "trustwatch_trust_session",
		Description: "Mark a session ID as the user's own trusted agent session.",
	}, s.handleTrustSession)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "trustwatch_untrust_session",
		Description: "Remove trust from a session ID.",
	}, s.handleUntrustSession)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "trustwatch_observe",
		Description: "Record an observed action into a session's behavioral baseline.",
	}, s.handleObserve)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "trustwatch_anomaly",
		Description: "Check an activity against a session's behavioral baseline. Reports nothing until the session has enough history.",
	}, s.handleAnomaly)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "trustwatch_block",
		Description: "Add a custom threat signature: a regex pattern with reason and severity, a blocked IP, or a blocked domain.",
	}, s.handleBlock)
}
