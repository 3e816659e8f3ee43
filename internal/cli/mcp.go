package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	trustmcp "github.com/moltbot/trustwatch/internal/mcp"
	"github.com/moltbot/trustwatch/internal/trust"
)

func init() {
	rootCmd.AddCommand(mcpCmd)
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP tool server for agent integration",
	Long: "Runs trustwatch as an MCP (Model Context Protocol) server over stdio.\n" +
		"Exposes the trust pipeline as tools: evaluate, check_intel,\n" +
		"trust_session, untrust_session, observe, anomaly, block.\n" +
		"The threat-intel store hot-reloads when its file changes on disk.",
	RunE: runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	mcfg := trustmcp.Config{
		Engine: trust.Config{
			TrustedSessionsPath: cfg.TrustedSessionsPath(),
			ThreatIntelPath:     cfg.ThreatIntelPath(),
			BaselinePath:        cfg.BaselinePath(),
		},
	}
	if cfg.History {
		mcfg.HistoryPath = cfg.HistoryPath
	}

	srv, err := trustmcp.New(mcfg)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nShutting down MCP server...")
		cancel()
	}()

	fmt.Fprintln(os.Stderr, "trustwatch MCP server running on stdio")

	err = srv.Run(ctx)

	if cerr := srv.Close(); cerr != nil {
		fmt.Fprintf(os.Stderr, "shutdown: %v\n", cerr)
	}
	return err
}
