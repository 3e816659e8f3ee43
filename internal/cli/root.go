// Package cli implements the trustwatch command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/moltbot/trustwatch/internal/config"
	"github.com/moltbot/trustwatch/internal/trust"
)

var (
	cfgFile string
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:   "trustwatch",
	Short: "Trust and context engine for agent actions",
	Long: "Classifies proposed agent actions (shell commands, network calls, file\n" +
		"operations) into a trust level before execution, separating legitimate\n" +
		"user-driven automation from malicious or anomalous agent behavior.\n" +
		"Renders verdicts only; enforcement belongs to the calling runtime.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to config YAML (default <data-dir>/config.yaml)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newEngine constructs the engine from the loaded config and reports any
// store-load warnings on stderr.
func newEngine() (*trust.Engine, error) {
	e, err := trust.New(trust.Config{
		TrustedSessionsPath: cfg.TrustedSessionsPath(),
		ThreatIntelPath:     cfg.ThreatIntelPath(),
		BaselinePath:        cfg.BaselinePath(),
	})
	if err != nil {
		return nil, err
	}
	for _, w := range e.Warnings() {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	return e, nil
}
