package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/moltbot/trustwatch/internal/baseline"
)

var (
	observeSession string
	observeCommand string
	observePath    string
	observeHost    string
)

func init() {
	rootCmd.AddCommand(observeCmd)
	rootCmd.AddCommand(anomalyCmd)

	for _, c := range []*cobra.Command{observeCmd, anomalyCmd} {
		c.Flags().StringVarP(&observeSession, "session", "s", "", "Agent session identifier (required)")
		c.Flags().StringVarP(&observeCommand, "command", "c", "", "Observed command")
		c.Flags().StringVarP(&observePath, "path", "p", "", "Observed file path")
		c.Flags().StringVar(&observeHost, "host", "", "Observed network host")
		c.MarkFlagRequired("session")
	}
}

var observeCmd = &cobra.Command{
	Use:   "observe",
	Short: "Record an action into a session's behavioral baseline",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newEngine()
		if err != nil {
			return err
		}
		act := baseline.Activity{Command: observeCommand, Path: observePath, Host: observeHost}
		if err := engine.ObserveActivity(observeSession, act); err != nil {
			return err
		}
		// One-shot invocations would rarely hit the amortized save
		// threshold, so persist explicitly.
		if err := engine.FlushBaseline(); err != nil {
			return err
		}
		fmt.Printf("observed: session %s now has %d actions\n", observeSession, engine.BaselineActions(observeSession))
		return nil
	},
}

var anomalyCmd = &cobra.Command{
	Use:   "anomaly",
	Short: "Check an activity against a session's behavioral baseline",
	Long: "Compares the given activity with the session's recorded baseline and\n" +
		"reports unusual commands, paths, hosts, or activity hours. Sessions\n" +
		"with fewer than 50 observed actions report nothing.",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newEngine()
		if err != nil {
			return err
		}
		act := baseline.Activity{Command: observeCommand, Path: observePath, Host: observeHost}
		report := engine.CheckAnomaly(observeSession, act)
		if report == nil {
			fmt.Println("no anomalies (or insufficient baseline data)")
			return nil
		}
		fmt.Printf("baseline actions: %d\n", report.BaselineActions)
		for _, a := range report.Anomalies {
			fmt.Println(a)
		}
		return nil
	},
}
