package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/moltbot/trustwatch/internal/history"
	"github.com/moltbot/trustwatch/internal/model"
)

var (
	checkSession    string
	checkTranscript string
	checkFormat     string
	checkNoRecord   bool
)

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVarP(&checkSession, "session", "s", "", "Agent session identifier")
	checkCmd.Flags().StringVarP(&checkTranscript, "transcript", "t", "", "Path to the session transcript (JSONL)")
	checkCmd.Flags().StringVarP(&checkFormat, "format", "f", "text", "Output format (text|json)")
	checkCmd.Flags().BoolVar(&checkNoRecord, "no-record", false, "Skip recording the verdict in the history log")
}

var checkCmd = &cobra.Command{
	Use:   "check [command...]",
	Short: "Evaluate the trust level of a candidate command",
	Long: "Runs the full trust pipeline against a candidate command: threat-intel\n" +
		"matching, trusted-session lookup, and conversational-intent analysis.\n\n" +
		"Exit code 0 for trusted/verified, 1 for unverified/suspicious,\n" +
		"2 for malicious. Use as a pre-execution gate in agent hooks.",
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	engine, err := newEngine()
	if err != nil {
		return err
	}

	command := strings.Join(args, " ")
	res := engine.Evaluate(command, checkSession, checkTranscript)

	if cfg.History && !checkNoRecord {
		if hist, err := history.Open(cfg.HistoryPath); err == nil {
			if err := hist.Record(command, checkSession, res); err != nil {
				fmt.Fprintf(os.Stderr, "history: %v\n", err)
			}
			hist.Close()
		} else {
			fmt.Fprintf(os.Stderr, "history: %v\n", err)
		}
	}

	switch checkFormat {
	case "json":
		out, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	default:
		printResult(res)
	}

	switch res.Level {
	case model.Malicious:
		os.Exit(2)
	case model.Unverified, model.Suspicious:
		os.Exit(1)
	}
	return nil
}

func printResult(res model.Result) {
	fmt.Printf("trust level:     %s\n", res.Level)
	fmt.Printf("trusted session: %v\n", res.TrustedSession)
	fmt.Printf("user requested:  %v\n", res.UserRequested)
	if res.ThreatMatch != nil {
		fmt.Printf("threat match:    %s (%s severity)\n", res.ThreatMatch.Reason, res.ThreatMatch.Severity)
	}
	fmt.Printf("recommendation:  %s\n", res.Recommendation)
}
