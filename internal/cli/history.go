package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/moltbot/trustwatch/internal/history"
)

var (
	historyLimit  int
	historyFormat string
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "How many entries to show")
	historyCmd.Flags().StringVarP(&historyFormat, "format", "f", "text", "Output format (text|json)")
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent trust evaluations",
	RunE: func(cmd *cobra.Command, args []string) error {
		hist, err := history.Open(cfg.HistoryPath)
		if err != nil {
			return err
		}
		defer hist.Close()

		entries, err := hist.Recent(historyLimit)
		if err != nil {
			return err
		}

		if historyFormat == "json" {
			out, err := json.MarshalIndent(entries, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		}

		if len(entries) == 0 {
			fmt.Println("no evaluations recorded")
			return nil
		}
		for _, e := range entries {
			session := e.SessionID
			if session == "" {
				session = "-"
			}
			fmt.Printf("%s  %-10s  %-12s  %s\n",
				e.CreatedAt.Format("2006-01-02 15:04:05"), e.Level, session, e.Command)
		}
		return nil
	},
}
