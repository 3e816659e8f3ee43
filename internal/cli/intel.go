package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/moltbot/trustwatch/internal/intel"
)

var (
	intelReason   string
	intelSeverity string
)

func init() {
	rootCmd.AddCommand(intelCmd)
	intelCmd.AddCommand(intelAddPatternCmd)
	intelCmd.AddCommand(intelBlockIPCmd)
	intelCmd.AddCommand(intelBlockDomainCmd)
	intelCmd.AddCommand(intelTestCmd)

	intelAddPatternCmd.Flags().StringVarP(&intelReason, "reason", "r", "", "Why the pattern is a threat (required)")
	intelAddPatternCmd.Flags().StringVar(&intelSeverity, "severity", "high", "Severity grade (low|medium|high|critical)")
	intelAddPatternCmd.MarkFlagRequired("reason")
}

var intelCmd = &cobra.Command{
	Use:   "intel",
	Short: "Manage custom threat signatures",
}

var intelAddPatternCmd = &cobra.Command{
	Use:   "add-pattern <regex>",
	Short: "Add a custom regex threat pattern",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newEngine()
		if err != nil {
			return err
		}
		if err := engine.AddThreatPattern(args[0], intelReason, intel.Severity(intelSeverity)); err != nil {
			return err
		}
		fmt.Printf("added pattern: %s (%s)\n", args[0], intelSeverity)
		return nil
	},
}

var intelBlockIPCmd = &cobra.Command{
	Use:   "block-ip <ip>",
	Short: "Block an IP address literal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newEngine()
		if err != nil {
			return err
		}
		if err := engine.BlockIP(args[0]); err != nil {
			return err
		}
		fmt.Printf("blocked ip: %s\n", args[0])
		return nil
	},
}

var intelBlockDomainCmd = &cobra.Command{
	Use:   "block-domain <domain>",
	Short: "Block a domain literal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newEngine()
		if err != nil {
			return err
		}
		if err := engine.BlockDomain(args[0]); err != nil {
			return err
		}
		fmt.Printf("blocked domain: %s\n", args[0])
		return nil
	},
}

var intelTestCmd = &cobra.Command{
	Use:   "test [text...]",
	Short: "Match text against the threat signature set",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newEngine()
		if err != nil {
			return err
		}
		m := engine.CheckThreatIntel(strings.Join(args, " "))
		if m == nil {
			fmt.Println("no match")
			return nil
		}
		fmt.Printf("match: %s\n", m.Reason)
		fmt.Printf("pattern: %s\n", m.Pattern)
		fmt.Printf("severity: %s\n", m.Severity)
		return nil
	},
}
