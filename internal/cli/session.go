package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionTrustCmd)
	sessionCmd.AddCommand(sessionUntrustCmd)
	sessionCmd.AddCommand(sessionListCmd)
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage the trusted-session registry",
}

var sessionTrustCmd = &cobra.Command{
	Use:   "trust <session-id>",
	Short: "Mark a session as the user's own trusted agent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newEngine()
		if err != nil {
			return err
		}
		if err := engine.TrustSession(args[0]); err != nil {
			return err
		}
		fmt.Printf("trusted: %s\n", args[0])
		return nil
	},
}

var sessionUntrustCmd = &cobra.Command{
	Use:   "untrust <session-id>",
	Short: "Remove trust from a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newEngine()
		if err != nil {
			return err
		}
		if err := engine.UntrustSession(args[0]); err != nil {
			return err
		}
		fmt.Printf("untrusted: %s\n", args[0])
		return nil
	},
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List trusted session IDs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newEngine()
		if err != nil {
			return err
		}
		sessions := engine.TrustedSessions()
		if len(sessions) == 0 {
			fmt.Println("no trusted sessions")
			return nil
		}
		for _, id := range sessions {
			fmt.Println(id)
		}
		return nil
	},
}
