package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Guest session management",
}

var sessionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the guest session, creating one if needed",
	Args:  cobra.NoArgs,
	RunE:  runSessionShow,
}

var sessionResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget the stored guest session",
	Long: `Forget the stored guest session. The next command that needs a
session creates a new one; ratings made with the old session are no
longer listed.`,
	Args: cobra.NoArgs,
	RunE: runSessionReset,
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionShowCmd)
	sessionCmd.AddCommand(sessionResetCmd)
}

func runSessionShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	token, err := a.Sessions.Token(ctx)
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(map[string]string{"session_id": token.ID, "expires_at": token.ExpiresAt})
		return nil
	}
	fmt.Printf("Session:  %s\n", token.ID)
	if token.ExpiresAt != "" {
		fmt.Printf("Expires:  %s\n", token.ExpiresAt)
	}
	return nil
}

func runSessionReset(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if err := a.Sessions.Invalidate(ctx); err != nil {
		return err
	}
	fmt.Println("Session cleared")
	return nil
}
