package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	cliauth "github.com/mesboard-dev/mesboard/internal/cli/auth"
)

// NewLogoutCmd creates the logout command
func NewLogoutCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear the local session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogout(serverAlias)
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias from mesboard.yaml")

	return cmd
}

// runLogout clears the persisted session from both media and removes the
// stored token. Running it while already signed out is harmless.
func runLogout(serverAlias string) error {
	mgr, err := newSessionManager()
	if err != nil {
		return err
	}

	if err := mgr.Logout(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	// Best effort: the session is already gone even if no server config
	// is around to locate the token
	if server, err := getSelectedServer(serverAlias); err == nil {
		if err := cliauth.DeleteToken(server.URL); err != nil {
			fmt.Printf("Warning: failed to remove stored token: %v\n", err)
		}
	}

	fmt.Println("✓ Logged out")
	return nil
}
