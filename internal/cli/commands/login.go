package commands

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mesboard-dev/mesboard/internal/auth"
	cliauth "github.com/mesboard-dev/mesboard/internal/cli/auth"
	"github.com/mesboard-dev/mesboard/internal/cli/client"
	"github.com/mesboard-dev/mesboard/internal/cli/session"
)

// NewLoginCmd creates the login command
func NewLoginCmd() *cobra.Command {
	var username, password, serverAlias string
	var remember bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with a Mesboard server",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Check for environment variables (useful for CI/CD)
			if username == "" {
				username = os.Getenv("MESBOARD_USERNAME")
			}
			if password == "" {
				password = os.Getenv("MESBOARD_PASSWORD")
			}

			server, err := getSelectedServer(serverAlias)
			if err != nil {
				return err
			}

			// Prompt for password if not provided via flag or env var
			if username != "" && password == "" {
				if term.IsTerminal(int(syscall.Stdin)) {
					fmt.Print("Password: ")
					bytePassword, err := term.ReadPassword(int(syscall.Stdin))
					if err != nil {
						return fmt.Errorf("failed to read password: %w", err)
					}
					password = string(bytePassword)
					fmt.Println() // New line after password input
				}
			}

			mgr, err := newSessionManager()
			if err != nil {
				return err
			}

			fmt.Printf("Logging in to %s (%s)...\n", server.Alias, server.URL)

			return runLogin(loginOptions{
				APIClient: client.New(server.URL),
				Sessions:  mgr,
				Tokens:    cliauth.Default,
				Username:  username,
				Password:  password,
				Remember:  remember,
			})
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username (or set MESBOARD_USERNAME)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set MESBOARD_PASSWORD, will prompt if not provided)")
	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias from mesboard.yaml")
	cmd.Flags().BoolVar(&remember, "remember", false, "Keep the session across restarts")

	return cmd
}

// loginOptions carries the resolved inputs and dependencies for a login
// attempt, so the flow can be exercised without a real keyring or server
type loginOptions struct {
	APIClient *client.Client
	Sessions  *session.Manager
	Tokens    cliauth.TokenStore
	Username  string
	Password  string
	Remember  bool
}

// runLogin validates the credentials locally, authenticates against the
// server and records the session. Empty fields fail before anything is
// sent over the wire.
func runLogin(opts loginOptions) error {
	if opts.Username == "" || opts.Password == "" {
		return fmt.Errorf("username and password are required (use --username/--password flags or MESBOARD_USERNAME/MESBOARD_PASSWORD env vars)")
	}

	loginResp, err := opts.APIClient.Login(opts.Username, opts.Password)
	if err != nil {
		switch {
		case errors.Is(err, client.ErrInvalidCredentials):
			return fmt.Errorf("login failed: %w", err)
		case errors.Is(err, client.ErrAccountDisabled):
			return fmt.Errorf("login failed: %w. Ask an administrator to activate your account", err)
		case errors.Is(err, client.ErrServiceUnavailable):
			return fmt.Errorf("login failed: %w", err)
		default:
			return fmt.Errorf("login failed: %w", err)
		}
	}

	// Save token
	if err := opts.Tokens.SaveToken(opts.APIClient.BaseURL(), loginResp.Token); err != nil {
		return fmt.Errorf("failed to save authentication token: %w", err)
	}

	// Record the session; the persisted record is written before the
	// in-memory state flips to authenticated
	role := auth.ParseRole(loginResp.User.Role)
	if err := opts.Sessions.Login(loginResp.User.ID, role, opts.Remember); err != nil {
		return fmt.Errorf("failed to record session: %w", err)
	}

	fmt.Println("✓ Login successful!")
	fmt.Printf("  User: %s (%s)\n", loginResp.User.Name, loginResp.User.Username)
	if role.IsAdmin() {
		fmt.Println("  Role: Admin")
	}
	if opts.Remember {
		fmt.Println("  Session will persist across restarts")
	}

	return nil
}
