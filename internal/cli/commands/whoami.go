package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesboard-dev/mesboard/internal/cli/client"
	"github.com/mesboard-dev/mesboard/internal/cli/guard"
)

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the currently signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWhoami(serverAlias)
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias from mesboard.yaml")

	return cmd
}

func runWhoami(serverAlias string) error {
	if _, err := requireSession(guard.Authenticated(), "whoami"); err != nil {
		return err
	}

	server, err := getSelectedServer(serverAlias)
	if err != nil {
		return err
	}

	user, err := client.New(server.URL).Me()
	if err != nil {
		return err
	}

	fmt.Printf("User:       %s (%s)\n", user.Name, user.Username)
	fmt.Printf("Employee:   %s\n", user.EmployeeID)
	if user.Department != "" {
		fmt.Printf("Department: %s / %s\n", user.Department, user.Position)
	}
	fmt.Printf("Role:       %s\n", user.Role)
	fmt.Printf("Server:     %s (%s)\n", server.Alias, server.URL)

	return nil
}
