package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesboard-dev/mesboard/internal/auth"
	"github.com/mesboard-dev/mesboard/internal/cli/client"
	"github.com/mesboard-dev/mesboard/internal/cli/guard"
	"github.com/mesboard-dev/mesboard/internal/models"
)

// NewUsersCmd creates the users command group. Every subcommand is
// admin-only, mirroring the server-side access rules.
func NewUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage user accounts (admin only)",
	}

	cmd.AddCommand(newUsersListCmd())
	cmd.AddCommand(newUsersAddCmd())
	cmd.AddCommand(newUsersActivateCmd())
	cmd.AddCommand(newUsersDeactivateCmd())
	cmd.AddCommand(newUsersRemoveCmd())

	return cmd
}

func newUsersListCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List all accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUsersList(serverAlias)
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias from mesboard.yaml")

	return cmd
}

func runUsersList(serverAlias string) error {
	if _, err := requireSession(guard.HasRole(auth.RoleAdmin), "users ls"); err != nil {
		return err
	}

	server, err := getSelectedServer(serverAlias)
	if err != nil {
		return err
	}

	users, err := client.New(server.URL).ListUsers()
	if err != nil {
		return err
	}

	if len(users) == 0 {
		fmt.Println("No accounts found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tEMPLOYEE\tNAME\tUSERNAME\tROLE\tSTATUS")
	fmt.Fprintln(w, "──\t────────\t────\t────────\t────\t──────")

	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			u.ID,
			u.EmployeeID,
			u.Name,
			u.Username,
			u.Role,
			u.Status,
		)
	}

	w.Flush()

	return nil
}

func newUsersAddCmd() *cobra.Command {
	var serverAlias, employeeID, name, department, position, username, password, role string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a new account (starts inactive)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUsersAdd(serverAlias, client.CreateUserRequest{
				EmployeeID: employeeID,
				Name:       name,
				Department: department,
				Position:   position,
				Username:   username,
				Password:   password,
				Role:       role,
			})
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias from mesboard.yaml")
	cmd.Flags().StringVar(&employeeID, "employee-id", "", "Employee ID (required)")
	cmd.Flags().StringVar(&name, "name", "", "Full name (required)")
	cmd.Flags().StringVar(&department, "department", "", "Department (required)")
	cmd.Flags().StringVar(&position, "position", "", "Position (required)")
	cmd.Flags().StringVar(&username, "username", "", "Login username, at least 4 characters (required)")
	cmd.Flags().StringVar(&password, "password", "", "Password, at least 8 characters (required)")
	cmd.Flags().StringVar(&role, "role", "USER", "Role: ADMIN or USER")
	cmd.MarkFlagRequired("employee-id")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("department")
	cmd.MarkFlagRequired("position")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("password")

	return cmd
}

func runUsersAdd(serverAlias string, req client.CreateUserRequest) error {
	if _, err := requireSession(guard.HasRole(auth.RoleAdmin), "users add"); err != nil {
		return err
	}

	server, err := getSelectedServer(serverAlias)
	if err != nil {
		return err
	}

	user, err := client.New(server.URL).CreateUser(req)
	if err != nil {
		return err
	}

	fmt.Println("✓ Account created")
	fmt.Printf("  User:   %s (%s)\n", user.Name, user.Username)
	fmt.Printf("  Status: %s (activate with 'mesboard users activate %s')\n", user.Status, user.ID)

	return nil
}

func newUsersActivateCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:   "activate <user-id>",
		Short: "Activate an account so it can log in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUsersSetStatus(serverAlias, args[0], models.UserStatusActive)
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias from mesboard.yaml")

	return cmd
}

func newUsersDeactivateCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:   "deactivate <user-id>",
		Short: "Deactivate an account, blocking future logins",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUsersSetStatus(serverAlias, args[0], models.UserStatusInactive)
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias from mesboard.yaml")

	return cmd
}

func runUsersSetStatus(serverAlias, userID, status string) error {
	if _, err := requireSession(guard.HasRole(auth.RoleAdmin), "users status"); err != nil {
		return err
	}

	server, err := getSelectedServer(serverAlias)
	if err != nil {
		return err
	}

	user, err := client.New(server.URL).UpdateUserStatus(userID, status)
	if err != nil {
		return err
	}

	fmt.Printf("✓ Account %s is now %s\n", user.Username, user.Status)
	return nil
}

func newUsersRemoveCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:     "rm <user-id>",
		Aliases: []string{"remove", "delete"},
		Short:   "Delete an account",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUsersRemove(serverAlias, args[0])
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias from mesboard.yaml")

	return cmd
}

func runUsersRemove(serverAlias, userID string) error {
	if _, err := requireSession(guard.HasRole(auth.RoleAdmin), "users rm"); err != nil {
		return err
	}

	server, err := getSelectedServer(serverAlias)
	if err != nil {
		return err
	}

	if err := client.New(server.URL).DeleteUser(userID); err != nil {
		return err
	}

	fmt.Printf("✓ Account %s deleted\n", userID)
	return nil
}
