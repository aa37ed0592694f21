package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesboard-dev/mesboard/internal/cli/client"
	"github.com/mesboard-dev/mesboard/internal/cli/guard"
)

// NewDashCmd creates the dash command
func NewDashCmd() *cobra.Command {
	var serverAlias, date string

	cmd := &cobra.Command{
		Use:   "dash",
		Short: "Show the production dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDash(serverAlias, date)
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias from mesboard.yaml")
	cmd.Flags().StringVar(&date, "date", "", "Date to show, YYYY-MM-DD (defaults to today)")

	return cmd
}

func runDash(serverAlias, date string) error {
	if _, err := requireSession(guard.Authenticated(), "dash"); err != nil {
		return err
	}

	server, err := getSelectedServer(serverAlias)
	if err != nil {
		return err
	}

	apiClient := client.New(server.URL)

	summary, err := apiClient.GetDashboardSummary(date)
	if err != nil {
		return err
	}

	fmt.Printf("Production summary for %s:\n\n", summary.Date)
	fmt.Printf("  Planned:      %d\n", summary.PlannedQty)
	fmt.Printf("  Actual:       %d\n", summary.ActualQty)
	fmt.Printf("  Achievement:  %.1f%%\n", summary.AchievementRate)
	fmt.Printf("  Defect rate:  %.1f%%\n", summary.DefectRate)
	fmt.Printf("  Equipment:    %d/%d running\n", summary.ActiveEquipment, summary.TotalEquipment)

	equipment, err := apiClient.ListEquipment()
	if err != nil {
		return err
	}

	if len(equipment) == 0 {
		return nil
	}

	fmt.Println("\nEquipment:")
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tNAME\tLINE\tSTATUS\tOPERATION RATE")
	fmt.Fprintln(w, "────\t────\t────\t──────\t──────────────")

	for _, e := range equipment {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.1f%%\n",
			e.Code,
			e.Name,
			e.Line,
			e.Status,
			e.OperationRate,
		)
	}

	w.Flush()

	return nil
}
