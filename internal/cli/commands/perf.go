package commands

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesboard-dev/mesboard/internal/cli/client"
	"github.com/mesboard-dev/mesboard/internal/cli/guard"
)

// NewPerfCmd creates the perf command group
func NewPerfCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "perf",
		Short: "Record and inspect production performance",
	}

	cmd.AddCommand(newPerfListCmd())
	cmd.AddCommand(newPerfAddCmd())

	return cmd
}

func newPerfListCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List production results, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPerfList(serverAlias)
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias from mesboard.yaml")

	return cmd
}

func runPerfList(serverAlias string) error {
	if _, err := requireSession(guard.Authenticated(), "perf ls"); err != nil {
		return err
	}

	server, err := getSelectedServer(serverAlias)
	if err != nil {
		return err
	}

	results, err := client.New(server.URL).ListProductionResults()
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Println("No production results recorded.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRODUCT\tPRODUCED\tDEFECTS\tOPERATOR\tSTART\tEND")
	fmt.Fprintln(w, "───────\t────────\t───────\t────────\t─────\t───")

	for _, r := range results {
		operator := r.OperatorName
		if operator == "" {
			operator = r.OperatorID
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\t%s\n",
			r.ProductName,
			r.ProducedQty,
			r.DefectQty,
			operator,
			r.StartTime,
			r.EndTime,
		)
	}

	w.Flush()

	return nil
}

func newPerfAddCmd() *cobra.Command {
	var serverAlias, orderID, operator, start, end, note string
	var produced, defects int

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a production result against a work order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPerfAdd(serverAlias, orderID, operator, start, end, note, produced, defects)
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias from mesboard.yaml")
	cmd.Flags().StringVar(&orderID, "order-id", "", "Work order ID (required)")
	cmd.Flags().StringVar(&operator, "operator", "", "Operator employee ID (required)")
	cmd.Flags().StringVar(&start, "start", "", "Work start time, RFC 3339 (required)")
	cmd.Flags().StringVar(&end, "end", "", "Work end time, RFC 3339 (required)")
	cmd.Flags().StringVar(&note, "note", "", "Optional note")
	cmd.Flags().IntVar(&produced, "produced", 0, "Produced quantity (required)")
	cmd.Flags().IntVar(&defects, "defects", 0, "Defect quantity")
	cmd.MarkFlagRequired("order-id")
	cmd.MarkFlagRequired("operator")
	cmd.MarkFlagRequired("start")
	cmd.MarkFlagRequired("end")
	cmd.MarkFlagRequired("produced")

	return cmd
}

func runPerfAdd(serverAlias, orderID, operator, start, end, note string, produced, defects int) error {
	if _, err := requireSession(guard.Authenticated(), "perf add"); err != nil {
		return err
	}

	startTime, err := time.Parse(time.RFC3339, start)
	if err != nil {
		return fmt.Errorf("invalid --start time: %w", err)
	}
	endTime, err := time.Parse(time.RFC3339, end)
	if err != nil {
		return fmt.Errorf("invalid --end time: %w", err)
	}

	server, err := getSelectedServer(serverAlias)
	if err != nil {
		return err
	}

	result, err := client.New(server.URL).CreateProductionResult(client.CreateResultRequest{
		WorkOrderID: orderID,
		ProducedQty: produced,
		DefectQty:   defects,
		StartTime:   startTime,
		EndTime:     endTime,
		OperatorID:  operator,
		Note:        note,
	})
	if err != nil {
		return err
	}

	fmt.Println("✓ Production result recorded")
	fmt.Printf("  Product:  %s\n", result.ProductName)
	fmt.Printf("  Produced: %d (defects: %d)\n", result.ProducedQty, result.DefectQty)

	return nil
}
