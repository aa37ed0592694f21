package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesboard-dev/mesboard/internal/auth"
	"github.com/mesboard-dev/mesboard/internal/cli/client"
	"github.com/mesboard-dev/mesboard/internal/cli/guard"
)

// NewOrdersCmd creates the orders command group
func NewOrdersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Manage work orders",
	}

	cmd.AddCommand(newOrdersListCmd())
	cmd.AddCommand(newOrdersAddCmd())
	cmd.AddCommand(newOrdersRemoveCmd())

	return cmd
}

func newOrdersListCmd() *cobra.Command {
	var serverAlias, keyword, status string
	var page int

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List work orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrdersList(serverAlias, keyword, status, page)
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias from mesboard.yaml")
	cmd.Flags().StringVar(&keyword, "keyword", "", "Filter by product name")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status (PENDING, IN_PROGRESS, COMPLETED)")
	cmd.Flags().IntVar(&page, "page", 1, "Page number")

	return cmd
}

func runOrdersList(serverAlias, keyword, status string, page int) error {
	if _, err := requireSession(guard.Authenticated(), "orders ls"); err != nil {
		return err
	}

	server, err := getSelectedServer(serverAlias)
	if err != nil {
		return err
	}

	result, err := client.New(server.URL).ListWorkOrders(client.ListWorkOrdersParams{
		Keyword: keyword,
		Status:  status,
		Page:    page,
	})
	if err != nil {
		return err
	}

	if len(result.Orders) == 0 {
		fmt.Println("No work orders found.")
		return nil
	}

	fmt.Printf("Work orders on %s (page %d, %d total):\n\n", server.Alias, result.Page, result.Total)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ORDER NO\tPRODUCT\tPLANNED\tCOMPLETED\tSTATUS\tSTART\tDUE")
	fmt.Fprintln(w, "────────\t───────\t───────\t─────────\t──────\t─────\t───")

	for _, order := range result.Orders {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\t%s\n",
			order.OrderNo,
			order.ProductName,
			order.PlannedQty,
			order.CompletedQty,
			order.Status,
			order.StartDate,
			order.DueDate,
		)
	}

	w.Flush()

	return nil
}

func newOrdersAddCmd() *cobra.Command {
	var serverAlias, orderNo, product, startDate string
	var qty int

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a new work order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrdersAdd(serverAlias, orderNo, product, startDate, qty)
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias from mesboard.yaml")
	cmd.Flags().StringVar(&orderNo, "order-no", "", "Work order number (required)")
	cmd.Flags().StringVar(&product, "product", "", "Product name (required)")
	cmd.Flags().StringVar(&startDate, "start-date", "", "Production start date, YYYY-MM-DD (required)")
	cmd.Flags().IntVar(&qty, "qty", 0, "Planned quantity (required)")
	cmd.MarkFlagRequired("order-no")
	cmd.MarkFlagRequired("product")
	cmd.MarkFlagRequired("start-date")
	cmd.MarkFlagRequired("qty")

	return cmd
}

func runOrdersAdd(serverAlias, orderNo, product, startDate string, qty int) error {
	if _, err := requireSession(guard.Authenticated(), "orders add"); err != nil {
		return err
	}

	server, err := getSelectedServer(serverAlias)
	if err != nil {
		return err
	}

	order, err := client.New(server.URL).CreateWorkOrder(client.CreateWorkOrderRequest{
		OrderNo:     orderNo,
		ProductName: product,
		PlannedQty:  qty,
		StartDate:   startDate,
	})
	if err != nil {
		return err
	}

	fmt.Println("✓ Work order created")
	fmt.Printf("  Order:  %s (%s)\n", order.OrderNo, order.ProductName)
	fmt.Printf("  Plan:   %d units, %s → %s\n", order.PlannedQty, order.StartDate, order.DueDate)

	return nil
}

func newOrdersRemoveCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:     "rm <order-id>",
		Aliases: []string{"remove", "delete"},
		Short:   "Delete a work order and its production results (admin only)",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrdersRemove(serverAlias, args[0])
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias from mesboard.yaml")

	return cmd
}

func runOrdersRemove(serverAlias, orderID string) error {
	if _, err := requireSession(guard.HasRole(auth.RoleAdmin), "orders rm"); err != nil {
		return err
	}

	server, err := getSelectedServer(serverAlias)
	if err != nil {
		return err
	}

	if err := client.New(server.URL).DeleteWorkOrder(orderID); err != nil {
		return err
	}

	fmt.Printf("✓ Work order %s deleted\n", orderID)
	return nil
}
