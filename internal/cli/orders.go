package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/aklujeats/aklujeats/internal/models"
	"github.com/aklujeats/aklujeats/internal/services"
	"github.com/aklujeats/aklujeats/internal/shared"
	"github.com/aklujeats/aklujeats/internal/web"
)

var (
	ordersStatus   string
	ordersLimit    int
	sweepOlderThan time.Duration
)

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "Inspect and maintain orders",
}

var ordersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent orders",
	RunE:  runOrdersList,
}

var ordersSweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Cancel placed orders nobody accepted in time",
	Long: `Run the stale order sweep once. Placed orders older than --older-than
(default: orders.auto_cancel_after from the config) are cancelled.`,
	RunE: runOrdersSweep,
}

func init() {
	ordersListCmd.Flags().StringVarP(&ordersStatus, "status", "s", "", "Only orders in this status")
	ordersListCmd.Flags().IntVarP(&ordersLimit, "limit", "l", 20, "Limit number of results")
	ordersSweepCmd.Flags().DurationVar(&sweepOlderThan, "older-than", 0, "Cancel placed orders older than this")

	ordersCmd.AddCommand(ordersListCmd)
	ordersCmd.AddCommand(ordersSweepCmd)
}

func runOrdersList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if ordersStatus != "" && !models.OrderStatus(ordersStatus).Valid() {
		return fmt.Errorf("invalid status: %s", ordersStatus)
	}

	database, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer database.Disconnect(ctx)

	orders, total, err := services.NewOrderService(database).List(ctx, shared.OrderFilter{Status: ordersStatus}, 1, ordersLimit)
	if err != nil {
		return fmt.Errorf("failed to list orders: %w", err)
	}

	if len(orders) == 0 {
		fmt.Printf("%sNo orders found.%s\n", WarningStyle, Reset)
		return nil
	}

	fmt.Printf("%s🧾 Orders%s %s\n", HeaderStyle, Reset, FormatMeta(fmt.Sprintf("(%d of %d)", len(orders), total)))
	fmt.Printf("%s=========%s\n", DimStyle, Reset)
	fmt.Println()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%sID\tCUSTOMER\tSTATUS\tPAYMENT\tTOTAL\tPLACED%s\n", LabelStyle, Reset)
	fmt.Fprintf(w, "%s──\t────────\t──────\t───────\t─────\t──────%s\n", DimStyle, Reset)
	for _, order := range orders {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			FormatMeta(order.ID),
			FormatValue(order.CustomerName),
			order.Status,
			order.PaymentStatus,
			web.FormatRupees(order.TotalPaise),
			FormatMeta(order.CreatedAt.Local().Format("2006-01-02 15:04")),
		)
	}
	return w.Flush()
}

func runOrdersSweep(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	olderThan := sweepOlderThan
	if olderThan == 0 {
		olderThan = cfg.Orders.AutoCancelAfter
	}
	if olderThan <= 0 {
		return fmt.Errorf("stale order sweep is disabled; pass --older-than or set orders.auto_cancel_after")
	}

	database, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer database.Disconnect(ctx)

	cancelled, err := services.NewOrderService(database).SweepStale(ctx, olderThan)
	if err != nil {
		return fmt.Errorf("sweep failed after cancelling %d orders: %w", cancelled, err)
	}

	fmt.Println(FormatCountLabel("Cancelled stale orders:", cancelled))
	return nil
}
