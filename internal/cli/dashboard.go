package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aklujeats/aklujeats/internal/models"
	"github.com/aklujeats/aklujeats/internal/services"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Print the admin dashboard overview",
	Long:  `Print catalog and order counts and the current delivery agent workload.`,
	RunE:  runDashboard,
}

func runDashboard(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	database, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer database.Disconnect(ctx)

	dashboard := services.NewDashboardService(database)
	overview, err := dashboard.GetOverview(ctx)
	if err != nil {
		return fmt.Errorf("failed to load overview: %w", err)
	}
	workloads, err := dashboard.GetAgentWorkloads(ctx)
	if err != nil {
		return fmt.Errorf("failed to load agent workloads: %w", err)
	}

	fmt.Printf("%s📊 AklujEats Overview%s\n", HeaderStyle, Reset)
	fmt.Printf("%s====================%s\n", DimStyle, Reset)
	fmt.Println()
	fmt.Println(FormatCountLabel("Restaurants:", overview.Restaurants))
	fmt.Println(FormatCountLabel("Open restaurants:", overview.OpenRestaurants))
	fmt.Println(FormatCountLabel("Available items:", overview.AvailableItems))
	fmt.Println(FormatCountLabel("Active agents:", overview.ActiveAgents))
	fmt.Println()

	fmt.Printf("%sOrders by status:%s\n", SuccessStyle, Reset)
	fmt.Printf("%s─────────────────%s\n", DimStyle, Reset)
	for _, status := range models.OrderStatuses {
		fmt.Println(FormatCountLabel(fmt.Sprintf("  %-17s", status), overview.OrdersByStatus[status]))
	}
	fmt.Println()

	if len(workloads) == 0 {
		fmt.Printf("%sNo active delivery agents.%s\n", WarningStyle, Reset)
		return nil
	}

	fmt.Printf("%sAgent workload:%s\n", SuccessStyle, Reset)
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%sAGENT\tIN FLIGHT%s\n", LabelStyle, Reset)
	fmt.Fprintf(w, "%s─────\t─────────%s\n", DimStyle, Reset)
	for _, load := range workloads {
		fmt.Fprintf(w, "%s\t%s\n", FormatValue(load.Name), FormatCount(load.InFlight))
	}
	return w.Flush()
}
