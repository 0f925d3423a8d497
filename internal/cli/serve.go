package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/aklujeats/aklujeats/internal/app"
	"github.com/aklujeats/aklujeats/internal/logger"
)

var (
	serveHTTPAddr string
	serveNoSweep  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the AklujEats web host",
	Long: `Start the web host: admin pages, the /api controllers, Swagger docs
under /swagger and static files. The stale order sweep runs in the background
unless --no-sweep is given.

The host runs until it receives SIGINT or SIGTERM.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveHTTPAddr, "http-addr", "a", "", "HTTP listen address (overrides config file)")
	serveCmd.Flags().BoolVar(&serveNoSweep, "no-sweep", false, "Do not run the stale order sweep")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveHTTPAddr != "" {
		cfg.Server.HTTPAddr = serveHTTPAddr
	}
	if serveNoSweep {
		cfg.Scheduler.StaleOrderSweep = ""
	}

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	host, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to build web host: %w", err)
	}

	fmt.Printf("%s🚀 Starting AklujEats%s\n", HeaderStyle, Reset)
	fmt.Printf("%s====================%s\n", DimStyle, Reset)
	fmt.Println(FormatLabelValue("Environment:", cfg.Environment))
	fmt.Println(FormatLabelValue("HTTP:", cfg.Server.HTTPAddr))
	if cfg.Server.TLSEnabled() {
		fmt.Println(FormatLabelValue("HTTPS:", cfg.Server.HTTPSAddr))
	}
	fmt.Println(FormatLabelValue("Database:", cfg.SQLDatabase.Provider))
	fmt.Println(FormatLabelValue("API docs:", "/swagger/index.html"))
	fmt.Println()
	fmt.Println(FormatDim("Press Ctrl+C to stop the server"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := host.Run(ctx); err != nil {
		return err
	}

	logger.Info("AklujEats stopped")
	return nil
}
