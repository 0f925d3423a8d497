package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aklujeats/aklujeats/internal/config"
	"github.com/aklujeats/aklujeats/internal/db"
	"github.com/aklujeats/aklujeats/internal/logger"
)

var (
	cfgFile string
	cfg     *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "aklujeats",
	Short: "AklujEats food delivery web host",
	Long: `AklujEats serves the restaurant catalog, ordering API and admin
dashboard for the AklujEats food delivery platform.

Run 'aklujeats init' to write a configuration file, 'aklujeats migrate up'
to create the schema and 'aklujeats serve' to start the web host.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// init writes the configuration, so there is nothing to load yet
		if cmd.Name() == "init" {
			return nil
		}

		if cfgFile == "" {
			cfgFile = config.GetConfigPath()
		}

		if !config.Exists(cfgFile) {
			return fmt.Errorf("configuration file not found at %s. Run 'aklujeats init' to create one", cfgFile)
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger.Init(logger.ParseLogLevel(cfg.Logging.Level), nil)
		return nil
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.aklujeats/config.yaml)")

	// Disable completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	// Add subcommands
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(adminCmd)
	rootCmd.AddCommand(ordersCmd)
	rootCmd.AddCommand(dashboardCmd)
}

// openDatabase builds and connects the configured store for one-shot commands.
// The caller disconnects it.
func openDatabase(ctx context.Context) (db.Database, error) {
	database, err := db.New(cfg.SQLConfig(), cfg.NoSQLConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}

	if err := database.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.Ping(ctx); err != nil {
		database.Disconnect(ctx)
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	return database, nil
}
