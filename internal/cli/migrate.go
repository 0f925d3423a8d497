package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aklujeats/aklujeats/internal/app"
	"github.com/aklujeats/aklujeats/internal/db"
	"github.com/aklujeats/aklujeats/internal/db/sqlstore"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage database migrations",
	Long:  `Apply, roll back or inspect the relational schema using golang-migrate.`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Run all pending migrations",
	Long:  `Apply all pending database migrations.`,
	RunE:  runMigrateUp,
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the last migration",
	RunE:  runMigrateDown,
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show current migration version",
	Long:  `Show the current database migration version.`,
	RunE:  runMigrateVersion,
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateVersionCmd)
}

func runMigrateUp(cmd *cobra.Command, args []string) error {
	fmt.Println("🔄 Running database migrations...")

	if cfg.SQLDatabase.Provider == "memory" {
		fmt.Println(FormatWarning("The memory provider has no schema, nothing to migrate"))
		return nil
	}

	if err := app.Migrate(cfg); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	fmt.Println(FormatSuccess("✅ Migrations completed successfully!"))
	return nil
}

func runMigrateDown(cmd *cobra.Command, args []string) error {
	provider := cfg.SQLDatabase.Provider
	if provider == "memory" {
		fmt.Println(FormatWarning("The memory provider has no schema, nothing to roll back"))
		return nil
	}

	conn, err := sqlstore.OpenDB(cfg.SQLConfig(), true)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := db.RollbackMigration(conn.DB, provider); err != nil {
		return err
	}

	fmt.Println(FormatSuccess("✅ Rolled back the last migration"))
	return nil
}

func runMigrateVersion(cmd *cobra.Command, args []string) error {
	provider := cfg.SQLDatabase.Provider
	if provider == "memory" {
		fmt.Println(FormatWarning("The memory provider has no schema"))
		return nil
	}

	conn, err := sqlstore.OpenDB(cfg.SQLConfig(), true)
	if err != nil {
		return err
	}
	defer conn.Close()

	version, dirty, ok, err := db.MigrationVersion(conn.DB, provider)
	if err != nil {
		return err
	}

	fmt.Printf("%s📊 Migration Status%s\n", HeaderStyle, Reset)
	fmt.Printf("%s===================%s\n", DimStyle, Reset)
	if !ok {
		fmt.Println(FormatLabelValue("Current migration version:", "none"))
		return nil
	}
	fmt.Println(FormatLabelValue("Current migration version:", fmt.Sprintf("%d", version)))
	if dirty {
		fmt.Println(FormatWarning("The last migration failed part way; fix the schema and force the version"))
	}
	return nil
}
