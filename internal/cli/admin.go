package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aklujeats/aklujeats/internal/services"
	"github.com/aklujeats/aklujeats/internal/shared"
)

var adminUsername string

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage admin accounts",
}

var adminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an admin account",
	Long: `Create an admin account for the dashboard. The password is read from the
terminal, or from the first line of standard input when it is not a terminal.`,
	RunE: runAdminCreate,
}

func init() {
	adminCreateCmd.Flags().StringVarP(&adminUsername, "username", "u", "", "Admin username")
	adminCreateCmd.MarkFlagRequired("username")

	adminCmd.AddCommand(adminCreateCmd)
}

func runAdminCreate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if cfg.SQLDatabase.Provider == "memory" {
		fmt.Println(FormatWarning("The memory provider keeps nothing once this command exits"))
	}

	password, err := readPassword(cmd)
	if err != nil {
		return err
	}

	database, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer database.Disconnect(ctx)

	admin, err := services.NewAdminService(database).CreateAdmin(ctx, adminUsername, password)
	if err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return fmt.Errorf("admin %q already exists", adminUsername)
		}
		return fmt.Errorf("failed to create admin: %w", err)
	}

	fmt.Println(FormatSuccess("✅ Admin created"))
	fmt.Println(FormatLabelValue("ID:", admin.ID))
	fmt.Println(FormatLabelValue("Username:", admin.Username))
	return nil
}

func readPassword(cmd *cobra.Command) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Print("Password: ")
	first, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	fmt.Print("Confirm password: ")
	second, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	if string(first) != string(second) {
		return "", fmt.Errorf("passwords do not match")
	}
	return string(first), nil
}
