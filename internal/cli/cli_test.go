package cli

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aklujeats/aklujeats/internal/config"
)

func reader(input string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(input))
}

func TestPromptHelpers(t *testing.T) {
	yes, err := promptYesNo(reader("maybe\nYes\n"), "? ")
	require.NoError(t, err)
	assert.True(t, yes, "invalid answers are asked again")

	no, err := promptYesNo(reader("\n"), "? ")
	require.NoError(t, err)
	assert.False(t, no)

	value, err := promptOptional(reader("\n"), "? ", "mysql")
	require.NoError(t, err)
	assert.Equal(t, "mysql", value)

	_, err = promptOptional(reader(""), "? ", "mysql")
	assert.ErrorIs(t, err, errNoInput)

	_, err = promptYesNo(reader("perhaps"), "? ")
	assert.ErrorIs(t, err, errNoInput, "an unterminated invalid answer is not retried forever")
}

func TestPromptChoice(t *testing.T) {
	value, err := promptChoice(reader("oracle\nPostgres\n"), "? ", "mysql", "mysql", "postgres")
	require.NoError(t, err)
	assert.Equal(t, "postgres", value)

	value, err = promptChoice(reader("\n"), "? ", "mysql", "mysql", "postgres")
	require.NoError(t, err)
	assert.Equal(t, "mysql", value)
}

func writeMemoryConfig(t *testing.T) string {
	t.Helper()
	c := config.DefaultConfig()
	c.Environment = "development"
	c.SQLDatabase.Provider = "memory"
	c.ConnectionStrings = map[string]string{}

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, c.Save(path))
	return path
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	t.Cleanup(func() {
		cfgFile = ""
		cfg = nil
	})
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func TestMissingConfig(t *testing.T) {
	err := execute(t, "dashboard", "--config", filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "aklujeats init")
}

func TestOneShotCommandsOnMemoryStore(t *testing.T) {
	path := writeMemoryConfig(t)

	require.NoError(t, execute(t, "dashboard", "--config", path))
	require.NoError(t, execute(t, "orders", "list", "--config", path))
	require.NoError(t, execute(t, "orders", "sweep", "--config", path))
	require.NoError(t, execute(t, "migrate", "up", "--config", path))
}

func TestOrdersListRejectsUnknownStatus(t *testing.T) {
	path := writeMemoryConfig(t)
	err := execute(t, "orders", "list", "--status", "lost", "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid status")
	ordersStatus = ""
}

func TestAdminCreateReadsPasswordFromStdin(t *testing.T) {
	path := writeMemoryConfig(t)

	r, w, err := os.Pipe()
	require.NoError(t, err)
	_, err = w.WriteString("correct-horse\n")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	stdin := os.Stdin
	os.Stdin = r
	t.Cleanup(func() { os.Stdin = stdin })
	rootCmd.SetIn(r)
	t.Cleanup(func() { rootCmd.SetIn(nil) })

	require.NoError(t, execute(t, "admin", "create", "--username", "manager", "--config", path))
}
