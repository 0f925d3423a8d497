package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLogLevel("debug"))
	assert.Equal(t, WARNING, ParseLogLevel("warn"))
	assert.Equal(t, WARNING, ParseLogLevel("WARNING"))
	assert.Equal(t, ERROR, ParseLogLevel("Error"))
	assert.Equal(t, INFO, ParseLogLevel("verbose"))
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(WARNING, &buf)

	l.Info("dropped %d", 1)
	l.Warning("kept %s", "warning")
	l.Error("kept %s", "error")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "kept warning", entry["message"])
	assert.Contains(t, entry, "time")
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(INFO, &buf)

	l.Debug("hidden")
	assert.Empty(t, buf.String())

	l.SetLevel(DEBUG)
	l.Debug("visible")
	assert.Contains(t, buf.String(), "visible")
	assert.Equal(t, DEBUG, l.Level())
}

func TestGlobalInit(t *testing.T) {
	var buf bytes.Buffer
	Init(INFO, &buf)
	defer Init(INFO, &bytes.Buffer{})

	Info("server listening on %s", ":8080")
	assert.Contains(t, buf.String(), "server listening on :8080")
	assert.False(t, IsDebugEnabled())
}

func TestFatalLogsAndExits(t *testing.T) {
	if os.Getenv("AKLUJEATS_LOGGER_FATAL") == "1" {
		New(INFO, os.Stdout).Fatal("cannot continue: %s", "disk full")
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=^TestFatalLogsAndExits$")
	cmd.Env = append(os.Environ(), "AKLUJEATS_LOGGER_FATAL=1")
	out, err := cmd.Output()

	var exitErr *exec.ExitError
	require.True(t, errors.As(err, &exitErr), "expected a non-zero exit, got %v", err)
	assert.Equal(t, 1, exitErr.ExitCode())

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(out), &entry), string(out))
	assert.Equal(t, "fatal", entry["level"])
	assert.Equal(t, "cannot continue: disk full", entry["message"])
}
