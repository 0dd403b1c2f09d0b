package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAppScopesComponentLoggers(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "zenbot.log")
	a, err := newApp(&rootFlags{logPath: logPath})
	require.NoError(t, err)

	a.component("driver").Info("processed example %s", "q1")
	a.Close()

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[driver] processed example q1")
}

func TestAppComponentWithoutLogFileIsNop(t *testing.T) {
	a, err := newApp(&rootFlags{})
	require.NoError(t, err)
	defer a.Close()

	a.component("driver").Info("discarded without a log file")
}
