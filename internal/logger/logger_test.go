package logger

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitDisabledDiscards(t *testing.T) {
	closeFn, err := Init(Options{Enabled: false})
	require.NoError(t, err)
	require.NoError(t, closeFn())
	require.NotNil(t, L)
	Info("dropped")
}

func TestInitWritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "kheapctl.log")
	closeFn, err := Init(Options{Enabled: true, Path: path, Level: slog.LevelDebug})
	require.NoError(t, err)

	Debug("heap ready", "capacity", 4080)
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"msg":"heap ready"`)
	require.Contains(t, string(data), `"capacity":4080`)

	_, err = Init(Options{})
	require.NoError(t, err)
}
