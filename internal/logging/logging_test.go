package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/abhisek/proctor/internal/config"
)

func TestNew_ConsoleRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(config.LogConfig{Level: "warn"}, &buf)
	require.NoError(t, err)

	log.Info("hidden")
	log.Warn("shown", zap.Int64("user_id", 9))
	_ = log.Sync()

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, `"user_id": 9`)
}

func TestNew_FileSinkWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proctor.log")
	var console bytes.Buffer
	log, err := New(config.LogConfig{Level: "info", File: path, MaxSizeMB: 1}, &console)
	require.NoError(t, err)

	log.Info("graded", zap.String("test_id", "algebra"))
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "graded", entry["msg"])
	assert.Equal(t, "algebra", entry["test_id"])
	assert.Equal(t, "INFO", entry["level"])
}

func TestNew_BadLevel(t *testing.T) {
	_, err := New(config.LogConfig{Level: "loud"}, nil)
	assert.Error(t, err)
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
	l := zap.NewExample()
	assert.Same(t, l, OrNop(l))
}
