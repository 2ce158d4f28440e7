package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-demos/engine/config"
	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "demo.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCommand(&stdout, &stderr)
	cmd.SetArgs(args)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := cmd.ExecuteContext(ctx)
	return stdout.String(), err
}

func TestHeadlessRunPrintsSummary(t *testing.T) {
	path := writeConfig(t, `
[scheduler]
tick_rate = 500.0
log_level = "error"

[boxfield]
count = 25
`)
	out, err := execute(t, "boxes", "--headless", "--frames", "3", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "boxes: population=25 frames=3")
	assert.Contains(t, out, "state=running")
}

func TestConfigCommandPrintsEffectiveConfig(t *testing.T) {
	path := writeConfig(t, "[balls]\ncount = 7\n")
	out, err := execute(t, "config", "--config", path)
	require.NoError(t, err)

	var cfg config.Config
	require.NoError(t, toml.Unmarshal([]byte(out), &cfg))
	assert.Equal(t, 7, cfg.Balls.Count)
	assert.Equal(t, config.Default().Fireflies, cfg.Fireflies)
}

func TestRunRejectsBadInput(t *testing.T) {
	bad := writeConfig(t, "[balls]\ncount = -3\n")

	tests := []struct {
		name string
		args []string
	}{
		{"invalid config", []string{"balls", "--headless", "--config", bad}},
		{"missing config", []string{"balls", "--headless", "--config", filepath.Join(t.TempDir(), "none.toml")}},
		{"watch without config", []string{"fireflies", "--headless", "--watch"}},
		{"negative frames", []string{"fireflies", "--headless", "--frames", "-1"}},
		{"extra args", []string{"balls", "extra"}},
		{"unknown demo", []string{"orbits"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			assert.Error(t, err)
		})
	}
}
