package config

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-demos/engine/simulation"
	"github.com/Carmen-Shannon/oxy-demos/engine/simulation/balls"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
[window]
title = "balls"

[balls]
count = 2
radius = 1.0
mode = "snapshot"
cell_size = 2.5
workers = 4

[fireflies]
rate_min = 0.002

[scheduler]
log_level = "debug"
`))
	require.NoError(t, err)

	assert.Equal(t, "balls", cfg.Window.Title)
	assert.Equal(t, 1280, cfg.Window.Width, "missing keys keep their defaults")
	assert.Equal(t, 2, cfg.Balls.Count)
	assert.Equal(t, "snapshot", cfg.Balls.Mode)
	assert.Equal(t, 2.5, cfg.Balls.CellSize)
	assert.Equal(t, balls.DefaultDamping, cfg.Balls.Damping)
	assert.Equal(t, 0.002, cfg.Fireflies.RateMin)
	assert.Equal(t, "debug", cfg.Scheduler.LogLevel)
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown key", "[balls]\nradiuss = 2\n"},
		{"negative count", "[balls]\ncount = -1\n"},
		{"zero radius", "[balls]\nradius = 0.0\n"},
		{"damping out of range", "[balls]\ndamping = 1.5\n"},
		{"grid without snapshot", "[balls]\ncell_size = 4.0\n"},
		{"inverted rates", "[fireflies]\nrate_min = 0.01\nrate_max = 0.001\n"},
		{"box count", "[boxfield]\ncount = -5\n"},
		{"backend", "[renderer]\nbackend = \"vulkan\"\n"},
		{"window", "[window]\nwidth = 0\n"},
		{"camera clip", "[camera]\nnear = 10.0\nfar = 1.0\n"},
		{"camera damping", "[camera]\ndamping = 0.0\n"},
		{"tick rate", "[scheduler]\ntick_rate = 0.0\n"},
		{"log level", "[scheduler]\nlog_level = \"loud\"\n"},
		{"nan spread", "[balls]\nspread = nan\n"},
		{"infinite radius", "[balls]\nradius = inf\n"},
		{"infinite force", "[balls]\nforce_constant = +inf\n"},
		{"nan orbit", "[fireflies]\norbit_radius = nan\n"},
		{"infinite box size", "[boxfield]\nbox_size = inf\n"},
		{"nan group rate", "[boxfield]\ngroup_rate_x = nan\n"},
		{"infinite far plane", "[camera]\nfar = inf\n"},
		{"nan camera radius", "[camera]\nradius = nan\n"},
		{"nan azimuth", "[camera]\nazimuth = nan\n"},
		{"nan frame duration", "[camera]\nframe_seconds = nan\n"},
		{"nan clear color", "[renderer]\nclear_color = [0.0, nan, 0.0, 1.0]\n"},
		{"infinite tick rate", "[scheduler]\ntick_rate = inf\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.ErrorIs(t, err, simulation.ErrConfiguration)
		})
	}

	_, err := Parse([]byte("[balls\ncount = 1"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.toml")
	require.NoError(t, os.WriteFile(path, []byte("[fireflies]\ncount = 12\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Fireflies.Count)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseLogLevel(t *testing.T) {
	for name, want := range map[string]slog.Level{
		"":        slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	} {
		got, err := ParseLogLevel(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestWatchReloadsValidChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.toml")
	require.NoError(t, os.WriteFile(path, []byte("[balls]\ncount = 3\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan Config, 16)
	done := make(chan error, 1)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	go func() {
		done <- Watch(ctx, path, logger, func(c Config) {
			select {
			case changes <- c:
			default:
			}
		})
	}()

	// the watcher starts asynchronously; keep writing until it notices. A write
	// may be observed while the file is still truncated, which parses as the
	// defaults, so wait for the final content.
	deadline := time.After(10 * time.Second)
wait:
	for {
		require.NoError(t, os.WriteFile(path, []byte("[balls]\nradius = -1.0\n"), 0o644))
		require.NoError(t, os.WriteFile(path, []byte("[balls]\ncount = 7\n"), 0o644))
		timeout := time.After(100 * time.Millisecond)
		for {
			select {
			case got := <-changes:
				assert.NoError(t, got.Validate(), "only valid configurations are delivered")
				if got.Balls.Count == 7 {
					break wait
				}
			case <-timeout:
				continue wait
			case <-deadline:
				t.Fatal("no config change observed")
			}
		}
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestValidateStartsNoWorkers(t *testing.T) {
	cfg := Default()
	cfg.Balls.Mode = "snapshot"
	cfg.Balls.Workers = 8
	cfg.Balls.ParallelThreshold = 0

	before := runtime.NumGoroutine()
	for range 50 {
		require.NoError(t, cfg.Validate())
	}
	assert.LessOrEqual(t, runtime.NumGoroutine(), before+2)
}
