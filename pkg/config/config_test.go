package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oscwire/osc-go/pkg/log"
	"github.com/oscwire/osc-go/pkg/osc"
	"github.com/oscwire/osc-go/pkg/stream"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, osc.DefaultMaxDepth, cfg.MaxDepth)
	assert.Equal(t, "length-prefix", cfg.Framing)
	assert.Equal(t, uint32(stream.DefaultMaxMessageSize), cfg.MaxFrameSize)
	assert.Empty(t, cfg.ProtocolLog)
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
max_depth: 8
framing: slip
max_frame_size: 1024
protocol_log: /tmp/capture.olog
log_level: debug
`))
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.MaxDepth)
	assert.Equal(t, "slip", cfg.Framing)
	assert.Equal(t, uint32(1024), cfg.MaxFrameSize)
	assert.Equal(t, "/tmp/capture.olog", cfg.ProtocolLog)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	opts, err := cfg.StreamOptions()
	require.NoError(t, err)
	assert.Equal(t, stream.FramingSLIP, opts.Framing)
	assert.Equal(t, uint32(1024), opts.MaxFrameSize)
	assert.Equal(t, osc.Config{MaxDepth: 8}, opts.Codec)
}

func TestParseKeepsDefaultsForAbsentKeys(t *testing.T) {
	cfg, err := Parse([]byte("framing: slip\n"))
	require.NoError(t, err)
	assert.Equal(t, osc.DefaultMaxDepth, cfg.MaxDepth)
	assert.Equal(t, "info", cfg.LogLevel)

	empty, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), empty)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"zero depth", "max_depth: 0"},
		{"unknown framing", "framing: cobs"},
		{"tiny frames", "max_frame_size: 4"},
		{"bad level", "log_level: chatty"},
		{"unknown key", "colour: blue"},
		{"wrong type", "max_depth: deep"},
		{"negative rotation", "protocol_log_max_size: -1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoad(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	path := filepath.Join(t.TempDir(), "osc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_depth: 4\n"), 0o644))
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.MaxDepth)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, os.WriteFile(path, []byte("max_depth: -1\n"), 0o644))
	_, err = Load(path)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), path)
}

func TestHistoryPath(t *testing.T) {
	cfg := Default()
	assert.Empty(t, cfg.HistoryPath())

	cfg.HistoryFile = "/var/tmp/history"
	assert.Equal(t, "/var/tmp/history", cfg.HistoryPath())

	home, err := os.UserHomeDir()
	if err == nil {
		cfg.HistoryFile = "~/.osc_history"
		assert.Equal(t, filepath.Join(home, ".osc_history"), cfg.HistoryPath())
	}
}

func TestProtocolLogger(t *testing.T) {
	cfg := Default()

	logger, closeFn, err := cfg.ProtocolLogger(nil)
	require.NoError(t, err)
	assert.IsType(t, log.NoopLogger{}, logger)
	assert.NoError(t, closeFn())

	var console bytes.Buffer
	debug := slog.New(slog.NewTextHandler(&console, &slog.HandlerOptions{Level: slog.LevelDebug}))
	logger, _, err = cfg.ProtocolLogger(debug)
	require.NoError(t, err)
	assert.IsType(t, &log.SlogAdapter{}, logger)

	cfg.ProtocolLog = filepath.Join(t.TempDir(), "capture.olog")
	logger, closeFn, err = cfg.ProtocolLogger(debug)
	require.NoError(t, err)
	assert.IsType(t, &log.MultiLogger{}, logger)
	logger.Log(log.Event{SessionID: "s"})
	require.NoError(t, closeFn())
	assert.Contains(t, console.String(), "session=s")

	r, err := log.NewReader(cfg.ProtocolLog)
	require.NoError(t, err)
	defer r.Close()
	events, err := r.All()
	require.NoError(t, err)
	assert.Len(t, events, 1)

	quiet := slog.New(slog.NewTextHandler(&console, nil))
	cfg.ProtocolLog = filepath.Join(t.TempDir(), "quiet.olog")
	logger, closeFn, err = cfg.ProtocolLogger(quiet)
	require.NoError(t, err)
	assert.IsType(t, &log.FileLogger{}, logger)
	require.NoError(t, closeFn())

	cfg.ProtocolLog = filepath.Join(t.TempDir(), "missing", "capture.olog")
	_, _, err = cfg.ProtocolLogger(nil)
	assert.Error(t, err)
}

func TestProtocolLoggerRotation(t *testing.T) {
	cfg, err := Parse([]byte("protocol_log_max_size: 5\nprotocol_log_backups: 2\n"))
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.ProtocolLogMaxSize)
	assert.Equal(t, 2, cfg.ProtocolLogBackups)

	cfg.ProtocolLog = filepath.Join(t.TempDir(), "rotating.olog")
	logger, closeFn, err := cfg.ProtocolLogger(nil)
	require.NoError(t, err)
	require.IsType(t, &log.FileLogger{}, logger)
	logger.Log(log.Event{SessionID: "s"})
	require.NoError(t, closeFn())

	r, err := log.NewReader(cfg.ProtocolLog)
	require.NoError(t, err)
	defer r.Close()
	events, err := r.All()
	require.NoError(t, err)
	assert.Len(t, events, 1)
}
