// Package config loads settings for the osc command-line tools.
//
// Settings live in a YAML file. Absent keys keep their defaults:
//
//	max_depth: 32
//	framing: slip
//	max_frame_size: 65536
//	protocol_log: capture.olog
//	protocol_log_max_size: 0
//	protocol_log_backups: 0
//	log_level: info
//	history_file: ~/.osc_history
package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/oscwire/osc-go/pkg/log"
	"github.com/oscwire/osc-go/pkg/osc"
	"github.com/oscwire/osc-go/pkg/stream"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config holds the tool settings.
type Config struct {
	// MaxDepth bounds array and bundle nesting in the codec.
	MaxDepth int `yaml:"max_depth"`

	// Framing is the stream framing: "length-prefix" or "slip".
	Framing string `yaml:"framing"`

	// MaxFrameSize bounds a single framed packet in bytes.
	MaxFrameSize uint32 `yaml:"max_frame_size"`

	// ProtocolLog is the capture file path. Empty disables capture.
	ProtocolLog string `yaml:"protocol_log"`

	// ProtocolLogMaxSize rotates the capture file at this many megabytes.
	// 0 disables rotation.
	ProtocolLogMaxSize int `yaml:"protocol_log_max_size"`

	// ProtocolLogBackups is the number of rotated captures kept; 0 keeps
	// all of them.
	ProtocolLogBackups int `yaml:"protocol_log_backups"`

	// LogLevel is the slog level: debug, info, warn or error.
	LogLevel string `yaml:"log_level"`

	// HistoryFile keeps shell history. Empty disables history.
	HistoryFile string `yaml:"history_file"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		MaxDepth:     osc.DefaultMaxDepth,
		Framing:      stream.FramingLengthPrefix.String(),
		MaxFrameSize: stream.DefaultMaxMessageSize,
		LogLevel:     "info",
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result.
// Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every setting.
func (c Config) Validate() error {
	if c.MaxDepth < 1 {
		return fmt.Errorf("%w: max_depth must be at least 1, got %d", ErrInvalidConfig, c.MaxDepth)
	}
	if _, err := stream.ParseFraming(c.Framing); err != nil {
		return fmt.Errorf("%w: framing: %w", ErrInvalidConfig, err)
	}
	if c.MaxFrameSize < 8 {
		return fmt.Errorf("%w: max_frame_size must be at least 8, got %d", ErrInvalidConfig, c.MaxFrameSize)
	}
	if c.ProtocolLogMaxSize < 0 || c.ProtocolLogBackups < 0 {
		return fmt.Errorf("%w: protocol_log_max_size and protocol_log_backups must not be negative", ErrInvalidConfig)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Codec returns the codec limits.
func (c Config) Codec() osc.Config {
	return osc.Config{MaxDepth: c.MaxDepth}
}

// StreamOptions returns the framing settings for stream.NewConn and the
// packet readers and writers.
func (c Config) StreamOptions() (stream.Options, error) {
	framing, err := stream.ParseFraming(c.Framing)
	if err != nil {
		return stream.Options{}, fmt.Errorf("%w: framing: %w", ErrInvalidConfig, err)
	}
	return stream.Options{
		Framing:      framing,
		MaxFrameSize: c.MaxFrameSize,
		Codec:        c.Codec(),
	}, nil
}

// Level returns LogLevel as an slog level.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("%w: log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	return level, nil
}

// HistoryPath returns HistoryFile with a leading "~/" expanded to the
// home directory.
func (c Config) HistoryPath() string {
	rest, ok := strings.CutPrefix(c.HistoryFile, "~/")
	if !ok {
		return c.HistoryFile
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return c.HistoryFile
	}
	return filepath.Join(home, rest)
}

// ProtocolLogger opens the capture file when ProtocolLog is set and joins
// it with console output at debug level. The returned close function is
// never nil.
func (c Config) ProtocolLogger(console *slog.Logger) (log.Logger, func() error, error) {
	var loggers []log.Logger
	if console != nil && console.Enabled(context.Background(), slog.LevelDebug) {
		loggers = append(loggers, log.NewSlogAdapter(console))
	}

	closeFn := func() error { return nil }
	switch {
	case c.ProtocolLog == "":
	case c.ProtocolLogMaxSize > 0:
		fl := log.NewRotatingFileLogger(c.ProtocolLog, log.RotationConfig{
			MaxSizeMB:  c.ProtocolLogMaxSize,
			MaxBackups: c.ProtocolLogBackups,
		})
		loggers = append(loggers, fl)
		closeFn = fl.Close
	default:
		fl, err := log.NewFileLogger(c.ProtocolLog)
		if err != nil {
			return nil, closeFn, fmt.Errorf("config: protocol log: %w", err)
		}
		loggers = append(loggers, fl)
		closeFn = fl.Close
	}

	switch len(loggers) {
	case 0:
		return log.NoopLogger{}, closeFn, nil
	case 1:
		return loggers[0], closeFn, nil
	default:
		return log.NewMultiLogger(loggers...), closeFn, nil
	}
}
