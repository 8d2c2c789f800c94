package log

import (
	"io"
	"os"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/natefinch/lumberjack.v2"
)

// DefaultFileExtension is the conventional extension of capture files.
const DefaultFileExtension = ".olog"

// FileLogger appends events to a capture file in CBOR format.
// It is safe for concurrent use from multiple goroutines.
type FileLogger struct {
	path    string
	file    io.WriteCloser
	encoder *cbor.Encoder

	mu      sync.Mutex
	written int
	dropped int
	closed  bool
}

// NewFileLogger opens path for appending, creating it with mode 0644 if
// it does not exist.
func NewFileLogger(path string) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return &FileLogger{
		path:    path,
		file:    f,
		encoder: NewEncoder(f),
	}, nil
}

// RotationConfig bounds the size of a capture written by
// NewRotatingFileLogger.
type RotationConfig struct {
	// MaxSizeMB is the size in megabytes at which the file is rotated.
	MaxSizeMB int

	// MaxBackups is the number of rotated files kept; 0 keeps all.
	MaxBackups int

	// Compress gzips rotated files.
	Compress bool
}

// NewRotatingFileLogger writes to path and moves it aside once it reaches
// cfg.MaxSizeMB. Each event is encoded with a single write, so every
// rotated file is a complete capture on its own. The file is created on
// the first event.
func NewRotatingFileLogger(path string, cfg RotationConfig) *FileLogger {
	w := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		Compress:   cfg.Compress,
	}
	return &FileLogger{
		path:    path,
		file:    w,
		encoder: NewEncoder(w),
	}
}

// Path returns the capture file path.
func (l *FileLogger) Path() string {
	return l.path
}

// Log appends an event. Encoding failures are counted, not returned, so
// capture never disrupts the stream being observed.
func (l *FileLogger) Log(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	if err := l.encoder.Encode(event); err != nil {
		l.dropped++
		return
	}
	l.written++
}

// Stats returns the number of events written and dropped so far.
func (l *FileLogger) Stats() (written, dropped int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.written, l.dropped
}

// Close closes the capture file. Later Log calls are ignored and repeated
// Close calls return nil.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	return l.file.Close()
}

var _ Logger = (*FileLogger)(nil)
