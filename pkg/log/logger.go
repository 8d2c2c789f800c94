package log

// Logger receives protocol capture events. Pass nil or NoopLogger to
// disable capture.
type Logger interface {
	// Log records an event. Implementations must be safe for concurrent
	// use and should not block: the caller is on the packet path.
	Log(event Event)
}

// NoopLogger discards all events. The zero value is ready to use.
type NoopLogger struct{}

// Log discards the event.
func (NoopLogger) Log(Event) {}

var _ Logger = NoopLogger{}
