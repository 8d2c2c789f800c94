// Package log captures OSC stream traffic for later inspection.
//
// Capture is separate from operational logging (slog): it records a
// machine-readable trace of every frame and decoded packet that crossed a
// stream, so that a session can be replayed or filtered after the fact.
//
// # Basic Usage
//
//	// Console output while developing
//	logger := log.NewSlogAdapter(slog.Default())
//
//	// Binary capture file
//	fileLogger, err := log.NewFileLogger("session.olog")
//
//	// Both
//	logger := log.NewMultiLogger(log.NewSlogAdapter(slog.Default()), fileLogger)
//
//	reader := stream.NewPacketReader(conn, stream.FramingSLIP)
//	reader.SetLogger(logger, log.NewSessionID())
//
// # Event Types
//
// Events are captured at two layers:
//   - Frame: raw frame bytes (FrameEvent)
//   - Codec: decoded packets (PacketEvent)
//
// Stream lifecycle changes and errors have dedicated event types.
//
// # File Format
//
// Capture files are concatenated CBOR events with the .olog extension. The
// osc-log tool views, filters and exports them.
package log
