package stream

import (
	"io"
	"sync"

	"github.com/oscwire/osc-go/pkg/log"
	"github.com/oscwire/osc-go/pkg/osc"
)

// Stream states reported in capture logs.
const (
	StateOpen   = "open"
	StateClosed = "closed"
)

// Options configures a Conn. The zero value uses length-prefix framing,
// the default maximum frame size and the default codec settings.
type Options struct {
	Framing      Framing
	MaxFrameSize uint32
	Codec        osc.Config

	// RemoteAddr is recorded on capture events.
	RemoteAddr string
}

// Conn exchanges OSC packets in both directions over one stream.
type Conn struct {
	*PacketReader
	*PacketWriter

	rw   io.ReadWriter
	sink logSink

	closeOnce sync.Once
	closeErr  error
}

// NewConn wraps rw. Closing the Conn closes rw when it implements
// io.Closer.
func NewConn(rw io.ReadWriter, opts Options) *Conn {
	maxSize := opts.MaxFrameSize
	if maxSize == 0 {
		maxSize = DefaultMaxMessageSize
	}
	c := &Conn{
		PacketReader: NewPacketReaderFromFrames(NewFrameReaderWithMaxSize(rw, opts.Framing, maxSize), opts.Codec),
		PacketWriter: NewPacketWriterFromFrames(NewFrameWriterWithMaxSize(rw, opts.Framing, maxSize), opts.Codec),
		rw:           rw,
		sink:         logSink{framing: opts.Framing, remote: opts.RemoteAddr},
	}
	if opts.RemoteAddr != "" {
		c.PacketReader.SetRemoteAddr(opts.RemoteAddr)
		c.PacketWriter.SetRemoteAddr(opts.RemoteAddr)
	}
	return c
}

// SetLogger configures logging for both directions and records the
// stream as open. Pass nil to disable logging.
func (c *Conn) SetLogger(logger log.Logger, sessionID string) {
	c.PacketReader.SetLogger(logger, sessionID)
	c.PacketWriter.SetLogger(logger, sessionID)
	c.sink.logger = logger
	c.sink.sessionID = sessionID
	c.logState("", StateOpen, "")
}

// Framing returns the stream framing.
func (c *Conn) Framing() Framing {
	return c.sink.framing
}

// Close closes the underlying stream once and records the state change.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		if closer, ok := c.rw.(io.Closer); ok {
			c.closeErr = closer.Close()
		}
		reason := ""
		if c.closeErr != nil {
			reason = c.closeErr.Error()
		}
		c.logState(StateOpen, StateClosed, reason)
	})
	return c.closeErr
}

func (c *Conn) logState(from, to, reason string) {
	if c.sink.logger == nil {
		return
	}
	ev := c.sink.event(log.DirectionIn, log.LayerFrame, log.CategoryState)
	ev.StateChange = &log.StateChangeEvent{OldState: from, NewState: to, Reason: reason}
	c.sink.logger.Log(ev)
}
