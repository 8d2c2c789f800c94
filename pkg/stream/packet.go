package stream

import (
	"fmt"
	"io"

	"github.com/oscwire/osc-go/pkg/log"
	"github.com/oscwire/osc-go/pkg/osc"
)

// PacketReader decodes one OSC packet per frame.
type PacketReader struct {
	frames *FrameReader
	codec  osc.Config
	sink   logSink
}

// NewPacketReader creates a packet reader with the default codec settings.
func NewPacketReader(r io.Reader, framing Framing) *PacketReader {
	return NewPacketReaderFromFrames(NewFrameReader(r, framing), osc.DefaultConfig())
}

// NewPacketReaderFromFrames decodes frames from fr using codec.
func NewPacketReaderFromFrames(fr *FrameReader, codec osc.Config) *PacketReader {
	return &PacketReader{
		frames: fr,
		codec:  codec,
		sink:   logSink{framing: fr.Framing()},
	}
}

// SetLogger configures logging for this reader and its frame reader.
// Pass nil to disable logging.
func (pr *PacketReader) SetLogger(logger log.Logger, sessionID string) {
	pr.frames.SetLogger(logger, sessionID)
	pr.sink.logger = logger
	pr.sink.sessionID = sessionID
}

// SetRemoteAddr records the peer address on codec events.
func (pr *PacketReader) SetRemoteAddr(addr string) {
	pr.sink.remote = addr
	pr.frames.sink.remote = addr
}

// ReadPacket reads and decodes the next packet. It returns io.EOF when
// the stream ends cleanly between frames. A frame that fails to decode
// is consumed, so the caller may keep reading after a decode error.
func (pr *PacketReader) ReadPacket() (osc.Packet, error) {
	data, err := pr.frames.ReadFrame()
	if err != nil {
		return nil, err
	}

	p, err := pr.codec.Decode(data)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrDecode, err)
		pr.sink.logError(log.DirectionIn, log.LayerCodec, err, "decode")
		return nil, err
	}

	if pr.sink.logger != nil {
		ev := pr.sink.event(log.DirectionIn, log.LayerCodec, log.CategoryPacket)
		ev.Packet = log.NewPacketEvent(p)
		pr.sink.logger.Log(ev)
	}
	return p, nil
}

// PacketWriter encodes one OSC packet per frame.
type PacketWriter struct {
	frames *FrameWriter
	codec  osc.Config
	sink   logSink
}

// NewPacketWriter creates a packet writer with the default codec settings.
func NewPacketWriter(w io.Writer, framing Framing) *PacketWriter {
	return NewPacketWriterFromFrames(NewFrameWriter(w, framing), osc.DefaultConfig())
}

// NewPacketWriterFromFrames encodes packets with codec and writes them to fw.
func NewPacketWriterFromFrames(fw *FrameWriter, codec osc.Config) *PacketWriter {
	return &PacketWriter{
		frames: fw,
		codec:  codec,
		sink:   logSink{framing: fw.Framing()},
	}
}

// SetLogger configures logging for this writer and its frame writer.
// Pass nil to disable logging.
func (pw *PacketWriter) SetLogger(logger log.Logger, sessionID string) {
	pw.frames.SetLogger(logger, sessionID)
	pw.sink.logger = logger
	pw.sink.sessionID = sessionID
}

// SetRemoteAddr records the peer address on codec events.
func (pw *PacketWriter) SetRemoteAddr(addr string) {
	pw.sink.remote = addr
	pw.frames.sink.remote = addr
}

// WritePacket encodes p and writes it as one frame. Safe for concurrent
// use.
func (pw *PacketWriter) WritePacket(p osc.Packet) error {
	data, err := pw.codec.Encode(p)
	if err != nil {
		err = fmt.Errorf("stream: encode packet: %w", err)
		pw.sink.logError(log.DirectionOut, log.LayerCodec, err, "encode")
		return err
	}

	if pw.sink.logger != nil {
		ev := pw.sink.event(log.DirectionOut, log.LayerCodec, log.CategoryPacket)
		ev.Packet = log.NewPacketEvent(p)
		pw.sink.logger.Log(ev)
	}
	return pw.frames.WriteFrame(data)
}
