package stream

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oscwire/osc-go/pkg/log"
)

// Framing constants.
const (
	// LengthPrefixSize is the size of the length prefix in bytes.
	LengthPrefixSize = 4

	// DefaultMaxMessageSize is the default maximum packet size (64 KB).
	DefaultMaxMessageSize = 65536

	// MaxLogFrameDataSize is the maximum frame data size to include in logs (4 KB).
	// Larger frames are truncated in log events.
	MaxLogFrameDataSize = 4096
)

// SLIP special bytes (RFC 1055).
const (
	slipEnd    = 0xC0
	slipEsc    = 0xDB
	slipEscEnd = 0xDC
	slipEscEsc = 0xDD
)

// Framing errors.
var (
	// ErrMessageTooLarge indicates the packet exceeds the maximum size.
	ErrMessageTooLarge = errors.New("stream: message too large")

	// ErrMessageEmpty indicates an empty packet.
	ErrMessageEmpty = errors.New("stream: message is empty")

	// ErrFrameTruncated indicates the stream ended inside a frame.
	ErrFrameTruncated = errors.New("stream: frame truncated")

	// ErrInvalidEscape indicates a SLIP escape byte followed by anything
	// other than ESC_END or ESC_ESC.
	ErrInvalidEscape = errors.New("stream: invalid SLIP escape")

	// ErrUnknownFraming indicates an unrecognised framing name.
	ErrUnknownFraming = errors.New("stream: unknown framing")

	// ErrDecode wraps codec errors for frames that arrived intact but do
	// not hold a valid packet. The stream stays usable after it.
	ErrDecode = errors.New("stream: decode frame")
)

// Framing selects how packets are delimited on the stream.
type Framing uint8

const (
	// FramingLengthPrefix prefixes each packet with its int32 size.
	FramingLengthPrefix Framing = iota
	// FramingSLIP delimits each packet with SLIP END bytes.
	FramingSLIP
)

// String returns the framing name used in configuration files.
func (f Framing) String() string {
	switch f {
	case FramingLengthPrefix:
		return "length-prefix"
	case FramingSLIP:
		return "slip"
	default:
		return fmt.Sprintf("Framing(%d)", uint8(f))
	}
}

// ParseFraming parses a framing name. Matching is case-insensitive and
// accepts "osc1.0" and "osc1.1" as aliases.
func ParseFraming(s string) (Framing, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "length-prefix", "length", "osc1.0":
		return FramingLengthPrefix, nil
	case "slip", "osc1.1":
		return FramingSLIP, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFraming, s)
	}
}

// Recoverable reports whether reading may continue after err. Decode
// failures and rejected frames leave the reader on a frame boundary; a
// length-prefixed frame that is too large does not, because its payload
// was never consumed.
func Recoverable(err error, framing Framing) bool {
	switch {
	case errors.Is(err, ErrDecode), errors.Is(err, ErrMessageEmpty):
		return true
	case errors.Is(err, ErrInvalidEscape), errors.Is(err, ErrMessageTooLarge):
		return framing == FramingSLIP
	default:
		return false
	}
}

// FrameSize returns the number of bytes data occupies on the stream once
// framed.
func FrameSize(framing Framing, data []byte) int {
	if framing == FramingLengthPrefix {
		return LengthPrefixSize + len(data)
	}
	n := 2
	for _, b := range data {
		if b == slipEnd || b == slipEsc {
			n++
		}
		n++
	}
	return n
}

// AppendFrame appends the framed form of data to dst.
func AppendFrame(dst []byte, framing Framing, data []byte) []byte {
	if framing == FramingLengthPrefix {
		dst = binary.BigEndian.AppendUint32(dst, uint32(len(data)))
		return append(dst, data...)
	}
	dst = append(dst, slipEnd)
	for _, b := range data {
		switch b {
		case slipEnd:
			dst = append(dst, slipEsc, slipEscEnd)
		case slipEsc:
			dst = append(dst, slipEsc, slipEscEsc)
		default:
			dst = append(dst, b)
		}
	}
	return append(dst, slipEnd)
}

// now is replaced in tests for stable timestamps.
var now = time.Now

// logSink holds the optional capture settings shared by readers and
// writers.
type logSink struct {
	logger    log.Logger
	sessionID string
	remote    string
	framing   Framing
}

func (s *logSink) event(dir log.Direction, layer log.Layer, cat log.Category) log.Event {
	return log.Event{
		Timestamp:  now(),
		SessionID:  s.sessionID,
		Direction:  dir,
		Layer:      layer,
		Category:   cat,
		RemoteAddr: s.remote,
		Framing:    s.framing.String(),
	}
}

func (s *logSink) logFrame(dir log.Direction, data []byte, wireSize int) {
	if s.logger == nil {
		return
	}
	ev := s.event(dir, log.LayerFrame, log.CategoryPacket)
	frame := &log.FrameEvent{Size: wireSize, Data: data}
	if len(data) > MaxLogFrameDataSize {
		frame.Data = data[:MaxLogFrameDataSize]
		frame.Truncated = true
	}
	ev.Frame = frame
	s.logger.Log(ev)
}

func (s *logSink) logError(dir log.Direction, layer log.Layer, err error, context string) {
	if s.logger == nil {
		return
	}
	ev := s.event(dir, layer, log.CategoryError)
	ev.Error = &log.ErrorEventData{Layer: layer, Message: err.Error(), Context: context}
	s.logger.Log(ev)
}

// FrameWriter writes framed packets to an underlying writer.
type FrameWriter struct {
	w              io.Writer
	maxMessageSize uint32
	mu             sync.Mutex
	buf            []byte

	sink logSink
}

// NewFrameWriter creates a new frame writer.
func NewFrameWriter(w io.Writer, framing Framing) *FrameWriter {
	return NewFrameWriterWithMaxSize(w, framing, DefaultMaxMessageSize)
}

// NewFrameWriterWithMaxSize creates a frame writer with a custom max size.
func NewFrameWriterWithMaxSize(w io.Writer, framing Framing, maxSize uint32) *FrameWriter {
	return &FrameWriter{
		w:              w,
		maxMessageSize: maxSize,
		sink:           logSink{framing: framing},
	}
}

// Framing returns the writer's framing.
func (fw *FrameWriter) Framing() Framing {
	return fw.sink.framing
}

// SetLogger configures logging for this writer.
// Pass nil to disable logging.
func (fw *FrameWriter) SetLogger(logger log.Logger, sessionID string) {
	fw.sink.logger = logger
	fw.sink.sessionID = sessionID
}

// WriteFrame frames data and writes it with a single Write call.
// Safe for concurrent use.
func (fw *FrameWriter) WriteFrame(data []byte) error {
	if len(data) == 0 {
		return ErrMessageEmpty
	}
	if uint64(len(data)) > uint64(fw.maxMessageSize) {
		return fmt.Errorf("%w: %d > %d", ErrMessageTooLarge, len(data), fw.maxMessageSize)
	}

	fw.mu.Lock()
	defer fw.mu.Unlock()

	fw.buf = AppendFrame(fw.buf[:0], fw.sink.framing, data)
	if _, err := fw.w.Write(fw.buf); err != nil {
		err = fmt.Errorf("stream: write frame: %w", err)
		fw.sink.logError(log.DirectionOut, log.LayerFrame, err, "write")
		return err
	}

	fw.sink.logFrame(log.DirectionOut, data, len(fw.buf))
	return nil
}

// FrameReader reads framed packets from an underlying reader.
type FrameReader struct {
	r              io.Reader
	br             *bufio.Reader
	maxMessageSize uint32
	lengthBuf      [LengthPrefixSize]byte

	sink logSink
}

// NewFrameReader creates a new frame reader.
func NewFrameReader(r io.Reader, framing Framing) *FrameReader {
	return NewFrameReaderWithMaxSize(r, framing, DefaultMaxMessageSize)
}

// NewFrameReaderWithMaxSize creates a frame reader with a custom max size.
func NewFrameReaderWithMaxSize(r io.Reader, framing Framing, maxSize uint32) *FrameReader {
	fr := &FrameReader{
		r:              r,
		maxMessageSize: maxSize,
		sink:           logSink{framing: framing},
	}
	if framing == FramingSLIP {
		fr.br = bufio.NewReader(r)
	}
	return fr
}

// Framing returns the reader's framing.
func (fr *FrameReader) Framing() Framing {
	return fr.sink.framing
}

// SetLogger configures logging for this reader.
// Pass nil to disable logging.
func (fr *FrameReader) SetLogger(logger log.Logger, sessionID string) {
	fr.sink.logger = logger
	fr.sink.sessionID = sessionID
}

// SetMaxMessageSize updates the maximum packet size.
func (fr *FrameReader) SetMaxMessageSize(size uint32) {
	fr.maxMessageSize = size
}

// ReadFrame reads one frame and returns the packet bytes without framing.
// It returns io.EOF when the stream ends cleanly between frames.
func (fr *FrameReader) ReadFrame() ([]byte, error) {
	var (
		payload  []byte
		wireSize int
		err      error
	)
	if fr.sink.framing == FramingSLIP {
		payload, wireSize, err = fr.readSLIP()
	} else {
		payload, wireSize, err = fr.readLengthPrefixed()
	}
	if err != nil {
		if !errors.Is(err, io.EOF) {
			fr.sink.logError(log.DirectionIn, log.LayerFrame, err, "read")
		}
		return nil, err
	}

	fr.sink.logFrame(log.DirectionIn, payload, wireSize)
	return payload, nil
}

func (fr *FrameReader) readLengthPrefixed() ([]byte, int, error) {
	if _, err := io.ReadFull(fr.r, fr.lengthBuf[:]); err != nil {
		if err == io.EOF {
			return nil, 0, err
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, 0, ErrFrameTruncated
		}
		return nil, 0, fmt.Errorf("stream: read length prefix: %w", err)
	}

	length := binary.BigEndian.Uint32(fr.lengthBuf[:])
	if length == 0 {
		return nil, 0, ErrMessageEmpty
	}
	if length > fr.maxMessageSize {
		return nil, 0, fmt.Errorf("%w: %d > %d", ErrMessageTooLarge, length, fr.maxMessageSize)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(fr.r, payload); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || err == io.EOF {
			return nil, 0, ErrFrameTruncated
		}
		return nil, 0, fmt.Errorf("stream: read payload: %w", err)
	}
	return payload, LengthPrefixSize + int(length), nil
}

// readSLIP reads up to the END byte closing a non-empty frame. Empty
// frames produced by back-to-back END bytes are skipped. An oversized
// frame is consumed up to its END byte before the error is returned so
// the next call starts on a frame boundary.
func (fr *FrameReader) readSLIP() ([]byte, int, error) {
	var (
		payload  []byte
		wireSize int
		escaped  bool
		tooLarge bool
		badEsc   bool
	)
	for {
		b, err := fr.br.ReadByte()
		if err != nil {
			if err == io.EOF {
				if len(payload) == 0 && !escaped && !tooLarge && !badEsc {
					return nil, 0, io.EOF
				}
				return nil, 0, ErrFrameTruncated
			}
			return nil, 0, fmt.Errorf("stream: read frame: %w", err)
		}
		wireSize++

		if b == slipEnd {
			switch {
			case tooLarge:
				return nil, 0, fmt.Errorf("%w: frame exceeds %d bytes", ErrMessageTooLarge, fr.maxMessageSize)
			case badEsc || escaped:
				return nil, 0, ErrInvalidEscape
			case len(payload) == 0:
				wireSize = 1
				continue
			}
			return payload, wireSize, nil
		}

		if escaped {
			escaped = false
			switch b {
			case slipEscEnd:
				b = slipEnd
			case slipEscEsc:
				b = slipEsc
			default:
				badEsc = true
				continue
			}
		} else if b == slipEsc {
			escaped = true
			continue
		}

		if tooLarge || badEsc {
			continue
		}
		if uint64(len(payload)) >= uint64(fr.maxMessageSize) {
			tooLarge = true
			payload = nil
			continue
		}
		payload = append(payload, b)
	}
}

// Framer combines frame reading and writing.
type Framer struct {
	*FrameReader
	*FrameWriter
}

// NewFramer creates a new framer for bidirectional communication.
func NewFramer(rw io.ReadWriter, framing Framing) *Framer {
	return &Framer{
		FrameReader: NewFrameReader(rw, framing),
		FrameWriter: NewFrameWriter(rw, framing),
	}
}

// NewFramerWithMaxSize creates a framer with a custom max packet size.
func NewFramerWithMaxSize(rw io.ReadWriter, framing Framing, maxSize uint32) *Framer {
	return &Framer{
		FrameReader: NewFrameReaderWithMaxSize(rw, framing, maxSize),
		FrameWriter: NewFrameWriterWithMaxSize(rw, framing, maxSize),
	}
}

// Framing returns the framing shared by both directions.
func (f *Framer) Framing() Framing {
	return f.FrameReader.Framing()
}

// SetLogger configures logging for both reader and writer.
// Pass nil to disable logging.
func (f *Framer) SetLogger(logger log.Logger, sessionID string) {
	f.FrameReader.SetLogger(logger, sessionID)
	f.FrameWriter.SetLogger(logger, sessionID)
}
