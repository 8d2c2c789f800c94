package osc

import (
	"encoding/binary"
	"fmt"
	"math"
)

// BundleIdent is the 8-byte marker that starts every binary bundle.
const BundleIdent = "#bundle\x00"

// bundleHeaderSize is the ident plus the time tag.
const bundleHeaderSize = 16

type writerState uint8

const (
	writerNotStarted writerState = iota
	writerBundle
	writerTypeTag
	writerArguments
)

func (s writerState) String() string {
	switch s {
	case writerNotStarted:
		return "NotStarted"
	case writerBundle:
		return "Bundle"
	case writerTypeTag:
		return "TypeTag"
	case writerArguments:
		return "Arguments"
	default:
		return "Unknown"
	}
}

// Writer encodes OSC packets into a caller-supplied buffer. A Writer
// created with newCountingWriter has no buffer and only measures, so that
// size computation and emission share the same code.
//
// The call sequence for a message is WriteAddress, one WriteTypeTag per
// argument, WriteTypeTagEnd, then one write per argument. Bundles are
// WriteBundleIdent, WriteBundleTimeTag, then for each element
// WriteBundleMessageLength followed by the element, and finally EndBundle.
type Writer struct {
	dst      []byte
	counting bool
	pos      int

	state       writerState
	tagStart    int
	bundleDepth int
	maxDepth    int
}

// NewWriter returns a Writer that fills dst from offset 0.
func NewWriter(dst []byte) *Writer {
	return &Writer{dst: dst, maxDepth: DefaultMaxDepth}
}

func newCountingWriter(maxDepth int) *Writer {
	return &Writer{counting: true, maxDepth: maxDepth}
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return w.pos
}

// Bytes returns the written portion of the destination buffer.
func (w *Writer) Bytes() []byte {
	if w.counting {
		return nil
	}
	return w.dst[:w.pos]
}

// reserve advances the cursor by n bytes and returns the region to fill.
// In counting mode the returned slice is nil.
func (w *Writer) reserve(n int) ([]byte, error) {
	if w.counting {
		w.pos += n
		return nil, nil
	}
	if len(w.dst)-w.pos < n {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrBufferTooSmall, n, w.pos, len(w.dst)-w.pos)
	}
	b := w.dst[w.pos : w.pos+n]
	w.pos += n
	return b, nil
}

func (w *Writer) expect(states ...writerState) error {
	for _, s := range states {
		if w.state == s {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnexpectedWriterState, w.state)
}

// padding returns the number of zero bytes needed to align n to 4.
func padding(n int) int {
	return (4 - n%4) % 4
}

// paddedLen returns the encoded size of a NUL-terminated string of n bytes.
func paddedLen(n int) int {
	return n + 1 + padding(n+1)
}

func (w *Writer) putPaddedString(s string) error {
	b, err := w.reserve(paddedLen(len(s)))
	if err != nil || b == nil {
		return err
	}
	n := copy(b, s)
	clear(b[n:])
	return nil
}

func (w *Writer) putUint32(v uint32) error {
	b, err := w.reserve(4)
	if err != nil || b == nil {
		return err
	}
	binary.BigEndian.PutUint32(b, v)
	return nil
}

func (w *Writer) putUint64(v uint64) error {
	b, err := w.reserve(8)
	if err != nil || b == nil {
		return err
	}
	binary.BigEndian.PutUint64(b, v)
	return nil
}

// WriteAddress writes the padded address followed by the ',' that opens
// the type-tag string.
func (w *Writer) WriteAddress(address string) error {
	if err := w.expect(writerNotStarted); err != nil {
		return err
	}
	if err := w.putPaddedString(address); err != nil {
		return err
	}
	w.tagStart = w.pos
	b, err := w.reserve(1)
	if err != nil {
		return err
	}
	if b != nil {
		b[0] = ','
	}
	w.state = writerTypeTag
	return nil
}

// WriteTypeTag appends one type-tag character.
func (w *Writer) WriteTypeTag(tok Token) error {
	if err := w.expect(writerTypeTag); err != nil {
		return err
	}
	c := tok.Tag()
	if c == 0 {
		return fmt.Errorf("%w: token %s has no type tag", ErrUnsupportedType, tok)
	}
	b, err := w.reserve(1)
	if err != nil {
		return err
	}
	if b != nil {
		b[0] = c
	}
	return nil
}

// WriteTypeTags writes the type tags for args, bracketing arrays.
func (w *Writer) WriteTypeTags(args []Value) error {
	for _, arg := range args {
		if arr, ok := arg.(Array); ok {
			if err := w.WriteTypeTag(TokenArrayStart); err != nil {
				return err
			}
			if err := w.WriteTypeTags(arr); err != nil {
				return err
			}
			if err := w.WriteTypeTag(TokenArrayEnd); err != nil {
				return err
			}
			continue
		}
		if arg == nil {
			return fmt.Errorf("%w: nil argument", ErrUnsupportedType)
		}
		if err := w.WriteTypeTag(arg.Token()); err != nil {
			return err
		}
	}
	return nil
}

// WriteTypeTagEnd NUL-terminates and pads the type-tag string.
func (w *Writer) WriteTypeTagEnd() error {
	if err := w.expect(writerTypeTag); err != nil {
		return err
	}
	b, err := w.reserve(1 + padding(w.pos-w.tagStart+1))
	if err != nil {
		return err
	}
	clear(b)
	w.state = writerArguments
	return nil
}

func (w *Writer) WriteInt32(v int32) error {
	if err := w.expect(writerArguments); err != nil {
		return err
	}
	return w.putUint32(uint32(v))
}

func (w *Writer) WriteInt64(v int64) error {
	if err := w.expect(writerArguments); err != nil {
		return err
	}
	return w.putUint64(uint64(v))
}

func (w *Writer) WriteFloat32(v float32) error {
	if err := w.expect(writerArguments); err != nil {
		return err
	}
	return w.putUint32(math.Float32bits(v))
}

func (w *Writer) WriteFloat64(v float64) error {
	if err := w.expect(writerArguments); err != nil {
		return err
	}
	return w.putUint64(math.Float64bits(v))
}

// WriteString writes a NUL-terminated, padded string. Strings and symbols
// share the same encoding.
func (w *Writer) WriteString(s string) error {
	if err := w.expect(writerArguments); err != nil {
		return err
	}
	return w.putPaddedString(s)
}

func (w *Writer) WriteSymbol(s string) error {
	return w.WriteString(s)
}

// WriteChar writes the character in the first byte of a 4-byte slot.
func (w *Writer) WriteChar(c byte) error {
	if err := w.expect(writerArguments); err != nil {
		return err
	}
	return w.putUint32(uint32(c) << 24)
}

func (w *Writer) WriteColor(c Color) error {
	if err := w.expect(writerArguments); err != nil {
		return err
	}
	return w.putUint32(c.ARGB())
}

func (w *Writer) WriteMidi(m Midi) error {
	if err := w.expect(writerArguments); err != nil {
		return err
	}
	return w.putUint32(m.Uint32())
}

func (w *Writer) WriteTimeTag(tt TimeTag) error {
	if err := w.expect(writerArguments); err != nil {
		return err
	}
	return w.putUint64(uint64(tt))
}

// WriteBlob writes a 4-byte length, the bytes, and padding.
func (w *Writer) WriteBlob(data []byte) error {
	if err := w.expect(writerArguments); err != nil {
		return err
	}
	if int64(len(data)) > math.MaxInt32 {
		return fmt.Errorf("%w: blob of %d bytes", ErrUnsupportedType, len(data))
	}
	if err := w.putUint32(uint32(len(data))); err != nil {
		return err
	}
	b, err := w.reserve(len(data) + padding(len(data)))
	if err != nil || b == nil {
		return err
	}
	n := copy(b, data)
	clear(b[n:])
	return nil
}

// WriteArgument writes the payload of v. Bool, Null and Impulse have none.
func (w *Writer) WriteArgument(v Value) error {
	return w.writeArgument(v, 0)
}

func (w *Writer) writeArgument(v Value, depth int) error {
	if err := w.expect(writerArguments); err != nil {
		return err
	}
	switch v := v.(type) {
	case Int32:
		return w.WriteInt32(int32(v))
	case Int64:
		return w.WriteInt64(int64(v))
	case Float32:
		return w.WriteFloat32(float32(v))
	case Float64:
		return w.WriteFloat64(float64(v))
	case String:
		return w.WriteString(string(v))
	case Symbol:
		return w.WriteSymbol(string(v))
	case Char:
		return w.WriteChar(byte(v))
	case Color:
		return w.WriteColor(v)
	case Midi:
		return w.WriteMidi(v)
	case TimeTag:
		return w.WriteTimeTag(v)
	case Blob:
		return w.WriteBlob(v)
	case Bool, Null, Impulse:
		return nil
	case Array:
		if depth >= w.maxDepth {
			return fmt.Errorf("%w: arrays nested deeper than %d", ErrMaxDepthExceeded, w.maxDepth)
		}
		for _, elem := range v {
			if err := w.writeArgument(elem, depth+1); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedType, v)
	}
}

// WriteBundleIdent starts a bundle, either at the top level or as the
// element following WriteBundleMessageLength.
func (w *Writer) WriteBundleIdent() error {
	if err := w.expect(writerNotStarted); err != nil {
		return err
	}
	if w.bundleDepth >= w.maxDepth {
		return fmt.Errorf("%w: bundles nested deeper than %d", ErrMaxDepthExceeded, w.maxDepth)
	}
	b, err := w.reserve(len(BundleIdent))
	if err != nil {
		return err
	}
	if b != nil {
		copy(b, BundleIdent)
	}
	w.bundleDepth++
	w.state = writerBundle
	return nil
}

// WriteBundleTimeTag writes the bundle time tag right after the ident.
func (w *Writer) WriteBundleTimeTag(tt TimeTag) error {
	if err := w.expect(writerBundle); err != nil {
		return err
	}
	return w.putUint64(uint64(tt))
}

// WriteBundleMessageLength writes the length prefix of the next bundle
// element and readies the writer for that element.
func (w *Writer) WriteBundleMessageLength(n int) error {
	if w.bundleDepth == 0 {
		return fmt.Errorf("%w: %s outside a bundle", ErrUnexpectedWriterState, w.state)
	}
	if err := w.expect(writerBundle, writerArguments); err != nil {
		return err
	}
	if n < 0 || n%4 != 0 || int64(n) > math.MaxInt32 {
		return fmt.Errorf("%w: %d", ErrInvalidBundleMessageLength, n)
	}
	if err := w.putUint32(uint32(n)); err != nil {
		return err
	}
	w.state = writerNotStarted
	return nil
}

// EndBundle closes the innermost open bundle.
func (w *Writer) EndBundle() error {
	if w.bundleDepth == 0 {
		return fmt.Errorf("%w: no open bundle", ErrUnexpectedWriterState)
	}
	if err := w.expect(writerBundle, writerArguments); err != nil {
		return err
	}
	w.bundleDepth--
	w.state = writerArguments
	if w.bundleDepth > 0 {
		w.state = writerBundle
	}
	return nil
}
