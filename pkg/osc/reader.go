package osc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// Reader is a bounds-checked cursor over a borrowed byte slice. It must
// not outlive the call that supplied the slice, and string values it
// returns are copies, never views into the buffer.
type Reader struct {
	data     []byte
	pos      int
	limit    int
	maxDepth int
}

// NewReader returns a Reader over data with its limit at len(data).
func NewReader(data []byte) *Reader {
	return &Reader{data: data, limit: len(data), maxDepth: DefaultMaxDepth}
}

// Pos returns the current offset.
func (r *Reader) Pos() int {
	return r.pos
}

// Limit returns the offset reads may not pass.
func (r *Reader) Limit() int {
	return r.limit
}

// Remaining returns the number of readable bytes before the limit.
func (r *Reader) Remaining() int {
	return r.limit - r.pos
}

// BeginMessage fixes the read limit to n bytes past the current position.
func (r *Reader) BeginMessage(n int) error {
	return r.begin(n)
}

// BeginBundle fixes the read limit to n bytes past the current position.
func (r *Reader) BeginBundle(n int) error {
	return r.begin(n)
}

func (r *Reader) begin(n int) error {
	if n < 0 || r.pos+n > r.limit {
		return fmt.Errorf("%w: region of %d bytes at offset %d exceeds limit %d", ErrOutOfBounds, n, r.pos, r.limit)
	}
	r.limit = r.pos + n
	return nil
}

func (r *Reader) take(n int) ([]byte, error) {
	if n < 0 || r.limit-r.pos < n {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, limit %d", ErrOutOfBounds, n, r.pos, r.limit)
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// Skip advances past n bytes.
func (r *Reader) Skip(n int) error {
	_, err := r.take(n)
	return err
}

// PeekByte returns the next byte without consuming it.
func (r *Reader) PeekByte() (byte, error) {
	if r.pos >= r.limit {
		return 0, fmt.Errorf("%w: peek at offset %d", ErrOutOfBounds, r.pos)
	}
	return r.data[r.pos], nil
}

// PeekBundle reports whether the next bytes are a bundle ident.
func (r *Reader) PeekBundle() bool {
	return r.Remaining() >= len(BundleIdent) &&
		string(r.data[r.pos:r.pos+len(BundleIdent)]) == BundleIdent
}

// readPaddedString reads up to a NUL and skips the padding after it.
func (r *Reader) readPaddedString() (string, error) {
	rest := r.data[r.pos:r.limit]
	n := bytes.IndexByte(rest, 0)
	if n < 0 {
		return "", fmt.Errorf("%w: unterminated string at offset %d", ErrOutOfBounds, r.pos)
	}
	s := string(rest[:n])
	if _, err := r.take(paddedLen(n)); err != nil {
		return "", err
	}
	return s, nil
}

// ReadAddress reads the NUL-terminated, padded address.
func (r *Reader) ReadAddress() (string, error) {
	return r.readPaddedString()
}

// ReadTypeTag reads the type-tag string and returns a scanner over it.
// When no bytes remain the message has no type tag (pre-1.0 senders) and
// an empty scanner is returned.
func (r *Reader) ReadTypeTag() (TagScanner, error) {
	if r.Remaining() == 0 {
		return TagScanner{}, nil
	}
	start := r.pos
	if c, _ := r.PeekByte(); c != ',' {
		return TagScanner{}, fmt.Errorf("%w: type tag at offset %d starts with %q", ErrUnexpectedToken, start, c)
	}
	tags, err := r.readPaddedString()
	if err != nil {
		return TagScanner{}, err
	}
	return NewTagScanner(tags), nil
}

func (r *Reader) readUint32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (r *Reader) readUint64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

// ReadBlob reads a length-prefixed, padded byte sequence. The result is a
// copy.
func (r *Reader) ReadBlob() ([]byte, error) {
	n, err := r.readUint32()
	if err != nil {
		return nil, err
	}
	if n > math.MaxInt32 {
		return nil, fmt.Errorf("%w: negative blob length at offset %d", ErrOutOfBounds, r.pos-4)
	}
	b, err := r.take(int(n) + padding(int(n)))
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// ReadArgument consumes the next token of tags and the payload it
// describes. ArrayEnd and End are not arguments and yield
// ErrUnexpectedToken.
func (r *Reader) ReadArgument(tags *TagScanner) (Value, error) {
	return r.readArgument(tags, 0)
}

func (r *Reader) readArgument(tags *TagScanner, depth int) (Value, error) {
	tok, err := tags.Next()
	if err != nil {
		return nil, err
	}
	switch tok {
	case TokenInt:
		v, err := r.readUint32()
		return Int32(int32(v)), err
	case TokenLong:
		v, err := r.readUint64()
		return Int64(int64(v)), err
	case TokenFloat:
		v, err := r.readUint32()
		return Float32(math.Float32frombits(v)), err
	case TokenDouble:
		v, err := r.readUint64()
		return Float64(math.Float64frombits(v)), err
	case TokenString:
		s, err := r.readPaddedString()
		return String(s), err
	case TokenSymbol:
		s, err := r.readPaddedString()
		return Symbol(s), err
	case TokenChar:
		v, err := r.readUint32()
		return Char(byte(v >> 24)), err
	case TokenColor:
		v, err := r.readUint32()
		return ColorFromARGB(v), err
	case TokenMidi:
		v, err := r.readUint32()
		return MidiFromUint32(v), err
	case TokenTimeTag:
		v, err := r.readUint64()
		return TimeTag(v), err
	case TokenBlob:
		b, err := r.ReadBlob()
		return Blob(b), err
	case TokenTrue:
		return Bool(true), nil
	case TokenFalse:
		return Bool(false), nil
	case TokenNull:
		return Null{}, nil
	case TokenImpulse:
		return Impulse{}, nil
	case TokenArrayStart:
		return r.readArray(tags, depth+1)
	default:
		return nil, fmt.Errorf("%w: %s in type tag %q", ErrUnexpectedToken, tok, tags.Tags())
	}
}

// readArray reads the elements following an ArrayStart up to and including
// the matching ArrayEnd.
func (r *Reader) readArray(tags *TagScanner, depth int) (Value, error) {
	if depth > r.maxDepth {
		return nil, fmt.Errorf("%w: arrays nested deeper than %d", ErrMaxDepthExceeded, r.maxDepth)
	}
	count, _, err := tags.CountArray()
	if err != nil {
		return nil, err
	}
	arr := make(Array, count)
	for i := range arr {
		if arr[i], err = r.readArgument(tags, depth); err != nil {
			return nil, err
		}
	}
	if tok, err := tags.Next(); err != nil {
		return nil, err
	} else if tok != TokenArrayEnd {
		return nil, fmt.Errorf("%w: expected ArrayEnd, got %s", ErrUnexpectedToken, tok)
	}
	return arr, nil
}

// ReadArguments reads every argument described by tags.
func (r *Reader) ReadArguments(tags *TagScanner) ([]Value, error) {
	count, _, err := tags.Count()
	if err != nil {
		return nil, err
	}
	args := make([]Value, count)
	for i := range args {
		if args[i], err = r.ReadArgument(tags); err != nil {
			return nil, err
		}
	}
	return args, nil
}

// ReadBundleIdent consumes the 8-byte bundle marker.
func (r *Reader) ReadBundleIdent() error {
	if !r.PeekBundle() {
		return fmt.Errorf("%w at offset %d", ErrInvalidBundleIdent, r.pos)
	}
	r.pos += len(BundleIdent)
	return nil
}

// ReadBundleTimeTag reads the 8-byte bundle time tag.
func (r *Reader) ReadBundleTimeTag() (TimeTag, error) {
	v, err := r.readUint64()
	return TimeTag(v), err
}

// ReadBundleMessageLength reads the length prefix of the next bundle
// element and checks that the element fits before end.
func (r *Reader) ReadBundleMessageLength(end int) (int, error) {
	if end > r.limit {
		end = r.limit
	}
	if end-r.pos < 4 {
		return 0, fmt.Errorf("%w: %d bytes left for length at offset %d", ErrInvalidBundleMessageHeader, end-r.pos, r.pos)
	}
	n := int32(binary.BigEndian.Uint32(r.data[r.pos:]))
	r.pos += 4
	length := int(n)
	if length < 0 || length%4 != 0 || r.pos+length > end {
		return 0, fmt.Errorf("%w: %d at offset %d, bundle ends at %d", ErrInvalidBundleMessageLength, length, r.pos-4, end)
	}
	return length, nil
}
