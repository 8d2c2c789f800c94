package osc

import (
	"fmt"
	"math"
	"strings"
)

// Packet is either a *Message or a *Bundle.
type Packet interface {
	// SizeInBytes returns the binary encoded size.
	SizeInBytes() int

	// MarshalBinary encodes the packet.
	MarshalBinary() ([]byte, error)

	// String renders the packet in the textual grammar.
	String() string

	isPacket()
	writeTo(w *Writer) error
	format(sb *strings.Builder)
}

var (
	_ Packet = (*Message)(nil)
	_ Packet = (*Bundle)(nil)
)

// PacketsEqual reports whether a and b are structurally equal.
func PacketsEqual(a, b Packet) bool {
	switch a := a.(type) {
	case *Message:
		bm, ok := b.(*Message)
		return ok && a.Equal(bm)
	case *Bundle:
		bb, ok := b.(*Bundle)
		return ok && a.Equal(bb)
	}
	return a == nil && b == nil
}

func sizeInBytes(p Packet) int {
	w := newCountingWriter(math.MaxInt)
	if err := p.writeTo(w); err != nil {
		// Only unvalidated values can fail in counting mode.
		panic(fmt.Sprintf("osc: sizing %T: %v", p, err))
	}
	return w.Len()
}

// IsBundle reports whether data starts with a bundle header. It only
// inspects the first bytes, so a datagram can be routed without decoding.
func IsBundle(data []byte) bool {
	return len(data) >= bundleHeaderSize && string(data[:len(BundleIdent)]) == BundleIdent
}

// Encode returns the binary encoding of p.
func Encode(p Packet) ([]byte, error) {
	return DefaultConfig().Encode(p)
}

// EncodeTo writes the binary encoding of p into dst and returns the number
// of bytes written. It fails with ErrBufferTooSmall if dst is too short.
func EncodeTo(p Packet, dst []byte) (int, error) {
	return DefaultConfig().EncodeTo(p, dst)
}

// Decode decodes a message or bundle, dispatching on a leading '#'.
func Decode(data []byte) (Packet, error) {
	return DefaultConfig().Decode(data)
}

// DecodeMessage decodes data as a message.
func DecodeMessage(data []byte) (*Message, error) {
	return DefaultConfig().DecodeMessage(data)
}

// DecodeBundle decodes data as a bundle.
func DecodeBundle(data []byte) (*Bundle, error) {
	return DefaultConfig().DecodeBundle(data)
}

// TryDecode is Decode reporting failure as ok == false.
func TryDecode(data []byte) (p Packet, ok bool) {
	p, err := Decode(data)
	if err != nil {
		return nil, false
	}
	return p, true
}

// Parse parses a message or bundle from the textual grammar.
func Parse(text string) (Packet, error) {
	return DefaultConfig().Parse(text)
}

// ParseMessage parses a message from the textual grammar.
func ParseMessage(text string) (*Message, error) {
	return DefaultConfig().ParseMessage(text)
}

// ParseBundle parses a bundle from the textual grammar.
func ParseBundle(text string) (*Bundle, error) {
	return DefaultConfig().ParseBundle(text)
}

// TryParse is Parse reporting failure as ok == false.
func TryParse(text string) (p Packet, ok bool) {
	p, err := Parse(text)
	if err != nil {
		return nil, false
	}
	return p, true
}

// Encode returns the binary encoding of p.
func (c Config) Encode(p Packet) ([]byte, error) {
	buf := make([]byte, p.SizeInBytes())
	n, err := c.EncodeTo(p, buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

// EncodeTo writes the binary encoding of p into dst.
func (c Config) EncodeTo(p Packet, dst []byte) (int, error) {
	w := c.newWriter(dst)
	if err := p.writeTo(w); err != nil {
		return 0, err
	}
	return w.Len(), nil
}

// Decode decodes a message or bundle.
func (c Config) Decode(data []byte) (Packet, error) {
	return readPacket(c.newReader(data), len(data), nil, 0)
}

// DecodeMessage decodes data as a message.
func (c Config) DecodeMessage(data []byte) (*Message, error) {
	return readMessage(c.newReader(data), len(data), nil)
}

// DecodeBundle decodes data as a bundle.
func (c Config) DecodeBundle(data []byte) (*Bundle, error) {
	return readBundle(c.newReader(data), len(data), 1)
}

// readPacket decodes the next n bytes as a bundle if they start with '#',
// otherwise as a message. depth is the nesting level of the enclosing
// bundle, 0 at the top.
func readPacket(r *Reader, n int, timestamp *TimeTag, depth int) (Packet, error) {
	if n > 0 {
		if c, err := r.PeekByte(); err == nil && c == '#' {
			return readBundle(r, n, depth+1)
		}
	}
	return readMessage(r, n, timestamp)
}

// Parse parses a message or bundle.
func (c Config) Parse(text string) (Packet, error) {
	p := newParser(text, c.maxDepth())
	pkt, err := p.parsePacket()
	if err != nil {
		return nil, err
	}
	if err := p.expectEnd(); err != nil {
		return nil, err
	}
	return pkt, nil
}

// ParseMessage parses text as a message.
func (c Config) ParseMessage(text string) (*Message, error) {
	p := newParser(text, c.maxDepth())
	m, err := p.parseMessage(false)
	if err != nil {
		return nil, err
	}
	if err := p.expectEnd(); err != nil {
		return nil, err
	}
	return m, nil
}

// ParseBundle parses text as a bundle, with or without outer braces.
func (c Config) ParseBundle(text string) (*Bundle, error) {
	p := newParser(text, c.maxDepth())
	braced := false
	if ch, ok := p.tok.PeekChar(); ok && ch == '{' {
		p.tok.Next()
		braced = true
	}
	b, err := p.parseBundle(braced)
	if err != nil {
		return nil, err
	}
	if err := p.expectEnd(); err != nil {
		return nil, err
	}
	return b, nil
}
