package osc

import (
	"fmt"
	"net"
	"slices"
	"strings"
)

// Bundle is a time-tagged collection of packets, which may themselves be
// bundles.
type Bundle struct {
	timeTag TimeTag
	packets []Packet
	origin  net.Addr
}

// NewBundle builds a bundle. Nil packets and nesting beyond
// DefaultMaxDepth are rejected; use Config.NewBundle for another limit.
func NewBundle(tt TimeTag, packets ...Packet) (*Bundle, error) {
	return DefaultConfig().NewBundle(tt, packets...)
}

// NewBundle is like the package-level NewBundle with c.MaxDepth as the
// bundle nesting limit.
func (c Config) NewBundle(tt TimeTag, packets ...Packet) (*Bundle, error) {
	for i, p := range packets {
		if p == nil || p == (*Message)(nil) || p == (*Bundle)(nil) {
			return nil, fmt.Errorf("%w: packet %d is nil", ErrInvalidArgument, i)
		}
	}
	b := &Bundle{timeTag: tt, packets: append(make([]Packet, 0, len(packets)), packets...)}
	if d := b.depth(); d > c.maxDepth() {
		return nil, fmt.Errorf("%w: bundles nested %d deep, limit %d", ErrMaxDepthExceeded, d, c.maxDepth())
	}
	return b, nil
}

// MustBundle is like NewBundle but panics on error.
func MustBundle(tt TimeTag, packets ...Packet) *Bundle {
	b, err := NewBundle(tt, packets...)
	if err != nil {
		panic(err)
	}
	return b
}

func (*Bundle) isPacket() {}

// TimeTag returns the bundle's time tag.
func (b *Bundle) TimeTag() TimeTag {
	return b.timeTag
}

// Packets returns a copy of the element list.
func (b *Bundle) Packets() []Packet {
	return slices.Clone(b.packets)
}

// Len returns the number of elements.
func (b *Bundle) Len() int {
	return len(b.packets)
}

// Packet returns the i-th element.
func (b *Bundle) Packet(i int) Packet {
	return b.packets[i]
}

// Origin returns the address the bundle was received from, if known.
func (b *Bundle) Origin() net.Addr {
	return b.origin
}

// WithOrigin returns a copy of b carrying origin.
func (b *Bundle) WithOrigin(origin net.Addr) *Bundle {
	c := *b
	c.origin = origin
	return &c
}

// Messages returns every message in the bundle, depth first.
func (b *Bundle) Messages() []*Message {
	var out []*Message
	for _, p := range b.packets {
		switch p := p.(type) {
		case *Message:
			out = append(out, p)
		case *Bundle:
			out = append(out, p.Messages()...)
		}
	}
	return out
}

// depth returns the bundle nesting depth, counting b as one.
func (b *Bundle) depth() int {
	d := 0
	for _, p := range b.packets {
		if sub, ok := p.(*Bundle); ok {
			d = max(d, sub.depth())
		}
	}
	return d + 1
}

// SizeInBytes returns the encoded size, recomputed on every call.
func (b *Bundle) SizeInBytes() int {
	return sizeInBytes(b)
}

// MarshalBinary encodes the bundle.
func (b *Bundle) MarshalBinary() ([]byte, error) {
	return Encode(b)
}

// MarshalText renders the bundle in the textual grammar.
func (b *Bundle) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// String renders the bundle in the textual grammar.
func (b *Bundle) String() string {
	return Format(b)
}

// Equal reports whether b and o have the same time tag and structurally
// equal elements. Origins are ignored.
func (b *Bundle) Equal(o *Bundle) bool {
	if b == nil || o == nil {
		return b == o
	}
	if b.timeTag != o.timeTag || len(b.packets) != len(o.packets) {
		return false
	}
	for i := range b.packets {
		if !PacketsEqual(b.packets[i], o.packets[i]) {
			return false
		}
	}
	return true
}

func (b *Bundle) writeTo(w *Writer) error {
	if err := w.WriteBundleIdent(); err != nil {
		return err
	}
	if err := w.WriteBundleTimeTag(b.timeTag); err != nil {
		return err
	}
	for _, p := range b.packets {
		if err := w.WriteBundleMessageLength(p.SizeInBytes()); err != nil {
			return err
		}
		if err := p.writeTo(w); err != nil {
			return err
		}
	}
	return w.EndBundle()
}

func (b *Bundle) format(sb *strings.Builder) {
	formatBundle(sb, b)
}

// readBundle decodes a bundle occupying the next n bytes of r. Message
// elements inherit the bundle's time tag.
func readBundle(r *Reader, n, depth int) (*Bundle, error) {
	if depth > r.maxDepth {
		return nil, fmt.Errorf("%w: bundles nested deeper than %d", ErrMaxDepthExceeded, r.maxDepth)
	}
	outer := r.limit
	if err := r.BeginBundle(n); err != nil {
		return nil, err
	}
	end := r.limit

	if err := r.ReadBundleIdent(); err != nil {
		return nil, err
	}
	tt, err := r.ReadBundleTimeTag()
	if err != nil {
		return nil, err
	}

	packets := []Packet{}
	for r.pos < end {
		length, err := r.ReadBundleMessageLength(end)
		if err != nil {
			return nil, err
		}
		p, err := readPacket(r, length, &tt, depth)
		if err != nil {
			return nil, err
		}
		packets = append(packets, p)
	}

	r.limit = outer
	return &Bundle{timeTag: tt, packets: packets}, nil
}
