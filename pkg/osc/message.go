package osc

import (
	"fmt"
	"net"
	"slices"
	"strings"

	"github.com/oscwire/osc-go/pkg/address"
)

// Message is an OSC message: an address pattern and its arguments.
// Messages are immutable once built.
type Message struct {
	address   string
	args      []Value
	origin    net.Addr
	timestamp *TimeTag
}

// NewMessage validates address and args and builds a message. Invalid
// arguments are rejected here, not when the message is encoded. Arrays may
// nest DefaultMaxDepth deep; use Config.NewMessage for another limit.
func NewMessage(addr string, args ...Value) (*Message, error) {
	return DefaultConfig().NewMessage(addr, args...)
}

// NewMessage is like the package-level NewMessage with c.MaxDepth as the
// array nesting limit.
func (c Config) NewMessage(addr string, args ...Value) (*Message, error) {
	if err := address.ValidatePattern(addr); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidAddress, addr, err)
	}
	if err := validateArgs(args, 0, c.maxDepth()); err != nil {
		return nil, err
	}
	return &Message{address: addr, args: append(make([]Value, 0, len(args)), args...)}, nil
}

// MustMessage is like NewMessage but panics on error. Intended for
// literals in tests and examples.
func MustMessage(addr string, args ...Value) *Message {
	m, err := NewMessage(addr, args...)
	if err != nil {
		panic(err)
	}
	return m
}

func (*Message) isPacket() {}

// Address returns the address pattern.
func (m *Message) Address() string {
	return m.address
}

// Args returns a copy of the argument list.
func (m *Message) Args() []Value {
	return slices.Clone(m.args)
}

// Len returns the number of top-level arguments.
func (m *Message) Len() int {
	return len(m.args)
}

// Arg returns the i-th argument.
func (m *Message) Arg(i int) Value {
	return m.args[i]
}

// TypeTag returns the type-tag string, including the leading comma.
func (m *Message) TypeTag() string {
	return "," + TypeTag(m.args)
}

// Origin returns the address the message was received from, if known.
func (m *Message) Origin() net.Addr {
	return m.origin
}

// WithOrigin returns a copy of m carrying origin.
func (m *Message) WithOrigin(origin net.Addr) *Message {
	c := *m
	c.origin = origin
	return &c
}

// Timestamp returns the time tag of the bundle the message was decoded or
// parsed from. ok is false for messages not extracted from a bundle.
func (m *Message) Timestamp() (tt TimeTag, ok bool) {
	if m.timestamp == nil {
		return 0, false
	}
	return *m.timestamp, true
}

// SizeInBytes returns the encoded size. It is recomputed on every call by
// running the encoder in counting mode.
func (m *Message) SizeInBytes() int {
	return sizeInBytes(m)
}

// MarshalBinary encodes the message.
func (m *Message) MarshalBinary() ([]byte, error) {
	return Encode(m)
}

// MarshalText renders the message in the textual grammar.
func (m *Message) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// String renders the message in the textual grammar.
func (m *Message) String() string {
	return Format(m)
}

// Equal reports whether m and o have the same address and arguments, and
// the same timestamp when both carry one. Origins are ignored.
func (m *Message) Equal(o *Message) bool {
	if m == nil || o == nil {
		return m == o
	}
	if m.address != o.address || !ValuesEqual(m.args, o.args) {
		return false
	}
	if m.timestamp != nil && o.timestamp != nil && *m.timestamp != *o.timestamp {
		return false
	}
	return true
}

func (m *Message) writeTo(w *Writer) error {
	if err := w.WriteAddress(m.address); err != nil {
		return err
	}
	if err := w.WriteTypeTags(m.args); err != nil {
		return err
	}
	if err := w.WriteTypeTagEnd(); err != nil {
		return err
	}
	for _, arg := range m.args {
		if err := w.WriteArgument(arg); err != nil {
			return err
		}
	}
	return nil
}

func (m *Message) format(sb *strings.Builder) {
	formatMessage(sb, m)
}

// readMessage decodes a message occupying the next n bytes of r. Bytes
// after the last argument are skipped.
func readMessage(r *Reader, n int, timestamp *TimeTag) (*Message, error) {
	outer := r.limit
	end := r.pos + n
	if err := r.BeginMessage(n); err != nil {
		return nil, err
	}

	addr, err := r.ReadAddress()
	if err != nil {
		return nil, err
	}
	if err := address.ValidatePattern(addr); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidAddress, addr, err)
	}
	tags, err := r.ReadTypeTag()
	if err != nil {
		return nil, err
	}
	args, err := r.ReadArguments(&tags)
	if err != nil {
		return nil, err
	}

	r.pos = end
	r.limit = outer
	return &Message{address: addr, args: args, timestamp: timestamp}, nil
}
