package log

import (
	"time"

	"github.com/google/uuid"

	"github.com/oscwire/osc-go/pkg/osc"
)

// Event represents a protocol capture event.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID identifies the stream or capture session (UUID).
	SessionID string `cbor:"2,keyasint"`

	// Direction indicates packet flow.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// RemoteAddr is the peer address, when known.
	RemoteAddr string `cbor:"6,keyasint,omitempty"`

	// Framing names the stream framing ("length-prefix" or "slip").
	Framing string `cbor:"7,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Frame       *FrameEvent       `cbor:"10,keyasint,omitempty"` // Framing layer
	Packet      *PacketEvent      `cbor:"11,keyasint,omitempty"` // Codec layer (decoded)
	StateChange *StateChangeEvent `cbor:"12,keyasint,omitempty"` // Stream lifecycle
	Error       *ErrorEventData   `cbor:"14,keyasint,omitempty"` // Errors at any layer
}

// NewSessionID returns a fresh random session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

// Direction indicates the direction of packet flow.
type Direction uint8

const (
	// DirectionIn indicates an incoming packet.
	DirectionIn Direction = 0
	// DirectionOut indicates an outgoing packet.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates which layer captured the event.
type Layer uint8

const (
	// LayerFrame is the stream framing layer (raw bytes).
	LayerFrame Layer = 0
	// LayerCodec is the packet codec layer (decoded OSC).
	LayerCodec Layer = 1
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerFrame:
		return "FRAME"
	case LayerCodec:
		return "CODEC"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryPacket indicates a frame or packet crossing the stream.
	CategoryPacket Category = 0
	// CategoryState indicates a stream state change.
	CategoryState Category = 1
	// CategoryError indicates an error event.
	CategoryError Category = 2
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryPacket:
		return "PACKET"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// FrameEvent captures raw frame data at the framing layer.
type FrameEvent struct {
	// Size is the frame size in bytes as it appeared on the stream,
	// including the length prefix or SLIP delimiters and escapes.
	Size int `cbor:"1,keyasint"`

	// Data is the packet bytes (may be truncated for large frames).
	Data []byte `cbor:"2,keyasint,omitempty"`

	// Truncated indicates if Data was truncated.
	Truncated bool `cbor:"3,keyasint,omitempty"`
}

// PacketKind distinguishes messages from bundles.
type PacketKind uint8

const (
	// PacketKindMessage indicates an OSC message.
	PacketKindMessage PacketKind = 0
	// PacketKindBundle indicates an OSC bundle.
	PacketKindBundle PacketKind = 1
)

// String returns the packet kind name.
func (k PacketKind) String() string {
	switch k {
	case PacketKindMessage:
		return "MESSAGE"
	case PacketKindBundle:
		return "BUNDLE"
	default:
		return "UNKNOWN"
	}
}

// MaxLogTextSize bounds the textual rendering stored in a PacketEvent.
const MaxLogTextSize = 1024

// PacketEvent captures a decoded packet at the codec layer.
type PacketEvent struct {
	// Kind is message or bundle.
	Kind PacketKind `cbor:"1,keyasint"`

	// Address is the message address pattern (messages only).
	Address string `cbor:"2,keyasint,omitempty"`

	// TypeTag is the type-tag string including the leading comma
	// (messages only).
	TypeTag string `cbor:"3,keyasint,omitempty"`

	// Size is the binary encoded size.
	Size int `cbor:"4,keyasint"`

	// TimeTag is the raw bundle time tag (bundles only).
	TimeTag uint64 `cbor:"5,keyasint,omitempty"`

	// Elements is the number of direct bundle elements (bundles only).
	Elements int `cbor:"6,keyasint,omitempty"`

	// Text is the packet in text form, truncated to MaxLogTextSize.
	Text string `cbor:"7,keyasint,omitempty"`

	// Truncated indicates if Text was truncated.
	Truncated bool `cbor:"8,keyasint,omitempty"`
}

// NewPacketEvent summarises p for capture.
func NewPacketEvent(p osc.Packet) *PacketEvent {
	ev := &PacketEvent{Size: p.SizeInBytes()}
	switch p := p.(type) {
	case *osc.Message:
		ev.Kind = PacketKindMessage
		ev.Address = p.Address()
		ev.TypeTag = p.TypeTag()
	case *osc.Bundle:
		ev.Kind = PacketKindBundle
		ev.TimeTag = uint64(p.TimeTag())
		ev.Elements = p.Len()
	}
	ev.Text = p.String()
	if len(ev.Text) > MaxLogTextSize {
		ev.Text = ev.Text[:MaxLogTextSize]
		ev.Truncated = true
	}
	return ev
}

// StateChangeEvent captures stream lifecycle events.
type StateChangeEvent struct {
	// OldState is the previous state (may be empty).
	OldState string `cbor:"1,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"2,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"3,keyasint,omitempty"`
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Context describes what operation was being performed.
	Context string `cbor:"3,keyasint,omitempty"`
}
