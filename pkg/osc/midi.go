package osc

import (
	"fmt"
	"strings"
)

// Midi is a 4-byte MIDI message ('m'): port id, status byte and two data
// bytes, packed on the wire in that order.
type Midi struct {
	Port   uint8
	Status uint8
	Data1  uint8
	Data2  uint8
}

// Token reports TokenMidi.
func (Midi) Token() Token { return TokenMidi }

// MidiMessageType is the high nibble of a channel status byte, or 0xF0 for
// system messages.
type MidiMessageType uint8

const (
	MidiNoteOff         MidiMessageType = 0x80
	MidiNoteOn          MidiMessageType = 0x90
	MidiPolyPressure    MidiMessageType = 0xA0
	MidiControlChange   MidiMessageType = 0xB0
	MidiProgramChange   MidiMessageType = 0xC0
	MidiChannelPressure MidiMessageType = 0xD0
	MidiPitchBend       MidiMessageType = 0xE0
	MidiSystem          MidiMessageType = 0xF0
)

var midiTypeNames = map[MidiMessageType]string{
	MidiNoteOff:         "NoteOff",
	MidiNoteOn:          "NoteOn",
	MidiPolyPressure:    "PolyPressure",
	MidiControlChange:   "ControlChange",
	MidiProgramChange:   "ProgramChange",
	MidiChannelPressure: "ChannelPressure",
	MidiPitchBend:       "PitchBend",
	MidiSystem:          "System",
}

// String returns the message type name.
func (t MidiMessageType) String() string {
	if name, ok := midiTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("MidiMessageType(0x%02X)", uint8(t))
}

// ParseMidiMessageType resolves a type name, ignoring case.
func ParseMidiMessageType(name string) (MidiMessageType, bool) {
	for t, n := range midiTypeNames {
		if strings.EqualFold(n, name) {
			return t, true
		}
	}
	return 0, false
}

// NewMidi builds a channel message. Channel is masked to 4 bits.
func NewMidi(port uint8, typ MidiMessageType, channel, data1, data2 uint8) Midi {
	return Midi{
		Port:   port,
		Status: uint8(typ)&0xF0 | channel&0x0F,
		Data1:  data1,
		Data2:  data2,
	}
}

// MessageType returns the high nibble of the status byte.
func (m Midi) MessageType() MidiMessageType {
	return MidiMessageType(m.Status & 0xF0)
}

// Channel returns the low nibble of the status byte.
func (m Midi) Channel() uint8 {
	return m.Status & 0x0F
}

// Uint32 packs the message as 0xPPSSDDDD, the wire layout.
func (m Midi) Uint32() uint32 {
	return uint32(m.Port)<<24 | uint32(m.Status)<<16 | uint32(m.Data1)<<8 | uint32(m.Data2)
}

// MidiFromUint32 unpacks a 0xPPSSDDDD value.
func MidiFromUint32(v uint32) Midi {
	return Midi{
		Port:   uint8(v >> 24),
		Status: uint8(v >> 16),
		Data1:  uint8(v >> 8),
		Data2:  uint8(v),
	}
}
