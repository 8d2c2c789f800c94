package log

import (
	"testing"
	"time"
)

func TestNoopLoggerDoesNotPanic(t *testing.T) {
	logger := NoopLogger{}

	event := Event{
		Timestamp: time.Now(),
		SessionID: "session",
		Direction: DirectionIn,
		Layer:     LayerFrame,
		Category:  CategoryPacket,
	}
	logger.Log(event)

	event.Frame = &FrameEvent{Size: 100, Data: []byte{1, 2, 3}}
	logger.Log(event)

	event.Frame = nil
	event.Packet = &PacketEvent{Kind: PacketKindBundle}
	logger.Log(event)

	event.Packet = nil
	event.Error = &ErrorEventData{Message: "boom"}
	logger.Log(event)
}

func TestNoopLoggerIsZeroValue(t *testing.T) {
	var logger NoopLogger
	logger.Log(Event{})
}
