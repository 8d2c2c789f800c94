package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureSlog(t *testing.T, event Event) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	NewSlogAdapter(slog.New(handler)).Log(event)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	return record
}

func TestSlogAdapterPacket(t *testing.T) {
	record := captureSlog(t, Event{
		Timestamp:  time.Now(),
		SessionID:  "s-1",
		Direction:  DirectionIn,
		Layer:      LayerCodec,
		Category:   CategoryPacket,
		RemoteAddr: "127.0.0.1:9000",
		Framing:    "slip",
		Packet:     &PacketEvent{Kind: PacketKindMessage, Address: "/a", TypeTag: ",i", Size: 12},
	})

	assert.Equal(t, "DEBUG", record["level"])
	assert.Equal(t, "osc", record["msg"])
	assert.Equal(t, "s-1", record["session"])
	assert.Equal(t, "IN", record["direction"])
	assert.Equal(t, "CODEC", record["layer"])
	assert.Equal(t, "PACKET", record["category"])
	assert.Equal(t, "127.0.0.1:9000", record["remote"])
	assert.Equal(t, "slip", record["framing"])
	assert.Equal(t, "MESSAGE", record["kind"])
	assert.Equal(t, "/a", record["address"])
	assert.Equal(t, ",i", record["type_tag"])
	assert.EqualValues(t, 12, record["size"])
}

func TestSlogAdapterBundle(t *testing.T) {
	record := captureSlog(t, Event{
		SessionID: "s",
		Layer:     LayerCodec,
		Packet:    &PacketEvent{Kind: PacketKindBundle, TimeTag: 1, Elements: 3},
	})
	assert.Equal(t, "BUNDLE", record["kind"])
	assert.EqualValues(t, 3, record["elements"])
	assert.NotContains(t, record, "address")
}

func TestSlogAdapterFrameStateError(t *testing.T) {
	frame := captureSlog(t, Event{Frame: &FrameEvent{Size: 20, Truncated: true}})
	assert.EqualValues(t, 20, frame["frame_size"])
	assert.Equal(t, true, frame["truncated"])
	assert.NotContains(t, frame, "remote")

	state := captureSlog(t, Event{Category: CategoryState, StateChange: &StateChangeEvent{OldState: "open", NewState: "closed", Reason: "eof"}})
	assert.Equal(t, "closed", state["new_state"])
	assert.Equal(t, "eof", state["reason"])

	failure := captureSlog(t, Event{Category: CategoryError, Error: &ErrorEventData{Layer: LayerFrame, Message: "too large", Context: "read"}})
	assert.Equal(t, "FRAME", failure["error_layer"])
	assert.Equal(t, "too large", failure["error_msg"])
	assert.Equal(t, "read", failure["error_context"])
}

func TestSlogAdapterRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	NewSlogAdapter(slog.New(handler)).Log(Event{SessionID: "hidden"})
	assert.Zero(t, buf.Len())
}
