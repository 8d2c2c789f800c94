package log

import (
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var captureBase = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func writeCapture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "capture.olog")

	logger, err := NewFileLogger(path)
	require.NoError(t, err)
	events := []Event{
		{SessionID: "a", Direction: DirectionIn, Layer: LayerFrame, Category: CategoryPacket, Frame: &FrameEvent{Size: 16}},
		{SessionID: "a", Direction: DirectionIn, Layer: LayerCodec, Category: CategoryPacket, Packet: &PacketEvent{Kind: PacketKindMessage, Address: "/mixer/fader"}},
		{SessionID: "a", Direction: DirectionOut, Layer: LayerCodec, Category: CategoryPacket, Packet: &PacketEvent{Kind: PacketKindMessage, Address: "/transport/play"}},
		{SessionID: "b", Direction: DirectionIn, Layer: LayerCodec, Category: CategoryPacket, Packet: &PacketEvent{Kind: PacketKindBundle, Elements: 2}},
		{SessionID: "b", Direction: DirectionIn, Layer: LayerCodec, Category: CategoryError, Error: &ErrorEventData{Layer: LayerCodec, Message: "bad"}},
		{SessionID: "b", Category: CategoryState, StateChange: &StateChangeEvent{OldState: "open", NewState: "closed"}},
	}
	for i, ev := range events {
		ev.Timestamp = captureBase.Add(time.Duration(i) * time.Second)
		logger.Log(ev)
	}
	require.NoError(t, logger.Close())
	return path
}

func ptr[T any](v T) *T { return &v }

func TestReaderNextUntilEOF(t *testing.T) {
	r, err := NewReader(writeCapture(t))
	require.NoError(t, err)
	defer r.Close()

	n := 0
	for {
		_, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		n++
	}
	assert.Equal(t, 6, n)
}

func TestReaderFilters(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"none", Filter{}, 6},
		{"session", Filter{SessionID: "b"}, 3},
		{"direction out", Filter{Direction: ptr(DirectionOut)}, 1},
		{"codec layer", Filter{Layer: ptr(LayerCodec)}, 4},
		{"errors", Filter{Category: ptr(CategoryError)}, 1},
		{"time start", Filter{TimeStart: ptr(captureBase.Add(4 * time.Second))}, 2},
		{"time end", Filter{TimeEnd: ptr(captureBase.Add(2 * time.Second))}, 2},
		{"address prefix", Filter{AddressPrefix: "/mixer"}, 1},
		{"address root", Filter{AddressPrefix: "/"}, 2},
		{"combined", Filter{SessionID: "a", Layer: ptr(LayerCodec), Direction: ptr(DirectionIn)}, 1},
		{"no match", Filter{SessionID: "zzz"}, 0},
	}

	path := writeCapture(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewFilteredReader(path, tt.filter)
			require.NoError(t, err)
			defer r.Close()

			events, err := r.All()
			require.NoError(t, err)
			assert.Len(t, events, tt.want)
		})
	}
}

func TestReaderMissingFile(t *testing.T) {
	_, err := NewReader(filepath.Join(t.TempDir(), "nope.olog"))
	assert.Error(t, err)
}
