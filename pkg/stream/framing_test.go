package stream

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/oscwire/osc-go/pkg/log"
	"github.com/oscwire/osc-go/pkg/osc"
)

var framings = []Framing{FramingLengthPrefix, FramingSLIP}

func TestFrameWriterReader(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{"small message", []byte("hello")},
		{"medium message", bytes.Repeat([]byte("x"), 1000)},
		{"max size message", bytes.Repeat([]byte("y"), DefaultMaxMessageSize)},
		{"single byte", []byte{0x42}},
		{"binary data", []byte{0x00, 0xFF, 0x7F, 0x80}},
		{"slip specials", []byte{slipEnd, slipEsc, slipEscEnd, slipEscEsc, slipEnd}},
	}

	for _, framing := range framings {
		for _, tt := range tests {
			t.Run(framing.String()+"/"+tt.name, func(t *testing.T) {
				buf := new(bytes.Buffer)

				writer := NewFrameWriter(buf, framing)
				if err := writer.WriteFrame(tt.payload); err != nil {
					t.Fatalf("WriteFrame failed: %v", err)
				}

				if want := FrameSize(framing, tt.payload); buf.Len() != want {
					t.Errorf("frame size = %d, want %d", buf.Len(), want)
				}

				reader := NewFrameReader(buf, framing)
				got, err := reader.ReadFrame()
				if err != nil {
					t.Fatalf("ReadFrame failed: %v", err)
				}
				if !bytes.Equal(got, tt.payload) {
					t.Errorf("payload mismatch: got %d bytes, want %d bytes", len(got), len(tt.payload))
				}
			})
		}
	}
}

func TestAppendFrameSLIPEscaping(t *testing.T) {
	got := AppendFrame(nil, FramingSLIP, []byte{0x01, slipEnd, 0x02, slipEsc})
	want := []byte{slipEnd, 0x01, slipEsc, slipEscEnd, 0x02, slipEsc, slipEscEsc, slipEnd}
	if !bytes.Equal(got, want) {
		t.Errorf("AppendFrame = % x, want % x", got, want)
	}
}

func TestAppendFrameLengthPrefix(t *testing.T) {
	got := AppendFrame([]byte{0xAA}, FramingLengthPrefix, []byte("abc"))
	want := []byte{0xAA, 0, 0, 0, 3, 'a', 'b', 'c'}
	if !bytes.Equal(got, want) {
		t.Errorf("AppendFrame = % x, want % x", got, want)
	}
}

func TestFrameWriterEmptyMessage(t *testing.T) {
	for _, framing := range framings {
		writer := NewFrameWriter(new(bytes.Buffer), framing)
		if err := writer.WriteFrame(nil); !errors.Is(err, ErrMessageEmpty) {
			t.Errorf("%s: expected ErrMessageEmpty, got %v", framing, err)
		}
	}
}

func TestFrameWriterMessageTooLarge(t *testing.T) {
	for _, framing := range framings {
		writer := NewFrameWriterWithMaxSize(new(bytes.Buffer), framing, 4)
		if err := writer.WriteFrame([]byte("12345")); !errors.Is(err, ErrMessageTooLarge) {
			t.Errorf("%s: expected ErrMessageTooLarge, got %v", framing, err)
		}
	}
}

func TestFrameReaderMessageTooLarge(t *testing.T) {
	var lengthBuf [LengthPrefixSize]byte
	binary.BigEndian.PutUint32(lengthBuf[:], 100)

	reader := NewFrameReaderWithMaxSize(bytes.NewReader(lengthBuf[:]), FramingLengthPrefix, 50)
	if _, err := reader.ReadFrame(); !errors.Is(err, ErrMessageTooLarge) {
		t.Errorf("expected ErrMessageTooLarge, got %v", err)
	}
}

func TestFrameReaderSLIPTooLargeResynchronises(t *testing.T) {
	var stream []byte
	stream = AppendFrame(stream, FramingSLIP, []byte("this frame is too long"))
	stream = AppendFrame(stream, FramingSLIP, []byte("ok"))

	reader := NewFrameReaderWithMaxSize(bytes.NewReader(stream), FramingSLIP, 8)
	if _, err := reader.ReadFrame(); !errors.Is(err, ErrMessageTooLarge) {
		t.Fatalf("expected ErrMessageTooLarge, got %v", err)
	}
	got, err := reader.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame after oversized frame: %v", err)
	}
	if string(got) != "ok" {
		t.Errorf("got %q, want %q", got, "ok")
	}
}

func TestFrameReaderEmptyLength(t *testing.T) {
	reader := NewFrameReader(bytes.NewReader([]byte{0, 0, 0, 0}), FramingLengthPrefix)
	if _, err := reader.ReadFrame(); !errors.Is(err, ErrMessageEmpty) {
		t.Errorf("expected ErrMessageEmpty, got %v", err)
	}
}

func TestFrameReaderTruncated(t *testing.T) {
	tests := []struct {
		name    string
		framing Framing
		data    []byte
	}{
		{"length prefix", FramingLengthPrefix, []byte{0, 0}},
		{"payload", FramingLengthPrefix, []byte{0, 0, 0, 10, 'a', 'b'}},
		{"slip without closing end", FramingSLIP, []byte{slipEnd, 'a', 'b'}},
		{"slip dangling escape", FramingSLIP, []byte{slipEnd, slipEsc}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := NewFrameReader(bytes.NewReader(tt.data), tt.framing)
			if _, err := reader.ReadFrame(); !errors.Is(err, ErrFrameTruncated) {
				t.Errorf("expected ErrFrameTruncated, got %v", err)
			}
		})
	}
}

func TestFrameReaderInvalidEscape(t *testing.T) {
	data := []byte{slipEnd, 'a', slipEsc, 'x', 'b', slipEnd}
	data = AppendFrame(data, FramingSLIP, []byte("next"))

	reader := NewFrameReader(bytes.NewReader(data), FramingSLIP)
	if _, err := reader.ReadFrame(); !errors.Is(err, ErrInvalidEscape) {
		t.Fatalf("expected ErrInvalidEscape, got %v", err)
	}
	got, err := reader.ReadFrame()
	if err != nil || string(got) != "next" {
		t.Errorf("ReadFrame after bad escape = %q, %v", got, err)
	}
}

func TestFrameReaderSkipsEmptySLIPFrames(t *testing.T) {
	data := []byte{slipEnd, slipEnd, slipEnd, 'h', 'i', slipEnd, slipEnd}
	reader := NewFrameReader(bytes.NewReader(data), FramingSLIP)

	got, err := reader.ReadFrame()
	if err != nil || string(got) != "hi" {
		t.Fatalf("ReadFrame = %q, %v", got, err)
	}
	if _, err := reader.ReadFrame(); err != io.EOF {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestFrameReaderSLIPWithoutLeadingEnd(t *testing.T) {
	reader := NewFrameReader(bytes.NewReader([]byte{'a', 'b', slipEnd}), FramingSLIP)
	got, err := reader.ReadFrame()
	if err != nil || string(got) != "ab" {
		t.Errorf("ReadFrame = %q, %v", got, err)
	}
}

func TestFrameReaderEOF(t *testing.T) {
	for _, framing := range framings {
		reader := NewFrameReader(new(bytes.Buffer), framing)
		if _, err := reader.ReadFrame(); err != io.EOF {
			t.Errorf("%s: expected io.EOF, got %v", framing, err)
		}
	}
}

func TestMultipleFrames(t *testing.T) {
	messages := [][]byte{[]byte("first"), []byte("second"), {slipEnd}}

	for _, framing := range framings {
		buf := new(bytes.Buffer)
		writer := NewFrameWriter(buf, framing)
		for _, msg := range messages {
			if err := writer.WriteFrame(msg); err != nil {
				t.Fatalf("WriteFrame failed: %v", err)
			}
		}

		reader := NewFrameReader(buf, framing)
		for i, want := range messages {
			got, err := reader.ReadFrame()
			if err != nil {
				t.Fatalf("%s: ReadFrame %d failed: %v", framing, i, err)
			}
			if !bytes.Equal(got, want) {
				t.Errorf("%s: message %d mismatch: got %q, want %q", framing, i, got, want)
			}
		}
		if _, err := reader.ReadFrame(); err != io.EOF {
			t.Errorf("%s: expected EOF after all messages, got %v", framing, err)
		}
	}
}

func TestFramerBidirectional(t *testing.T) {
	r, w := io.Pipe()
	defer r.Close()
	defer w.Close()

	done := make(chan struct{})
	payload := []byte("test message")

	go func() {
		defer close(done)
		framer := NewFramer(&readWriter{r: r, w: w}, FramingSLIP)
		if err := framer.WriteFrame(payload); err != nil {
			t.Errorf("WriteFrame failed: %v", err)
		}
	}()

	framer := NewFramer(&readWriter{r: r, w: w}, FramingSLIP)
	got, err := framer.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame failed: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("payload mismatch")
	}

	<-done
}

// readWriter combines a reader and writer for testing.
type readWriter struct {
	r io.Reader
	w io.Writer
}

func (rw *readWriter) Read(p []byte) (n int, err error) {
	return rw.r.Read(p)
}

func (rw *readWriter) Write(p []byte) (n int, err error) {
	return rw.w.Write(p)
}

func TestFrameSize(t *testing.T) {
	if got := FrameSize(FramingLengthPrefix, make([]byte, 100)); got != 104 {
		t.Errorf("FrameSize(length-prefix, 100) = %d, want 104", got)
	}
	if got := FrameSize(FramingSLIP, []byte{1, slipEnd, slipEsc}); got != 7 {
		t.Errorf("FrameSize(slip) = %d, want 7", got)
	}
}

func TestParseFraming(t *testing.T) {
	tests := []struct {
		in   string
		want Framing
	}{
		{"slip", FramingSLIP},
		{"SLIP", FramingSLIP},
		{"osc1.1", FramingSLIP},
		{"length-prefix", FramingLengthPrefix},
		{"osc1.0", FramingLengthPrefix},
		{" length ", FramingLengthPrefix},
	}
	for _, tt := range tests {
		got, err := ParseFraming(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseFraming(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
	if _, err := ParseFraming("cobs"); !errors.Is(err, ErrUnknownFraming) {
		t.Errorf("expected ErrUnknownFraming, got %v", err)
	}
	if got := Framing(9).String(); got != "Framing(9)" {
		t.Errorf("String() = %q", got)
	}
}

// capturingLogger captures log events for testing.
type capturingLogger struct {
	mu     sync.Mutex
	events []log.Event
}

func (l *capturingLogger) Log(event log.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
}

func (l *capturingLogger) Events() []log.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]log.Event(nil), l.events...)
}

func TestFrameWriterLogsOnWrite(t *testing.T) {
	buf := new(bytes.Buffer)
	logger := &capturingLogger{}

	writer := NewFrameWriter(buf, FramingSLIP)
	writer.SetLogger(logger, "session-123")

	payload := []byte{'h', slipEnd, 'i'}
	if err := writer.WriteFrame(payload); err != nil {
		t.Fatalf("WriteFrame failed: %v", err)
	}

	events := logger.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	e := events[0]
	if e.SessionID != "session-123" {
		t.Errorf("SessionID = %q, want %q", e.SessionID, "session-123")
	}
	if e.Direction != log.DirectionOut {
		t.Errorf("Direction = %v, want DirectionOut", e.Direction)
	}
	if e.Layer != log.LayerFrame {
		t.Errorf("Layer = %v, want LayerFrame", e.Layer)
	}
	if e.Category != log.CategoryPacket {
		t.Errorf("Category = %v, want CategoryPacket", e.Category)
	}
	if e.Framing != "slip" {
		t.Errorf("Framing = %q, want slip", e.Framing)
	}
	if e.Frame == nil {
		t.Fatal("Frame is nil")
	}
	if e.Frame.Size != buf.Len() {
		t.Errorf("Frame.Size = %d, want %d", e.Frame.Size, buf.Len())
	}
	if !bytes.Equal(e.Frame.Data, payload) {
		t.Errorf("Frame.Data = %v, want %v", e.Frame.Data, payload)
	}
}

func TestFrameReaderLogsOnRead(t *testing.T) {
	buf := new(bytes.Buffer)
	payload := []byte("world")
	NewFrameWriter(buf, FramingLengthPrefix).WriteFrame(payload)

	logger := &capturingLogger{}
	reader := NewFrameReader(buf, FramingLengthPrefix)
	reader.SetLogger(logger, "session-456")

	if _, err := reader.ReadFrame(); err != nil {
		t.Fatalf("ReadFrame failed: %v", err)
	}

	events := logger.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	e := events[0]
	if e.SessionID != "session-456" || e.Direction != log.DirectionIn || e.Layer != log.LayerFrame {
		t.Errorf("unexpected event %+v", e)
	}
	if e.Frame == nil || e.Frame.Size != LengthPrefixSize+len(payload) {
		t.Errorf("Frame = %+v", e.Frame)
	}
}

func TestFrameReaderLogsErrors(t *testing.T) {
	logger := &capturingLogger{}
	reader := NewFrameReader(bytes.NewReader([]byte{0, 0, 0, 0}), FramingLengthPrefix)
	reader.SetLogger(logger, "session-err")
	reader.ReadFrame()

	events := logger.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Category != log.CategoryError || events[0].Error == nil {
		t.Errorf("expected error event, got %+v", events[0])
	}

	// A clean end of stream is not an error.
	reader.ReadFrame()
	if n := len(logger.Events()); n != 1 {
		t.Errorf("EOF produced %d extra events", n-1)
	}
}

func TestFramerNoLoggerNoPanic(t *testing.T) {
	buf := new(bytes.Buffer)

	writer := NewFrameWriter(buf, FramingSLIP)
	if err := writer.WriteFrame([]byte("hello")); err != nil {
		t.Fatalf("WriteFrame failed: %v", err)
	}

	reader := NewFrameReader(buf, FramingSLIP)
	if _, err := reader.ReadFrame(); err != nil {
		t.Fatalf("ReadFrame failed: %v", err)
	}

	buf.Reset()
	writer.SetLogger(nil, "session-id")
	if err := writer.WriteFrame([]byte("world")); err != nil {
		t.Fatalf("WriteFrame with nil logger failed: %v", err)
	}
}

func TestFramerLogsTruncatedData(t *testing.T) {
	logger := &capturingLogger{}
	writer := NewFrameWriter(new(bytes.Buffer), FramingLengthPrefix)
	writer.SetLogger(logger, "session-trunc")

	largePayload := bytes.Repeat([]byte("x"), 5000)
	if err := writer.WriteFrame(largePayload); err != nil {
		t.Fatalf("WriteFrame failed: %v", err)
	}

	events := logger.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	e := events[0]
	if e.Frame.Size != LengthPrefixSize+len(largePayload) {
		t.Errorf("Frame.Size = %d, want %d", e.Frame.Size, LengthPrefixSize+len(largePayload))
	}
	if len(e.Frame.Data) != MaxLogFrameDataSize {
		t.Errorf("Frame.Data length = %d, want %d", len(e.Frame.Data), MaxLogFrameDataSize)
	}
	if !e.Frame.Truncated {
		t.Error("Frame.Truncated = false, want true")
	}
}

func TestFrameWriterConcurrentFramesStayWhole(t *testing.T) {
	buf := new(bytes.Buffer)
	writer := NewFrameWriter(buf, FramingSLIP)

	var wg sync.WaitGroup
	for _i := 0; _i < 16; _i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _i := 0; _i < 20; _i++ {
				writer.WriteFrame([]byte("payload"))
			}
		}()
	}
	wg.Wait()

	reader := NewFrameReader(buf, FramingSLIP)
	n := 0
	for {
		got, err := reader.ReadFrame()
		if err == io.EOF {
			break
		}
		if err != nil || string(got) != "payload" {
			t.Fatalf("frame %d = %q, %v", n, got, err)
		}
		n++
	}
	if n != 16*20 {
		t.Errorf("read %d frames, want %d", n, 16*20)
	}
}

func TestRecoverable(t *testing.T) {
	tests := []struct {
		err     error
		framing Framing
		want    bool
	}{
		{fmt.Errorf("%w: %w", ErrDecode, osc.ErrUnknownArgumentType), FramingLengthPrefix, true},
		{ErrMessageEmpty, FramingLengthPrefix, true},
		{fmt.Errorf("%w: 9 > 8", ErrMessageTooLarge), FramingSLIP, true},
		{fmt.Errorf("%w: 9 > 8", ErrMessageTooLarge), FramingLengthPrefix, false},
		{ErrInvalidEscape, FramingSLIP, true},
		{ErrFrameTruncated, FramingSLIP, false},
		{io.EOF, FramingLengthPrefix, false},
	}
	for _, tt := range tests {
		if got := Recoverable(tt.err, tt.framing); got != tt.want {
			t.Errorf("Recoverable(%v, %s) = %v, want %v", tt.err, tt.framing, got, tt.want)
		}
	}
}
