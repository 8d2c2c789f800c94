package osc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterMessageSequence(t *testing.T) {
	buf := make([]byte, 64)
	w := NewWriter(buf)

	require.NoError(t, w.WriteAddress("/x"))
	require.NoError(t, w.WriteTypeTag(TokenInt))
	require.NoError(t, w.WriteTypeTag(TokenChar))
	require.NoError(t, w.WriteTypeTag(TokenTrue))
	require.NoError(t, w.WriteTypeTagEnd())
	require.NoError(t, w.WriteInt32(-1))
	require.NoError(t, w.WriteChar('A'))

	assert.Equal(t, mustHex(t, "2f780000 2c696354 00000000 ffffffff 41000000"), w.Bytes())
	assert.Equal(t, 20, w.Len())
}

func TestWriterStateErrors(t *testing.T) {
	tests := []struct {
		name string
		run  func(w *Writer) error
	}{
		{"argument before address", func(w *Writer) error { return w.WriteInt32(1) }},
		{"tag end before address", func(w *Writer) error { return w.WriteTypeTagEnd() }},
		{"type tag before address", func(w *Writer) error { return w.WriteTypeTag(TokenInt) }},
		{"end bundle outside bundle", func(w *Writer) error { return w.EndBundle() }},
		{"length outside bundle", func(w *Writer) error { return w.WriteBundleMessageLength(4) }},
		{"time tag without ident", func(w *Writer) error { return w.WriteBundleTimeTag(Immediate) }},
		{"address twice", func(w *Writer) error {
			if err := w.WriteAddress("/a"); err != nil {
				return err
			}
			return w.WriteAddress("/b")
		}},
		{"argument during type tag", func(w *Writer) error {
			if err := w.WriteAddress("/a"); err != nil {
				return err
			}
			return w.WriteString("s")
		}},
		{"type tag after tag end", func(w *Writer) error {
			if err := w.WriteAddress("/a"); err != nil {
				return err
			}
			if err := w.WriteTypeTagEnd(); err != nil {
				return err
			}
			return w.WriteTypeTag(TokenInt)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run(NewWriter(make([]byte, 64)))
			assert.ErrorIs(t, err, ErrUnexpectedWriterState)
		})
	}
}

func TestWriterBundleLengthValidation(t *testing.T) {
	w := NewWriter(make([]byte, 64))
	require.NoError(t, w.WriteBundleIdent())
	require.NoError(t, w.WriteBundleTimeTag(Immediate))

	assert.ErrorIs(t, w.WriteBundleMessageLength(6), ErrInvalidBundleMessageLength)
	assert.ErrorIs(t, w.WriteBundleMessageLength(-4), ErrInvalidBundleMessageLength)
	require.NoError(t, w.WriteBundleMessageLength(0))
}

func TestWriterRejectsTokensWithoutTag(t *testing.T) {
	w := NewWriter(make([]byte, 16))
	require.NoError(t, w.WriteAddress("/a"))
	assert.ErrorIs(t, w.WriteTypeTag(TokenMixedTypes), ErrUnsupportedType)
}

func TestCountingWriterMatchesEmission(t *testing.T) {
	for name, p := range samplePackets() {
		t.Run(name, func(t *testing.T) {
			counter := newCountingWriter(DefaultMaxDepth)
			require.NoError(t, p.writeTo(counter))
			assert.Nil(t, counter.Bytes())

			buf := make([]byte, counter.Len())
			w := NewWriter(buf)
			require.NoError(t, p.writeTo(w))
			assert.Equal(t, counter.Len(), w.Len())
		})
	}
}

func TestWriterColorIsARGB(t *testing.T) {
	w := NewWriter(make([]byte, 16))
	require.NoError(t, w.WriteAddress("/c"))
	require.NoError(t, w.WriteTypeTag(TokenColor))
	require.NoError(t, w.WriteTypeTagEnd())
	require.NoError(t, w.WriteColor(Color{R: 0x22, G: 0x33, B: 0x44, A: 0x11}))

	assert.Equal(t, mustHex(t, "2f630000 2c720000 11223344"), w.Bytes())

	data, err := Encode(MustMessage("/c", ColorFromARGB(0x11223344)))
	require.NoError(t, err)
	assert.Equal(t, mustHex(t, "11223344"), data[8:])

	m, err := DecodeMessage(data)
	require.NoError(t, err)
	assert.Equal(t, Color{R: 0x22, G: 0x33, B: 0x44, A: 0x11}, m.Arg(0))
}
