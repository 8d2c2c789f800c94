package osc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReaderMessageSequence(t *testing.T) {
	r := NewReader(mustHex(t, "2f780000 2c695b73 5d000000 ffffffff 68690000"))

	addr, err := r.ReadAddress()
	require.NoError(t, err)
	assert.Equal(t, "/x", addr)

	tags, err := r.ReadTypeTag()
	require.NoError(t, err)
	assert.Equal(t, "i[s]", tags.Tags())

	v, err := r.ReadArgument(&tags)
	require.NoError(t, err)
	assert.Equal(t, Int32(-1), v)

	v, err = r.ReadArgument(&tags)
	require.NoError(t, err)
	assert.Equal(t, Array{String("hi")}, v)

	assert.Zero(t, r.Remaining())
	assert.Equal(t, 20, r.Pos())
}

func TestReaderLimits(t *testing.T) {
	r := NewReader(make([]byte, 16))
	require.NoError(t, r.Skip(4))
	require.NoError(t, r.BeginMessage(8))
	assert.Equal(t, 12, r.Limit())
	assert.Equal(t, 8, r.Remaining())

	assert.ErrorIs(t, r.Skip(12), ErrOutOfBounds)
	assert.ErrorIs(t, r.BeginBundle(9), ErrOutOfBounds)
	assert.ErrorIs(t, r.BeginMessage(-1), ErrOutOfBounds)

	require.NoError(t, r.Skip(8))
	_, err := r.PeekByte()
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestReaderUnterminatedString(t *testing.T) {
	_, err := NewReader([]byte("/abc")).ReadAddress()
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestReaderTypeTagMustStartWithComma(t *testing.T) {
	_, err := NewReader([]byte("i\x00\x00\x00")).ReadTypeTag()
	assert.ErrorIs(t, err, ErrUnexpectedToken)

	tags, err := NewReader(nil).ReadTypeTag()
	require.NoError(t, err)
	assert.Empty(t, tags.Tags())
}

func TestReaderBundleHeader(t *testing.T) {
	data := mustHex(t, "23627566 646c6500 00000000 00000001 00000008 2f610000 2c000000")
	r := NewReader(data)

	assert.True(t, r.PeekBundle())
	require.NoError(t, r.ReadBundleIdent())
	tt, err := r.ReadBundleTimeTag()
	require.NoError(t, err)
	assert.Equal(t, Immediate, tt)

	n, err := r.ReadBundleMessageLength(len(data))
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Equal(t, 20, r.Pos())
}

func TestReaderBundleLengthErrors(t *testing.T) {
	tests := []struct {
		name string
		hex  string
		want error
	}{
		{"short header", "0000", ErrInvalidBundleMessageHeader},
		{"unaligned", "00000006 00000000 0000", ErrInvalidBundleMessageLength},
		{"negative", "fffffffc", ErrInvalidBundleMessageLength},
		{"past end", "00000010 00000000", ErrInvalidBundleMessageLength},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := mustHex(t, tt.hex)
			_, err := NewReader(data).ReadBundleMessageLength(len(data))
			assert.ErrorIs(t, err, tt.want)
		})
	}

	assert.ErrorIs(t, NewReader([]byte("#bundlX\x00")).ReadBundleIdent(), ErrInvalidBundleIdent)
}

func TestReaderBlob(t *testing.T) {
	r := NewReader(mustHex(t, "00000003 010203ff"))
	b, err := r.ReadBlob()
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, b)
	assert.Zero(t, r.Remaining())

	_, err = NewReader(mustHex(t, "80000000")).ReadBlob()
	assert.ErrorIs(t, err, ErrOutOfBounds)
	_, err = NewReader(mustHex(t, "00000008 0102")).ReadBlob()
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestReaderArgumentRejectsStructuralTokens(t *testing.T) {
	tags := NewTagScanner(",]")
	_, err := NewReader(nil).ReadArgument(&tags)
	assert.ErrorIs(t, err, ErrUnexpectedToken)
}
