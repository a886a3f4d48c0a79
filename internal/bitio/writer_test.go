package bitio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteUnsignedLiteral(t *testing.T) {
	w := NewWriter(0)
	require.NoError(t, w.WriteUnsignedLiteral(0b011, 3))
	require.NoError(t, w.WriteUnsignedLiteral(0b00000, 5))
	require.Equal(t, []byte{0x60}, w.Flush())
}

func TestWriteUnsignedLiteral_TooWide(t *testing.T) {
	w := NewWriter(0)
	err := w.WriteUnsignedLiteral(256, 8)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestWriteSigned16(t *testing.T) {
	w := NewWriter(0)
	require.NoError(t, w.WriteSigned16(-1024))
	require.Equal(t, []byte{0xFC, 0x00}, w.Flush())
}

func TestWriteUleb128(t *testing.T) {
	tests := []struct {
		v    uint32
		want []byte
	}{
		{0, []byte{0x00}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x01}},
		{300, []byte{0xac, 0x02}},
		{0xffffffff, []byte{0xff, 0xff, 0xff, 0xff, 0x0f}},
	}
	for _, tc := range tests {
		w := NewWriter(0)
		require.NoError(t, w.WriteUleb128(tc.v))
		require.Equal(t, tc.want, w.Flush())
	}
}

func TestWriteBytes_RequiresAlignment(t *testing.T) {
	w := NewWriter(0)
	require.NoError(t, w.WriteUnsignedLiteral(1, 1))
	err := w.WriteBytes([]byte{0x01})
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestWriteBytes(t *testing.T) {
	w := NewWriter(0)
	require.NoError(t, w.WriteBytes([]byte{0xde, 0xad, 0xbe, 0xef}))
	require.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, w.Flush())
}

func TestWriter_ResourceExhausted(t *testing.T) {
	w := NewWriter(4)
	err := w.WriteUnsignedLiteral(0xff, 8)
	require.ErrorIs(t, err, ErrResourceExhausted)
}

func TestUleb128Size(t *testing.T) {
	require.Equal(t, 1, Uleb128Size(0))
	require.Equal(t, 1, Uleb128Size(127))
	require.Equal(t, 2, Uleb128Size(128))
	require.Equal(t, 5, Uleb128Size(0xffffffff))
}
