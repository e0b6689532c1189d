package shortvec

import (
	"bytes"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLen_RoundTrip(t *testing.T) {
	for _, length := range []int{0, 1, 0x7f, 0x80, 0x3fff, 0x4000, 1232, math.MaxUint16} {
		var buf bytes.Buffer
		n, err := EncodeLen(&buf, length)
		require.NoError(t, err)
		assert.Equal(t, buf.Len(), n)

		decoded, err := DecodeLen(&buf)
		require.NoError(t, err)
		assert.Equal(t, length, decoded)
		assert.Zero(t, buf.Len())
	}
}

func TestEncodeLen_KnownVectors(t *testing.T) {
	for _, tc := range []struct {
		length  int
		encoded []byte
	}{
		{0x0, []byte{0x00}},
		{0x7f, []byte{0x7f}},
		{0x80, []byte{0x80, 0x01}},
		{0xff, []byte{0xff, 0x01}},
		{0x100, []byte{0x80, 0x02}},
		{0x7fff, []byte{0xff, 0xff, 0x01}},
		{0xffff, []byte{0xff, 0xff, 0x03}},
	} {
		var buf bytes.Buffer
		_, err := EncodeLen(&buf, tc.length)
		require.NoError(t, err)
		assert.Equal(t, tc.encoded, buf.Bytes())
	}
}

func TestLen_Invalid(t *testing.T) {
	_, err := EncodeLen(&bytes.Buffer{}, math.MaxUint16+1)
	assert.Equal(t, ErrValueTooLarge, err)

	_, err = EncodeLen(&bytes.Buffer{}, -1)
	assert.Equal(t, ErrValueTooLarge, err)

	_, err = DecodeLen(bytes.NewBuffer([]byte{0xff, 0xff, 0x04}))
	assert.Equal(t, ErrValueTooLarge, err)

	_, err = DecodeLen(bytes.NewBuffer([]byte{0x80, 0x80, 0x80, 0x01}))
	assert.Equal(t, ErrInvalidLength, err)

	_, err = DecodeLen(bytes.NewBuffer([]byte{0x80}))
	assert.Equal(t, io.EOF, err)
}
