// Package shortvec implements the compact-u16 length prefix used by Solana
// transactions: little endian groups of 7 bits, high bit set while more bytes
// follow, at most 3 bytes.
package shortvec

import (
	"io"
	"math"

	"github.com/pkg/errors"
)

const maxEncodedLen = 3

var (
	ErrValueTooLarge = errors.Errorf("shortvec: value exceeds %d", math.MaxUint16)
	ErrInvalidLength = errors.New("shortvec: invalid encoding")
)

// EncodeLen writes length to w and returns the number of bytes written.
func EncodeLen(w io.ByteWriter, length int) (int, error) {
	if length < 0 || length > math.MaxUint16 {
		return 0, ErrValueTooLarge
	}

	var written int
	for {
		b := byte(length & 0x7f)
		length >>= 7
		if length != 0 {
			b |= 0x80
		}

		if err := w.WriteByte(b); err != nil {
			return written, err
		}
		written++

		if length == 0 {
			return written, nil
		}
	}
}

// DecodeLen reads a length from r.
func DecodeLen(r io.ByteReader) (int, error) {
	var val int
	for i := 0; i < maxEncodedLen; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}

		val |= int(b&0x7f) << (7 * i)
		if b&0x80 == 0 {
			if val > math.MaxUint16 {
				return 0, ErrValueTooLarge
			}
			return val, nil
		}
	}

	return 0, ErrInvalidLength
}
