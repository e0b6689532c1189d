package binary

import (
	"crypto/ed25519"
	"encoding/binary"

	"github.com/pkg/errors"
)

// Borsh encoding helpers. Put* functions write into dst and advance offset by
// the number of bytes written. Fixed-width Get* functions assume the caller has
// already validated the length of src. Variable length values (strings and
// vectors) are bounds checked and return ErrBufferTooSmall or
// ErrMaxLengthExceeded.

var (
	ErrBufferTooSmall    = errors.New("buffer too small")
	ErrMaxLengthExceeded = errors.New("max length exceeded")
)

func PutKey32(dst []byte, src []byte, offset *int) {
	copy(dst, src)
	*offset += ed25519.PublicKeySize
}

func PutUint64(dst []byte, v uint64, offset *int) {
	binary.LittleEndian.PutUint64(dst, v)
	*offset += 8
}

func PutInt64(dst []byte, v int64, offset *int) {
	PutUint64(dst, uint64(v), offset)
}

func PutUint32(dst []byte, v uint32, offset *int) {
	binary.LittleEndian.PutUint32(dst, v)
	*offset += 4
}

func PutUint16(dst []byte, v uint16, offset *int) {
	binary.LittleEndian.PutUint16(dst, v)
	*offset += 2
}

func PutUint8(dst []byte, v uint8, offset *int) {
	dst[0] = v
	*offset += 1
}

func PutBool(dst []byte, v bool, offset *int) {
	var b uint8
	if v {
		b = 1
	}
	PutUint8(dst, b, offset)
}

// PutString writes a u32 length prefix followed by the raw bytes of v.
func PutString(dst []byte, v string, offset *int) {
	var n int
	PutUint32(dst, uint32(len(v)), &n)
	copy(dst[n:], v)
	*offset += n + len(v)
}

// PutStringVec writes a u32 item count followed by each string.
func PutStringVec(dst []byte, v []string, offset *int) {
	var n int
	PutUint32(dst, uint32(len(v)), &n)
	for _, s := range v {
		PutString(dst[n:], s, &n)
	}
	*offset += n
}

func GetKey32(src []byte, dst *ed25519.PublicKey, offset *int) {
	*dst = make([]byte, ed25519.PublicKeySize)
	copy(*dst, src)
	*offset += ed25519.PublicKeySize
}

func GetUint64(src []byte, dst *uint64, offset *int) {
	*dst = binary.LittleEndian.Uint64(src)
	*offset += 8
}

func GetInt64(src []byte, dst *int64, offset *int) {
	var v uint64
	GetUint64(src, &v, offset)
	*dst = int64(v)
}

func GetUint32(src []byte, dst *uint32, offset *int) {
	*dst = binary.LittleEndian.Uint32(src)
	*offset += 4
}

func GetUint16(src []byte, dst *uint16, offset *int) {
	*dst = binary.LittleEndian.Uint16(src)
	*offset += 2
}

func GetUint8(src []byte, dst *uint8, offset *int) {
	*dst = src[0]
	*offset += 1
}

func GetBool(src []byte, dst *bool, offset *int) {
	*dst = src[0] != 0
	*offset += 1
}

// GetString reads a u32 length prefixed string of at most maxLen bytes.
func GetString(src []byte, dst *string, offset *int, maxLen int) error {
	if len(src) < 4 {
		return ErrBufferTooSmall
	}

	var length uint32
	var n int
	GetUint32(src, &length, &n)

	if int(length) > maxLen {
		return ErrMaxLengthExceeded
	}
	if len(src) < n+int(length) {
		return ErrBufferTooSmall
	}

	*dst = string(src[n : n+int(length)])
	*offset += n + int(length)
	return nil
}

// GetStringVec reads a u32 count prefixed vector of at most maxItems strings,
// each at most maxLen bytes.
func GetStringVec(src []byte, dst *[]string, offset *int, maxItems, maxLen int) error {
	if len(src) < 4 {
		return ErrBufferTooSmall
	}

	var count uint32
	var n int
	GetUint32(src, &count, &n)

	if int(count) > maxItems {
		return ErrMaxLengthExceeded
	}

	values := make([]string, count)
	for i := range values {
		if err := GetString(src[n:], &values[i], &n, maxLen); err != nil {
			return errors.Wrapf(err, "item %d", i)
		}
	}

	*dst = values
	*offset += n
	return nil
}

// StringSize is the maximum encoded size of a string with maxLen bytes.
func StringSize(maxLen int) int {
	return 4 + maxLen
}

// StringVecSize is the maximum encoded size of a vector with maxItems strings
// of maxLen bytes each.
func StringVecSize(maxItems, maxLen int) int {
	return 4 + maxItems*StringSize(maxLen)
}
