package solana

import (
	"bytes"
	"crypto/ed25519"
	"crypto/sha256"
	"math"

	"github.com/jdgcs/ed25519/edwards25519"
	"github.com/pkg/errors"
)

const (
	maxSeeds      = 16
	maxSeedLength = 32

	programAddressMarker = "ProgramDerivedAddress"
)

var (
	ErrTooManySeeds          = errors.New("too many seeds")
	ErrMaxSeedLengthExceeded = errors.New("max seed length exceeded")

	// ErrInvalidPublicKey is returned when the derived address lies on the
	// ed25519 curve and could therefore have a private key.
	ErrInvalidPublicKey = errors.New("invalid public key")

	ErrProgramAddressNotFound = errors.New("no viable bump seed for program address")
)

// CreateProgramAddress derives sha256(seeds || program || "ProgramDerivedAddress")
// and rejects results that are valid curve points.
func CreateProgramAddress(program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, error) {
	if len(seeds) > maxSeeds {
		return nil, ErrTooManySeeds
	}

	h := sha256.New()
	for _, seed := range seeds {
		if len(seed) > maxSeedLength {
			return nil, ErrMaxSeedLengthExceeded
		}
		h.Write(seed)
	}
	h.Write(program)
	h.Write([]byte(programAddressMarker))

	var candidate [ed25519.PublicKeySize]byte
	copy(candidate[:], h.Sum(nil))

	if isOnCurve(candidate) {
		return nil, ErrInvalidPublicKey
	}
	return candidate[:], nil
}

// FindProgramAddressAndBump searches bump seeds from 255 downwards and returns
// the first off curve address along with its bump.
func FindProgramAddressAndBump(program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, uint8, error) {
	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)

	for bump := math.MaxUint8; bump > 0; bump-- {
		withBump[len(seeds)] = []byte{byte(bump)}

		address, err := CreateProgramAddress(program, withBump...)
		switch err {
		case nil:
			return address, byte(bump), nil
		case ErrInvalidPublicKey:
			continue
		default:
			return nil, 0, err
		}
	}

	return nil, 0, ErrProgramAddressNotFound
}

func FindProgramAddress(program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, error) {
	address, _, err := FindProgramAddressAndBump(program, seeds...)
	return address, err
}

// VerifyProgramAddress reports whether address is the program address for
// seeds and a previously found bump, typically one stored in the account.
func VerifyProgramAddress(program, address ed25519.PublicKey, bump uint8, seeds ...[]byte) bool {
	if len(address) != ed25519.PublicKeySize {
		return false
	}

	derived, err := CreateProgramAddress(program, append(seeds, []byte{bump})...)
	if err != nil {
		return false
	}
	return bytes.Equal(derived, address)
}

// isOnCurve reports whether key decompresses to a valid edwards25519 point.
// The standard library does not expose point decoding, hence edwards25519.
func isOnCurve(key [ed25519.PublicKeySize]byte) bool {
	var point edwards25519.ExtendedGroupElement
	return point.FromBytes(&key)
}
