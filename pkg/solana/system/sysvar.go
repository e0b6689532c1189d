package system

import (
	"crypto/ed25519"
)

// SystemAccount is the base58 "11111111111111111111111111111111" address
// that instructions reference when they invoke the system program.
//
// https://explorer.solana.com/address/11111111111111111111111111111111
var SystemAccount ed25519.PublicKey = ProgramKey[:]
