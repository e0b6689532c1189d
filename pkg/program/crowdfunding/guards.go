package crowdfunding

import (
	"bytes"
	"crypto/ed25519"
	"math"

	"github.com/code-payments/soltips-server/pkg/ledger"
	"github.com/code-payments/soltips-server/pkg/solana/crowdfunding"
)

func checkedAdd(a, b uint64) (uint64, error) {
	if a > math.MaxUint64-b {
		return 0, crowdfunding.ErrorCodeArithmeticOverflow
	}
	return a + b, nil
}

func checkedSub(a, b uint64) (uint64, error) {
	if b > a {
		return 0, crowdfunding.ErrorCodeArithmeticOverflow
	}
	return a - b, nil
}

func checkedMul(a, b uint64) (uint64, error) {
	if a != 0 && b > math.MaxUint64/a {
		return 0, crowdfunding.ErrorCodeArithmeticOverflow
	}
	return a * b, nil
}

func requireSigner(ic *ledger.InvokeContext, signer ed25519.PublicKey) error {
	if !ic.IsSigner(signer) {
		return ledger.ErrMissingRequiredSignature
	}
	return nil
}

// requireOwner checks that the stored owner of an account is the signer.
func requireOwner(owner, signer ed25519.PublicKey) error {
	if !bytes.Equal(owner, signer) {
		return crowdfunding.ErrorCodeInvalidSigner
	}
	return nil
}

// requireAddress checks that a supplied account is the expected address.
func requireAddress(expected, actual ed25519.PublicKey) error {
	if !bytes.Equal(expected, actual) {
		return crowdfunding.ErrorCodeAddressMismatch
	}
	return nil
}

func requireLength(value string, min, max int) error {
	if len(value) < min || len(value) > max {
		return crowdfunding.ErrorCodeInvalidFieldLength
	}
	return nil
}

func requireMaxLength(value string, max int) error {
	return requireLength(value, 0, max)
}

func requireLinks(links []string) error {
	if len(links) > crowdfunding.MaxSocialLinks {
		return crowdfunding.ErrorCodeInvalidFieldLength
	}
	for _, link := range links {
		if err := requireMaxLength(link, crowdfunding.MaxSocialLinkLength); err != nil {
			return err
		}
	}
	return nil
}

func requirePositive(amount uint64) error {
	if amount == 0 {
		return crowdfunding.ErrorCodeInvalidAmount
	}
	return nil
}
