package solana

import (
	"fmt"

	"github.com/mr-tron/base58"
)

// publicKeyLength is the byte length of an ed25519 public key.
const publicKeyLength = 32

// ValidateAddress checks that s is a plausible Solana account address:
// base58 (Bitcoin alphabet) decoding to exactly 32 bytes. It does not verify
// the account exists on chain.
func ValidateAddress(s string) error {
	if s == "" {
		return fmt.Errorf("empty address")
	}
	decoded, err := base58.Decode(s)
	if err != nil {
		return fmt.Errorf("decode address %q: %w", s, err)
	}
	if len(decoded) != publicKeyLength {
		return fmt.Errorf("address %q decodes to %d bytes, want %d", s, len(decoded), publicKeyLength)
	}
	return nil
}

// IsValidAddress reports whether s passes ValidateAddress.
func IsValidAddress(s string) bool {
	return ValidateAddress(s) == nil
}
