package rpc

import (
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

// ValidateAddress checks that addr is a 20-byte hex address. Mixed-case
// input must carry a valid EIP-55 checksum; all-lower and all-upper input is
// accepted as unchecksummed.
func ValidateAddress(addr string) error {
	body := strings.TrimPrefix(strings.TrimPrefix(addr, "0x"), "0X")
	if len(body) != 40 {
		return fmt.Errorf("invalid address %q: expected 40 hex chars, got %d", addr, len(body))
	}
	if _, err := hex.DecodeString(body); err != nil {
		return fmt.Errorf("invalid address %q: contains non-hex characters", addr)
	}

	if body == strings.ToLower(body) || body == strings.ToUpper(body) {
		return nil
	}
	if ChecksumAddress(body) != "0x"+body {
		return fmt.Errorf("invalid address %q: bad EIP-55 checksum", addr)
	}
	return nil
}

// ChecksumAddress returns the EIP-55 mixed-case form of a hex address.
// It assumes the input already passed length and hex checks.
func ChecksumAddress(addr string) string {
	lower := strings.ToLower(strings.TrimPrefix(strings.TrimPrefix(addr, "0x"), "0X"))

	hasher := sha3.NewLegacyKeccak256()
	hasher.Write([]byte(lower))
	digest := hex.EncodeToString(hasher.Sum(nil))

	out := []byte(lower)
	for i, c := range out {
		// Letters are upper-cased when the matching hash nibble is >= 8.
		if c >= 'a' && c <= 'f' && digest[i] >= '8' {
			out[i] = c - 32
		}
	}
	return "0x" + string(out)
}
