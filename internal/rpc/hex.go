package rpc

import (
	"fmt"
	"math/big"
	"strings"
)

// ParseHexBigInt converts an Ethereum quantity ("0x1a") to a big.Int.
// The value must carry exactly one 0x prefix. Unlike lenient decoders it
// rejects an empty string, a bare "0x" and signed values: a node that
// answers with those is broken.
func ParseHexBigInt(hex string) (*big.Int, error) {
	if len(hex) < 2 || hex[0] != '0' || (hex[1] != 'x' && hex[1] != 'X') {
		return nil, fmt.Errorf("invalid hex quantity %q: missing 0x prefix", hex)
	}
	digits := hex[2:]
	if digits == "" {
		return nil, fmt.Errorf("invalid hex quantity %q: no digits", hex)
	}
	if strings.HasPrefix(digits, "-") || strings.HasPrefix(digits, "+") {
		return nil, fmt.Errorf("invalid hex quantity %q: signed", hex)
	}

	val, ok := new(big.Int).SetString(digits, 16)
	if !ok {
		return nil, fmt.Errorf("invalid hex quantity %q", hex)
	}
	return val, nil
}

// ParseHexUint64 is ParseHexBigInt restricted to values that fit in uint64.
func ParseHexUint64(hex string) (uint64, error) {
	val, err := ParseHexBigInt(hex)
	if err != nil {
		return 0, err
	}
	if !val.IsUint64() {
		return 0, fmt.Errorf("hex quantity %q overflows uint64", hex)
	}
	return val.Uint64(), nil
}

// Uint64ToHex converts n to the 0x-prefixed form RPC parameters use.
func Uint64ToHex(n uint64) string {
	return fmt.Sprintf("0x%x", n)
}
