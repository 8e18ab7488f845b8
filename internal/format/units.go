package format

import (
	"math/big"
	"strings"
	"time"
)

// EtherDecimals is the fixed-point scale between wei and ether.
const EtherDecimals = 18

var weiPerEther = new(big.Int).Exp(big.NewInt(10), big.NewInt(EtherDecimals), nil)

// FormatEther renders a wei amount in ether without going through floats.
// Trailing fractional zeros are trimmed but one digit always remains, so
// 1e18 is "1.0" and 0 is "0.0".
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0.0"
	}

	abs := new(big.Int).Abs(wei)
	whole, frac := new(big.Int).QuoRem(abs, weiPerEther, new(big.Int))

	fracStr := frac.String()
	fracStr = strings.Repeat("0", EtherDecimals-len(fracStr)) + fracStr
	fracStr = strings.TrimRight(fracStr, "0")
	if fracStr == "" {
		fracStr = "0"
	}

	sign := ""
	if wei.Sign() < 0 {
		sign = "-"
	}
	return sign + whole.String() + "." + fracStr
}

// MaxTimestamp is the last second with a four-digit year,
// 9999-12-31T23:59:59Z. Later values have no ISO-8601 rendering here.
const MaxTimestamp uint64 = 253402300799

// FormatTimestamp converts seconds since the epoch to an ISO-8601 UTC string
// with millisecond precision, e.g. "2024-01-01T00:00:00.000Z". Callers must
// reject ts > MaxTimestamp first.
func FormatTimestamp(ts uint64) string {
	return time.Unix(int64(ts), 0).UTC().Format("2006-01-02T15:04:05.000Z")
}
