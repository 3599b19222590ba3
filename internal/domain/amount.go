package domain

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseTokenAmount converts a raw integer token amount ("123450000000000000000"
// or hex "0x6b14bd1e6eea00000") into token units using the contract's decimals.
// Raw values exceed float64 precision, so the division is done in decimal first.
// The resulting float is fine for analytics but not for exact accounting
func ParseTokenAmount(raw string, decimals int32) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("empty amount")
	}

	v := new(big.Int)
	if strings.HasPrefix(raw, "0x") || strings.HasPrefix(raw, "0X") {
		if _, ok := v.SetString(raw[2:], 16); !ok {
			return 0, fmt.Errorf("invalid hex amount: %q", raw)
		}
	} else {
		if _, ok := v.SetString(raw, 10); !ok {
			return 0, fmt.Errorf("invalid decimal amount: %q", raw)
		}
	}

	return decimal.NewFromBigInt(v, -decimals).InexactFloat64(), nil
}
