package engine

import (
	"strings"

	"github.com/shopspring/decimal"
)

var (
	pipTwoDecimals  = decimal.RequireFromString("0.01")
	pipFourDecimals = decimal.RequireFromString("0.0001")

	contractStandardLot = decimal.NewFromInt(100_000)
	contractMetalLot    = decimal.NewFromInt(100)
)

// splitSymbol breaks a six-letter pair into base and quote currency. Short
// symbols are assumed to be quoted in USD.
func splitSymbol(symbol string) (string, string) {
	s := strings.ToUpper(symbol)
	if len(s) >= 6 {
		return s[:3], s[3:6]
	}
	return s, "USD"
}

// pipSize returns the pip increment for a symbol. An explicit override
// always wins; otherwise the fractional-digit count of the price hint
// decides (yen-style instruments quote with two decimals).
func pipSize(overrides map[string]decimal.Decimal, symbol string, priceHint decimal.Decimal) decimal.Decimal {
	if ps, ok := overrides[symbol]; ok {
		return ps
	}
	if fractionalDigits(priceHint) <= 2 {
		return pipTwoDecimals
	}
	return pipFourDecimals
}

// fractionalDigits counts decimal places with trailing zeros trimmed, so
// "147.10" and "147.1" both count as one.
func fractionalDigits(d decimal.Decimal) int {
	s := d.String()
	dot := strings.IndexByte(s, '.')
	if dot < 0 {
		return 0
	}
	frac := strings.TrimRight(s[dot+1:], "0")
	return len(frac)
}

// contractSize returns the lot notional for a symbol: explicit override,
// else 100 for precious metals, else one standard lot.
func contractSize(overrides map[string]decimal.Decimal, symbol string) decimal.Decimal {
	if cs, ok := overrides[symbol]; ok {
		return cs
	}
	base, _ := splitSymbol(symbol)
	if base == "XAU" || base == "XAG" {
		return contractMetalLot
	}
	return contractStandardLot
}
