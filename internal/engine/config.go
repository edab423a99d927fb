package engine

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rcook0/TelegramBacktester/types"
)

type ExitRule string

const (
	ExitFirstTarget   ExitRule = "first_target"
	ExitMultiTP       ExitRule = "multi_tp"
	ExitMultiTPScaled ExitRule = "multi_tp_scaled"
)

var (
	ErrInvalidExitRule    = errors.New("unknown exit rule")
	ErrInvalidWeights     = errors.New("target weights must be non-negative with a positive sum")
	ErrInvalidDeposit     = errors.New("deposit must be positive")
	ErrInvalidLeverage    = errors.New("leverage must be positive")
	ErrInvalidDefaultLot  = errors.New("default lot must be positive")
	ErrUnsupportedBarSize = errors.New("unsupported timeframe")
)

// Config holds every execution assumption of one run. It is immutable per
// run; Validate rejects malformed configurations before any signal is
// processed.
type Config struct {
	DefaultLot decimal.Decimal
	// RiskPct, when positive, overrides fixed-lot sizing with
	// risk-percentage-of-equity sizing.
	RiskPct         decimal.Decimal
	Deposit         decimal.Decimal
	Leverage        int64
	AccountCurrency string

	ExitRule  ExitRule
	TPWeights []decimal.Decimal

	// Global spread assumption in pips, used when a candle carries no
	// explicit spread and SpreadMap has no entry for the symbol.
	SpreadPips       decimal.Decimal
	SpreadMap        map[string]decimal.Decimal
	SlippagePips     decimal.Decimal
	CommissionPerLot decimal.Decimal
	// TimeStopMin closes the position at the first bar at or after
	// entry+TimeStopMin minutes. Zero disables the time stop.
	TimeStopMin int

	Interval types.Interval

	// Override tables.
	SymbolMap   map[string]string          // signal symbol -> broker symbol
	ContractMap map[string]decimal.Decimal // symbol -> contract size
	PipMap      map[string]decimal.Decimal // symbol -> pip size
	// ConversionMap names the quoted instrument for a currency pair,
	// keyed "FROM->TO", e.g. "GBP->USD": "GBPUSD".
	ConversionMap map[string]string
}

func (c *Config) Validate() error {
	switch c.ExitRule {
	case ExitFirstTarget, ExitMultiTP, ExitMultiTPScaled:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidExitRule, c.ExitRule)
	}
	if len(c.TPWeights) > 0 {
		sum := decimal.Zero
		for _, w := range c.TPWeights {
			if w.IsNegative() {
				return ErrInvalidWeights
			}
			sum = sum.Add(w)
		}
		if !sum.IsPositive() {
			return ErrInvalidWeights
		}
	}
	if !c.Deposit.IsPositive() {
		return ErrInvalidDeposit
	}
	if c.Leverage <= 0 {
		return ErrInvalidLeverage
	}
	if !c.DefaultLot.IsPositive() {
		return ErrInvalidDefaultLot
	}
	if _, ok := types.IntervalToTime[c.Interval]; !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedBarSize, c.Interval)
	}
	if c.AccountCurrency == "" {
		c.AccountCurrency = "USD"
	}
	return nil
}

// brokerSymbol resolves the instrument name actually quoted by the data
// source for a signal symbol.
func (c *Config) brokerSymbol(symbol string) string {
	if mapped, ok := c.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}
