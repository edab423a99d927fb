package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Candle is one OHLCV sample. Mid prices are always present; bid/ask OHLC
// and a spread annotation are optional and flagged by HasBidAsk/HasSpread,
// since most flat-file sources only carry mid prices.
type Candle struct {
	Symbol    string          `json:"symbol"`
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Close     decimal.Decimal `json:"close"`
	Volume    decimal.Decimal `json:"volume"`
	Interval  Interval        `json:"interval"`
	Timestamp time.Time       `json:"timestamp"`

	BidOpen  decimal.Decimal `json:"bidOpen,omitempty"`
	BidHigh  decimal.Decimal `json:"bidHigh,omitempty"`
	BidLow   decimal.Decimal `json:"bidLow,omitempty"`
	BidClose decimal.Decimal `json:"bidClose,omitempty"`
	AskOpen  decimal.Decimal `json:"askOpen,omitempty"`
	AskHigh  decimal.Decimal `json:"askHigh,omitempty"`
	AskLow   decimal.Decimal `json:"askLow,omitempty"`
	AskClose decimal.Decimal `json:"askClose,omitempty"`

	SpreadPips decimal.Decimal `json:"spreadPips,omitempty"`

	HasBidAsk bool `json:"hasBidAsk"`
	HasSpread bool `json:"hasSpread"`
}
