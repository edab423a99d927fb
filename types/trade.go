package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Exit labels. Target hits carry dynamic labels "TP1".."TPn".
const (
	ExitStopLoss = "SL"
	ExitTime     = "TIME"
	ExitEndOfDay = "EOD"
	ExitScaledTP = "SCALED_TP"
)

// TradeResult is one row of the trade ledger. Created once by the
// accounting engine, immutable thereafter. PnlCcy is net of commission and
// EquityAfter is the running equity immediately after this trade.
type TradeResult struct {
	Symbol      string
	Side        Side
	EntryTime   time.Time
	EntryPrice  decimal.Decimal
	ExitTime    time.Time
	ExitPrice   decimal.Decimal
	ExitLabel   string
	Lot         decimal.Decimal
	PnlPips     decimal.Decimal
	PnlCcy      decimal.Decimal
	Commission  decimal.Decimal
	MarginUsed  decimal.Decimal
	EquityAfter decimal.Decimal
}
