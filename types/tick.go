package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tick is one top-of-book quote from a streaming connector.
type Tick struct {
	Symbol string
	Time   time.Time
	Bid    decimal.Decimal
	Ask    decimal.Decimal
}
