package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Signal is one parsed trade idea. It is produced once by the message
// parser and never mutated; Targets always holds at least one price.
type Signal struct {
	Time    time.Time
	Side    Side
	Symbol  string
	Entry   decimal.Decimal
	Stop    decimal.Decimal
	Targets []decimal.Decimal
	RawText string
}

func NewSignal(
	at time.Time,
	side Side,
	symbol string,
	entry decimal.Decimal,
	stop decimal.Decimal,
	targets []decimal.Decimal,
	rawText string,
) Signal {
	return Signal{
		Time:    at,
		Side:    side,
		Symbol:  symbol,
		Entry:   entry,
		Stop:    stop,
		Targets: targets,
		RawText: rawText,
	}
}
