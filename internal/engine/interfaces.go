package engine

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rcook0/TelegramBacktester/types"
)

// CandleSource is the single capability the engine needs from whatever
// market-data backend sits behind it. Implementations must return a series
// ordered by ascending time, deduplicated on timestamp and clipped to
// [start, end].
type CandleSource interface {
	Candles(ctx context.Context, symbol string, start, end time.Time, interval types.Interval) ([]types.Candle, error)
}

// rateSource is the slice of the currency converter consumed by the sizer
// and the accounting pass. A zero asOf means "latest available".
type rateSource interface {
	Rate(ctx context.Context, from, to string, asOf time.Time) decimal.Decimal
}
