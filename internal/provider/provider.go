// Package provider holds the market-data source implementations. Every
// source satisfies the same capability: return an ordered, deduplicated
// candle series clipped to the requested window. The simulation core only
// depends on that shape, never on a concrete source.
package provider

import (
	"context"
	"errors"
	"time"

	"github.com/rcook0/TelegramBacktester/types"
)

var (
	ErrDataFileNotFound = errors.New("data file not found")
	ErrBadHeader        = errors.New("unrecognized candle file header")
)

type CandleSource interface {
	Candles(ctx context.Context, symbol string, start, end time.Time, interval types.Interval) ([]types.Candle, error)
}
