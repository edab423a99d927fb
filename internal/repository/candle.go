package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rcook0/TelegramBacktester/types"
)

const candlesQuery = `
	SELECT time, open, high, low, close, volume,
	       bid_open, bid_high, bid_low, bid_close,
	       ask_open, ask_high, ask_low, ask_close,
	       spread_pips
	FROM candles
	WHERE symbol = $1 AND timeframe = $2 AND time >= $3 AND time <= $4
	ORDER BY time
`

// Candles returns the bar series for a symbol clipped to [start, end].
// An empty window is not an error; the caller decides what a missing
// series means.
func (db *Database) Candles(ctx context.Context, symbol string, start, end time.Time, interval types.Interval) ([]types.Candle, error) {
	if _, ok := types.IntervalToTime[interval]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrIntervalNotSupported, interval)
	}

	rows, err := db.rows.Query(ctx, candlesQuery, symbol, string(interval), start, end)
	if err != nil {
		return nil, fmt.Errorf("query candles: %w", err)
	}
	defer rows.Close()

	var candles []types.Candle
	for rows.Next() {
		var (
			c       types.Candle
			bid, ask [4]decimal.NullDecimal
			spread  decimal.NullDecimal
		)
		if err := rows.Scan(
			&c.Timestamp, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume,
			&bid[0], &bid[1], &bid[2], &bid[3],
			&ask[0], &ask[1], &ask[2], &ask[3],
			&spread,
		); err != nil {
			return nil, fmt.Errorf("scan candle: %w", err)
		}
		c.Symbol = symbol
		c.Interval = interval
		if allValid(bid[:]) && allValid(ask[:]) {
			c.BidOpen, c.BidHigh, c.BidLow, c.BidClose = bid[0].Decimal, bid[1].Decimal, bid[2].Decimal, bid[3].Decimal
			c.AskOpen, c.AskHigh, c.AskLow, c.AskClose = ask[0].Decimal, ask[1].Decimal, ask[2].Decimal, ask[3].Decimal
			c.HasBidAsk = true
		}
		if spread.Valid {
			c.SpreadPips = spread.Decimal
			c.HasSpread = true
		}
		candles = append(candles, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read candles: %w", err)
	}
	return candles, nil
}

func allValid(values []decimal.NullDecimal) bool {
	for _, v := range values {
		if !v.Valid {
			return false
		}
	}
	return true
}
