// Package bars aggregates streamed quotes into spread-annotated candles
// suitable for the flat-file candle sources.
package bars

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rcook0/TelegramBacktester/types"
)

// Builder folds ticks into fixed-interval bars carrying bid and ask OHLC
// and the mean spread in pips. Ticks must arrive in non-decreasing time
// order; a tick past the open bar's period closes that bar.
type Builder struct {
	symbol   string
	interval types.Interval
	pip      decimal.Decimal

	open      bool
	current   types.Candle
	spreadSum decimal.Decimal
	tickCount int64
}

func NewBuilder(symbol string, interval types.Interval, pip decimal.Decimal) *Builder {
	return &Builder{symbol: symbol, interval: interval, pip: pip}
}

// Push folds one tick in. When the tick opens a new period the completed
// bar is returned, otherwise nil.
func (b *Builder) Push(tick types.Tick) *types.Candle {
	var completed *types.Candle

	if b.open && !tick.Time.Before(b.current.Timestamp.Add(types.IntervalToTime[b.interval])) {
		completed = b.flush()
	}

	if !b.open {
		b.start(tick)
		return completed
	}

	mid := mid(tick)
	if mid.GreaterThan(b.current.High) {
		b.current.High = mid
	}
	if mid.LessThan(b.current.Low) {
		b.current.Low = mid
	}
	b.current.Close = mid

	if tick.Bid.GreaterThan(b.current.BidHigh) {
		b.current.BidHigh = tick.Bid
	}
	if tick.Bid.LessThan(b.current.BidLow) {
		b.current.BidLow = tick.Bid
	}
	b.current.BidClose = tick.Bid

	if tick.Ask.GreaterThan(b.current.AskHigh) {
		b.current.AskHigh = tick.Ask
	}
	if tick.Ask.LessThan(b.current.AskLow) {
		b.current.AskLow = tick.Ask
	}
	b.current.AskClose = tick.Ask

	b.spreadSum = b.spreadSum.Add(spreadPips(tick, b.pip))
	b.tickCount++
	b.current.Volume = decimal.NewFromInt(b.tickCount)

	return completed
}

// Flush closes and returns the bar in construction, if any.
func (b *Builder) Flush() *types.Candle {
	if !b.open {
		return nil
	}
	return b.flush()
}

func (b *Builder) start(tick types.Tick) {
	m := mid(tick)
	b.current = types.Candle{
		Symbol:    b.symbol,
		Interval:  b.interval,
		Timestamp: alignedPeriodStart(tick.Time, types.IntervalToTime[b.interval]),
		Open:      m,
		High:      m,
		Low:       m,
		Close:     m,
		BidOpen:   tick.Bid,
		BidHigh:   tick.Bid,
		BidLow:    tick.Bid,
		BidClose:  tick.Bid,
		AskOpen:   tick.Ask,
		AskHigh:   tick.Ask,
		AskLow:    tick.Ask,
		AskClose:  tick.Ask,
		HasBidAsk: true,
		Volume:    decimal.NewFromInt(1),
	}
	b.spreadSum = spreadPips(tick, b.pip)
	b.tickCount = 1
	b.open = true
}

func (b *Builder) flush() *types.Candle {
	bar := b.current
	if b.tickCount > 0 {
		bar.SpreadPips = b.spreadSum.Div(decimal.NewFromInt(b.tickCount))
		bar.HasSpread = true
	}
	b.open = false
	b.spreadSum = decimal.Zero
	b.tickCount = 0
	return &bar
}

func mid(tick types.Tick) decimal.Decimal {
	return tick.Bid.Add(tick.Ask).Div(decimal.NewFromInt(2))
}

func spreadPips(tick types.Tick, pip decimal.Decimal) decimal.Decimal {
	return tick.Ask.Sub(tick.Bid).Div(pip)
}

func alignedPeriodStart(t time.Time, period time.Duration) time.Time {
	return t.UTC().Truncate(period)
}
