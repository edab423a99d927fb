package engine

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rcook0/TelegramBacktester/types"
)

// rateLookback bounds how far back the converter searches for a quote when
// resolving a rate at a point in time.
const rateLookback = 48 * time.Hour

// converter resolves a conversion rate between two currencies through
// quoted instruments fetched from the candle source. Resolution order:
// identity, explicit override instrument, direct pair, reverse pair, and
// finally 1.0. The last step silently mis-prices unresolvable cross pairs;
// that approximation is the documented contract of this engine.
type converter struct {
	source    CandleSource
	overrides map[string]string // "FROM->TO" -> instrument symbol
	interval  types.Interval
	logger    *zap.Logger
}

func newConverter(source CandleSource, overrides map[string]string, interval types.Interval, logger *zap.Logger) *converter {
	return &converter{
		source:    source,
		overrides: overrides,
		interval:  interval,
		logger:    logger,
	}
}

func (c *converter) Rate(ctx context.Context, from, to string, asOf time.Time) decimal.Decimal {
	from = strings.ToUpper(from)
	to = strings.ToUpper(to)
	if from == to {
		return decimal.NewFromInt(1)
	}

	if sym, ok := c.overrides[from+"->"+to]; ok {
		if rate, ok := c.midAt(ctx, sym, asOf); ok {
			if strings.HasSuffix(strings.ToUpper(sym), to) {
				return rate
			}
			return decimal.NewFromInt(1).Div(rate)
		}
	}

	direct := from + to
	reverse := to + from
	for _, sym := range []string{direct, reverse} {
		rate, ok := c.midAt(ctx, sym, asOf)
		if !ok {
			continue
		}
		if sym == direct {
			return rate
		}
		return decimal.NewFromInt(1).Div(rate)
	}

	c.logger.Warn("no conversion instrument resolvable, assuming rate 1.0",
		zap.String("from", from), zap.String("to", to))
	return decimal.NewFromInt(1)
}

// midAt fetches the latest quote of symbol at or before asOf. A zero asOf
// means now.
func (c *converter) midAt(ctx context.Context, symbol string, asOf time.Time) (decimal.Decimal, bool) {
	end := asOf
	if end.IsZero() {
		end = time.Now().UTC()
	}
	candles, err := c.source.Candles(ctx, symbol, end.Add(-rateLookback), end, c.interval)
	if err != nil || len(candles) == 0 {
		return decimal.Zero, false
	}
	last := candles[len(candles)-1]
	if last.Close.IsPositive() {
		return last.Close, true
	}
	if last.HasBidAsk {
		return last.BidClose.Add(last.AskClose).Div(decimal.NewFromInt(2)), true
	}
	return decimal.Zero, false
}
