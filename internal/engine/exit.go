package engine

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rcook0/TelegramBacktester/types"
)

var two = decimal.NewFromInt(2)

// exitOutcome is the resolved end of one position: what closed it, when,
// at which price, and the signed distance in pips.
type exitOutcome struct {
	Label string
	Time  time.Time
	Price decimal.Decimal
	Pips  decimal.Decimal
}

// pathHit is one detected exit candidate along the bar series.
type pathHit struct {
	label string
	time  time.Time
	price decimal.Decimal
}

// barQuotes is the bid/ask view of one bar, either taken from explicit
// columns or synthesized from mid prices and the effective spread.
type barQuotes struct {
	bidHigh  decimal.Decimal
	bidLow   decimal.Decimal
	bidClose decimal.Decimal
	askHigh  decimal.Decimal
	askLow   decimal.Decimal
	askClose decimal.Decimal
}

// effectiveSpread picks the spread in pips for one bar: explicit per-bar
// value, else the per-symbol map, else the global default.
func (c *Config) effectiveSpread(bar types.Candle, symbol string) decimal.Decimal {
	if bar.HasSpread {
		return bar.SpreadPips
	}
	if sp, ok := c.SpreadMap[symbol]; ok {
		return sp
	}
	return c.SpreadPips
}

func (c *Config) quotesFor(bar types.Candle, symbol string, pip decimal.Decimal) barQuotes {
	if bar.HasBidAsk {
		return barQuotes{
			bidHigh:  bar.BidHigh,
			bidLow:   bar.BidLow,
			bidClose: bar.BidClose,
			askHigh:  bar.AskHigh,
			askLow:   bar.AskLow,
			askClose: bar.AskClose,
		}
	}
	half := c.effectiveSpread(bar, symbol).Mul(pip).Div(two)
	return barQuotes{
		bidHigh:  bar.High.Sub(half),
		bidLow:   bar.Low.Sub(half),
		bidClose: bar.Close.Sub(half),
		askHigh:  bar.High.Add(half),
		askLow:   bar.Low.Add(half),
		askClose: bar.Close.Add(half),
	}
}

// simulatePath walks the bar series starting at the entry bar and decides
// when and at what price the position closes. The realized price of any
// hit is the triggering bar's close on the matching quote side; that
// candle-granularity approximation is the defined contract.
func (c *Config) simulatePath(
	sig types.Signal,
	candles []types.Candle,
	pip decimal.Decimal,
	entryPrice decimal.Decimal,
) exitOutcome {
	quotes := make([]barQuotes, len(candles))
	for i, bar := range candles {
		quotes[i] = c.quotesFor(bar, sig.Symbol, pip)
	}

	// Candidates are collected in fixed evaluation order TP1..TPn, SL,
	// TIME, so the stable time sort below breaks same-bar ties in favor
	// of targets.
	var hits []pathHit

	if sig.Side == types.SideTypeBuy {
		for i, tp := range sig.Targets {
			for j := range candles {
				if quotes[j].askHigh.GreaterThanOrEqual(tp) {
					hits = append(hits, pathHit{fmt.Sprintf("TP%d", i+1), candles[j].Timestamp, quotes[j].askClose})
					break
				}
			}
		}
		for j := range candles {
			if quotes[j].bidLow.LessThanOrEqual(sig.Stop) {
				hits = append(hits, pathHit{types.ExitStopLoss, candles[j].Timestamp, quotes[j].bidClose})
				break
			}
		}
	} else {
		for i, tp := range sig.Targets {
			for j := range candles {
				if quotes[j].bidLow.LessThanOrEqual(tp) {
					hits = append(hits, pathHit{fmt.Sprintf("TP%d", i+1), candles[j].Timestamp, quotes[j].bidClose})
					break
				}
			}
		}
		for j := range candles {
			if quotes[j].askHigh.GreaterThanOrEqual(sig.Stop) {
				hits = append(hits, pathHit{types.ExitStopLoss, candles[j].Timestamp, quotes[j].askClose})
				break
			}
		}
	}

	if c.TimeStopMin > 0 && len(candles) > 0 {
		limit := candles[0].Timestamp.Add(time.Duration(c.TimeStopMin) * time.Minute)
		for j := range candles {
			if !candles[j].Timestamp.Before(limit) {
				// The time stop closes at the mid close, not a quote side.
				hits = append(hits, pathHit{types.ExitTime, candles[j].Timestamp, candles[j].Close})
				break
			}
		}
	}

	if len(hits) == 0 {
		last := candles[len(candles)-1]
		px := last.Close
		if last.HasBidAsk {
			if sig.Side == types.SideTypeBuy {
				px = last.AskClose
			} else {
				px = last.BidClose
			}
		}
		return c.outcome(types.ExitEndOfDay, last.Timestamp, px, sig, entryPrice, pip)
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].time.Before(hits[j].time) })

	if c.ExitRule == ExitFirstTarget {
		h := hits[0]
		return c.outcome(h.label, h.time, h.price, sig, entryPrice, pip)
	}

	// MULTI_TP and MULTI_TP_SCALED: a leading stop means a full loss.
	if hits[0].label == types.ExitStopLoss {
		h := hits[0]
		return c.outcome(h.label, h.time, h.price, sig, entryPrice, pip)
	}

	// Accumulate the prefix of consecutive target hits up to the barrier
	// (the first non-target candidate).
	var reached []pathHit
	for _, h := range hits {
		if !isTargetLabel(h.label) {
			break
		}
		reached = append(reached, h)
	}

	if len(reached) == 0 {
		// The first candidate is the barrier itself.
		h := hits[0]
		return c.outcome(h.label, h.time, h.price, sig, entryPrice, pip)
	}

	if c.ExitRule == ExitMultiTP {
		h := reached[len(reached)-1]
		return c.outcome(h.label, h.time, h.price, sig, entryPrice, pip)
	}

	// MULTI_TP_SCALED: weighted-average exit across the reached targets.
	weights := normalizeWeights(c.TPWeights, len(reached))
	avg := decimal.Zero
	for i, h := range reached {
		avg = avg.Add(h.price.Mul(weights[i]))
	}
	lastReached := reached[len(reached)-1]
	return c.outcome(types.ExitScaledTP, lastReached.time, avg, sig, entryPrice, pip)
}

func (c *Config) outcome(label string, at time.Time, price decimal.Decimal, sig types.Signal, entryPrice, pip decimal.Decimal) exitOutcome {
	return exitOutcome{
		Label: label,
		Time:  at,
		Price: price,
		Pips:  signedPips(sig.Side, price, entryPrice, pip),
	}
}

func signedPips(side types.Side, exitPrice, entryPrice, pip decimal.Decimal) decimal.Decimal {
	pips := exitPrice.Sub(entryPrice).Div(pip)
	if side == types.SideTypeSell {
		return pips.Neg()
	}
	return pips
}

func isTargetLabel(label string) bool {
	return strings.HasPrefix(label, "TP")
}

// normalizeWeights shapes the configured weight list to exactly n reached
// targets: equal split when empty, truncated when too long, padded with
// equal shares when too short, and always renormalized to sum to 1.
func normalizeWeights(configured []decimal.Decimal, n int) []decimal.Decimal {
	weights := make([]decimal.Decimal, 0, n)
	if len(configured) == 0 {
		equal := decimal.NewFromInt(1).Div(decimal.NewFromInt(int64(n)))
		for i := 0; i < n; i++ {
			weights = append(weights, equal)
		}
		return weights
	}

	equal := decimal.NewFromInt(1).Div(decimal.NewFromInt(int64(n)))
	for i := 0; i < n; i++ {
		if i < len(configured) {
			weights = append(weights, configured[i])
		} else {
			weights = append(weights, equal)
		}
	}

	sum := decimal.Zero
	for _, w := range weights {
		sum = sum.Add(w)
	}
	if !sum.IsPositive() {
		for i := range weights {
			weights[i] = equal
		}
		return weights
	}
	for i := range weights {
		weights[i] = weights[i].Div(sum)
	}
	return weights
}
