package engine

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rcook0/TelegramBacktester/types"
)

var minimumLot = decimal.RequireFromString("0.01")

// computeLot sizes the position. Without a risk percentage the configured
// default lot is used. With one, the lot risks RiskPct% of current equity
// over the stop distance; a degenerate stop distance falls back to the
// default lot.
func (c *Config) computeLot(
	ctx context.Context,
	rates rateSource,
	sig types.Signal,
	entryPrice decimal.Decimal,
	pip decimal.Decimal,
	equity decimal.Decimal,
	contract decimal.Decimal,
) decimal.Decimal {
	if !c.RiskPct.IsPositive() {
		return c.DefaultLot
	}

	distPips := entryPrice.Sub(sig.Stop).Abs().Div(pip)
	if !distPips.IsPositive() {
		return c.DefaultLot
	}

	riskAmount := equity.Mul(c.RiskPct).Div(decimal.NewFromInt(100))

	_, quote := splitSymbol(sig.Symbol)
	pipPerLotQuote := contract.Mul(pip)
	rate := rates.Rate(ctx, quote, c.AccountCurrency, time.Time{})
	pipPerLotAcct := pipPerLotQuote.Mul(rate)

	lot := riskAmount.Div(distPips.Mul(pipPerLotAcct))
	if lot.LessThan(minimumLot) {
		return minimumLot
	}
	return lot
}
