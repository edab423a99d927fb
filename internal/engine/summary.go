package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rcook0/TelegramBacktester/types"
)

// Summary is the pure reduction of a trade log. Money stays decimal;
// ratios that can be infinite (profit factor) are float64.
type Summary struct {
	PeriodStart time.Time
	PeriodEnd   time.Time

	Trades  int
	WinRate float64
	// ProfitFactor is gross profit over gross loss, +Inf when no trade
	// lost money.
	ProfitFactor float64
	NetPnl       decimal.Decimal
	// MaxDrawdown is the most negative fractional decline of equity from
	// its running peak, always <= 0.
	MaxDrawdown float64
	FinalEquity decimal.Decimal
	Commissions decimal.Decimal
}

func summarize(trades []types.TradeResult, start, end time.Time, startEquity decimal.Decimal) Summary {
	s := Summary{
		PeriodStart: start,
		PeriodEnd:   end,
		Trades:      len(trades),
		NetPnl:      decimal.Zero,
		FinalEquity: startEquity,
		Commissions: decimal.Zero,
	}
	if len(trades) == 0 {
		return s
	}

	wins := 0
	grossProfit := decimal.Zero
	grossLoss := decimal.Zero
	for _, tr := range trades {
		s.NetPnl = s.NetPnl.Add(tr.PnlCcy)
		s.Commissions = s.Commissions.Add(tr.Commission)
		if tr.PnlCcy.IsPositive() {
			wins++
			grossProfit = grossProfit.Add(tr.PnlCcy)
		} else {
			grossLoss = grossLoss.Add(tr.PnlCcy.Neg())
		}
	}

	s.WinRate = float64(wins) / float64(len(trades))
	if grossLoss.IsZero() {
		s.ProfitFactor = math.Inf(1)
	} else {
		s.ProfitFactor = grossProfit.Div(grossLoss).InexactFloat64()
	}

	s.MaxDrawdown = maxDrawdown(trades)
	s.FinalEquity = trades[len(trades)-1].EquityAfter
	return s
}

// maxDrawdown scans the equity-after curve against its cumulative peak. A
// zero peak contributes no drawdown rather than a division error.
func maxDrawdown(trades []types.TradeResult) float64 {
	peak := decimal.Zero
	maxDD := 0.0
	for _, tr := range trades {
		if tr.EquityAfter.GreaterThan(peak) {
			peak = tr.EquityAfter
		}
		if peak.IsZero() {
			continue
		}
		dd := tr.EquityAfter.Sub(peak).Div(peak).InexactFloat64()
		if dd < maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

// PrintSummary writes the run report block to stdout.
func PrintSummary(s Summary) {
	fmt.Println("===== Backtest Summary =====")
	fmt.Printf("Period Start:          %s\n", s.PeriodStart.Format("2006-01-02"))
	fmt.Printf("Period End:            %s\n", s.PeriodEnd.Format("2006-01-02"))
	fmt.Printf("Total Trades:          %d\n", s.Trades)
	fmt.Printf("Win Rate:              %.2f%%\n", s.WinRate*100)
	if math.IsInf(s.ProfitFactor, 1) {
		fmt.Printf("Profit Factor:         inf\n")
	} else {
		fmt.Printf("Profit Factor:         %.3f\n", s.ProfitFactor)
	}
	fmt.Printf("Net PnL:               %s\n", s.NetPnl.StringFixed(2))
	fmt.Printf("Max Drawdown:          %.2f%%\n", s.MaxDrawdown*100)
	fmt.Printf("Final Equity:          %s\n", s.FinalEquity.StringFixed(2))
	fmt.Printf("Total Commissions:     %s\n", s.Commissions.StringFixed(2))
	fmt.Println("============================")
}
