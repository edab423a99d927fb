package engine

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rcook0/TelegramBacktester/types"
)

func tradeWithPnl(pnl, equityAfter, commission string) types.TradeResult {
	return types.TradeResult{
		PnlCcy:      decimal.RequireFromString(pnl),
		EquityAfter: decimal.RequireFromString(equityAfter),
		Commission:  decimal.RequireFromString(commission),
	}
}

func TestSummarize(t *testing.T) {
	start := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	deposit := decimal.NewFromInt(1000)

	t.Run("empty trade log", func(t *testing.T) {
		s := summarize(nil, start, end, deposit)
		if s.Trades != 0 {
			t.Fatalf("trades: got %d want 0", s.Trades)
		}
		if !s.NetPnl.IsZero() {
			t.Fatalf("net pnl: got %s want 0", s.NetPnl)
		}
		if !s.FinalEquity.Equal(deposit) {
			t.Fatalf("final equity: got %s want %s", s.FinalEquity, deposit)
		}
		if s.WinRate != 0 || s.ProfitFactor != 0 || s.MaxDrawdown != 0 {
			t.Fatalf("ratios should be zero on an empty log: %+v", s)
		}
	})

	t.Run("mixed wins and losses", func(t *testing.T) {
		trades := []types.TradeResult{
			tradeWithPnl("100", "1100", "2"),
			tradeWithPnl("-110", "990", "2"),
			tradeWithPnl("210", "1200", "2"),
		}
		s := summarize(trades, start, end, deposit)

		if s.Trades != 3 {
			t.Fatalf("trades: got %d want 3", s.Trades)
		}
		if got, want := s.WinRate, 2.0/3.0; math.Abs(got-want) > 1e-12 {
			t.Fatalf("win rate: got %f want %f", got, want)
		}
		// gross profit 310 over gross loss 110
		if got, want := s.ProfitFactor, 310.0/110.0; math.Abs(got-want) > 1e-9 {
			t.Fatalf("profit factor: got %f want %f", got, want)
		}
		if !s.NetPnl.Equal(decimal.NewFromInt(200)) {
			t.Fatalf("net pnl: got %s want 200", s.NetPnl)
		}
		if !s.Commissions.Equal(decimal.NewFromInt(6)) {
			t.Fatalf("commissions: got %s want 6", s.Commissions)
		}
		// equity fell from the 1100 peak to 990
		if got, want := s.MaxDrawdown, (990.0-1100.0)/1100.0; math.Abs(got-want) > 1e-12 {
			t.Fatalf("max drawdown: got %f want %f", got, want)
		}
		if !s.FinalEquity.Equal(decimal.NewFromInt(1200)) {
			t.Fatalf("final equity: got %s want 1200", s.FinalEquity)
		}
	})

	t.Run("no losing trade means an infinite profit factor", func(t *testing.T) {
		trades := []types.TradeResult{
			tradeWithPnl("100", "1100", "0"),
			tradeWithPnl("50", "1150", "0"),
		}
		s := summarize(trades, start, end, deposit)
		if !math.IsInf(s.ProfitFactor, 1) {
			t.Fatalf("profit factor: got %f want +Inf", s.ProfitFactor)
		}
		if s.MaxDrawdown != 0 {
			t.Fatalf("max drawdown: got %f want 0", s.MaxDrawdown)
		}
	})

	t.Run("drawdown is never positive", func(t *testing.T) {
		trades := []types.TradeResult{
			tradeWithPnl("-200", "800", "0"),
			tradeWithPnl("500", "1300", "0"),
		}
		s := summarize(trades, start, end, deposit)
		if s.MaxDrawdown > 0 {
			t.Fatalf("max drawdown must be <= 0, got %f", s.MaxDrawdown)
		}
	})
}
