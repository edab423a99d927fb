package engine

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rcook0/TelegramBacktester/types"
)

const prefetchWorkers = 4

// Backtester replays a signal stream against historical candles and keeps
// the equity ledger. Data fetching is concurrent; the accounting pass is
// strictly sequential because risk sizing reads the live equity, which is
// only defined by all prior trades in chronological order.
type Backtester struct {
	cfg    *Config
	source CandleSource
	rates  rateSource
	logger *zap.Logger

	showProgress bool
}

func NewBacktester(cfg *Config, source CandleSource, logger *zap.Logger) (*Backtester, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Backtester{
		cfg:    cfg,
		source: source,
		rates:  newConverter(source, cfg.ConversionMap, cfg.Interval, logger),
		logger: logger,
	}, nil
}

// WithProgress enables the terminal progress bar for interactive runs.
func (b *Backtester) WithProgress() *Backtester {
	b.showProgress = true
	return b
}

type RunResult struct {
	RunID   uuid.UUID
	Trades  []types.TradeResult
	Summary Summary
}

// Run folds the in-window signals in timestamp order into a trade ledger,
// carrying equity as the accumulator. Signals with no usable data are
// skipped silently; the run itself always completes.
func (b *Backtester) Run(ctx context.Context, signals []types.Signal, since, until time.Time) (*RunResult, error) {
	runID := uuid.New()

	ordered := make([]types.Signal, len(signals))
	copy(ordered, signals)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Time.Before(ordered[j].Time) })

	series := b.prefetch(ctx, ordered, since, until)

	b.logger.Info("starting backtest",
		zap.String("run_id", runID.String()),
		zap.Int("signals", len(ordered)),
		zap.Time("since", since),
		zap.Time("until", until))

	var bar *progressbar.ProgressBar
	if b.showProgress {
		bar = initProgressBar(len(ordered))
	}

	equity := b.cfg.Deposit
	var trades []types.TradeResult

	for _, sig := range ordered {
		if bar != nil {
			bar.Add(1)
		}
		if sig.Time.Before(since) || sig.Time.After(until) {
			continue
		}

		broker := b.cfg.brokerSymbol(sig.Symbol)
		candles := series[broker]
		entryIdx := firstBarAtOrAfter(candles, sig.Time)
		if entryIdx < 0 {
			b.logger.Debug("no bar at or after signal time, skipping",
				zap.String("symbol", broker), zap.Time("signal_time", sig.Time))
			continue
		}
		path := candles[entryIdx:]
		entryBar := path[0]

		pip := pipSize(b.cfg.PipMap, sig.Symbol, entryBar.Open)
		contract := contractSize(b.cfg.ContractMap, sig.Symbol)

		entryBid, entryAsk := b.cfg.entryBidAsk(entryBar, sig.Symbol, pip)
		slip := b.cfg.SlippagePips.Mul(pip)
		var entryPrice decimal.Decimal
		if sig.Side == types.SideTypeBuy {
			entryPrice = entryAsk.Add(slip)
		} else {
			entryPrice = entryBid.Sub(slip)
		}

		lot := b.cfg.computeLot(ctx, b.rates, sig, entryPrice, pip, equity, contract)

		outcome := b.cfg.simulatePath(sig, path, pip, entryPrice)

		pnlCcy := b.accountPnl(ctx, sig, outcome.Pips, lot, pip, contract, outcome.Time)
		commission := b.cfg.CommissionPerLot.Mul(lot)
		pnlNet := pnlCcy.Sub(commission)
		margin := b.margin(ctx, sig, entryPrice, lot, contract)

		equity = equity.Add(pnlNet)

		trades = append(trades, types.TradeResult{
			Symbol:      broker,
			Side:        sig.Side,
			EntryTime:   entryBar.Timestamp,
			EntryPrice:  entryPrice,
			ExitTime:    outcome.Time,
			ExitPrice:   outcome.Price,
			ExitLabel:   outcome.Label,
			Lot:         lot.Round(3),
			PnlPips:     outcome.Pips,
			PnlCcy:      pnlNet,
			Commission:  commission,
			MarginUsed:  margin,
			EquityAfter: equity,
		})
	}

	summary := summarize(trades, since, until, b.cfg.Deposit)
	b.logger.Info("backtest complete",
		zap.String("run_id", runID.String()),
		zap.Int("trades", summary.Trades))

	return &RunResult{RunID: runID, Trades: trades, Summary: summary}, nil
}

// prefetch loads each distinct broker symbol's series once, concurrently,
// ahead of the sequential accounting pass. A failed fetch only excludes
// that symbol's signals.
func (b *Backtester) prefetch(ctx context.Context, ordered []types.Signal, since, until time.Time) map[string][]types.Candle {
	earliest := make(map[string]time.Time)
	for _, sig := range ordered {
		if sig.Time.Before(since) || sig.Time.After(until) {
			continue
		}
		broker := b.cfg.brokerSymbol(sig.Symbol)
		if _, ok := earliest[broker]; !ok {
			earliest[broker] = sig.Time
		}
	}

	series := make(map[string][]types.Candle, len(earliest))
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, prefetchWorkers)

	for symbol, start := range earliest {
		wg.Add(1)
		go func(symbol string, start time.Time) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			candles, err := b.source.Candles(ctx, symbol, start, until, b.cfg.Interval)
			if err != nil {
				b.logger.Warn("candle fetch failed, signals for symbol will be skipped",
					zap.String("symbol", symbol), zap.Error(err))
				return
			}
			mu.Lock()
			series[symbol] = candles
			mu.Unlock()
		}(symbol, start)
	}
	wg.Wait()
	return series
}

// entryBidAsk derives the bid/ask at the entry bar's open, synthesizing
// from the effective spread when explicit columns are absent.
func (c *Config) entryBidAsk(bar types.Candle, symbol string, pip decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	if bar.HasBidAsk {
		return bar.BidOpen, bar.AskOpen
	}
	half := c.effectiveSpread(bar, symbol).Mul(pip).Div(two)
	return bar.Open.Sub(half), bar.Open.Add(half)
}

// accountPnl converts a pip outcome to the account currency.
func (b *Backtester) accountPnl(ctx context.Context, sig types.Signal, pips, lot, pip, contract decimal.Decimal, when time.Time) decimal.Decimal {
	_, quote := splitSymbol(sig.Symbol)
	pipPerLotQuote := contract.Mul(pip)
	rate := b.rates.Rate(ctx, quote, b.cfg.AccountCurrency, when)
	return pips.Mul(pipPerLotQuote.Mul(rate)).Mul(lot)
}

func (b *Backtester) margin(ctx context.Context, sig types.Signal, price, lot, contract decimal.Decimal) decimal.Decimal {
	_, quote := splitSymbol(sig.Symbol)
	notionalQuote := contract.Mul(lot).Mul(price)
	rate := b.rates.Rate(ctx, quote, b.cfg.AccountCurrency, time.Time{})
	return notionalQuote.Mul(rate).Div(decimal.NewFromInt(b.cfg.Leverage))
}

// firstBarAtOrAfter returns the index of the first bar whose timestamp is
// at or after t, or -1 when the series ends before t.
func firstBarAtOrAfter(candles []types.Candle, t time.Time) int {
	idx := sort.Search(len(candles), func(i int) bool {
		return !candles[i].Timestamp.Before(t)
	})
	if idx == len(candles) {
		return -1
	}
	return idx
}

func initProgressBar(maxTicks int) *progressbar.ProgressBar {
	return progressbar.NewOptions(maxTicks,
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetDescription("Backtesting in progress..."),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
