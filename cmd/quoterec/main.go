package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rcook0/TelegramBacktester/internal/bars"
	"github.com/rcook0/TelegramBacktester/internal/dbg"
	"github.com/rcook0/TelegramBacktester/internal/provider"
	"github.com/rcook0/TelegramBacktester/types"
)

// quoterec subscribes to a book-ticker stream and appends completed
// candles to a CSV file that the csv data source can replay later.
func main() {
	var (
		wsURL     = flag.String("ws-url", "", "websocket book-ticker URL (required)")
		symbol    = flag.String("symbol", "", "symbol to record, e.g. EURUSD (required)")
		pip       = flag.Float64("pip", 0.0001, "pip size used for the spread column")
		timeframe = flag.String("timeframe", "M1", "bar interval to aggregate into")
		out       = flag.String("out", "", "output CSV path (required)")
		queue     = flag.Int("queue", 1024, "tick queue size; ticks are dropped when full")
		verbose   = flag.Bool("verbose", false, "debug logging")
	)
	flag.Parse()

	logger := dbg.NewLogger(*verbose)
	defer logger.Sync()

	if *wsURL == "" || *symbol == "" || *out == "" {
		flag.Usage()
		os.Exit(2)
	}

	interval, ok := types.ConvertInterval[strings.ToUpper(*timeframe)]
	if !ok {
		logger.Fatal("invalid --timeframe", zap.String("timeframe", *timeframe))
	}

	file, err := os.OpenFile(*out, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		logger.Fatal("open output", zap.Error(err))
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		logger.Fatal("stat output", zap.Error(err))
	}
	w := csv.NewWriter(file)
	if info.Size() == 0 {
		if err := provider.WriteCandleHeader(w); err != nil {
			logger.Fatal("write header", zap.Error(err))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	listener := provider.NewQuoteListener(*wsURL, *queue, logger)
	go func() {
		if err := listener.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("stream closed", zap.Error(err))
			stop()
		}
	}()

	builder := bars.NewBuilder(strings.ToUpper(*symbol), interval, decimal.NewFromFloat(*pip))
	recorded := 0
	for tick := range listener.Ticks() {
		if candle := builder.Push(tick); candle != nil {
			if err := provider.WriteCandleRow(w, *candle); err != nil {
				logger.Error("write candle", zap.Error(err))
				continue
			}
			w.Flush()
			recorded++
			logger.Debug("bar recorded",
				zap.Time("time", candle.Timestamp),
				zap.String("close", candle.Close.String()))
		}
	}
	if candle := builder.Flush(); candle != nil {
		if err := provider.WriteCandleRow(w, *candle); err == nil {
			recorded++
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		logger.Fatal("flush output", zap.Error(err))
	}

	fmt.Printf("recorded %d bars, dropped %d ticks\n", recorded, listener.Dropped())
}
