package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rcook0/TelegramBacktester/internal/config"
	"github.com/rcook0/TelegramBacktester/internal/dbg"
	"github.com/rcook0/TelegramBacktester/internal/engine"
	"github.com/rcook0/TelegramBacktester/internal/provider"
	"github.com/rcook0/TelegramBacktester/internal/repository"
	"github.com/rcook0/TelegramBacktester/internal/signals"
	"github.com/rcook0/TelegramBacktester/types"
)

func main() {
	var (
		messagesPath = flag.String("messages", "", "JSON-lines file of exported channel messages (required)")
		since        = flag.String("since", "", "window start, e.g. 2024-01-01T00:00:00Z (required)")
		until        = flag.String("until", "", "window end (required)")
		dataSource   = flag.String("data-source", "csv", "csv | postgres | binance")
		dataDir      = flag.String("data-dir", "data", "candle CSV directory for the csv source")
		dbURL        = flag.String("db-url", "", "Postgres URL for the postgres source")
		cache        = flag.Bool("cache", false, "cache fetched candles on disk")
		cacheDir     = flag.String("cache-dir", ".cache", "candle cache directory")
		timeframe    = flag.String("timeframe", "M1", "M1 | M5 | M15 | M30 | H1 | H4 | D1")

		lot        = flag.Float64("lot", 0.1, "fixed lot size")
		riskPct    = flag.Float64("risk-pct", 0, "risk % of equity per trade, overrides fixed lot when > 0")
		deposit    = flag.Float64("deposit", 1000, "starting deposit in account currency")
		leverage   = flag.Int64("leverage", 500, "account leverage")
		accountCcy = flag.String("account-ccy", "USD", "account currency")

		exitRule    = flag.String("exit", "multi_tp_scaled", "first_target | multi_tp | multi_tp_scaled")
		tpWeights   = flag.String("tp-weights", "", "comma-separated scaled-exit weights, e.g. 0.5,0.3,0.2")
		spreadPips  = flag.Float64("spread-pips", 0, "default spread assumption in pips")
		slippage    = flag.Float64("slippage-pips", 0, "slippage in pips applied to the entry")
		commission  = flag.Float64("commission-per-lot", 0, "commission per lot in account currency")
		timeStopMin = flag.Int("time-stop-min", 0, "close positions after N minutes (0 disables)")

		configPath = flag.String("config", "", "YAML run file with per-symbol override tables")
		export     = flag.String("export", "backtest_results.csv", "trade log output path")
		verbose    = flag.Bool("verbose", false, "debug logging")
	)
	flag.Parse()

	logger := dbg.NewLogger(*verbose)
	defer logger.Sync()

	if *messagesPath == "" || *since == "" || *until == "" {
		flag.Usage()
		os.Exit(2)
	}

	sinceTime, err := parseTimeFlag(*since)
	if err != nil {
		logger.Fatal("invalid --since", zap.Error(err))
	}
	untilTime, err := parseTimeFlag(*until)
	if err != nil {
		logger.Fatal("invalid --until", zap.Error(err))
	}

	interval, ok := types.ConvertInterval[strings.ToUpper(*timeframe)]
	if !ok {
		logger.Fatal("invalid --timeframe", zap.String("timeframe", *timeframe))
	}

	rf, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("run configuration", zap.Error(err))
	}
	contractMap, err := config.DecimalMap(rf.ContractMap, "contract_map")
	if err != nil {
		logger.Fatal("run configuration", zap.Error(err))
	}
	pipMap, err := config.DecimalMap(rf.PipMap, "pip_map")
	if err != nil {
		logger.Fatal("run configuration", zap.Error(err))
	}
	spreadMap, err := config.DecimalMap(rf.SpreadMap, "spread_map")
	if err != nil {
		logger.Fatal("run configuration", zap.Error(err))
	}

	weights, err := parseWeights(*tpWeights)
	if err != nil {
		logger.Fatal("invalid --tp-weights", zap.Error(err))
	}

	source, err := buildSource(*dataSource, *dataDir, *dbURL, *cache, *cacheDir, logger)
	if err != nil {
		logger.Fatal("data source", zap.Error(err))
	}

	messages, err := signals.ReadMessagesFile(*messagesPath)
	if err != nil {
		logger.Fatal("messages", zap.Error(err))
	}
	parsed := signals.Parse(messages)
	logger.Info("parsed signals", zap.Int("messages", len(messages)), zap.Int("signals", len(parsed)))

	cfg := &engine.Config{
		DefaultLot:       decimal.NewFromFloat(*lot),
		RiskPct:          decimal.NewFromFloat(*riskPct),
		Deposit:          decimal.NewFromFloat(*deposit),
		Leverage:         *leverage,
		AccountCurrency:  strings.ToUpper(*accountCcy),
		ExitRule:         engine.ExitRule(*exitRule),
		TPWeights:        weights,
		SpreadPips:       decimal.NewFromFloat(*spreadPips),
		SpreadMap:        spreadMap,
		SlippagePips:     decimal.NewFromFloat(*slippage),
		CommissionPerLot: decimal.NewFromFloat(*commission),
		TimeStopMin:      *timeStopMin,
		Interval:         interval,
		SymbolMap:        rf.SymbolMap,
		ContractMap:      contractMap,
		PipMap:           pipMap,
		ConversionMap:    rf.ConversionMap,
	}

	bt, err := engine.NewBacktester(cfg, source, logger)
	if err != nil {
		logger.Fatal("configuration rejected", zap.Error(err))
	}

	result, err := bt.WithProgress().Run(context.Background(), parsed, sinceTime, untilTime)
	if err != nil {
		logger.Fatal("backtest failed", zap.Error(err))
	}

	fmt.Println()
	engine.PrintSummary(result.Summary)

	if err := engine.WriteTradesCSVFile(*export, result.Trades); err != nil {
		logger.Fatal("export trade log", zap.Error(err))
	}
	logger.Info("trade log written", zap.String("path", *export), zap.Int("trades", len(result.Trades)))
}

func buildSource(kind, dataDir, dbURL string, cache bool, cacheDir string, logger *zap.Logger) (engine.CandleSource, error) {
	var base engine.CandleSource
	switch kind {
	case "csv":
		base = provider.NewCSVProvider(dataDir)
	case "postgres":
		if dbURL == "" {
			return nil, fmt.Errorf("--db-url is required for the postgres source")
		}
		db, err := repository.NewDatabase(dbURL)
		if err != nil {
			return nil, err
		}
		base = db
	case "binance":
		base = provider.NewBinanceProvider()
	default:
		return nil, fmt.Errorf("unknown data source %q", kind)
	}
	if cache {
		return provider.NewCachedProvider(base, cacheDir, logger), nil
	}
	return base, nil
}

func parseTimeFlag(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable time %q", s)
}

func parseWeights(s string) ([]decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var out []decimal.Decimal
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		w, err := decimal.NewFromString(part)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}
