package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/rcook0/TelegramBacktester/types"
)

const klinePageLimit = 1000

var intervalToBinance = map[types.Interval]string{
	types.M1:  "1m",
	types.M5:  "5m",
	types.M15: "15m",
	types.M30: "30m",
	types.H1:  "1h",
	types.H4:  "4h",
	types.D1:  "1d",
}

// BinanceProvider fetches klines through the exchange REST API, paging
// forward through the requested window. Public market data needs no
// credentials. Requests are rate limited to stay inside the exchange
// weight budget.
type BinanceProvider struct {
	client  *binance.Client
	limiter *rate.Limiter
}

func NewBinanceProvider() *BinanceProvider {
	return &BinanceProvider{
		client:  binance.NewClient("", ""),
		limiter: rate.NewLimiter(rate.Every(250*time.Millisecond), 1),
	}
}

var _ CandleSource = (*BinanceProvider)(nil)

func (p *BinanceProvider) Candles(ctx context.Context, symbol string, start, end time.Time, interval types.Interval) ([]types.Candle, error) {
	binterval, ok := intervalToBinance[interval]
	if !ok {
		return nil, fmt.Errorf("timeframe %q not supported by exchange API", interval)
	}
	step := types.IntervalToTime[interval]

	var out []types.Candle
	cursor := start
	for !cursor.After(end) {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		klines, err := p.client.NewKlinesService().
			Symbol(symbol).
			Interval(binterval).
			StartTime(cursor.UnixMilli()).
			EndTime(end.UnixMilli()).
			Limit(klinePageLimit).
			Do(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetch klines %s: %w", symbol, err)
		}
		if len(klines) == 0 {
			break
		}
		for _, k := range klines {
			c, err := klineToCandle(symbol, interval, k)
			if err != nil {
				return nil, err
			}
			out = append(out, c)
		}
		last := time.UnixMilli(klines[len(klines)-1].OpenTime).UTC()
		next := last.Add(step)
		if !next.After(cursor) {
			break
		}
		cursor = next
	}

	sortCandles(out)
	return clipWindow(dedupeByTime(out), start, end), nil
}

func klineToCandle(symbol string, interval types.Interval, k *binance.Kline) (types.Candle, error) {
	open, err := decimal.NewFromString(k.Open)
	if err != nil {
		return types.Candle{}, fmt.Errorf("parse kline open: %w", err)
	}
	high, err := decimal.NewFromString(k.High)
	if err != nil {
		return types.Candle{}, fmt.Errorf("parse kline high: %w", err)
	}
	low, err := decimal.NewFromString(k.Low)
	if err != nil {
		return types.Candle{}, fmt.Errorf("parse kline low: %w", err)
	}
	closePx, err := decimal.NewFromString(k.Close)
	if err != nil {
		return types.Candle{}, fmt.Errorf("parse kline close: %w", err)
	}
	volume, err := decimal.NewFromString(k.Volume)
	if err != nil {
		return types.Candle{}, fmt.Errorf("parse kline volume: %w", err)
	}
	return types.Candle{
		Symbol:    symbol,
		Open:      open,
		High:      high,
		Low:       low,
		Close:     closePx,
		Volume:    volume,
		Interval:  interval,
		Timestamp: time.UnixMilli(k.OpenTime).UTC(),
	}, nil
}
