package provider

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/rcook0/TelegramBacktester/types"
)

// CachedProvider wraps any candle source with a flat-file cache keyed by
// symbol and timeframe. A window already present in the cache is served
// locally; otherwise the upstream is queried and the result merged in,
// deduplicated on timestamp. Caching is transparent to callers.
type CachedProvider struct {
	upstream CandleSource
	dir      string
	logger   *zap.Logger
}

func NewCachedProvider(upstream CandleSource, dir string, logger *zap.Logger) *CachedProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedProvider{upstream: upstream, dir: dir, logger: logger}
}

var _ CandleSource = (*CachedProvider)(nil)

func (p *CachedProvider) Candles(ctx context.Context, symbol string, start, end time.Time, interval types.Interval) ([]types.Candle, error) {
	cached, err := p.load(symbol, interval)
	if err != nil {
		p.logger.Warn("candle cache unreadable, refetching", zap.String("symbol", symbol), zap.Error(err))
		cached = nil
	}

	if hit := clipWindow(cached, start, end); len(hit) > 0 {
		return hit, nil
	}

	fresh, err := p.upstream.Candles(ctx, symbol, start, end, interval)
	if err != nil {
		return nil, err
	}
	if len(fresh) == 0 {
		return fresh, nil
	}

	merged := mergeByTime(cached, fresh)
	if err := p.store(symbol, interval, merged); err != nil {
		p.logger.Warn("candle cache write failed", zap.String("symbol", symbol), zap.Error(err))
	}
	return clipWindow(merged, start, end), nil
}

func (p *CachedProvider) path(symbol string, interval types.Interval) string {
	return filepath.Join(p.dir, symbol, string(interval), "data.csv")
}

func (p *CachedProvider) load(symbol string, interval types.Interval) ([]types.Candle, error) {
	f, err := os.Open(p.path(symbol, interval))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()
	return readCandlesCSV(f, symbol, interval)
}

func (p *CachedProvider) store(symbol string, interval types.Interval, candles []types.Candle) error {
	path := p.path(symbol, interval)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create cache file: %w", err)
	}
	defer f.Close()
	return writeCandlesCSV(f, candles)
}

func mergeByTime(a, b []types.Candle) []types.Candle {
	merged := make([]types.Candle, 0, len(a)+len(b))
	merged = append(merged, a...)
	merged = append(merged, b...)
	sortCandles(merged)
	return dedupeByTime(merged)
}
