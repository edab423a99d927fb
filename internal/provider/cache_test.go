package provider

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcook0/TelegramBacktester/types"
)

// countingSource records how often the upstream is actually hit.
type countingSource struct {
	calls   int
	candles []types.Candle
}

func (s *countingSource) Candles(_ context.Context, _ string, start, end time.Time, _ types.Interval) ([]types.Candle, error) {
	s.calls++
	var out []types.Candle
	for _, c := range s.candles {
		if c.Timestamp.Before(start) || c.Timestamp.After(end) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func midCandle(symbol string, ts time.Time, px string) types.Candle {
	p := decimal.RequireFromString(px)
	return types.Candle{
		Symbol: symbol, Interval: types.M1, Timestamp: ts,
		Open: p, High: p, Low: p, Close: p,
	}
}

func TestCachedProviderServesFromDisk(t *testing.T) {
	start := time.Date(2025, time.March, 3, 10, 0, 0, 0, time.UTC)
	upstream := &countingSource{candles: []types.Candle{
		midCandle("EURUSD", start, "1.1000"),
		midCandle("EURUSD", start.Add(time.Minute), "1.1005"),
	}}

	p := NewCachedProvider(upstream, t.TempDir(), nil)
	ctx := context.Background()

	first, err := p.Candles(ctx, "EURUSD", start, start.Add(time.Hour), types.M1)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, 1, upstream.calls)

	// Same window again: served from the cache file, upstream untouched.
	second, err := p.Candles(ctx, "EURUSD", start, start.Add(time.Hour), types.M1)
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Equal(t, 1, upstream.calls)
	assert.True(t, second[0].Close.Equal(first[0].Close))
}

func TestCachedProviderMergesNewWindows(t *testing.T) {
	start := time.Date(2025, time.March, 3, 10, 0, 0, 0, time.UTC)
	later := start.Add(2 * time.Hour)
	upstream := &countingSource{candles: []types.Candle{
		midCandle("EURUSD", start, "1.1000"),
		midCandle("EURUSD", later, "1.1100"),
	}}

	p := NewCachedProvider(upstream, t.TempDir(), nil)
	ctx := context.Background()

	got, err := p.Candles(ctx, "EURUSD", start, start.Add(time.Minute), types.M1)
	require.NoError(t, err)
	require.Len(t, got, 1)

	// A disjoint window misses the cache and goes upstream.
	got, err = p.Candles(ctx, "EURUSD", later, later.Add(time.Minute), types.M1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 2, upstream.calls)

	// The merged cache now covers both windows at once.
	got, err = p.Candles(ctx, "EURUSD", start, later, types.M1)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 2, upstream.calls)
}

func TestCachedProviderKeysBySymbolAndInterval(t *testing.T) {
	start := time.Date(2025, time.March, 3, 10, 0, 0, 0, time.UTC)
	upstream := &countingSource{candles: []types.Candle{
		midCandle("EURUSD", start, "1.1000"),
	}}

	p := NewCachedProvider(upstream, t.TempDir(), nil)
	ctx := context.Background()

	_, err := p.Candles(ctx, "EURUSD", start, start.Add(time.Minute), types.M1)
	require.NoError(t, err)

	// A different timeframe is a different cache entry.
	_, err = p.Candles(ctx, "EURUSD", start, start.Add(time.Minute), types.M5)
	require.NoError(t, err)
	assert.Equal(t, 2, upstream.calls)
}
