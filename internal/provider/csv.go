package provider

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rcook0/TelegramBacktester/types"
)

// CSVProvider is a read-only candle source backed by flat files at
// <dir>/<SYMBOL>.csv. A missing file is a provider-boundary error, not a
// silent empty series: the caller decides whether that is fatal.
type CSVProvider struct {
	dir string
}

func NewCSVProvider(dir string) *CSVProvider {
	return &CSVProvider{dir: dir}
}

var _ CandleSource = (*CSVProvider)(nil)

func (p *CSVProvider) Candles(_ context.Context, symbol string, start, end time.Time, interval types.Interval) ([]types.Candle, error) {
	path := filepath.Join(p.dir, symbol+".csv")
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrDataFileNotFound, path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	candles, err := readCandlesCSV(f, symbol, interval)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return clipWindow(candles, start, end), nil
}
