package provider

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rcook0/TelegramBacktester/types"
)

// Column order for files written by this package. Readers only require the
// first five mid-price columns; bid/ask and spread cells may be empty.
var candleColumns = []string{
	"time", "open", "high", "low", "close", "volume",
	"bid_open", "bid_high", "bid_low", "bid_close",
	"ask_open", "ask_high", "ask_low", "ask_close",
	"spread_pips",
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

func parseCandleTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable time %q", s)
}

// readCandlesCSV decodes a candle file. Rows come back sorted ascending and
// deduplicated on timestamp; clipping to a window is the caller's concern.
func readCandlesCSV(r io.Reader, symbol string, interval types.Interval) ([]types.Candle, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, required := range []string{"time", "open", "high", "low", "close"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrBadHeader, required)
		}
	}

	cell := func(record []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}
	dec := func(record []string, name string) (decimal.Decimal, bool) {
		s := cell(record, name)
		if s == "" {
			return decimal.Zero, false
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	}

	var candles []types.Candle
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		ts, err := parseCandleTime(cell(record, "time"))
		if err != nil {
			return nil, err
		}
		c := types.Candle{Symbol: symbol, Interval: interval, Timestamp: ts}
		c.Open, _ = dec(record, "open")
		c.High, _ = dec(record, "high")
		c.Low, _ = dec(record, "low")
		c.Close, _ = dec(record, "close")
		c.Volume, _ = dec(record, "volume")

		bidAskOK := true
		for name, dst := range map[string]*decimal.Decimal{
			"bid_open": &c.BidOpen, "bid_high": &c.BidHigh, "bid_low": &c.BidLow, "bid_close": &c.BidClose,
			"ask_open": &c.AskOpen, "ask_high": &c.AskHigh, "ask_low": &c.AskLow, "ask_close": &c.AskClose,
		} {
			v, ok := dec(record, name)
			if !ok {
				bidAskOK = false
				continue
			}
			*dst = v
		}
		c.HasBidAsk = bidAskOK

		if sp, ok := dec(record, "spread_pips"); ok {
			c.SpreadPips = sp
			c.HasSpread = true
		}

		candles = append(candles, c)
	}

	sort.SliceStable(candles, func(i, j int) bool { return candles[i].Timestamp.Before(candles[j].Timestamp) })
	return dedupeByTime(candles), nil
}

// WriteCandleHeader writes the column row expected by readCandlesCSV.
func WriteCandleHeader(cw *csv.Writer) error {
	if err := cw.Write(candleColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	return nil
}

// WriteCandleRow appends a single candle in the package's column order.
func WriteCandleRow(cw *csv.Writer, c types.Candle) error {
	record := []string{
		c.Timestamp.UTC().Format(time.RFC3339),
		c.Open.String(), c.High.String(), c.Low.String(), c.Close.String(),
		c.Volume.String(),
		"", "", "", "", "", "", "", "",
		"",
	}
	if c.HasBidAsk {
		record[6], record[7], record[8], record[9] = c.BidOpen.String(), c.BidHigh.String(), c.BidLow.String(), c.BidClose.String()
		record[10], record[11], record[12], record[13] = c.AskOpen.String(), c.AskHigh.String(), c.AskLow.String(), c.AskClose.String()
	}
	if c.HasSpread {
		record[14] = c.SpreadPips.String()
	}
	if err := cw.Write(record); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}

func writeCandlesCSV(w io.Writer, candles []types.Candle) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := WriteCandleHeader(cw); err != nil {
		return err
	}
	for _, c := range candles {
		if err := WriteCandleRow(cw, c); err != nil {
			return err
		}
	}
	return cw.Error()
}

func sortCandles(candles []types.Candle) {
	sort.SliceStable(candles, func(i, j int) bool { return candles[i].Timestamp.Before(candles[j].Timestamp) })
}

func dedupeByTime(candles []types.Candle) []types.Candle {
	if len(candles) == 0 {
		return candles
	}
	out := candles[:1]
	for _, c := range candles[1:] {
		if c.Timestamp.Equal(out[len(out)-1].Timestamp) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// clipWindow keeps candles with start <= t <= end.
func clipWindow(candles []types.Candle, start, end time.Time) []types.Candle {
	var out []types.Candle
	for _, c := range candles {
		if c.Timestamp.Before(start) || c.Timestamp.After(end) {
			continue
		}
		out = append(out, c)
	}
	return out
}
