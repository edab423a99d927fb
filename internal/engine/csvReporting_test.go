package engine

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rcook0/TelegramBacktester/types"
)

func TestWriteTradesCSV(t *testing.T) {
	at := time.Date(2025, time.March, 3, 10, 0, 0, 0, time.UTC)
	trades := []types.TradeResult{
		{
			Symbol:      "EURUSD",
			Side:        types.SideTypeBuy,
			EntryTime:   at,
			EntryPrice:  decimal.RequireFromString("1.1000"),
			ExitTime:    at.Add(30 * time.Minute),
			ExitPrice:   decimal.RequireFromString("1.1050"),
			ExitLabel:   "TP1",
			Lot:         decimal.RequireFromString("0.2"),
			PnlPips:     decimal.NewFromInt(50),
			PnlCcy:      decimal.NewFromInt(100),
			Commission:  decimal.NewFromInt(1),
			MarginUsed:  decimal.NewFromInt(220),
			EquityAfter: decimal.NewFromInt(1100),
		},
	}

	var sb strings.Builder
	if err := writeTradesCSV(&sb, trades); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(sb.String())).ReadAll()
	if err != nil {
		t.Fatalf("reparse output: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("rows: got %d want 2 (header + trade)", len(records))
	}

	header := records[0]
	if header[0] != "symbol" || header[len(header)-1] != "equity_after" {
		t.Fatalf("unexpected header: %v", header)
	}

	row := records[1]
	want := []string{
		"EURUSD", "BUY",
		"2025-03-03T10:00:00Z", "1.1000",
		"2025-03-03T10:30:00Z", "1.1050",
		"TP1", "0.2", "50", "100", "1", "220", "1100",
	}
	if len(row) != len(want) {
		t.Fatalf("columns: got %d want %d", len(row), len(want))
	}
	for i := range want {
		if row[i] != want[i] {
			t.Fatalf("column %d: got %q want %q", i, row[i], want[i])
		}
	}
}

func TestWriteTradesCSVEmptyLedger(t *testing.T) {
	var sb strings.Builder
	if err := writeTradesCSV(&sb, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	records, err := csv.NewReader(strings.NewReader(sb.String())).ReadAll()
	if err != nil {
		t.Fatalf("reparse output: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("rows: got %d want header only", len(records))
	}
}
