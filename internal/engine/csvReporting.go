package engine

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rcook0/TelegramBacktester/types"
)

// WriteTradesCSVFile writes the trade ledger to a CSV file at the given path.
func WriteTradesCSVFile(path string, trades []types.TradeResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create trades file: %w", err)
	}
	defer f.Close()

	return writeTradesCSV(f, trades)
}

// writeTradesCSV writes trades to any io.Writer as CSV.
// You can pass os.Stdout for debugging, or a file.
func writeTradesCSV(w io.Writer, trades []types.TradeResult) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{
		"symbol",
		"side",
		"entry_time", // RFC3339
		"entry_price",
		"exit_time", // RFC3339
		"exit_price",
		"exit_label",
		"lot",
		"pnl_pips",
		"pnl_ccy",
		"commission",
		"margin_used",
		"equity_after",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, tr := range trades {
		record := []string{
			tr.Symbol,
			string(tr.Side),
			tr.EntryTime.Format(time.RFC3339),
			tr.EntryPrice.String(),
			tr.ExitTime.Format(time.RFC3339),
			tr.ExitPrice.String(),
			tr.ExitLabel,
			tr.Lot.String(),
			tr.PnlPips.String(),
			tr.PnlCcy.String(),
			tr.Commission.String(),
			tr.MarginUsed.String(),
			tr.EquityAfter.String(),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}

	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
