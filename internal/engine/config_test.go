package engine

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/rcook0/TelegramBacktester/types"
)

func validConfig() Config {
	return Config{
		DefaultLot: decimal.RequireFromString("0.1"),
		Deposit:    decimal.NewFromInt(1000),
		Leverage:   500,
		ExitRule:   ExitMultiTPScaled,
		Interval:   types.M1,
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:   "valid",
			mutate: func(*Config) {},
		},
		{
			name:    "unknown exit rule",
			mutate:  func(c *Config) { c.ExitRule = "take_profit_maybe" },
			wantErr: ErrInvalidExitRule,
		},
		{
			name: "negative weight",
			mutate: func(c *Config) {
				c.TPWeights = []decimal.Decimal{decimal.RequireFromString("-0.5"), decimal.NewFromInt(1)}
			},
			wantErr: ErrInvalidWeights,
		},
		{
			name: "all-zero weights",
			mutate: func(c *Config) {
				c.TPWeights = []decimal.Decimal{decimal.Zero, decimal.Zero}
			},
			wantErr: ErrInvalidWeights,
		},
		{
			name:    "zero deposit",
			mutate:  func(c *Config) { c.Deposit = decimal.Zero },
			wantErr: ErrInvalidDeposit,
		},
		{
			name:    "zero leverage",
			mutate:  func(c *Config) { c.Leverage = 0 },
			wantErr: ErrInvalidLeverage,
		},
		{
			name:    "zero default lot",
			mutate:  func(c *Config) { c.DefaultLot = decimal.Zero },
			wantErr: ErrInvalidDefaultLot,
		},
		{
			name:    "unknown timeframe",
			mutate:  func(c *Config) { c.Interval = types.Interval("M7") },
			wantErr: ErrUnsupportedBarSize,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)

			err := cfg.Validate()
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("got error %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestConfigValidateDefaultsAccountCurrency(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.AccountCurrency != "USD" {
		t.Fatalf("account currency: got %q want USD", cfg.AccountCurrency)
	}
}

func TestBrokerSymbol(t *testing.T) {
	cfg := validConfig()
	cfg.SymbolMap = map[string]string{"GOLD": "XAUUSD"}

	if got := cfg.brokerSymbol("GOLD"); got != "XAUUSD" {
		t.Fatalf("mapped: got %q want XAUUSD", got)
	}
	if got := cfg.brokerSymbol("EURUSD"); got != "EURUSD" {
		t.Fatalf("unmapped: got %q want EURUSD", got)
	}
}
