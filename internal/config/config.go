// Package config loads the optional run-configuration file holding the
// per-symbol override tables that are too unwieldy for command-line flags.
package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// RunFile is the YAML run-configuration surface.
type RunFile struct {
	// SymbolMap remaps signal symbols to broker symbols.
	SymbolMap map[string]string `yaml:"symbol_map"`
	// ContractMap overrides the contract size per symbol.
	ContractMap map[string]string `yaml:"contract_map"`
	// PipMap overrides the pip size per symbol.
	PipMap map[string]string `yaml:"pip_map"`
	// SpreadMap sets the assumed spread in pips per symbol.
	SpreadMap map[string]string `yaml:"spread_map"`
	// ConversionMap names the quoted instrument per currency pair,
	// keyed "FROM->TO".
	ConversionMap map[string]string `yaml:"conversion_map"`
}

// Load reads and validates a run file. A missing path yields an empty
// configuration, not an error, so runs without override tables need no
// file at all.
func Load(path string) (*RunFile, error) {
	if path == "" {
		return &RunFile{}, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	var rf RunFile
	if err := yaml.Unmarshal(raw, &rf); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return &rf, nil
}

// DecimalMap converts a string-valued override table to decimals, failing
// on the first malformed value.
func DecimalMap(in map[string]string, what string) (map[string]decimal.Decimal, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make(map[string]decimal.Decimal, len(in))
	for k, v := range in {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return nil, fmt.Errorf("%s[%s]: %w", what, k, err)
		}
		out[k] = d
	}
	return out, nil
}
