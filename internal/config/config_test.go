package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRunFile = `
symbol_map:
  GOLD: XAUUSD
contract_map:
  XAUUSD: "100"
pip_map:
  XAUUSD: "0.1"
spread_map:
  XAUUSD: "3.5"
conversion_map:
  GBP->USD: GBPUSD
`

func TestLoad(t *testing.T) {
	t.Run("empty path yields an empty configuration", func(t *testing.T) {
		rf, err := Load("")
		require.NoError(t, err)
		assert.Empty(t, rf.SymbolMap)
		assert.Empty(t, rf.ConversionMap)
	})

	t.Run("full run file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "run.yaml")
		require.NoError(t, os.WriteFile(path, []byte(sampleRunFile), 0o644))

		rf, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "XAUUSD", rf.SymbolMap["GOLD"])
		assert.Equal(t, "100", rf.ContractMap["XAUUSD"])
		assert.Equal(t, "GBPUSD", rf.ConversionMap["GBP->USD"])
	})

	t.Run("missing file is an error", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})

	t.Run("malformed yaml is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "run.yaml")
		require.NoError(t, os.WriteFile(path, []byte("symbol_map: [not, a, map"), 0o644))

		_, err := Load(path)
		require.Error(t, err)
	})
}

func TestDecimalMap(t *testing.T) {
	t.Run("converts values", func(t *testing.T) {
		got, err := DecimalMap(map[string]string{"XAUUSD": "0.1"}, "pip_map")
		require.NoError(t, err)
		assert.True(t, got["XAUUSD"].Equal(decimal.RequireFromString("0.1")))
	})

	t.Run("empty input stays nil", func(t *testing.T) {
		got, err := DecimalMap(nil, "pip_map")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("malformed value names the table and key", func(t *testing.T) {
		_, err := DecimalMap(map[string]string{"XAUUSD": "lots"}, "pip_map")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "pip_map[XAUUSD]")
	})
}
