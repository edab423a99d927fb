package signals

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadMessages(t *testing.T) {
	t.Run("orders records by date", func(t *testing.T) {
		input := strings.Join([]string{
			`{"date":"2025-03-03T11:00:00Z","text":"second"}`,
			``,
			`{"date":"2025-03-03T10:00:00Z","text":"first"}`,
		}, "\n")

		got, err := readMessages(strings.NewReader(input))
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "first", got[0].Text)
		assert.Equal(t, "second", got[1].Text)
	})

	t.Run("empty input yields no messages", func(t *testing.T) {
		got, err := readMessages(strings.NewReader(""))
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("malformed line reports its number", func(t *testing.T) {
		input := `{"date":"2025-03-03T10:00:00Z","text":"ok"}` + "\n" + `{not json}`

		_, err := readMessages(strings.NewReader(input))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "line 2")
	})
}
