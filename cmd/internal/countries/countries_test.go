package countries

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestName(t *testing.T) {
	t.Run("стандартные коды ISO", func(t *testing.T) {
		got := Name("DE")
		require.NotNil(t, got)
		assert.Equal(t, "Germany", *got)

		got = Name("FR")
		require.NotNil(t, got)
		assert.Equal(t, "France", *got)
	})

	t.Run("исторический код AN", func(t *testing.T) {
		got := Name("AN")
		require.NotNil(t, got)
		assert.Equal(t, "Netherlands Antilles", *got)
	})

	t.Run("неизвестный код даёт nil", func(t *testing.T) {
		assert.Nil(t, Name("XX"))
		assert.Nil(t, Name(""))
	})
}
