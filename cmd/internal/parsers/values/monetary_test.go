package values

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMonetary(t *testing.T) {
	t.Run("каждая лексическая форма даёт ожидаемое значение", func(t *testing.T) {
		cases := []struct {
			raw  string
			want float64
		}{
			{"885,72", 885.72},
			{"72,8", 72.8},
			{"40,0000", 40.0},
			{"1234.56", 1234.56},
			{"1234", 1234},
			{"979828.1", 979828.1},
			{"10 760 400", 10760400},
			{"1 234,56", 1234.56},
			{"1 234.56", 1234.56},
			{"9 117,5", 9117.5},
			{"56 146,820", 56146.82},
			{"264 886,8600", 264886.86},
			{"1 011  606,51", 1011606.51},
			{"600,000", 600000},
			{"1,234,567", 1234567},
		}

		for _, tc := range cases {
			got, err := ParseMonetary(tc.raw, "awarded_value")
			require.NoError(t, err, "строка %q не должна быть неоднозначной", tc.raw)
			require.NotNil(t, got, "строка %q должна разбираться", tc.raw)
			assert.InDelta(t, tc.want, *got, 1e-9, "строка %q", tc.raw)
		}
	})

	t.Run("неразбираемые строки дают nil без ошибки", func(t *testing.T) {
		for _, raw := range []string{
			"",
			"   ",
			"abc",
			"12 34",
			"1.2345",
			"1,23 EUR",
		} {
			got, err := ParseMonetary(raw, "awarded_value")
			require.NoError(t, err, "строка %q", raw)
			assert.Nil(t, got, "строка %q не должна разбираться", raw)
		}
	})

	t.Run("пробелы по краям обрезаются", func(t *testing.T) {
		got, err := ParseMonetary("  885,72  ", "awarded_value")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.InDelta(t, 885.72, *got, 1e-9)
	})
}

// Формы парсеров обязаны быть взаимно исключающими: строку, принятую одним
// парсером, не должен принимать никакой другой.
func TestMonetaryParsersDisjoint(t *testing.T) {
	samples := []string{
		"885,72", "0,01", "123456,99",
		"72,8", "0,5",
		"40,0000", "123,4567",
		"1234.56", "1234", "0", "999999999",
		"979828.1", "0.5",
		"10 760 400", "1 234,56", "1 234.56", "123 456 789",
		"9 117,5", "1 000,1",
		"56 146,820", "1 234,567",
		"264 886,8600", "1 234,5678",
		"1 011  606,51", "123  456,78",
		"600,000", "1,234,567", "12,345",
		"", "abc", "1.2345", "12 34", "-5", "1 2345",
	}

	for _, s := range samples {
		matched := []string{}
		for _, p := range monetaryParsers {
			if _, ok := p.parse(s); ok {
				matched = append(matched, p.name)
			}
		}
		assert.LessOrEqual(t, len(matched), 1,
			"строку %q приняли несколько парсеров: %v", s, matched)
	}
}

func TestParseOptionalInt(t *testing.T) {
	t.Run("целые числа", func(t *testing.T) {
		got := ParseOptionalInt("3")
		require.NotNil(t, got)
		assert.Equal(t, int32(3), *got)

		got = ParseOptionalInt(" 42 ")
		require.NotNil(t, got)
		assert.Equal(t, int32(42), *got)
	})

	t.Run("целое с нулевой дробной частью", func(t *testing.T) {
		got := ParseOptionalInt("3.0")
		require.NotNil(t, got)
		assert.Equal(t, int32(3), *got)

		got = ParseOptionalInt("15.000")
		require.NotNil(t, got)
		assert.Equal(t, int32(15), *got)
	})

	t.Run("мусор и пустая строка дают nil", func(t *testing.T) {
		for _, raw := range []string{"", "  ", "three", "3.5", "-1", "3,0"} {
			assert.Nil(t, ParseOptionalInt(raw), "строка %q", raw)
		}
	})

	t.Run("переполнение int32 даёт nil", func(t *testing.T) {
		assert.Nil(t, ParseOptionalInt("99999999999"))
	})
}
