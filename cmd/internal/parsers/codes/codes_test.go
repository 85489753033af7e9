package codes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeContractNature(t *testing.T) {
	t.Run("старые числовые коды отображаются на eForms", func(t *testing.T) {
		cases := map[string]string{
			"1": "works",
			"2": "supplies",
			"4": "services",
		}
		for raw, want := range cases {
			got := NormalizeContractNature(raw)
			require.NotNil(t, got, "код %q должен отображаться", raw)
			assert.Equal(t, want, *got)
		}
	})

	t.Run("канонические коды TED v2 отображаются на eForms", func(t *testing.T) {
		cases := map[string]string{
			"WORKS":    "works",
			"SUPPLIES": "supplies",
			"SERVICES": "services",
		}
		for raw, want := range cases {
			got := NormalizeContractNature(raw)
			require.NotNil(t, got)
			assert.Equal(t, want, *got)
		}
	})

	t.Run("известные коды eForms проходят без изменений", func(t *testing.T) {
		for _, code := range []string{"works", "supplies", "services", "combined"} {
			got := NormalizeContractNature(code)
			require.NotNil(t, got)
			assert.Equal(t, code, *got)
		}
	})

	t.Run("неизвестный и пустой коды дают nil", func(t *testing.T) {
		assert.Nil(t, NormalizeContractNature("UNKNOWN_NATURE"))
		assert.Nil(t, NormalizeContractNature(""))
	})
}

func TestNormalizeProcedureType(t *testing.T) {
	t.Run("старые числовые коды", func(t *testing.T) {
		entry, accelerated := NormalizeProcedureType("1", "")
		require.NotNil(t, entry)
		assert.Equal(t, "open", entry.Code)
		assert.False(t, accelerated)
		require.NotNil(t, entry.Description)
		assert.Equal(t, "Open procedure", *entry.Description)
	})

	t.Run("ускоренная процедура поднимает флаг", func(t *testing.T) {
		entry, accelerated := NormalizeProcedureType("3", "")
		require.NotNil(t, entry)
		assert.Equal(t, "restricted", entry.Code)
		assert.True(t, accelerated)

		entry, accelerated = NormalizeProcedureType("6", "")
		require.NotNil(t, entry)
		assert.Equal(t, "neg-w-call", entry.Code)
		assert.True(t, accelerated)
	})

	t.Run("коды B и 4 дают одну и ту же процедуру", func(t *testing.T) {
		entryB, _ := NormalizeProcedureType("B", "")
		entry4, _ := NormalizeProcedureType("4", "")
		require.NotNil(t, entryB)
		require.NotNil(t, entry4)
		assert.Equal(t, entry4.Code, entryB.Code)
		assert.Equal(t, "neg-w-call", entryB.Code)
	})

	t.Run("канонические коды TED v2", func(t *testing.T) {
		entry, accelerated := NormalizeProcedureType("ACCELERATED_RESTRICTED", "")
		require.NotNil(t, entry)
		assert.Equal(t, "restricted", entry.Code)
		assert.True(t, accelerated)

		entry, accelerated = NormalizeProcedureType("COMPETITIVE_DIALOGUE", "")
		require.NotNil(t, entry)
		assert.Equal(t, "comp-dial", entry.Code)
		assert.False(t, accelerated)
	})

	t.Run("явно неотображаемые коды дают nil без флага", func(t *testing.T) {
		for _, raw := range []string{"9", "A", "N", "Z", "INVOLVING_NEGOTIATION"} {
			entry, accelerated := NormalizeProcedureType(raw, "")
			assert.Nil(t, entry, "код %q неотображаем", raw)
			assert.False(t, accelerated)
		}
	})

	t.Run("код eForms проходит как есть с описанием из источника", func(t *testing.T) {
		entry, accelerated := NormalizeProcedureType("neg-wo-call", "Прямое заключение")
		require.NotNil(t, entry)
		assert.Equal(t, "neg-wo-call", entry.Code)
		assert.False(t, accelerated)
		require.NotNil(t, entry.Description)
		assert.Equal(t, "Прямое заключение", *entry.Description)
	})

	t.Run("код eForms без описания получает каноническое", func(t *testing.T) {
		entry, _ := NormalizeProcedureType("comp-tend", "")
		require.NotNil(t, entry)
		require.NotNil(t, entry.Description)
		assert.Equal(t, "Competitive tendering (Regulation 1370/2007)", *entry.Description)
	})

	t.Run("unpublished и пустой вход дают nil", func(t *testing.T) {
		entry, accelerated := NormalizeProcedureType("unpublished", "")
		assert.Nil(t, entry)
		assert.False(t, accelerated)

		entry, _ = NormalizeProcedureType("", "")
		assert.Nil(t, entry)
	})
}

func TestNormalizeAuthorityType(t *testing.T) {
	t.Run("старые числовые коды", func(t *testing.T) {
		cases := map[string]string{
			"1": "cga",
			"3": "ra",
			"5": "eu-ins-bod-ag",
			"6": "body-pl",
			"N": "cga",
			"R": "body-pl-ra",
		}
		for raw, want := range cases {
			entry := NormalizeAuthorityType(raw)
			require.NotNil(t, entry, "код %q должен отображаться", raw)
			assert.Equal(t, want, entry.Code)
			assert.NotNil(t, entry.Description)
		}
	})

	t.Run("канонические коды TED v2", func(t *testing.T) {
		entry := NormalizeAuthorityType("MINISTRY")
		require.NotNil(t, entry)
		assert.Equal(t, "cga", entry.Code)

		entry = NormalizeAuthorityType("NATIONAL_AGENCY")
		require.NotNil(t, entry)
		assert.Equal(t, "cga", entry.Code)

		entry = NormalizeAuthorityType("BODY_PUBLIC")
		require.NotNil(t, entry)
		assert.Equal(t, "body-pl", entry.Code)
	})

	t.Run("коды без эквивалента в eForms дают nil", func(t *testing.T) {
		for _, raw := range []string{"4", "8", "9", "Z", "OTHER"} {
			assert.Nil(t, NormalizeAuthorityType(raw), "код %q не имеет эквивалента", raw)
		}
	})

	t.Run("код eForms проходит как есть", func(t *testing.T) {
		entry := NormalizeAuthorityType("la")
		require.NotNil(t, entry)
		assert.Equal(t, "la", entry.Code)
		require.NotNil(t, entry.Description)
		assert.Equal(t, "Local authority", *entry.Description)
	})

	t.Run("неизвестный код даёт nil", func(t *testing.T) {
		assert.Nil(t, NormalizeAuthorityType("WHATEVER"))
	})
}
