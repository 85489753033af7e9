package loader

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	db "github.com/zhukovvlad/tedawards-go/cmd/internal/db/sqlc"

	"github.com/zhukovvlad/tedawards-go/cmd/internal/notices"
	"github.com/zhukovvlad/tedawards-go/cmd/internal/testutil"
	"github.com/zhukovvlad/tedawards-go/cmd/pkg/logging"
)

func setupLoader(t *testing.T) (*Service, db.Store, *sql.DB) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	conn, container, err := testutil.SetupTestDatabase(t)
	require.NoError(t, err)
	t.Cleanup(func() {
		testutil.TeardownTestDatabase(t, conn, container)
	})
	require.NoError(t, testutil.RunMigrations(t, conn))

	store := db.NewStore(conn)
	return NewService(store, logging.GetLogger()), store, conn
}

func countRows(t *testing.T, conn *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, conn.QueryRow("SELECT count(*) FROM "+table).Scan(&n))
	return n
}

func TestSaveOne(t *testing.T) {
	svc, store, conn := setupLoader(t)
	ctx := context.Background()

	t.Run("первое сохранение записывает документ целиком", func(t *testing.T) {
		saved, err := svc.SaveOne(ctx, testutil.SampleNotice("100001-2024"))
		require.NoError(t, err)
		assert.True(t, saved)

		doc, err := store.GetDocument(ctx, "100001-2024")
		require.NoError(t, err)
		assert.Equal(t, "100001-2024", doc.DocID)
		assert.Equal(t, "DE", doc.SourceCountry.String)

		assert.Equal(t, 1, countRows(t, conn, "contracts"))
		assert.Equal(t, 1, countRows(t, conn, "awards"))
		assert.Equal(t, 1, countRows(t, conn, "award_contractors"))
		// заказчик + подрядчик
		assert.Equal(t, 2, countRows(t, conn, "organizations"))
	})

	t.Run("повторное сохранение того же doc_id — no-op", func(t *testing.T) {
		saved, err := svc.SaveOne(ctx, testutil.SampleNotice("100001-2024"))
		require.NoError(t, err)
		assert.False(t, saved)

		assert.Equal(t, 1, countRows(t, conn, "documents"))
		assert.Equal(t, 1, countRows(t, conn, "awards"))
	})

	t.Run("организации дедуплицируются между документами", func(t *testing.T) {
		saved, err := svc.SaveOne(ctx, testutil.SampleNotice("100002-2024"))
		require.NoError(t, err)
		assert.True(t, saved)

		// Тот же заказчик и тот же подрядчик: новых организаций нет.
		assert.Equal(t, 2, countRows(t, conn, "organizations"))
		assert.Equal(t, 2, countRows(t, conn, "documents"))
		assert.Equal(t, 2, countRows(t, conn, "awards"))
	})

	t.Run("организации с NULL-полями тоже дедуплицируются", func(t *testing.T) {
		n := testutil.SampleNotice("100003-2024")
		n.Awards[0].Contractors = []notices.Organization{{OfficialName: "Bare Org"}}
		_, err := svc.SaveOne(ctx, n)
		require.NoError(t, err)

		n = testutil.SampleNotice("100004-2024")
		n.Awards[0].Contractors = []notices.Organization{{OfficialName: "Bare Org"}}
		_, err = svc.SaveOne(ctx, n)
		require.NoError(t, err)

		var count int
		require.NoError(t, conn.QueryRow(
			"SELECT count(*) FROM organizations WHERE official_name = 'Bare Org'").Scan(&count))
		assert.Equal(t, 1, count)
	})
}

func TestSaveNoticeCountryNormalization(t *testing.T) {
	svc, _, conn := setupLoader(t)
	ctx := context.Background()

	t.Run("UK приводится к GB", func(t *testing.T) {
		n := testutil.SampleNotice("200001-2024")
		n.Buyer.CountryCode = notices.StringPtr("uk")
		_, err := svc.SaveOne(ctx, n)
		require.NoError(t, err)

		var code string
		require.NoError(t, conn.QueryRow(
			"SELECT country_code FROM organizations WHERE official_name = 'Stadt Musterstadt'").Scan(&code))
		assert.Equal(t, "GB", code)

		var name string
		require.NoError(t, conn.QueryRow(
			"SELECT name FROM countries WHERE code = 'GB'").Scan(&name))
		assert.Equal(t, "United Kingdom", name)
	})

	t.Run("псевдокод 1A отбрасывается", func(t *testing.T) {
		n := testutil.SampleNotice("200002-2024")
		n.Awards[0].Contractors[0].CountryCode = notices.StringPtr("1A")
		_, err := svc.SaveOne(ctx, n)
		require.NoError(t, err)

		var count int
		require.NoError(t, conn.QueryRow(
			"SELECT count(*) FROM countries WHERE code = '1A'").Scan(&count))
		assert.Equal(t, 0, count)

		// Подрядчик без страны — отдельная структурная идентичность.
		require.NoError(t, conn.QueryRow(
			"SELECT count(*) FROM organizations WHERE official_name = 'Möbelwerk GmbH' AND country_code IS NULL").Scan(&count))
		assert.Equal(t, 1, count)
	})
}

func TestSaveNoticeLookupDescriptions(t *testing.T) {
	svc, _, conn := setupLoader(t)
	ctx := context.Background()

	t.Run("описание CPV не затирается пустым", func(t *testing.T) {
		n := testutil.SampleNotice("300001-2024")
		n.Contract.CpvCodes[0].Description = notices.StringPtr("School furniture")
		_, err := svc.SaveOne(ctx, n)
		require.NoError(t, err)

		// Второй документ с тем же кодом, но без описания.
		n = testutil.SampleNotice("300002-2024")
		n.Contract.CpvCodes[0].Description = nil
		_, err = svc.SaveOne(ctx, n)
		require.NoError(t, err)

		var desc sql.NullString
		require.NoError(t, conn.QueryRow(
			"SELECT description FROM cpv_codes WHERE code = '39160000'").Scan(&desc))
		require.True(t, desc.Valid)
		assert.Equal(t, "School furniture", desc.String)
	})

	t.Run("позднее пришедшее описание дополняет справочник", func(t *testing.T) {
		n := testutil.SampleNotice("300003-2024")
		n.Contract.CpvCodes = []notices.CodelistEntry{{Code: "45000000"}}
		n.Contract.MainCpvCode = notices.StringPtr("45000000")
		_, err := svc.SaveOne(ctx, n)
		require.NoError(t, err)

		n = testutil.SampleNotice("300004-2024")
		n.Contract.CpvCodes = []notices.CodelistEntry{{
			Code:        "45000000",
			Description: notices.StringPtr("Construction work"),
		}}
		n.Contract.MainCpvCode = notices.StringPtr("45000000")
		_, err = svc.SaveOne(ctx, n)
		require.NoError(t, err)

		var desc sql.NullString
		require.NoError(t, conn.QueryRow(
			"SELECT description FROM cpv_codes WHERE code = '45000000'").Scan(&desc))
		require.True(t, desc.Valid)
		assert.Equal(t, "Construction work", desc.String)
	})
}

func TestNormalizeCountryCode(t *testing.T) {
	t.Run("верхний регистр", func(t *testing.T) {
		got := normalizeCountryCode(notices.StringPtr("de"))
		require.NotNil(t, got)
		assert.Equal(t, "DE", *got)
	})

	t.Run("UK становится GB", func(t *testing.T) {
		got := normalizeCountryCode(notices.StringPtr("UK"))
		require.NotNil(t, got)
		assert.Equal(t, "GB", *got)
	})

	t.Run("1A и пустые значения дают nil", func(t *testing.T) {
		assert.Nil(t, normalizeCountryCode(notices.StringPtr("1a")))
		assert.Nil(t, normalizeCountryCode(notices.StringPtr("")))
		assert.Nil(t, normalizeCountryCode(nil))
	})
}
