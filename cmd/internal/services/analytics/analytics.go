// Package analytics сопровождает материализованное представление
// awards_adjusted: награды с пересчётом в евро по месячному курсу ЕЦБ
// и в реальные евро последнего года по индексу HICP.
//
// DDL выполняется напрямую через database/sql: материализованные
// представления создаются и обновляются вне обычного слоя запросов.
package analytics

import (
	"context"
	"database/sql"

	"github.com/zhukovvlad/tedawards-go/cmd/pkg/logging"
)

const createViewSQL = `
CREATE MATERIALIZED VIEW IF NOT EXISTS awards_adjusted AS
SELECT
    a.id AS award_id, a.contract_id, c.doc_id,
    d.publication_date, d.source_country,
    o.official_name AS buyer_name,
    o.country_code AS buyer_country,
    c.title AS contract_title, c.main_cpv_code,
    c.contract_nature_code, c.procedure_type_code,
    c.nuts_code AS contract_nuts_code,
    c.framework_agreement, c.eu_funded,
    c.estimated_value, c.estimated_value_currency,
    a.award_title, a.awarded_value, a.awarded_value_currency,
    a.tenders_received, a.award_date, a.lot_number,
    CASE
        WHEN a.awarded_value IS NULL OR a.awarded_value_currency IS NULL THEN NULL
        WHEN a.awarded_value_currency = 'EUR' THEN a.awarded_value
        WHEN er.rate IS NOT NULL THEN ROUND(a.awarded_value / er.rate, 2)
    END AS value_eur,
    CASE
        WHEN a.awarded_value IS NULL OR a.awarded_value_currency IS NULL THEN NULL
        WHEN pi_year.index_value IS NULL OR pi_base.index_value IS NULL THEN NULL
        WHEN a.awarded_value_currency = 'EUR'
            THEN ROUND(a.awarded_value * pi_base.index_value / pi_year.index_value, 2)
        WHEN er.rate IS NOT NULL
            THEN ROUND(a.awarded_value / er.rate * pi_base.index_value / pi_year.index_value, 2)
    END AS value_eur_real
FROM awards a
JOIN contracts c ON a.contract_id = c.id
JOIN documents d ON c.doc_id = d.doc_id
JOIN organizations o ON d.buyer_organization_id = o.id
LEFT JOIN exchange_rates er
    ON er.currency = a.awarded_value_currency
    AND er.year = EXTRACT(YEAR FROM d.publication_date)::int
    AND er.month = EXTRACT(MONTH FROM d.publication_date)::int
LEFT JOIN price_indices pi_year
    ON pi_year.year = EXTRACT(YEAR FROM d.publication_date)::int
LEFT JOIN (SELECT index_value FROM price_indices WHERE year = (SELECT MAX(year) FROM price_indices)) pi_base ON TRUE
WITH DATA
`

var viewIndexes = []string{
	"CREATE UNIQUE INDEX IF NOT EXISTS idx_awards_adjusted_award_id ON awards_adjusted (award_id)",
	"CREATE INDEX IF NOT EXISTS idx_awards_adjusted_pub_date ON awards_adjusted (publication_date)",
	"CREATE INDEX IF NOT EXISTS idx_awards_adjusted_country ON awards_adjusted (source_country)",
	"CREATE INDEX IF NOT EXISTS idx_awards_adjusted_cpv ON awards_adjusted (main_cpv_code)",
}

// Service управляет представлением awards_adjusted.
type Service struct {
	db     *sql.DB
	logger *logging.Logger
}

// NewService создаёт сервис аналитики поверх открытого соединения.
func NewService(db *sql.DB, logger *logging.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// Ensure создаёт представление и его индексы, если их ещё нет.
func (s *Service) Ensure(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createViewSQL); err != nil {
		return err
	}
	for _, idx := range viewIndexes {
		if _, err := s.db.ExecContext(ctx, idx); err != nil {
			return err
		}
	}
	s.logger.Infof("Materialized view awards_adjusted ensured")
	return nil
}

// Refresh обновляет представление без блокировки читателей.
// Уникальный индекс по award_id обязателен для CONCURRENTLY.
func (s *Service) Refresh(ctx context.Context) error {
	if err := s.Ensure(ctx); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, "REFRESH MATERIALIZED VIEW CONCURRENTLY awards_adjusted"); err != nil {
		return err
	}
	s.logger.Infof("Materialized view awards_adjusted refreshed")
	return nil
}
