// Package rates загружает месячные курсы валют ЕЦБ и годовой индекс
// потребительских цен HICP Евростата для пересчёта наград в реальные евро.
package rates

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	db "github.com/zhukovvlad/tedawards-go/cmd/internal/db/sqlc"

	"github.com/zhukovvlad/tedawards-go/cmd/pkg/logging"
)

const (
	// Серия EXR ЕЦБ: месячное среднее, курс "1 EUR = X валюты".
	ecbURLFormat = "https://data-api.ecb.europa.eu/service/data/EXR/" +
		"M.%s.EUR.SP00.A?startPeriod=%d-01&endPeriod=%d-12&detail=dataonly"

	// Годовое среднее HICP по еврозоне (EA20), все товары (CP00).
	eurostatURLFormat = "https://ec.europa.eu/eurostat/api/dissemination/statistics/1.0/data/prc_hicp_aind" +
		"?format=JSON&geo=EA20&coicop=CP00&unit=INX_A_AVG" +
		"&sinceTimePeriod=%d&untilTimePeriod=%d"
)

// Service обновляет таблицы курсов и индексов цен.
type Service struct {
	store  db.Store
	client *http.Client
	logger *logging.Logger
}

// NewService создаёт сервис курсов.
func NewService(store db.Store, logger *logging.Logger) *Service {
	return &Service{
		store:  store,
		client: &http.Client{Timeout: 60 * time.Second},
		logger: logger,
	}
}

// ExchangeRate — одно месячное наблюдение курса.
type ExchangeRate struct {
	Currency string
	Year     int
	Month    int
	Rate     float64
}

// PriceIndex — годовое значение индекса HICP.
type PriceIndex struct {
	Year       int
	IndexValue float64
}

// Update загружает курсы и индексы за диапазон лет и сохраняет их в одной
// транзакции. Список валют берётся из уже импортированных наград.
func (s *Service) Update(ctx context.Context, startYear, endYear int) error {
	currencies, err := s.store.ListAwardCurrencies(ctx)
	if err != nil {
		return err
	}

	ecbRows, err := s.FetchECBRates(ctx, currencies, startYear, endYear)
	if err != nil {
		return err
	}
	hicpRows, err := s.FetchHICP(ctx, startYear, endYear)
	if err != nil {
		return err
	}

	err = s.store.ExecTx(ctx, func(qtx *db.Queries) error {
		for _, r := range ecbRows {
			if err := qtx.UpsertExchangeRate(ctx, db.UpsertExchangeRateParams{
				Currency: r.Currency,
				Year:     int32(r.Year),
				Month:    int32(r.Month),
				Rate:     r.Rate,
			}); err != nil {
				return err
			}
		}
		for _, p := range hicpRows {
			if err := qtx.UpsertPriceIndex(ctx, db.UpsertPriceIndexParams{
				Year:       int32(p.Year),
				IndexValue: p.IndexValue,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Infof("Saved %d exchange rates and %d price indices", len(ecbRows), len(hicpRows))
	return nil
}

// FetchECBRates запрашивает у ЕЦБ месячные средние курсы перечисленных валют.
func (s *Service) FetchECBRates(ctx context.Context, currencies []string, startYear, endYear int) ([]ExchangeRate, error) {
	if len(currencies) == 0 {
		s.logger.Infof("No non-EUR currencies found, skipping ECB fetch")
		return nil, nil
	}

	url := fmt.Sprintf(ecbURLFormat, strings.Join(currencies, "+"), startYear, endYear)
	s.logger.Infof("Fetching ECB rates for %d currencies (%d-%d)", len(currencies), startYear, endYear)

	body, err := s.get(ctx, url, "text/csv")
	if err != nil {
		return nil, err
	}
	defer body.Close()

	return parseECBCSV(body)
}

// parseECBCSV разбирает CSV-ответ ЕЦБ (колонки CURRENCY, TIME_PERIOD,
// OBS_VALUE; период — "2024-03").
func parseECBCSV(r io.Reader) ([]ExchangeRate, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read ECB CSV header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"CURRENCY", "TIME_PERIOD", "OBS_VALUE"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("ECB CSV: missing column %s", required)
		}
	}

	var rows []ExchangeRate
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read ECB CSV: %w", err)
		}

		period := record[col["TIME_PERIOD"]]
		parts := strings.SplitN(period, "-", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("ECB CSV: bad time period %q", period)
		}
		year, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, fmt.Errorf("ECB CSV: bad year in %q", period)
		}
		month, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, fmt.Errorf("ECB CSV: bad month in %q", period)
		}
		value, err := strconv.ParseFloat(record[col["OBS_VALUE"]], 64)
		if err != nil {
			return nil, fmt.Errorf("ECB CSV: bad observation %q", record[col["OBS_VALUE"]])
		}

		rows = append(rows, ExchangeRate{
			Currency: record[col["CURRENCY"]],
			Year:     year,
			Month:    month,
			Rate:     value,
		})
	}

	return rows, nil
}

// eurostatResponse — нужная часть ответа JSON-stat 2.0.
type eurostatResponse struct {
	Value     map[string]float64 `json:"value"`
	Dimension struct {
		Time struct {
			Category struct {
				Index map[string]int `json:"index"`
			} `json:"category"`
		} `json:"time"`
	} `json:"dimension"`
}

// FetchHICP запрашивает у Евростата годовой индекс HICP еврозоны.
func (s *Service) FetchHICP(ctx context.Context, startYear, endYear int) ([]PriceIndex, error) {
	url := fmt.Sprintf(eurostatURLFormat, startYear, endYear)
	s.logger.Infof("Fetching Eurostat HICP (%d-%d)", startYear, endYear)

	body, err := s.get(ctx, url, "")
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var data eurostatResponse
	if err := json.NewDecoder(body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode Eurostat response: %w", err)
	}

	// JSON-stat: измерение времени отображает метки периодов в позиции
	// плоского массива значений.
	var rows []PriceIndex
	for period, idx := range data.Dimension.Time.Category.Index {
		value, ok := data.Value[strconv.Itoa(idx)]
		if !ok {
			continue
		}
		year, err := strconv.Atoi(period)
		if err != nil {
			return nil, fmt.Errorf("Eurostat: bad time period %q", period)
		}
		rows = append(rows, PriceIndex{Year: year, IndexValue: value})
	}

	s.logger.Infof("Fetched %d HICP index values", len(rows))
	return rows, nil
}

func (s *Service) get(ctx context.Context, url, accept string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: unexpected status %s", url, resp.Status)
	}
	return resp.Body, nil
}
