package values

import (
	"regexp"
	"time"

	"github.com/zhukovvlad/tedawards-go/cmd/pkg/logging"
)

var (
	reDateCompact   = regexp.MustCompile(`^\d{8}$`)
	reDateISO       = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	reDateISOOffset = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}(Z|[+-]\d{2}:\d{2})$`)
)

// ParseDateYYYYMMDD разбирает компактную дату "20240315" (формат R2.0.7/R2.0.8).
// Неподходящая форма логируется и даёт nil.
func ParseDateYYYYMMDD(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	if !reDateCompact.MatchString(raw) {
		logging.GetLogger().Warnf("Unparseable compact date: %q", raw)
		return nil
	}
	t, err := time.ParseInLocation("20060102", raw, time.UTC)
	if err != nil {
		logging.GetLogger().Warnf("Invalid compact date: %q", raw)
		return nil
	}
	return &t
}

// ParseDateISO разбирает дату ISO "2024-03-15" без смещения (формат R2.0.9).
func ParseDateISO(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	if !reDateISO.MatchString(raw) {
		logging.GetLogger().Warnf("Unparseable ISO date: %q", raw)
		return nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
	if err != nil {
		logging.GetLogger().Warnf("Invalid ISO date: %q", raw)
		return nil
	}
	return &t
}

// ParseDateISOOffset разбирает дату eForms с зональным смещением,
// например "2024-03-15+01:00" или "2024-03-15Z". Смещение отбрасывается:
// значимой является календарная дата, как её указал издатель.
func ParseDateISOOffset(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	if !reDateISOOffset.MatchString(raw) {
		logging.GetLogger().Warnf("Unparseable offset date: %q", raw)
		return nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw[:10], time.UTC)
	if err != nil {
		logging.GetLogger().Warnf("Invalid offset date: %q", raw)
		return nil
	}
	return &t
}
