package values

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/zhukovvlad/tedawards-go/cmd/pkg/logging"
)

var reIntWithZeroFraction = regexp.MustCompile(`^(\d+)(\.0+)?$`)

// ParseOptionalInt разбирает количество заявок и прочие счётчики.
// Принимает целое, в том числе с нулевой дробной частью ("3.0" встречается
// в экспортах некоторых стран); всё остальное логируется и даёт nil.
func ParseOptionalInt(raw string) *int32 {
	stripped := strings.TrimSpace(raw)
	if stripped == "" {
		return nil
	}
	m := reIntWithZeroFraction.FindStringSubmatch(stripped)
	if m == nil {
		logging.GetLogger().Warnf("Unparseable integer: %q", raw)
		return nil
	}
	v, err := strconv.ParseInt(m[1], 10, 32)
	if err != nil {
		logging.GetLogger().Warnf("Integer out of range: %q", raw)
		return nil
	}
	n := int32(v)
	return &n
}
