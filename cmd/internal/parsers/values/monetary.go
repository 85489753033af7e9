// Package values содержит строгие парсеры лексических форм, встречающихся в
// текстовых узлах TED XML: денежные суммы, даты, необязательные целые.
//
// Каждый парсер принимает ровно одну лексическую форму и возвращает
// ok=false для всего остального. Формы взаимно исключающие, поэтому
// агрегатор ParseMonetary умеет обнаруживать неоднозначность.
package values

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/zhukovvlad/tedawards-go/cmd/pkg/logging"
)

// ErrAmbiguousParse возвращается, когда денежную строку приняли сразу
// несколько парсеров. Это ошибка программирования: набор форм перестал быть
// дизъюнктным и должен быть ужесточён до деплоя.
var ErrAmbiguousParse = fmt.Errorf("ambiguous monetary value: multiple parsers matched")

var (
	reCommaDecimal       = regexp.MustCompile(`^\d+,\d{2}$`)
	reCommaDecimal1      = regexp.MustCompile(`^\d+,\d$`)
	reCommaDecimal4      = regexp.MustCompile(`^\d+,\d{4}$`)
	reDotDecimal         = regexp.MustCompile(`^\d+(\.\d{2})?$`)
	reDotDecimal1        = regexp.MustCompile(`^\d+\.\d$`)
	reSpaceThousands     = regexp.MustCompile(`^\d{1,3}(?: \d{3})*(?:[,.]\d{2})?$`)
	reSpaceThousands1    = regexp.MustCompile(`^\d{1,3}(?: \d{3})*,\d$`)
	reSpaceThousands3    = regexp.MustCompile(`^\d{1,3}(?: \d{3}){1,3},\d{3}$`)
	reSpaceThousands4    = regexp.MustCompile(`^\d{1,3}(?: \d{3}){1,3},\d{4}$`)
	reDoubleSpaceGroups  = regexp.MustCompile(`^\d{1,3}(?: \d{3})*  \d{3},\d{2}$`)
	reIntCommaThousands  = regexp.MustCompile(`^\d{1,3}(,\d{3}){1,3}$`)
)

func mustFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// Регулярное выражение уже гарантировало числовую форму.
		panic(err)
	}
	return f
}

// parseCommaDecimal: "885,72" — запятая-десятичная, ровно 2 знака.
func parseCommaDecimal(s string) (float64, bool) {
	if !reCommaDecimal.MatchString(s) {
		return 0, false
	}
	return mustFloat(strings.ReplaceAll(s, ",", ".")), true
}

// parseCommaDecimal1: "72,8" — запятая-десятичная, ровно 1 знак.
func parseCommaDecimal1(s string) (float64, bool) {
	if !reCommaDecimal1.MatchString(s) {
		return 0, false
	}
	return mustFloat(strings.ReplaceAll(s, ",", ".")), true
}

// parseCommaDecimal4: "40,0000" — запятая-десятичная, ровно 4 знака.
func parseCommaDecimal4(s string) (float64, bool) {
	if !reCommaDecimal4.MatchString(s) {
		return 0, false
	}
	return mustFloat(strings.ReplaceAll(s, ",", ".")), true
}

// parseDotDecimal: "1234.56" или "1234" — точка-десятичная (2 знака) либо целое.
func parseDotDecimal(s string) (float64, bool) {
	if !reDotDecimal.MatchString(s) {
		return 0, false
	}
	return mustFloat(s), true
}

// parseDotDecimal1: "979828.1" — точка-десятичная, ровно 1 знак.
func parseDotDecimal1(s string) (float64, bool) {
	if !reDotDecimal1.MatchString(s) {
		return 0, false
	}
	return mustFloat(s), true
}

// parseSpaceThousands: "10 760 400" или "1 234,56" — пробел-разряды,
// необязательная 2-значная десятичная часть. Обязателен хотя бы один пробел,
// иначе форму обслуживает parseDotDecimal.
func parseSpaceThousands(s string) (float64, bool) {
	if !strings.Contains(s, " ") || !reSpaceThousands.MatchString(s) {
		return 0, false
	}
	return mustFloat(strings.NewReplacer(" ", "", ",", ".").Replace(s)), true
}

// parseSpaceThousandsComma1: "9 117,5" — пробел-разряды, запятая, 1 знак.
func parseSpaceThousandsComma1(s string) (float64, bool) {
	if !strings.Contains(s, " ") || !reSpaceThousands1.MatchString(s) {
		return 0, false
	}
	return mustFloat(strings.NewReplacer(" ", "", ",", ".").Replace(s)), true
}

// parseSpaceThousandsComma3: "56 146,820" — пробел-разряды, запятая, 3 знака.
func parseSpaceThousandsComma3(s string) (float64, bool) {
	if !strings.Contains(s, " ") || !reSpaceThousands3.MatchString(s) {
		return 0, false
	}
	return mustFloat(strings.NewReplacer(" ", "", ",", ".").Replace(s)), true
}

// parseSpaceThousandsComma4: "264 886,8600" — пробел-разряды, запятая, 4 знака.
func parseSpaceThousandsComma4(s string) (float64, bool) {
	if !strings.Contains(s, " ") || !reSpaceThousands4.MatchString(s) {
		return 0, false
	}
	return mustFloat(strings.NewReplacer(" ", "", ",", ".").Replace(s)), true
}

// parseDoubleSpaceThousands: "1 011  606,51" — двойной пробел перед последней
// группой разрядов, запятая, 2 знака.
func parseDoubleSpaceThousands(s string) (float64, bool) {
	if !reDoubleSpaceGroups.MatchString(s) {
		return 0, false
	}
	return mustFloat(strings.NewReplacer(" ", "", ",", ".").Replace(s)), true
}

// parseIntCommaThousands: "600,000" или "1,234,567" — запятая-разряды,
// без десятичной части.
func parseIntCommaThousands(s string) (float64, bool) {
	if !reIntCommaThousands.MatchString(s) {
		return 0, false
	}
	return mustFloat(strings.ReplaceAll(s, ",", "")), true
}

type monetaryParser struct {
	name  string
	parse func(string) (float64, bool)
}

// Порядок не важен: формы взаимно исключающие.
var monetaryParsers = []monetaryParser{
	{"comma_decimal", parseCommaDecimal},
	{"comma_decimal_1", parseCommaDecimal1},
	{"comma_decimal_4", parseCommaDecimal4},
	{"doublespace_thousands", parseDoubleSpaceThousands},
	{"dot_decimal", parseDotDecimal},
	{"dot_decimal_1", parseDotDecimal1},
	{"space_thousands", parseSpaceThousands},
	{"space_thousands_comma_1", parseSpaceThousandsComma1},
	{"space_thousands_comma_3", parseSpaceThousandsComma3},
	{"space_thousands_comma_4", parseSpaceThousandsComma4},
	{"int_comma_thousands", parseIntCommaThousands},
}

// ParseMonetary прогоняет строку через все денежные парсеры.
//
//   - nil, nil — ни один не подошёл (warning в лог);
//   - значение — подошёл ровно один;
//   - ErrAmbiguousParse — подошло несколько: набор форм нужно ужесточить.
func ParseMonetary(raw string, fieldName string) (*float64, error) {
	stripped := strings.TrimSpace(raw)
	if stripped == "" {
		return nil, nil
	}

	var matched []string
	var value float64
	for _, p := range monetaryParsers {
		if v, ok := p.parse(stripped); ok {
			matched = append(matched, p.name)
			value = v
		}
	}

	switch len(matched) {
	case 0:
		logging.GetLogger().Warnf("No monetary parser matched for %s: %q", fieldName, raw)
		return nil, nil
	case 1:
		return &value, nil
	default:
		return nil, fmt.Errorf("%w: field %s, value %q, parsers %v",
			ErrAmbiguousParse, fieldName, raw, matched)
	}
}
