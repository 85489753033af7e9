// Package countries отображает коды стран ISO 3166-1 alpha-2 в английские
// названия для справочника стран.
package countries

import "github.com/biter777/countries"

// Исторические коды, встречающиеся в данных TED, но исключённые из ISO 3166.
var historical = map[string]string{
	"AN": "Netherlands Antilles",
}

// Name возвращает английское название страны по коду alpha-2,
// nil — для неизвестного кода.
func Name(code string) *string {
	if name, ok := historical[code]; ok {
		return &name
	}
	country := countries.ByName(code)
	if country == countries.Unknown {
		return nil
	}
	name := country.String()
	return &name
}
