// Package parsers определяет диалект файла извещения по заголовку и
// передаёт его профильному парсеру.
package parsers

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/zhukovvlad/tedawards-go/cmd/internal/notices"
	"github.com/zhukovvlad/tedawards-go/cmd/internal/parsers/eforms"
	"github.com/zhukovvlad/tedawards-go/cmd/internal/parsers/tedxml"
)

// Dialect — семейство схемы файла извещения.
type Dialect string

const (
	DialectUnknown Dialect = ""
	DialectLegacy  Dialect = "ted-v2"
	DialectEForms  Dialect = "eforms-ubl"
)

// headerProbeSize — размер префикса файла для определения диалекта.
// Корневой элемент и CODED_DATA_SECTION с кодом типа документа всегда
// умещаются в первые 3000 байт.
const headerProbeSize = 3000

// Detect читает префикс файла и определяет диалект.
//
// eForms узнаётся по корневому элементу ContractAwardNotice. Файлы
// legacy-семейства имеют корень TED_EXPORT, но среди них извещениями
// о заключении контракта являются только документы с кодом типа 7 —
// остальные (тендеры, предварительные объявления) дают DialectUnknown.
func Detect(path string) (Dialect, error) {
	fd, err := os.Open(path)
	if err != nil {
		return DialectUnknown, fmt.Errorf("open %s: %w", path, err)
	}
	defer fd.Close()

	buf := make([]byte, headerProbeSize)
	n, err := io.ReadFull(fd, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return DialectUnknown, fmt.Errorf("read %s: %w", path, err)
	}
	header := string(buf[:n])

	if strings.Contains(header, "<ContractAwardNotice") {
		return DialectEForms, nil
	}
	if strings.Contains(header, "<TED_EXPORT") && strings.Contains(header, `CODE="7"`) {
		return DialectLegacy, nil
	}
	return DialectUnknown, nil
}

// TryParseAward разбирает файл, если это извещение о заключении контракта.
// Для файлов другого типа возвращает (nil, nil).
func TryParseAward(path string) (*notices.Notice, error) {
	dialect, err := Detect(path)
	if err != nil {
		return nil, err
	}

	switch dialect {
	case DialectEForms:
		return eforms.Parse(path)
	case DialectLegacy:
		return tedxml.Parse(path)
	default:
		return nil, nil
	}
}
