package parsers

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeHeader(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "notice.xml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDetect(t *testing.T) {
	t.Run("eForms по корневому элементу", func(t *testing.T) {
		path := writeHeader(t, `<?xml version="1.0"?>
<ContractAwardNotice xmlns="urn:oasis:names:specification:ubl:schema:xsd:ContractAwardNotice-2">
</ContractAwardNotice>`)
		dialect, err := Detect(path)
		require.NoError(t, err)
		assert.Equal(t, DialectEForms, dialect)
	})

	t.Run("legacy по TED_EXPORT и коду типа 7", func(t *testing.T) {
		path := writeHeader(t, `<?xml version="1.0"?>
<TED_EXPORT xmlns="http://publications.europa.eu/TED_schema/Export">
  <CODED_DATA_SECTION>
    <CODIF_DATA>
      <TD_DOCUMENT_TYPE CODE="7">Contract award</TD_DOCUMENT_TYPE>
    </CODIF_DATA>
  </CODED_DATA_SECTION>
</TED_EXPORT>`)
		dialect, err := Detect(path)
		require.NoError(t, err)
		assert.Equal(t, DialectLegacy, dialect)
	})

	t.Run("TED_EXPORT другого типа документа не распознаётся", func(t *testing.T) {
		path := writeHeader(t, `<?xml version="1.0"?>
<TED_EXPORT xmlns="http://publications.europa.eu/TED_schema/Export">
  <CODED_DATA_SECTION>
    <CODIF_DATA>
      <TD_DOCUMENT_TYPE CODE="3">Contract notice</TD_DOCUMENT_TYPE>
    </CODIF_DATA>
  </CODED_DATA_SECTION>
</TED_EXPORT>`)
		dialect, err := Detect(path)
		require.NoError(t, err)
		assert.Equal(t, DialectUnknown, dialect)
	})

	t.Run("не-XML файл не распознаётся", func(t *testing.T) {
		path := writeHeader(t, "just some text\n")
		dialect, err := Detect(path)
		require.NoError(t, err)
		assert.Equal(t, DialectUnknown, dialect)
	})

	t.Run("код типа за пределами пробы заголовка не учитывается", func(t *testing.T) {
		content := `<?xml version="1.0"?>
<TED_EXPORT xmlns="http://publications.europa.eu/TED_schema/Export">
<PADDING>` + strings.Repeat("x", headerProbeSize) + `</PADDING>
<TD_DOCUMENT_TYPE CODE="7"/>
</TED_EXPORT>`
		dialect, err := Detect(writeHeader(t, content))
		require.NoError(t, err)
		assert.Equal(t, DialectUnknown, dialect)
	})

	t.Run("отсутствующий файл — ошибка", func(t *testing.T) {
		_, err := Detect(filepath.Join(t.TempDir(), "missing.xml"))
		require.Error(t, err)
	})
}

func TestTryParseAward(t *testing.T) {
	t.Run("файл неизвестного диалекта пропускается без ошибки", func(t *testing.T) {
		path := writeHeader(t, "<OTHER_ROOT/>")
		notice, err := TryParseAward(path)
		require.NoError(t, err)
		assert.Nil(t, notice)
	})
}
