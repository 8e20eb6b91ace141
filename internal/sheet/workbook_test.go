package sheet

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/asaniustaz/Campusconnect-sub000/pkg/errors"
)

func buildWorkbook(t *testing.T) []byte {
	t.Helper()

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"student_id", "Maths", "English"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"ST1", 80, 60}))

	_, err := f.NewSheet("Term 2")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Term 2", "A1", &[]interface{}{"roll no", "score"}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestOpen_XLSX(t *testing.T) {
	wb, err := Open("scores.xlsx", buildWorkbook(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"Sheet1", "Term 2"}, wb.SheetNames())

	headers, err := wb.HeaderRow("Sheet1")
	require.NoError(t, err)
	assert.Equal(t, []string{"student_id", "Maths", "English"}, headers)

	headers, err = wb.HeaderRow("Term 2")
	require.NoError(t, err)
	assert.Equal(t, []string{"roll no", "score"}, headers)

	rows, err := wb.DataRows("Sheet1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "ST1", rows[0][0])

	_, err = wb.HeaderRow("Nope")
	assert.ErrorIs(t, err, errors.ErrSheetNotFound)
}

func TestOpen_CSV(t *testing.T) {
	data := []byte("student_id,Maths,English\nST1,80,60\nST2,90,70\n")

	wb, err := Open("scores.csv", data)
	require.NoError(t, err)

	assert.Equal(t, []string{CSVSheetName}, wb.SheetNames())

	headers, err := wb.HeaderRow(CSVSheetName)
	require.NoError(t, err)
	assert.Equal(t, []string{"student_id", "Maths", "English"}, headers)

	rows, err := wb.DataRows(CSVSheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestOpen_BadData(t *testing.T) {
	_, err := Open("scores.xlsx", []byte("not a workbook"))
	assert.Error(t, err)

	_, err = Open("scores.csv", []byte(""))
	assert.ErrorIs(t, err, errors.ErrInvalidFileFormat)
}

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtractTemplateText_Docx(t *testing.T) {
	// Word splits "{{ student_name }}" across two runs inside one paragraph.
	doc := `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Report for {{ stu</w:t></w:r><w:r><w:t>dent_name }}</w:t></w:r></w:p>
    <w:p><w:r><w:t>Class: {{ class_name }}</w:t></w:r></w:p>
  </w:body>
</w:document>`

	text, err := ExtractTemplateText("report.docx", buildDocx(t, doc))
	require.NoError(t, err)
	assert.Contains(t, text, "{{ student_name }}")
	assert.Contains(t, text, "{{ class_name }}")
}

func TestExtractTemplateText_Plain(t *testing.T) {
	text, err := ExtractTemplateText("report.txt", []byte("Hello {{ name }}"))
	require.NoError(t, err)
	assert.Equal(t, "Hello {{ name }}", text)
}

func TestExtractTemplateText_DocxMissingDocumentPart(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	_, err := zw.Create("word/styles.xml")
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = ExtractTemplateText("report.docx", buf.Bytes())
	assert.ErrorIs(t, err, errors.ErrInvalidFileFormat)
}
