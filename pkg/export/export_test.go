package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleDataset() Dataset {
	return Dataset{
		Title:   "Students",
		Headers: []string{"studentName", "classes", "email"},
		Rows: []map[string]string{
			{"studentName": "Thando", "classes": "Violin", "email": "mom@example.com"},
			{"studentName": "Lerato", "classes": "Cello"},
		},
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("PDF")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, f)

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	_, err = ParseFormat("pptx")
	assert.Error(t, err)
}

func TestCSVExporter(t *testing.T) {
	out, err := NewCSVExporter().Encode(sampleDataset())
	require.NoError(t, err)
	assert.Equal(t, "studentName,classes,email\nThando,Violin,mom@example.com\nLerato,Cello,\n", string(out))

	out, err = NewCSVExporter().Encode(Dataset{Title: "Empty"})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestPDFExporterEmptyDatasetRendersTitleOnly(t *testing.T) {
	exporter := &PDFExporter{}
	out, err := exporter.Encode(Dataset{Title: "Class List"})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
	assert.Contains(t, string(out), "CLASS LIST")
}

func TestPDFExporterTable(t *testing.T) {
	out, err := NewPDFExporter().Encode(sampleDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestXLSXExporterWritesRows(t *testing.T) {
	out, err := NewXLSXExporter().Encode(sampleDataset())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck

	rows, err := f.GetRows("Students")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"studentName", "classes", "email"}, rows[0])
	assert.Equal(t, []string{"Thando", "Violin", "mom@example.com"}, rows[1])
	assert.Equal(t, "Lerato", rows[2][0])
	assert.Equal(t, "Cello", rows[2][1])
}

func TestXLSXSheetName(t *testing.T) {
	assert.Equal(t, "Sheet1", sheetName("  "))
	assert.Equal(t, "Overview 2026", sheetName("Overview: 2026"))
	assert.Len(t, []rune(sheetName("A very long worksheet title that overflows")), 31)
}

func TestDOCExporterEscapesValues(t *testing.T) {
	data := sampleDataset()
	data.Rows[0]["studentName"] = "<b>Thando</b>"

	out, err := NewDOCExporter().Encode(data)
	require.NoError(t, err)
	doc := string(out)
	assert.Contains(t, doc, "urn:schemas-microsoft-com:office:word")
	assert.Contains(t, doc, "<th>studentName</th>")
	assert.Contains(t, doc, "&lt;b&gt;Thando&lt;/b&gt;")
	assert.NotContains(t, doc, "<b>Thando</b>")
}

func TestFormatContentType(t *testing.T) {
	assert.Equal(t, "application/pdf", FormatPDF.ContentType())
	assert.Equal(t, "doc", FormatDOC.Extension())
	assert.Len(t, Encoders(), 4)
}
