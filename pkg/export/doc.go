package export

import (
	"bytes"
	"fmt"
	"html/template"
)

// Word opens HTML carrying the Office namespaces as a native document.
var docTemplate = template.Must(template.New("doc").Parse(`<html xmlns:o='urn:schemas-microsoft-com:office:office' xmlns:w='urn:schemas-microsoft-com:office:word' xmlns='http://www.w3.org/TR/REC-html40'>
<head><meta charset='utf-8'><title>{{.Title}}</title></head>
<body>
<h1>{{.Title}}</h1>
{{- if .Headers}}
<table border="1" style="border-collapse:collapse">
<tr>{{range .Headers}}<th>{{.}}</th>{{end}}</tr>
{{- range .Cells}}
<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{- end}}
</table>
{{- end}}
</body>
</html>
`))

// DOCExporter renders datasets as an HTML table wrapped for word processors.
type DOCExporter struct{}

// NewDOCExporter constructs a Word-compatible exporter.
func NewDOCExporter() *DOCExporter {
	return &DOCExporter{}
}

// Encode renders the dataset table.
func (e *DOCExporter) Encode(data Dataset) ([]byte, error) {
	cells := make([][]string, len(data.Rows))
	for i, row := range data.Rows {
		cells[i] = make([]string, len(data.Headers))
		for j, h := range data.Headers {
			cells[i][j] = row[h]
		}
	}

	buf := &bytes.Buffer{}
	err := docTemplate.Execute(buf, struct {
		Title   string
		Headers []string
		Cells   [][]string
	}{Title: data.Title, Headers: data.Headers, Cells: cells})
	if err != nil {
		return nil, fmt.Errorf("render doc: %w", err)
	}
	return buf.Bytes(), nil
}
