package export

import (
	"fmt"
	"strings"
)

// Dataset defines tabular export content.
type Dataset struct {
	Title   string
	Headers []string
	Rows    []map[string]string
}

// Format names a supported export encoding.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
	FormatDOC  Format = "doc"
	FormatCSV  Format = "csv"
)

// Encoder turns a dataset into a downloadable document.
type Encoder interface {
	Encode(data Dataset) ([]byte, error)
}

// ParseFormat resolves user input into a Format.
func ParseFormat(raw string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(raw))); f {
	case FormatXLSX, FormatPDF, FormatDOC, FormatCSV:
		return f, nil
	case "":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", raw)
	}
}

// ContentType returns the MIME type served for f.
func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	case FormatDOC:
		return "application/msword"
	case FormatCSV:
		return "text/csv"
	default:
		return "application/octet-stream"
	}
}

// Extension returns the file extension for f without the dot.
func (f Format) Extension() string {
	return string(f)
}

// Encoders returns one encoder per supported format.
func Encoders() map[Format]Encoder {
	return map[Format]Encoder{
		FormatXLSX: NewXLSXExporter(),
		FormatPDF:  NewPDFExporter(),
		FormatDOC:  NewDOCExporter(),
		FormatCSV:  NewCSVExporter(),
	}
}
