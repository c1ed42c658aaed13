package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/gosimple/unidecode"
	"github.com/jung-kurt/gofpdf"
)

// PDFExporter renders datasets into a tabular landscape PDF.
// The core fonts only cover Latin-1, so cell text is transliterated.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF document with an optional title and subtitle lines.
func (e *PDFExporter) Render(data Dataset, title string, subtitle ...string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, latin(title), "", 1, "C", false, 0, "")
	}
	if len(subtitle) > 0 {
		pdf.SetFont("Arial", "", 10)
		for _, line := range subtitle {
			pdf.CellFormat(0, 6, latin(line), "", 1, "C", false, 0, "")
		}
	}
	pdf.Ln(4)

	width, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	colWidth := (width - left - right) / float64(len(data.Headers))

	writeHeader := func() {
		pdf.SetFont("Arial", "B", 10)
		pdf.SetFillColor(230, 230, 230)
		for _, header := range data.Headers {
			pdf.CellFormat(colWidth, 8, latin(header), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 9)
	}
	pdf.SetHeaderFunc(func() {
		if pdf.PageNo() > 1 {
			writeHeader()
		}
	})
	writeHeader()

	for _, row := range data.Rows {
		for _, header := range data.Headers {
			pdf.CellFormat(colWidth, 7, latin(row[header]), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func latin(s string) string {
	return strings.TrimSpace(unidecode.Unidecode(s))
}
