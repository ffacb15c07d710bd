package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// Document is a titled PDF made of one table per section.
type Document struct {
	Title     string
	Subtitle  string
	Landscape bool
	Sections  []Dataset
}

// PDFExporter renders documents into tabular PDFs. Cell values may span several lines.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates the PDF for doc.
func (e *PDFExporter) Render(doc Document) ([]byte, error) {
	if len(doc.Sections) == 0 {
		return nil, fmt.Errorf("pdf requires at least one section")
	}
	orientation, width := "P", 190.0
	if doc.Landscape {
		orientation, width = "L", 277.0
	}
	pdf := gofpdf.New(orientation, "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	if doc.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, strings.ToUpper(doc.Title), "", 1, "C", false, 0, "")
	}
	if doc.Subtitle != "" {
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 6, doc.Subtitle, "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	for _, section := range doc.Sections {
		if len(section.Headers) == 0 {
			return nil, fmt.Errorf("pdf section %q requires at least one header", section.Caption)
		}
		writeSection(pdf, section, width)
		pdf.Ln(6)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSection(pdf *gofpdf.Fpdf, data Dataset, width float64) {
	if data.Caption != "" {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(0, 8, data.Caption, "", 1, "L", false, 0, "")
	}

	colWidth := width / float64(len(data.Headers))
	const lineHeight = 4.5

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for _, header := range data.Headers {
		pdf.CellFormat(colWidth, 8, header, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, row := range data.Rows {
		lines := 1
		for _, header := range data.Headers {
			if n := len(pdf.SplitLines([]byte(row[header]), colWidth-2)); n > lines {
				lines = n
			}
		}
		height := float64(lines)*lineHeight + 2

		_, pageHeight := pdf.GetPageSize()
		_, _, _, bottom := pdf.GetMargins()
		if pdf.GetY()+height > pageHeight-bottom {
			pdf.AddPage()
		}

		x, y := pdf.GetXY()
		for i, header := range data.Headers {
			cellX := x + float64(i)*colWidth
			pdf.Rect(cellX, y, colWidth, height, "D")
			pdf.SetXY(cellX+1, y+1)
			pdf.MultiCell(colWidth-2, lineHeight, row[header], "", "L", false)
		}
		pdf.SetXY(x, y+height)
	}
}
