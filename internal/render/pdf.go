package render

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"payrolldocs/internal/domain/projection"
)

const (
	margin     = 10.0
	lineHeight = 6.0
	rowHeight  = 7.0
)

// PDFRenderer draws the fixed statement layouts with gofpdf.
type PDFRenderer struct{}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

func (r *PDFRenderer) Render(ctx context.Context, name string, in Input) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l, ok := layouts[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLayout, name)
	}
	if len(in.Rows) == 0 {
		return nil, fmt.Errorf("render %s: %w", name, ErrNoRows)
	}

	pdf := gofpdf.New(l.orientation, "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if len(l.slip) > 0 {
		for _, row := range in.Rows {
			pdf.AddPage()
			writeHeader(pdf, tr, l, in.Header)
			writeSlip(pdf, tr, l.slip, row)
		}
	} else {
		pdf.SetHeaderFunc(func() {
			writeHeader(pdf, tr, l, in.Header)
			writeColumnTitles(pdf, tr, l.columns)
		})
		pdf.AddPage()
		pdf.SetFont("Helvetica", "", 8)
		for _, row := range in.Rows {
			for _, c := range l.columns {
				pdf.CellFormat(c.width, rowHeight, tr(row[c.field]), "1", 0, c.align, false, 0, "")
			}
			pdf.Ln(-1)
		}
		writeTotals(pdf, tr, l.columns, in.Totals)
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

func writeHeader(pdf *gofpdf.Fpdf, tr func(string) string, l layout, header map[string]string) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, tr(header[projection.CompanyName]), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, tr(l.title), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	for _, h := range l.header {
		pdf.CellFormat(35, lineHeight, tr(h.label), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, lineHeight, tr(header[h.field]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)
}

func writeColumnTitles(pdf *gofpdf.Fpdf, tr func(string) string, columns []column) {
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(230, 230, 230)
	for _, c := range columns {
		pdf.CellFormat(c.width, rowHeight, tr(c.title), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 8)
}

func writeTotals(pdf *gofpdf.Fpdf, tr func(string) string, columns []column, totals map[string]string) {
	pdf.SetFont("Helvetica", "B", 8)
	for i, c := range columns {
		text := totals[c.field]
		switch i {
		case 0:
			text = "Total"
		case 1:
			text = totals[projection.NoOfEmployees] + " employees"
		}
		if c.align != "R" && i > 1 {
			text = ""
		}
		pdf.CellFormat(c.width, rowHeight, tr(text), "1", 0, c.align, false, 0, "")
	}
	pdf.Ln(-1)
}

func writeSlip(pdf *gofpdf.Fpdf, tr func(string) string, lines []headerLine, row map[string]string) {
	pdf.SetFont("Helvetica", "", 14)
	for _, line := range lines {
		pdf.CellFormat(90, 10, tr(line.label), "B", 0, "L", false, 0, "")
		pdf.CellFormat(90, 10, tr(row[line.field]), "B", 1, "R", false, 0, "")
	}
}
