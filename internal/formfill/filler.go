package formfill

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"payrolldocs/internal/compose"
)

// FieldMismatchError reports field names the template layout does not have.
type FieldMismatchError struct {
	Fields []string
}

func (e *FieldMismatchError) Error() string {
	return "form template has no field named " + strings.Join(e.Fields, ", ")
}

type Filler struct {
	layout Layout
}

func NewFiller(layout Layout) *Filler {
	return &Filler{layout: layout}
}

func (f *Filler) Layout() Layout {
	return f.layout
}

// Fill writes each value over its slot on a copy of template. Every name in
// fields must exist in the layout; nothing is written otherwise.
func (f *Filler) Fill(template []byte, fields map[string]string) ([]byte, error) {
	var missing []string
	byPage := make(map[int][]string)
	for name := range fields {
		slot, ok := f.layout.Fields[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		byPage[slot.Page] = append(byPage[slot.Page], name)
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &FieldMismatchError{Fields: missing}
	}

	pages, err := compose.PageCount(template)
	if err != nil {
		return nil, fmt.Errorf("read form template: %w", err)
	}
	var outOfRange []string
	for page, names := range byPage {
		if page > pages {
			outOfRange = append(outOfRange, names...)
		}
	}
	if len(outOfRange) > 0 {
		sort.Strings(outOfRange)
		return nil, &FieldMismatchError{Fields: outOfRange}
	}

	return compose.Stamp(template, func(pdf *gofpdf.Fpdf, pageNo int) {
		tr := pdf.UnicodeTranslatorFromDescriptor("")
		names := byPage[pageNo]
		sort.Strings(names)
		for _, name := range names {
			value := fields[name]
			if value == "" {
				continue
			}
			slot := f.layout.Fields[name]
			size := slot.FontSize
			if size <= 0 {
				size = f.layout.FontSize
			}
			pdf.SetFont(f.layout.Font, "", size)
			pdf.Text(slot.X, slot.Y, tr(value))
		}
	})
}

// BlankTemplate draws a plain A4 form with one labelled line per layout
// field. It stands in when no official template file is configured.
func BlankTemplate(layout Layout) ([]byte, error) {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetFont("Helvetica", "", 6)
	pdf.SetDrawColor(180, 180, 180)
	pdf.SetTextColor(120, 120, 120)

	byPage := make(map[int][]string)
	for _, name := range layout.Names() {
		slot := layout.Fields[name]
		byPage[slot.Page] = append(byPage[slot.Page], name)
	}
	for page := 1; page <= max(layout.Pages(), 1); page++ {
		pdf.AddPage()
		for _, name := range byPage[page] {
			slot := layout.Fields[name]
			pdf.Line(slot.X, slot.Y+2, slot.X+220, slot.Y+2)
			pdf.Text(slot.X, slot.Y+8, name)
		}
	}
	if err := pdf.Error(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
