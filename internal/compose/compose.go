package compose

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
	"github.com/jung-kurt/gofpdf/contrib/gofpdi"
)

const box = "/MediaBox"

// A4 in points, the tiled output page.
const (
	a4Width  = 595.28
	a4Height = 841.89
)

var (
	ErrEmpty         = errors.New("nothing to compose")
	ErrInvalidSource = errors.New("invalid pdf source")
)

type Mode int

const (
	// Sequential appends every source page as is.
	Sequential Mode = iota
	// Tiled places four source pages on each A4 page, row-major from the
	// top-left quadrant.
	Tiled
)

// Part is one slot of the output. Copies below one count as one.
type Part struct {
	Sources      [][]byte
	Mode         Mode
	Copies       int
	QuarterTurns int
}

type PageSize struct {
	Width  float64
	Height float64
}

type page struct {
	tpl    int
	source int
	size   PageSize
}

// placement records where one source page landed in the output.
type placement struct {
	sheet  int
	slot   int
	source int
	x, y   float64
	w, h   float64
}

type composer struct {
	pdf *gofpdf.Fpdf
	imp *gofpdi.Importer
	// gofpdi caches readers by stream pointer address, so every stream must
	// stay reachable until output is written or a later source could reuse
	// a collected address and be served the wrong document.
	streams []*io.ReadSeeker
	sources int
	sheets  int
	placed  []placement
}

func newComposer() *composer {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	return &composer{pdf: pdf, imp: gofpdi.NewImporter()}
}

// load imports every page of data as a template. gofpdi panics on input it
// cannot parse, so the panic is turned into ErrInvalidSource.
func (c *composer) load(data []byte) (pages []page, err error) {
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		return nil, ErrInvalidSource
	}
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("%w: %v", ErrInvalidSource, r)
		}
	}()

	var rs io.ReadSeeker = bytes.NewReader(data)
	stream := &rs
	c.streams = append(c.streams, stream)
	source := c.sources
	c.sources++
	first := c.imp.ImportPageFromStream(c.pdf, stream, 1, box)
	sizes := c.imp.GetPageSizes()
	if len(sizes) == 0 {
		return nil, ErrInvalidSource
	}
	pages = make([]page, 0, len(sizes))
	for n := 1; n <= len(sizes); n++ {
		tpl := first
		if n > 1 {
			tpl = c.imp.ImportPageFromStream(c.pdf, stream, n, box)
		}
		dims := sizes[n][box]
		pages = append(pages, page{tpl: tpl, source: source, size: PageSize{Width: dims["w"], Height: dims["h"]}})
	}
	if err := c.pdf.Error(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSource, err)
	}
	return pages, nil
}

// place appends one output page holding p turned clockwise by quarter turns.
func (c *composer) place(p page, quarterTurns int) {
	w, h := p.size.Width, p.size.Height
	c.sheets++
	c.placed = append(c.placed, placement{sheet: c.sheets, source: p.source, w: w, h: h})
	switch ((quarterTurns % 4) + 4) % 4 {
	case 0:
		c.pdf.AddPageFormat("P", gofpdf.SizeType{Wd: w, Ht: h})
		c.imp.UseImportedTemplate(c.pdf, p.tpl, 0, 0, w, h)
	case 1:
		c.pdf.AddPageFormat("P", gofpdf.SizeType{Wd: h, Ht: w})
		c.pdf.TransformBegin()
		c.pdf.TransformRotate(-90, h, 0)
		c.imp.UseImportedTemplate(c.pdf, p.tpl, h, 0, w, h)
		c.pdf.TransformEnd()
	case 2:
		c.pdf.AddPageFormat("P", gofpdf.SizeType{Wd: w, Ht: h})
		c.pdf.TransformBegin()
		c.pdf.TransformRotate(180, w/2, h/2)
		c.imp.UseImportedTemplate(c.pdf, p.tpl, 0, 0, w, h)
		c.pdf.TransformEnd()
	case 3:
		c.pdf.AddPageFormat("P", gofpdf.SizeType{Wd: h, Ht: w})
		c.pdf.TransformBegin()
		c.pdf.TransformRotate(90, 0, w)
		c.imp.UseImportedTemplate(c.pdf, p.tpl, 0, w, w, h)
		c.pdf.TransformEnd()
	}
}

// tile lays pages out four to an A4 page. Each page is scaled to fit its
// quadrant and centred in it; unused quadrants stay blank.
func (c *composer) tile(pages []page) {
	qw, qh := a4Width/2, a4Height/2
	for i, p := range pages {
		slot := i % 4
		if slot == 0 {
			c.pdf.AddPageFormat("P", gofpdf.SizeType{Wd: a4Width, Ht: a4Height})
			c.sheets++
		}
		scale := min(qw/p.size.Width, qh/p.size.Height)
		w, h := p.size.Width*scale, p.size.Height*scale
		x := float64(slot%2)*qw + (qw-w)/2
		y := float64(slot/2)*qh + (qh-h)/2
		c.placed = append(c.placed, placement{sheet: c.sheets, slot: slot, source: p.source, x: x, y: y, w: w, h: h})
		c.imp.UseImportedTemplate(c.pdf, p.tpl, x, y, w, h)
	}
}

// Compose folds parts into one document strictly in the given order. Any
// failure discards the whole output.
func Compose(parts ...Part) ([]byte, error) {
	return newComposer().compose(parts)
}

func (c *composer) compose(parts []Part) ([]byte, error) {
	placed := 0
	for i, part := range parts {
		var pages []page
		for j, src := range part.Sources {
			loaded, err := c.load(src)
			if err != nil {
				return nil, fmt.Errorf("part %d source %d: %w", i, j, err)
			}
			pages = append(pages, loaded...)
		}
		copies := max(part.Copies, 1)
		var all []page
		for range copies {
			all = append(all, pages...)
		}
		switch part.Mode {
		case Tiled:
			c.tile(all)
		default:
			for _, p := range all {
				c.place(p, part.QuarterTurns)
			}
		}
		placed += len(all)
	}
	if placed == 0 {
		return nil, ErrEmpty
	}
	if err := c.pdf.Error(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := c.pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Inspect returns the page sizes of a PDF, in points.
func Inspect(data []byte) ([]PageSize, error) {
	pages, err := newComposer().load(data)
	if err != nil {
		return nil, err
	}
	sizes := make([]PageSize, len(pages))
	for i, p := range pages {
		sizes[i] = p.size
	}
	return sizes, nil
}

func PageCount(data []byte) (int, error) {
	sizes, err := Inspect(data)
	if err != nil {
		return 0, err
	}
	return len(sizes), nil
}

// Stamp copies every page of src and calls draw on each copy so the caller
// can write over it. Page numbers passed to draw start at 1.
func Stamp(src []byte, draw func(pdf *gofpdf.Fpdf, pageNo int)) ([]byte, error) {
	c := newComposer()
	pages, err := c.load(src)
	if err != nil {
		return nil, err
	}
	for i, p := range pages {
		c.place(p, 0)
		draw(c.pdf, i+1)
	}
	if err := c.pdf.Error(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := c.pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
