package compose

import (
	"bytes"
	"fmt"
	"runtime/debug"
	"testing"

	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePDF(t *testing.T, orientation string, pages int) []byte {
	t.Helper()
	pdf := gofpdf.New(orientation, "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 12)
	for i := 0; i < pages; i++ {
		pdf.AddPage()
		pdf.Cell(40, 10, fmt.Sprintf("page %d", i+1))
	}
	var buf bytes.Buffer
	require.NoError(t, pdf.Output(&buf))
	return buf.Bytes()
}

func TestPageCountAndInspect(t *testing.T) {
	n, err := PageCount(samplePDF(t, "P", 3))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	sizes, err := Inspect(samplePDF(t, "L", 1))
	require.NoError(t, err)
	require.Len(t, sizes, 1)
	assert.Greater(t, sizes[0].Width, sizes[0].Height)
}

func TestComposeSequentialKeepsOrderAndCopies(t *testing.T) {
	out, err := Compose(
		Part{Sources: [][]byte{sizedPDF(t, 200), sizedPDF(t, 201)}, Mode: Sequential},
		Part{Sources: [][]byte{sizedPDF(t, 300), sizedPDF(t, 301)}, Mode: Sequential, Copies: 2},
	)
	require.NoError(t, err)
	sizes, err := Inspect(out)
	require.NoError(t, err)
	require.Len(t, sizes, 6)
	for i, want := range []float64{200, 201, 300, 301, 300, 301} {
		assert.InDelta(t, want, sizes[i].Width, 0.01, "page %d", i+1)
	}
}

// sizedPDF is a one-page document whose width identifies it.
func sizedPDF(t *testing.T, width float64) []byte {
	t.Helper()
	pdf := gofpdf.NewCustom(&gofpdf.InitType{UnitStr: "pt", Size: gofpdf.SizeType{Wd: width, Ht: 300}})
	pdf.AddPage()
	var buf bytes.Buffer
	require.NoError(t, pdf.Output(&buf))
	return buf.Bytes()
}

func sizedSources(t *testing.T, n int) [][]byte {
	t.Helper()
	sources := make([][]byte, n)
	for i := range sources {
		sources[i] = sizedPDF(t, float64(200+i))
	}
	return sources
}

// Collections under pressure free earlier source streams while later ones
// are still being imported.
func withFrequentGC(t *testing.T) {
	t.Helper()
	old := debug.SetGCPercent(1)
	t.Cleanup(func() { debug.SetGCPercent(old) })
}

func TestComposeManySourcesKeepsEachPage(t *testing.T) {
	withFrequentGC(t)
	out, err := Compose(Part{Sources: sizedSources(t, 120), Mode: Sequential})
	require.NoError(t, err)

	sizes, err := Inspect(out)
	require.NoError(t, err)
	require.Len(t, sizes, 120)
	for i, size := range sizes {
		require.InDelta(t, float64(200+i), size.Width, 0.01, "page %d came from another source", i+1)
	}
}

func TestComposeTilesFourPerPageRowMajor(t *testing.T) {
	c := newComposer()
	out, err := c.compose([]Part{{Sources: sizedSources(t, 5), Mode: Tiled}})
	require.NoError(t, err)

	sizes, err := Inspect(out)
	require.NoError(t, err)
	require.Len(t, sizes, 2, "five payslips need two tiled pages")
	assert.InDelta(t, a4Width, sizes[0].Width, 0.5)
	assert.InDelta(t, a4Height, sizes[0].Height, 0.5)

	qw, qh := a4Width/2, a4Height/2
	require.Len(t, c.placed, 5)
	want := []struct{ sheet, slot int }{{1, 0}, {1, 1}, {1, 2}, {1, 3}, {2, 0}}
	for i, p := range c.placed {
		assert.Equal(t, want[i].sheet, p.sheet, "source %d sheet", i)
		assert.Equal(t, want[i].slot, p.slot, "source %d quadrant", i)
		assert.Equal(t, i, p.source)
		assert.Equal(t, p.slot%2 == 1, p.x >= qw, "source %d column", i)
		assert.Equal(t, p.slot >= 2, p.y >= qh, "source %d row", i)
		assert.InDelta(t, float64(200+i)/300, p.w/p.h, 0.001, "source %d drawn with another page's shape", i)
	}

	var onSecond int
	for _, p := range c.placed {
		if p.sheet == 2 {
			onSecond++
		}
	}
	assert.Equal(t, 1, onSecond, "second page holds one payslip and three blank quadrants")
}

func TestComposeTiledManySourcesKeepsIdentity(t *testing.T) {
	withFrequentGC(t)
	c := newComposer()
	_, err := c.compose([]Part{{Sources: sizedSources(t, 60), Mode: Tiled}})
	require.NoError(t, err)

	require.Len(t, c.placed, 60)
	for i, p := range c.placed {
		require.Equal(t, i/4+1, p.sheet)
		require.InDelta(t, float64(200+i)/300, p.w/p.h, 0.001, "quadrant %d holds another source", i)
	}
}

func TestComposeQuarterTurnSwapsOrientation(t *testing.T) {
	landscape := samplePDF(t, "L", 1)
	out, err := Compose(Part{Sources: [][]byte{landscape}, QuarterTurns: 1})
	require.NoError(t, err)

	sizes, err := Inspect(out)
	require.NoError(t, err)
	require.Len(t, sizes, 1)
	assert.Less(t, sizes[0].Width, sizes[0].Height, "turned landscape page should print portrait")
}

func TestComposeErrors(t *testing.T) {
	_, err := Compose()
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = Compose(Part{})
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = Compose(Part{Sources: [][]byte{[]byte("not a pdf")}})
	assert.ErrorIs(t, err, ErrInvalidSource)

	_, err = PageCount(nil)
	assert.ErrorIs(t, err, ErrInvalidSource)
}
