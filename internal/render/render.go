package render

import (
	"context"
	"errors"
)

var (
	ErrUnknownLayout = errors.New("unknown layout")
	ErrNoRows        = errors.New("nothing to render")
)

// Input is everything a layout may print: the document header, one field set
// per row and the column totals.
type Input struct {
	Header map[string]string
	Rows   []map[string]string
	Totals map[string]string
}

type Renderer interface {
	Render(ctx context.Context, layout string, in Input) ([]byte, error)
}
