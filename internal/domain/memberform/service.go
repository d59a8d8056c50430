package memberform

import (
	"context"
	"time"

	"payrolldocs/internal/formfill"
)

type Service struct {
	filler   *formfill.Filler
	template []byte
	now      func() time.Time
}

func NewService(filler *formfill.Filler, template []byte) *Service {
	return &Service{filler: filler, template: template, now: time.Now}
}

// Generate fills the registration form for req. A field the template does
// not define fails the whole request with *formfill.FieldMismatchError.
func (s *Service) Generate(ctx context.Context, req Request) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fields, err := Fields(req, s.now())
	if err != nil {
		return nil, err
	}
	return s.filler.Fill(s.template, fields)
}
