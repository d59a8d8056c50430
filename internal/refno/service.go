package refno

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"payrolldocs/internal/domain/company"
)

var ErrReferenceNotFound = errors.New("portal returned no reference number")

// Service refreshes the EPF reference number stored on a period payment.
type Service struct {
	store   company.StoreAPI
	fetcher Fetcher
	log     zerolog.Logger
}

func NewService(store company.StoreAPI, fetcher Fetcher, log zerolog.Logger) *Service {
	return &Service{
		store:   store,
		fetcher: fetcher,
		log:     log.With().Str("component", "refno").Logger(),
	}
}

func (s *Service) Refresh(ctx context.Context, employerNo, period string) (string, error) {
	if !company.ValidPeriod(period) {
		return "", fmt.Errorf("%w: %q", company.ErrInvalidPeriod, period)
	}
	c, err := s.store.FindCompany(ctx, employerNo)
	if err != nil {
		return "", err
	}
	if _, ok := c.Payment(period); !ok {
		return "", company.ErrPaymentNotFound
	}

	reference, err := s.fetcher.Fetch(ctx, employerNo, period)
	if err != nil {
		s.log.Warn().Err(err).Str("employer_no", employerNo).Str("period", period).Msg("reference fetch failed")
		return "", err
	}
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return "", ErrReferenceNotFound
	}
	if err := s.store.SetEPFReference(ctx, employerNo, period, reference); err != nil {
		return "", err
	}
	s.log.Info().Str("employer_no", employerNo).Str("period", period).Msg("reference number stored")
	return reference, nil
}
