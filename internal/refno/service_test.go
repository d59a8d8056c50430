package refno

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payrolldocs/internal/domain/company"
)

type fakeFetcher struct {
	reference string
	err       error
	calls     int
}

func (f *fakeFetcher) Fetch(context.Context, string, string) (string, error) {
	f.calls++
	return f.reference, f.err
}

func newStore(t *testing.T) *company.LocalStore {
	t.Helper()
	store, err := company.OpenLocal(":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), company.Company{
		EmployerNo: "A/12345",
		Name:       "Ceylon Biscuits Limited",
		Active:     true,
		Payments:   []company.PeriodPayment{{Period: "2024-03"}},
	}))
	return store
}

func TestRefreshStoresReference(t *testing.T) {
	store := newStore(t)
	fetcher := &fakeFetcher{reference: "  REF-778 \n"}
	svc := NewService(store, fetcher, zerolog.Nop())

	ref, err := svc.Refresh(context.Background(), "A/12345", "2024-03")
	require.NoError(t, err)
	assert.Equal(t, "REF-778", ref)

	c, err := store.FindCompany(context.Background(), "A/12345")
	require.NoError(t, err)
	payment, ok := c.Payment("2024-03")
	require.True(t, ok)
	assert.Equal(t, "REF-778", payment.EPFReferenceNo)
}

func TestRefreshRejectsBeforeFetching(t *testing.T) {
	store := newStore(t)
	fetcher := &fakeFetcher{reference: "REF"}
	svc := NewService(store, fetcher, zerolog.Nop())

	_, err := svc.Refresh(context.Background(), "A/12345", "March")
	assert.ErrorIs(t, err, company.ErrInvalidPeriod)
	_, err = svc.Refresh(context.Background(), "A/99999", "2024-03")
	assert.ErrorIs(t, err, company.ErrCompanyNotFound)
	_, err = svc.Refresh(context.Background(), "A/12345", "2024-04")
	assert.ErrorIs(t, err, company.ErrPaymentNotFound)
	assert.Zero(t, fetcher.calls)
}

func TestRefreshFetchFailures(t *testing.T) {
	store := newStore(t)
	boom := errors.New("portal down")
	_, err := NewService(store, &fakeFetcher{err: boom}, zerolog.Nop()).Refresh(context.Background(), "A/12345", "2024-03")
	assert.ErrorIs(t, err, boom)

	_, err = NewService(store, &fakeFetcher{reference: " "}, zerolog.Nop()).Refresh(context.Background(), "A/12345", "2024-03")
	assert.ErrorIs(t, err, ErrReferenceNotFound)
}

func TestBrowserFetcherNeedsPortal(t *testing.T) {
	_, err := NewBrowserFetcher(BrowserConfig{}).Fetch(context.Background(), "A/1", "2024-03")
	assert.ErrorIs(t, err, ErrPortalNotConfigured)
}
