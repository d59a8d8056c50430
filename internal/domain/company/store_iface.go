package company

import "context"

// Reader is the record lookup the document engine depends on. Each call
// returns an independent snapshot; callers never write back through it.
type Reader interface {
	FindCompany(ctx context.Context, employerNo string) (Company, error)
	FindActiveCompanies(ctx context.Context) ([]Company, error)
}

type StoreAPI interface {
	Reader
	SetEPFReference(ctx context.Context, employerNo, period, reference string) error
}
