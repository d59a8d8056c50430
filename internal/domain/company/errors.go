package company

import "errors"

var (
	ErrCompanyNotFound = errors.New("company not found")
	ErrPaymentNotFound = errors.New("period payment not found")
	ErrInvalidPeriod   = errors.New("period must be formatted as YYYY-MM")
)
