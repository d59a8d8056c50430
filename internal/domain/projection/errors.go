package projection

import (
	"errors"

	"payrolldocs/internal/domain/company"
)

var (
	ErrPaymentNotFound  = company.ErrPaymentNotFound
	ErrDetailNotFound   = errors.New("no employee details recorded for period")
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrUnknownDocument  = errors.New("unknown document type")
)
