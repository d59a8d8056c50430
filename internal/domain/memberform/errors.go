package memberform

import "errors"

var (
	ErrFullNameRequired   = errors.New("full name is required")
	ErrNICRequired        = errors.New("nic is required")
	ErrTooManyNominations = errors.New("too many nominations for the form")
)
