package statements

import (
	"errors"
	"fmt"
	"strings"

	"payrolldocs/internal/compose"
	"payrolldocs/internal/domain/company"
	"payrolldocs/internal/domain/memberform"
	"payrolldocs/internal/domain/projection"
	"payrolldocs/internal/formfill"
)

type Kind string

const (
	KindInvalidRequest        Kind = "invalid_request"
	KindMissingRequiredInput  Kind = "missing_required_input"
	KindTemplateFieldMismatch Kind = "template_field_mismatch"
	KindExternalRenderFailure Kind = "external_render_failure"
	KindInternal              Kind = "internal"
)

var (
	ErrNoActiveCompanies = errors.New("no active companies")
	ErrCompose           = errors.New("compose statements")
)

// Error is returned by every Service operation. Nothing is delivered when
// one occurs.
type Error struct {
	Kind       Kind
	EmployerNo string
	Period     string
	Document   string
	Err        error
}

func (e *Error) Error() string {
	var parts []string
	if e.EmployerNo != "" {
		parts = append(parts, "employer "+e.EmployerNo)
	}
	if e.Period != "" {
		parts = append(parts, "period "+e.Period)
	}
	if e.Document != "" {
		parts = append(parts, e.Document)
	}
	if len(parts) == 0 {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s (%s): %v", e.Kind, strings.Join(parts, ", "), e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Classify maps an error from the record, projection or form layers onto a
// Kind. Errors already carrying a Kind keep it.
func Classify(err error) Kind {
	var typed *Error
	var mismatch *formfill.FieldMismatchError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &typed):
		return typed.Kind
	case errors.As(err, &mismatch):
		return KindTemplateFieldMismatch
	case errors.Is(err, company.ErrCompanyNotFound),
		errors.Is(err, company.ErrPaymentNotFound),
		errors.Is(err, projection.ErrDetailNotFound),
		errors.Is(err, projection.ErrEmployeeNotFound),
		errors.Is(err, ErrNoActiveCompanies),
		errors.Is(err, compose.ErrEmpty):
		return KindMissingRequiredInput
	case errors.Is(err, company.ErrInvalidPeriod),
		errors.Is(err, projection.ErrUnknownDocument),
		errors.Is(err, memberform.ErrFullNameRequired),
		errors.Is(err, memberform.ErrNICRequired),
		errors.Is(err, memberform.ErrTooManyNominations):
		return KindInvalidRequest
	case errors.Is(err, compose.ErrInvalidSource),
		errors.Is(err, ErrCompose):
		return KindExternalRenderFailure
	}
	return KindInternal
}

func wrap(err error, employerNo, period, document string) error {
	if err == nil {
		return nil
	}
	var typed *Error
	if errors.As(err, &typed) {
		return err
	}
	return &Error{Kind: Classify(err), EmployerNo: employerNo, Period: period, Document: document, Err: err}
}
