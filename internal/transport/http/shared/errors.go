package shared

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"payrolldocs/internal/domain/statements"
	"payrolldocs/internal/formfill"
	"payrolldocs/internal/transport/http/api"
)

// StatusFor maps an error kind onto the HTTP status the API reports.
func StatusFor(kind statements.Kind) int {
	switch kind {
	case statements.KindInvalidRequest:
		return http.StatusBadRequest
	case statements.KindMissingRequiredInput:
		return http.StatusNotFound
	case statements.KindTemplateFieldMismatch:
		return http.StatusUnprocessableEntity
	case statements.KindExternalRenderFailure:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// FailDocument writes the envelope for a failed document request.
func FailDocument(w http.ResponseWriter, log zerolog.Logger, requestID string, err error) {
	kind := statements.Classify(err)
	status := StatusFor(kind)
	event := log.Warn()
	if status >= http.StatusInternalServerError {
		event = log.Error()
	}
	event.Err(err).Str("kind", string(kind)).Str("request_id", requestID).Msg("document request failed")

	var mismatch *formfill.FieldMismatchError
	switch {
	case errors.As(err, &mismatch):
		api.FailWithDetails(w, status, string(kind), "form template does not match the generated fields", mismatch.Fields, requestID)
	case status == http.StatusInternalServerError:
		api.Fail(w, status, string(kind), "internal server error", requestID)
	default:
		api.Fail(w, status, string(kind), err.Error(), requestID)
	}
}
