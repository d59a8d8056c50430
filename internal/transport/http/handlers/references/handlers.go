package referenceshandler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"payrolldocs/internal/domain/audit"
	"payrolldocs/internal/domain/auth"
	"payrolldocs/internal/domain/statements"
	"payrolldocs/internal/transport/http/api"
	"payrolldocs/internal/transport/http/middleware"
	"payrolldocs/internal/transport/http/shared"
)

type Refresher interface {
	Refresh(ctx context.Context, employerNo, period string) (string, error)
}

type Handler struct {
	References Refresher
	Audit      audit.Log
	Log        zerolog.Logger
}

func NewHandler(refs Refresher, events audit.Log, log zerolog.Logger) *Handler {
	return &Handler{References: refs, Audit: events, Log: log.With().Str("component", "references_handler").Logger()}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequirePermission(auth.PermReferencesWrite)).Post("/references/refresh", h.handleRefresh)
}

type refreshPayload struct {
	EmployerNo string `json:"employerNo"`
	Period     string `json:"period"`
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload refreshPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_json", "invalid request body", requestID)
		return
	}
	v := shared.NewValidator()
	employerNo := strings.TrimSpace(payload.EmployerNo)
	v.Required("employerNo", employerNo, "is required")
	period := v.Period("period", payload.Period)
	if v.Reject(w, requestID) {
		return
	}

	reference, err := h.References.Refresh(r.Context(), employerNo, period)
	if err != nil {
		if statements.Classify(err) == statements.KindInternal {
			h.Log.Warn().Err(err).Str("employer_no", employerNo).Str("request_id", requestID).Msg("reference refresh failed")
			api.Fail(w, http.StatusBadGateway, "reference_fetch_failed", "could not fetch the reference number", requestID)
			return
		}
		shared.FailDocument(w, h.Log, requestID, err)
		return
	}
	result := map[string]string{
		"employerNo":  employerNo,
		"period":      period,
		"referenceNo": reference,
	}
	shared.RecordAudit(r, h.Audit, h.Log, audit.ActionReferenceRefresh, "period_payment", employerNo+" "+period, nil, result)
	api.Success(w, result, requestID)
}
