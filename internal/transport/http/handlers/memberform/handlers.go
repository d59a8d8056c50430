package memberformhandler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"payrolldocs/internal/domain/audit"
	"payrolldocs/internal/domain/auth"
	"payrolldocs/internal/domain/memberform"
	"payrolldocs/internal/transport/http/api"
	"payrolldocs/internal/transport/http/middleware"
	"payrolldocs/internal/transport/http/shared"
)

type Generator interface {
	Generate(ctx context.Context, req memberform.Request) ([]byte, error)
}

type Handler struct {
	Forms Generator
	Audit audit.Log
	Log   zerolog.Logger
}

func NewHandler(forms Generator, events audit.Log, log zerolog.Logger) *Handler {
	return &Handler{Forms: forms, Audit: events, Log: log.With().Str("component", "memberform_handler").Logger()}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequirePermission(auth.PermMemberFormWrite)).Post("/member-forms", h.handleGenerate)
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var req memberform.Request
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			api.Fail(w, http.StatusRequestEntityTooLarge, "body_too_large", "request body too large", requestID)
			return
		}
		api.Fail(w, http.StatusBadRequest, "invalid_json", "request body must be a member form json object", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("fullName", req.FullName, "is required")
	v.Required("nic", req.NIC, "is required")
	if len(req.Nominations) > memberform.MaxNominations {
		v.Add("nominations", fmt.Sprintf("at most %d nominations fit on the form", memberform.MaxNominations))
	}
	if v.Reject(w, requestID) {
		return
	}

	data, err := h.Forms.Generate(r.Context(), req)
	if err != nil {
		shared.FailDocument(w, h.Log, requestID, err)
		return
	}
	shared.RecordAudit(r, h.Audit, h.Log, audit.ActionMemberFormGenerate, "employee", strconv.Itoa(req.EPFNo), nil,
		map[string]any{"employerNo": req.EmployerNo, "epfNo": req.EPFNo, "nominations": len(req.Nominations)})
	api.PDF(w, fmt.Sprintf("%s - Member Form.pdf", strings.TrimSpace(req.FullName)), data)
}
