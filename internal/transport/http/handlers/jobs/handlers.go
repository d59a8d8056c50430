package jobshandler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"payrolldocs/internal/compose"
	"payrolldocs/internal/domain/audit"
	"payrolldocs/internal/domain/auth"
	"payrolldocs/internal/domain/statements"
	"payrolldocs/internal/platform/jobs"
	"payrolldocs/internal/platform/storage"
	"payrolldocs/internal/transport/http/api"
	"payrolldocs/internal/transport/http/middleware"
	"payrolldocs/internal/transport/http/shared"
)

const idempotencyEndpoint = "jobs.bundles"

type BundleService interface {
	Bundle(ctx context.Context, employerNo, period string, printable bool) (statements.Document, error)
	AllCompanies(ctx context.Context, period string, printable bool) (statements.Document, error)
}

type Handler struct {
	Jobs        *jobs.Service
	Docs        BundleService
	Archive     *storage.Archive
	Idempotency *middleware.IdempotencyStore
	Audit       audit.Log
	Log         zerolog.Logger
}

func NewHandler(jobsSvc *jobs.Service, docs BundleService, archive *storage.Archive, idem *middleware.IdempotencyStore, events audit.Log, log zerolog.Logger) *Handler {
	return &Handler{
		Jobs:        jobsSvc,
		Docs:        docs,
		Archive:     archive,
		Idempotency: idem,
		Audit:       events,
		Log:         log.With().Str("component", "jobs_handler").Logger(),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/jobs", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermJobsRun)).Post("/bundles", h.handleEnqueueBundle)
		r.With(middleware.RequirePermission(auth.PermDocumentsRead)).Get("/{runID}", h.handleGetRun)
		r.With(middleware.RequirePermission(auth.PermDocumentsRead)).Get("/{runID}/document", h.handleDownload)
	})
}

type bundlePayload struct {
	Period     string `json:"period"`
	EmployerNo string `json:"employerNo"`
	Printable  bool   `json:"printable"`
}

// BundleResult is stored as the run details of a finished bundle job.
type BundleResult struct {
	Name         string `json:"name"`
	Pages        int    `json:"pages"`
	Degradations int    `json:"degradations"`
}

func (h *Handler) handleEnqueueBundle(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_body", "could not read request body", requestID)
		return
	}
	var payload bundlePayload
	if err := json.NewDecoder(bytes.NewReader(raw)).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_json", "invalid request body", requestID)
		return
	}
	v := shared.NewValidator()
	period := v.Period("period", payload.Period)
	if v.Reject(w, requestID) {
		return
	}
	employerNo := strings.TrimSpace(payload.EmployerNo)

	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	hash := middleware.RequestHash(raw)
	if key != "" {
		stored, found, err := h.Idempotency.Check(r.Context(), user.UserID, idempotencyEndpoint, key, hash)
		if errors.Is(err, middleware.ErrIdempotencyConflict) {
			api.Fail(w, http.StatusConflict, "idempotency_conflict", err.Error(), requestID)
			return
		}
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "idempotency_failed", "idempotency check failed", requestID)
			return
		}
		if found {
			api.Accepted(w, stored, requestID)
			return
		}
	}

	jobType := jobs.JobAllCompanies
	if employerNo != "" {
		jobType = jobs.JobCompanyBundle
	}
	runID, err := h.Jobs.Enqueue(r.Context(), jobType, func(ctx context.Context, runID string) (any, error) {
		return h.runBundle(ctx, runID, employerNo, period, payload.Printable)
	})
	if errors.Is(err, jobs.ErrQueueFull) {
		api.Fail(w, http.StatusServiceUnavailable, "queue_full", "job queue is full, retry later", requestID)
		return
	}
	if err != nil {
		h.Log.Error().Err(err).Str("request_id", requestID).Msg("enqueue bundle failed")
		api.Fail(w, http.StatusInternalServerError, "enqueue_failed", "could not queue the job", requestID)
		return
	}

	response := map[string]string{"runId": runID, "type": jobType}
	shared.RecordAudit(r, h.Audit, h.Log, audit.ActionBundleEnqueue, "job_run", runID, nil, payload)
	if key != "" {
		encoded, _ := json.Marshal(response)
		if err := h.Idempotency.Save(r.Context(), user.UserID, idempotencyEndpoint, key, hash, encoded); err != nil {
			h.Log.Warn().Err(err).Str("run_id", runID).Msg("idempotency save failed")
		}
	}
	api.Accepted(w, response, requestID)
}

func (h *Handler) runBundle(ctx context.Context, runID, employerNo, period string, printable bool) (any, error) {
	var doc statements.Document
	var err error
	if employerNo == "" {
		doc, err = h.Docs.AllCompanies(ctx, period, printable)
	} else {
		doc, err = h.Docs.Bundle(ctx, employerNo, period, printable)
	}
	if err != nil {
		return map[string]string{"kind": string(statements.Classify(err))}, err
	}
	pages, err := compose.PageCount(doc.Data)
	if err != nil {
		return nil, err
	}
	if _, err := h.Archive.Put(runID, doc.Data); err != nil {
		return nil, err
	}
	return BundleResult{Name: doc.Name, Pages: pages, Degradations: len(doc.Degradations)}, nil
}

func (h *Handler) handleGetRun(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	run, err := h.Jobs.Get(r.Context(), chi.URLParam(r, "runID"))
	if errors.Is(err, jobs.ErrRunNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "job run not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "job_lookup_failed", "failed to load job run", requestID)
		return
	}
	api.Success(w, run, requestID)
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	runID := chi.URLParam(r, "runID")
	run, err := h.Jobs.Get(r.Context(), runID)
	if errors.Is(err, jobs.ErrRunNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "job run not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "job_lookup_failed", "failed to load job run", requestID)
		return
	}
	if run.Status != jobs.StatusCompleted {
		api.Fail(w, http.StatusConflict, "not_ready", "job run has status "+run.Status, requestID)
		return
	}
	var result BundleResult
	if err := json.Unmarshal(run.Details, &result); err != nil || result.Name == "" {
		api.Fail(w, http.StatusInternalServerError, "job_details_invalid", "job run has no document", requestID)
		return
	}
	data, err := h.Archive.Get(runID)
	if errors.Is(err, storage.ErrNotFound) {
		api.Fail(w, http.StatusGone, "document_missing", "stored document is no longer available", requestID)
		return
	}
	if err != nil {
		h.Log.Error().Err(err).Str("run_id", runID).Msg("open stored document failed")
		api.Fail(w, http.StatusInternalServerError, "document_unreadable", "stored document could not be read", requestID)
		return
	}
	api.PDF(w, result.Name, data)
}
