package documentshandler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"payrolldocs/internal/domain/auth"
	"payrolldocs/internal/domain/company"
	"payrolldocs/internal/domain/projection"
	"payrolldocs/internal/domain/statements"
	"payrolldocs/internal/transport/http/api"
	"payrolldocs/internal/transport/http/middleware"
	"payrolldocs/internal/transport/http/shared"
)

// DegradationsHeader carries how many fields were printed with fallback values.
const DegradationsHeader = "X-Document-Degradations"

type DocumentService interface {
	Statement(ctx context.Context, employerNo, period string, doc projection.DocType) (statements.Document, error)
	Payslip(ctx context.Context, employerNo, period string, epfNo int) (statements.Document, error)
	Payslips(ctx context.Context, employerNo, period string, tiled bool) (statements.Document, error)
	Bundle(ctx context.Context, employerNo, period string, printable bool) (statements.Document, error)
	AllCompanies(ctx context.Context, period string, printable bool) (statements.Document, error)
}

type Handler struct {
	Docs      DocumentService
	Companies company.Reader
	Log       zerolog.Logger
}

func NewHandler(docs DocumentService, companies company.Reader, log zerolog.Logger) *Handler {
	return &Handler{Docs: docs, Companies: companies, Log: log.With().Str("component", "documents_handler").Logger()}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequirePermission(auth.PermDocumentsRead))
		r.Get("/company", h.handleGetCompany)
		r.Route("/documents", func(r chi.Router) {
			r.Get("/statement", h.handleStatement)
			r.Get("/payslip", h.handlePayslip)
			r.Get("/payslips", h.handlePayslips)
			r.Get("/bundle", h.handleBundle)
			r.Get("/all", h.handleAllCompanies)
		})
	})
}

// companySummary is the company header. Employee records and salaries stay
// server side.
type companySummary struct {
	EmployerNo              string `json:"employerNo"`
	Name                    string `json:"name"`
	Address                 string `json:"address"`
	Active                  bool   `json:"active"`
	SalarySheetRequired     bool   `json:"salarySheetRequired"`
	EPFRequired             bool   `json:"epfRequired"`
	ETFRequired             bool   `json:"etfRequired"`
	PayslipRequired         bool   `json:"payslipRequired"`
	DefaultEPFPaymentMethod string `json:"defaultEpfPaymentMethod"`
	DefaultETFPaymentMethod string `json:"defaultEtfPaymentMethod"`
	EmployeeCount           int    `json:"employeeCount"`
}

func summarize(c company.Company) companySummary {
	return companySummary{
		EmployerNo:              c.EmployerNo,
		Name:                    c.Name,
		Address:                 c.Address,
		Active:                  c.Active,
		SalarySheetRequired:     c.SalarySheetRequired,
		EPFRequired:             c.EPFRequired,
		ETFRequired:             c.ETFRequired,
		PayslipRequired:         c.PayslipRequired,
		DefaultEPFPaymentMethod: c.DefaultEPFPaymentMethod,
		DefaultETFPaymentMethod: c.DefaultETFPaymentMethod,
		EmployeeCount:           len(c.Employees),
	}
}

func (h *Handler) handleGetCompany(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	employerNo := strings.TrimSpace(r.URL.Query().Get("employer_no"))
	v := shared.NewValidator()
	v.Required("employer_no", employerNo, "is required")
	if v.Reject(w, requestID) {
		return
	}
	c, err := h.Companies.FindCompany(r.Context(), employerNo)
	if err != nil {
		shared.FailDocument(w, h.Log, requestID, err)
		return
	}
	api.Success(w, summarize(c), requestID)
}

func (h *Handler) handleStatement(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	q := r.URL.Query()
	v := shared.NewValidator()
	employerNo := strings.TrimSpace(q.Get("employer_no"))
	v.Required("employer_no", employerNo, "is required")
	period := v.Period("period", q.Get("period"))
	doc := projection.DocType(strings.ToLower(strings.TrimSpace(q.Get("type"))))
	if !doc.Valid() || doc == projection.DocPayslip {
		v.Add("type", "must be one of salary, epf, etf")
	}
	if v.Reject(w, requestID) {
		return
	}
	h.deliver(w, requestID)(h.Docs.Statement(r.Context(), employerNo, period, doc))
}

func (h *Handler) handlePayslip(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	q := r.URL.Query()
	v := shared.NewValidator()
	employerNo := strings.TrimSpace(q.Get("employer_no"))
	v.Required("employer_no", employerNo, "is required")
	period := v.Period("period", q.Get("period"))
	epfNo := v.PositiveInt("epf_no", q.Get("epf_no"))
	if v.Reject(w, requestID) {
		return
	}
	h.deliver(w, requestID)(h.Docs.Payslip(r.Context(), employerNo, period, epfNo))
}

func (h *Handler) handlePayslips(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	q := r.URL.Query()
	v := shared.NewValidator()
	employerNo := strings.TrimSpace(q.Get("employer_no"))
	v.Required("employer_no", employerNo, "is required")
	period := v.Period("period", q.Get("period"))
	tiled := v.Bool("tiled", q.Get("tiled"))
	if v.Reject(w, requestID) {
		return
	}
	h.deliver(w, requestID)(h.Docs.Payslips(r.Context(), employerNo, period, tiled))
}

func (h *Handler) handleBundle(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	q := r.URL.Query()
	v := shared.NewValidator()
	employerNo := strings.TrimSpace(q.Get("employer_no"))
	v.Required("employer_no", employerNo, "is required")
	period := v.Period("period", q.Get("period"))
	printable := v.Bool("printable", q.Get("printable"))
	if v.Reject(w, requestID) {
		return
	}
	h.deliver(w, requestID)(h.Docs.Bundle(r.Context(), employerNo, period, printable))
}

func (h *Handler) handleAllCompanies(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	q := r.URL.Query()
	v := shared.NewValidator()
	period := v.Period("period", q.Get("period"))
	printable := v.Bool("printable", q.Get("printable"))
	if v.Reject(w, requestID) {
		return
	}
	h.deliver(w, requestID)(h.Docs.AllCompanies(r.Context(), period, printable))
}

func (h *Handler) deliver(w http.ResponseWriter, requestID string) func(statements.Document, error) {
	return func(doc statements.Document, err error) {
		if err != nil {
			shared.FailDocument(w, h.Log, requestID, err)
			return
		}
		if n := len(doc.Degradations); n > 0 {
			w.Header().Set(DegradationsHeader, strconv.Itoa(n))
		}
		api.PDF(w, doc.Name, doc.Data)
	}
}
