package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payrolldocs/internal/domain/auth"
	"payrolldocs/internal/domain/company"
	"payrolldocs/internal/platform/config"
	"payrolldocs/internal/platform/jobs"
)

const testSecret = "test-secret"

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func amount(v float64) *float64 { return &v }

func fixtureCompany() company.Company {
	return company.Company{
		EmployerNo:          "A/100",
		Name:                "Lanka Tea Traders",
		Address:             "No 12, Temple Road, Maharagama",
		Active:              true,
		SalarySheetRequired: true,
		EPFRequired:         true,
		ETFRequired:         true,
		PayslipRequired:     true,
		Employees: []company.Employee{
			{
				EPFNo: 7, Name: "Nimal Perera", NIC: "853400937V", Active: true,
				Details: []company.PeriodDetail{{Period: "2024-03", GrossSalary: amount(20000)}},
			},
			{
				EPFNo: 3, Name: "Kamala Silva", NIC: "199050100123", Active: true,
				Details: []company.PeriodDetail{{Period: "2024-03", GrossSalary: amount(50000)}},
			},
		},
		Payments: []company.PeriodPayment{{Period: "2024-03", EPFAmount: amount(14000), ETFAmount: amount(2100)}},
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store, err := company.OpenLocal(":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), fixtureCompany()))

	cfg := config.Config{
		JWTSecret:          testSecret,
		Environment:        "test",
		RenderConcurrency:  2,
		StorageDir:         t.TempDir(),
		DataEncryptionKey:  strings.Repeat("0f", 32),
		MaxBodyBytes:       1 << 20,
		RateLimitPerMinute: 1000,
		ReferenceTimeout:   time.Second,
		MetricsEnabled:     true,
	}
	deps, err := NewDeps(cfg, store, jobs.NewMemoryRunStore(), zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	deps.Jobs.Start(ctx)
	ts := httptest.NewServer(NewRouter(deps))
	t.Cleanup(func() {
		ts.Close()
		cancel()
		deps.Jobs.Wait()
	})
	return ts
}

func tokenFor(t *testing.T, role string) string {
	t.Helper()
	token, err := auth.GenerateToken(testSecret, auth.Claims{UserID: "u-" + role, Role: role}, time.Hour)
	require.NoError(t, err)
	return token
}

func do(t *testing.T, ts *httptest.Server, method, path, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func readAll(t *testing.T, resp *http.Response) []byte {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return data
}

func decode(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(readAll(t, resp), &env))
	return env
}

func query(values map[string]string) string {
	q := url.Values{}
	for k, v := range values {
		q.Set(k, v)
	}
	return q.Encode()
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t)
	assert.Equal(t, http.StatusOK, do(t, ts, http.MethodGet, "/healthz", "", nil).StatusCode)
	assert.Equal(t, http.StatusOK, do(t, ts, http.MethodGet, "/readyz", "", nil).StatusCode)
}

func TestAPIRequiresToken(t *testing.T) {
	ts := newTestServer(t)
	resp := do(t, ts, http.MethodGet, "/api/v1/documents/all?period=2024-03", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestBundleDownload(t *testing.T) {
	ts := newTestServer(t)
	token := tokenFor(t, auth.RoleViewer)

	resp := do(t, ts, http.MethodGet, "/api/v1/documents/bundle?"+query(map[string]string{
		"employer_no": "A/100", "period": "2024-03", "printable": "true",
	}), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "Lanka Tea Traders - March - 2024 - All Statements_printable.pdf")
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
	assert.True(t, bytes.HasPrefix(readAll(t, resp), []byte("%PDF")))
}

func TestStatementErrors(t *testing.T) {
	ts := newTestServer(t)
	token := tokenFor(t, auth.RoleViewer)

	resp := do(t, ts, http.MethodGet, "/api/v1/documents/statement?"+query(map[string]string{
		"employer_no": "A/100", "period": "2024-03", "type": "payslip",
	}), token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, ts, http.MethodGet, "/api/v1/documents/statement?"+query(map[string]string{
		"employer_no": "Z/1", "period": "2024-03", "type": "epf",
	}), token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	env := decode(t, resp)
	require.NotNil(t, env.Error)
	assert.Equal(t, "missing_required_input", env.Error.Code)

	resp = do(t, ts, http.MethodGet, "/api/v1/documents/payslip?"+query(map[string]string{
		"employer_no": "A/100", "period": "2024-04", "epf_no": "7",
	}), token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCompanyLookup(t *testing.T) {
	ts := newTestServer(t)
	resp := do(t, ts, http.MethodGet, "/api/v1/company?employer_no=A%2F100", tokenFor(t, auth.RoleViewer), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := decode(t, resp).Data
	var got struct {
		EmployerNo    string `json:"employerNo"`
		Name          string `json:"name"`
		EmployeeCount int    `json:"employeeCount"`
	}
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "A/100", got.EmployerNo)
	assert.Equal(t, "Lanka Tea Traders", got.Name)
	assert.Equal(t, 2, got.EmployeeCount)

	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &fields))
	for _, key := range []string{"employees", "payments", "id"} {
		assert.NotContains(t, fields, key)
	}
	assert.NotContains(t, string(data), "grossSalary")
}

func TestMemberFormPermissions(t *testing.T) {
	ts := newTestServer(t)
	body := map[string]any{"fullName": "Nimal Perera", "nic": "853400937V", "address": "No 12, Temple Road, Maharagama"}

	resp := do(t, ts, http.MethodPost, "/api/v1/member-forms", tokenFor(t, auth.RoleViewer), body)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = do(t, ts, http.MethodPost, "/api/v1/member-forms", tokenFor(t, auth.RoleOperator), body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, bytes.HasPrefix(readAll(t, resp), []byte("%PDF")))

	resp = do(t, ts, http.MethodPost, "/api/v1/member-forms", tokenFor(t, auth.RoleOperator), map[string]any{"nic": "853400937V"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBundleJobLifecycle(t *testing.T) {
	ts := newTestServer(t)
	operator := tokenFor(t, auth.RoleOperator)

	resp := do(t, ts, http.MethodPost, "/api/v1/jobs/bundles", tokenFor(t, auth.RoleViewer), map[string]any{"period": "2024-03"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = do(t, ts, http.MethodPost, "/api/v1/jobs/bundles", operator, map[string]any{"period": "2024-03", "printable": true})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	var queued struct {
		RunID string `json:"runId"`
	}
	require.NoError(t, json.Unmarshal(decode(t, resp).Data, &queued))
	require.NotEmpty(t, queued.RunID)

	require.Eventually(t, func() bool {
		r := do(t, ts, http.MethodGet, "/api/v1/jobs/"+queued.RunID, operator, nil)
		var run jobs.Run
		if err := json.Unmarshal(decode(t, r).Data, &run); err != nil {
			return false
		}
		return run.Status == jobs.StatusCompleted
	}, 10*time.Second, 20*time.Millisecond)

	resp = do(t, ts, http.MethodGet, "/api/v1/jobs/"+queued.RunID+"/document", operator, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "All Companies - March - 2024 - All Statements_printable.pdf")
	assert.True(t, bytes.HasPrefix(readAll(t, resp), []byte("%PDF")))

	resp = do(t, ts, http.MethodGet, "/api/v1/jobs/6f1c2c1e-0000-4000-8000-000000000000", operator, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestReferenceRefreshWithoutPortal(t *testing.T) {
	ts := newTestServer(t)
	resp := do(t, ts, http.MethodPost, "/api/v1/references/refresh", tokenFor(t, auth.RoleOperator),
		map[string]string{"employerNo": "A/100", "period": "2024-03"})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	resp = do(t, ts, http.MethodPost, "/api/v1/references/refresh", tokenFor(t, auth.RoleOperator),
		map[string]string{"employerNo": "A/100", "period": "2024-05"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMetricsAreAdminOnly(t *testing.T) {
	ts := newTestServer(t)
	resp := do(t, ts, http.MethodGet, "/api/v1/documents/statement?"+query(map[string]string{
		"employer_no": "A/100", "period": "2024-03", "type": "salary",
	}), tokenFor(t, auth.RoleViewer), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, http.StatusForbidden, do(t, ts, http.MethodGet, "/api/v1/metrics", tokenFor(t, auth.RoleOperator), nil).StatusCode)

	resp = do(t, ts, http.MethodGet, "/api/v1/metrics", tokenFor(t, auth.RoleAdmin), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var snap struct {
		RendersTotal int `json:"rendersTotal"`
	}
	require.NoError(t, json.Unmarshal(decode(t, resp).Data, &snap))
	assert.Equal(t, 1, snap.RendersTotal)
}

func TestAuditTrail(t *testing.T) {
	ts := newTestServer(t)
	body := map[string]any{"fullName": "Nimal Perera", "nic": "853400937V", "epfNo": 7}
	resp := do(t, ts, http.MethodPost, "/api/v1/member-forms", tokenFor(t, auth.RoleOperator), body)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, http.StatusForbidden, do(t, ts, http.MethodGet, "/api/v1/audit/events", tokenFor(t, auth.RoleOperator), nil).StatusCode)

	resp = do(t, ts, http.MethodGet, "/api/v1/audit/events?action=member_form.generate&includeDetails=true", tokenFor(t, auth.RoleAdmin), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "1", resp.Header.Get("X-Total-Count"))
	var events []struct {
		Action   string          `json:"action"`
		EntityID string          `json:"entityId"`
		After    json.RawMessage `json:"after"`
	}
	require.NoError(t, json.Unmarshal(decode(t, resp).Data, &events))
	require.Len(t, events, 1)
	assert.Equal(t, "7", events[0].EntityID)
	assert.JSONEq(t, `{"employerNo":"","epfNo":7,"nominations":0}`, string(events[0].After))

	resp = do(t, ts, http.MethodGet, "/api/v1/audit/events/export", tokenFor(t, auth.RoleAdmin), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	lines := strings.Split(strings.TrimSpace(string(readAll(t, resp))), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[1], "u-operator,member_form.generate,employee,7")
}

func TestBundleJobIdempotencyKey(t *testing.T) {
	ts := newTestServer(t)
	token := tokenFor(t, auth.RoleOperator)
	submit := func(body string) *http.Response {
		req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/v1/jobs/bundles", strings.NewReader(body))
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Idempotency-Key", "march-run")
		resp, err := ts.Client().Do(req)
		require.NoError(t, err)
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}
	runID := func(resp *http.Response) string {
		var queued struct {
			RunID string `json:"runId"`
		}
		require.NoError(t, json.Unmarshal(decode(t, resp).Data, &queued))
		return queued.RunID
	}

	first := submit(`{"period":"2024-03","employerNo":"A/100"}`)
	require.Equal(t, http.StatusAccepted, first.StatusCode)
	second := submit(`{"period":"2024-03","employerNo":"A/100"}`)
	require.Equal(t, http.StatusAccepted, second.StatusCode)
	assert.Equal(t, runID(first), runID(second))

	conflict := submit(`{"period":"2024-04","employerNo":"A/100"}`)
	assert.Equal(t, http.StatusConflict, conflict.StatusCode)
}
