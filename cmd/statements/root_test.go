package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payrolldocs/internal/domain/company"
	"payrolldocs/internal/domain/projection"
)

func amount(v float64) *float64 { return &v }

func writeRecords(t *testing.T, dir string) string {
	t.Helper()
	records := []company.Company{{
		EmployerNo:          "A/100",
		Name:                "Lanka Tea Traders",
		Address:             "No 12, Temple Road, Maharagama",
		Active:              true,
		SalarySheetRequired: true,
		EPFRequired:         true,
		ETFRequired:         true,
		PayslipRequired:     true,
		Employees: []company.Employee{{
			EPFNo: 7, Name: "Nimal Perera", NIC: "853400937V", Active: true,
			Details: []company.PeriodDetail{{Period: "2024-03", GrossSalary: amount(20000)}},
		}},
		Payments: []company.PeriodPayment{{Period: "2024-03", EPFAmount: amount(4000), ETFAmount: amount(600)}},
	}}
	data, err := json.Marshal(records)
	require.NoError(t, err)
	path := filepath.Join(dir, "records.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestImportThenBundle(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "payroll.db")
	records := writeRecords(t, dir)

	out, err := run(t, "--db", db, "import", records)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 1 companies")

	outDir := filepath.Join(dir, "out")
	out, err = run(t, "--db", db, "--out", outDir, "bundle", "-e", "A/100", "-p", "2024-03")
	require.NoError(t, err)

	path := strings.TrimSpace(out)
	assert.Equal(t, outDir, filepath.Dir(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestImportAcceptsFormattedGross(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "records.json")
	records := `{
		"employerNo": "A/100",
		"name": "Lanka Tea Traders",
		"active": true,
		"payslipRequired": true,
		"employees": [
			{"epfNo": 7, "name": "Nimal Perera", "details": [{"period": "2024-03", "grossSalary": "50,000.00"}]},
			{"epfNo": 8, "name": "Kamal Silva", "details": [{"period": "2024-03", "grossSalary": "abc"}]}
		],
		"payments": [{"period": "2024-03", "epfAmount": "8,000.00"}]
	}`
	require.NoError(t, os.WriteFile(path, []byte(records), 0o644))

	companies, err := readCompanies(path)
	require.NoError(t, err)
	require.Len(t, companies, 1)
	c := companies[0]

	nimal, ok := c.Employee(7)
	require.True(t, ok)
	require.NotNil(t, nimal.Details[0].GrossSalary)
	assert.Equal(t, 50000.0, *nimal.Details[0].GrossSalary)

	p, err := projection.ProjectPayslip(c, "2024-03", 7)
	require.NoError(t, err)
	assert.Empty(t, p.Degradations)
	assert.Equal(t, "50,000.00", p.Rows[0][projection.MonthlyGrossSalary])
	assert.Equal(t, "4,000.00", p.Rows[0][projection.MonthlyEPF8])

	p, err = projection.ProjectPayslip(c, "2024-03", 8)
	require.NoError(t, err)
	require.Len(t, p.Degradations, 1)
	assert.Equal(t, 8, p.Degradations[0].EPFNo)
	assert.Equal(t, projection.MonthlyGrossSalary, p.Degradations[0].Field)

	db := filepath.Join(dir, "payroll.db")
	out, err := run(t, "--db", db, "import", path)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 1 companies")
}

func TestStatementRejectsPayslipType(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "--db", filepath.Join(dir, "payroll.db"), "statement", "-e", "A/100", "-p", "2024-03", "--type", "payslip")
	require.Error(t, err)
}

func TestBundleForUnknownCompany(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "--db", filepath.Join(dir, "payroll.db"), "--out", dir, "bundle", "-e", "Z/9", "-p", "2024-03")
	require.Error(t, err)
	assert.ErrorIs(t, err, company.ErrCompanyNotFound)
}

func TestMemberFormWritesPDF(t *testing.T) {
	dir := t.TempDir()
	req := filepath.Join(dir, "request.json")
	require.NoError(t, os.WriteFile(req, []byte(`{"fullName":"Nimal Perera","nic":"853400937V"}`), 0o644))

	out, err := run(t, "--out", dir, "member-form", req)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Nimal Perera - Member Form.pdf"), strings.TrimSpace(out))
}
