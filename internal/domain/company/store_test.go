package company

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPGStore(t *testing.T) (*Store, string) {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	schema, err := os.ReadFile("../../../migrations/0001_companies.sql")
	require.NoError(t, err)
	_, err = pool.Exec(ctx, string(schema))
	require.NoError(t, err)

	employerNo := fmt.Sprintf("T/%d", time.Now().UnixNano())
	var companyID string
	require.NoError(t, pool.QueryRow(ctx, `
    INSERT INTO companies (employer_no, name, active, epf_required)
    VALUES ($1, 'Store Test Ltd', TRUE, TRUE)
    RETURNING id::text
  `, employerNo).Scan(&companyID))
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM companies WHERE id = $1`, companyID)
	})

	for i, epfNo := range []int{9, 4} {
		var employeeID string
		require.NoError(t, pool.QueryRow(ctx, `
      INSERT INTO employees (company_id, position, epf_no, name, active)
      VALUES ($1, $2, $3, $4, TRUE)
      RETURNING id::text
    `, companyID, i, epfNo, fmt.Sprintf("Employee %d", epfNo)).Scan(&employeeID))
		_, err := pool.Exec(ctx, `
      INSERT INTO period_details (employee_id, period, gross_salary)
      VALUES ($1, '2024-03', 30000)
    `, employeeID)
		require.NoError(t, err)
	}
	_, err = pool.Exec(ctx, `
    INSERT INTO period_payments (company_id, period, epf_amount)
    VALUES ($1, '2024-03', 6000)
  `, companyID)
	require.NoError(t, err)

	return NewStore(pool), employerNo
}

func TestStoreFindCompanyKeepsPositionOrder(t *testing.T) {
	store, employerNo := newPGStore(t)
	c, err := store.FindCompany(context.Background(), employerNo)
	require.NoError(t, err)
	require.Len(t, c.Employees, 2)
	assert.Equal(t, 9, c.Employees[0].EPFNo)
	detail, ok := c.Employees[0].Detail("2024-03")
	require.True(t, ok)
	require.NotNil(t, detail.GrossSalary)
	assert.InDelta(t, 30000, *detail.GrossSalary, 0.001)
	payment, ok := c.Payment("2024-03")
	require.True(t, ok)
	require.NotNil(t, payment.EPFAmount)
}

func TestStoreSetEPFReference(t *testing.T) {
	store, employerNo := newPGStore(t)
	ctx := context.Background()
	require.NoError(t, store.SetEPFReference(ctx, employerNo, "2024-03", "REF-1"))
	assert.ErrorIs(t, store.SetEPFReference(ctx, employerNo, "2024-04", "REF-2"), ErrPaymentNotFound)

	c, err := store.FindCompany(ctx, employerNo)
	require.NoError(t, err)
	payment, _ := c.Payment("2024-03")
	assert.Equal(t, "REF-1", payment.EPFReferenceNo)

	_, err = store.FindCompany(ctx, "missing/"+employerNo)
	assert.ErrorIs(t, err, ErrCompanyNotFound)
}
