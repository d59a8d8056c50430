package company

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) FindCompany(ctx context.Context, employerNo string) (Company, error) {
	var c Company
	err := s.DB.QueryRow(ctx, `
    SELECT id::text, employer_no, name, COALESCE(address, ''), active,
           salary_sheet_required, epf_required, etf_required, payslip_required,
           COALESCE(default_epf_payment_method, ''), COALESCE(default_etf_payment_method, '')
    FROM companies
    WHERE employer_no = $1
  `, employerNo).Scan(&c.ID, &c.EmployerNo, &c.Name, &c.Address, &c.Active,
		&c.SalarySheetRequired, &c.EPFRequired, &c.ETFRequired, &c.PayslipRequired,
		&c.DefaultEPFPaymentMethod, &c.DefaultETFPaymentMethod)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Company{}, ErrCompanyNotFound
		}
		return Company{}, err
	}

	employees, err := s.listEmployees(ctx, c.ID)
	if err != nil {
		return Company{}, err
	}
	c.Employees = employees

	payments, err := s.listPayments(ctx, c.ID)
	if err != nil {
		return Company{}, err
	}
	c.Payments = payments
	return c, nil
}

func (s *Store) FindActiveCompanies(ctx context.Context) ([]Company, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT employer_no
    FROM companies
    WHERE active
    ORDER BY seq
  `)
	if err != nil {
		return nil, err
	}
	employerNos, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, err
	}

	companies := make([]Company, 0, len(employerNos))
	for _, employerNo := range employerNos {
		c, err := s.FindCompany(ctx, employerNo)
		if err != nil {
			// deleted between the listing and the read
			if errors.Is(err, ErrCompanyNotFound) {
				continue
			}
			return nil, err
		}
		companies = append(companies, c)
	}
	return companies, nil
}

func (s *Store) SetEPFReference(ctx context.Context, employerNo, period, reference string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE period_payments p
    SET epf_reference_no = $3
    FROM companies c
    WHERE p.company_id = c.id AND c.employer_no = $1 AND p.period = $2
  `, employerNo, period, reference)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

type pgEmployee struct {
	id       string
	employee Employee
}

func (s *Store) listEmployees(ctx context.Context, companyID string) ([]Employee, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id::text, epf_no, name, COALESCE(nic, ''), COALESCE(designation, ''), active,
           divide_by, gross_salary, incentive, COALESCE(ot_hours_range, '')
    FROM employees
    WHERE company_id = $1
    ORDER BY position, epf_no
  `, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []pgEmployee
	for rows.Next() {
		var row pgEmployee
		e := &row.employee
		if err := rows.Scan(&row.id, &e.EPFNo, &e.Name, &e.NIC, &e.Designation, &e.Active,
			&e.DivideBy, &e.GrossSalary, &e.Incentive, &e.OTHoursRange); err != nil {
			return nil, err
		}
		list = append(list, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	employees := make([]Employee, 0, len(list))
	for _, row := range list {
		details, err := s.listDetails(ctx, row.id)
		if err != nil {
			return nil, err
		}
		row.employee.Details = details
		employees = append(employees, row.employee)
	}
	return employees, nil
}

func (s *Store) listDetails(ctx context.Context, employeeID string) ([]PeriodDetail, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT period, gross_salary, ot, COALESCE(ot_text, ''), allowances, incentive,
           deductions, COALESCE(deductions_text, ''), month_salary
    FROM period_details
    WHERE employee_id = $1
    ORDER BY period
  `, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var details []PeriodDetail
	for rows.Next() {
		var d PeriodDetail
		if err := rows.Scan(&d.Period, &d.GrossSalary, &d.OT, &d.OTText, &d.Allowances, &d.Incentive,
			&d.Deductions, &d.DeductionsText, &d.MonthSalary); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

func (s *Store) listPayments(ctx context.Context, companyID string) ([]PeriodPayment, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT period, COALESCE(epf_reference_no, ''), epf_amount, COALESCE(epf_payment_method, ''),
           COALESCE(epf_cheque_no, ''), epf_collected_day, epf_paid_day,
           etf_amount, COALESCE(etf_payment_method, ''), COALESCE(etf_cheque_no, ''),
           etf_collected_day, etf_paid_day
    FROM period_payments
    WHERE company_id = $1
    ORDER BY period
  `, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []PeriodPayment
	for rows.Next() {
		var p PeriodPayment
		if err := rows.Scan(&p.Period, &p.EPFReferenceNo, &p.EPFAmount, &p.EPFPaymentMethod,
			&p.EPFChequeNo, &p.EPFCollectedDay, &p.EPFPaidDay,
			&p.ETFAmount, &p.ETFPaymentMethod, &p.ETFChequeNo,
			&p.ETFCollectedDay, &p.ETFPaidDay); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
