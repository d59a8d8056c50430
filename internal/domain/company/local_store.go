package company

import (
	"context"
	"errors"
	"strconv"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// LocalStore keeps company records in a SQLite file. It backs the offline
// CLI and tests; the server uses Store.
type LocalStore struct {
	DB *gorm.DB
}

type companyRow struct {
	ID                      uint   `gorm:"primaryKey"`
	EmployerNo              string `gorm:"uniqueIndex;not null"`
	Name                    string `gorm:"not null"`
	Address                 string
	Active                  bool
	SalarySheetRequired     bool
	EPFRequired             bool `gorm:"column:epf_required"`
	ETFRequired             bool `gorm:"column:etf_required"`
	PayslipRequired         bool
	DefaultEPFPaymentMethod string        `gorm:"column:default_epf_payment_method"`
	DefaultETFPaymentMethod string        `gorm:"column:default_etf_payment_method"`
	Employees               []employeeRow `gorm:"foreignKey:CompanyID;constraint:OnDelete:CASCADE"`
	Payments                []paymentRow  `gorm:"foreignKey:CompanyID;constraint:OnDelete:CASCADE"`
}

func (companyRow) TableName() string { return "companies" }

type employeeRow struct {
	ID           uint `gorm:"primaryKey"`
	CompanyID    uint `gorm:"not null;uniqueIndex:idx_employee_company_epf"`
	Position     int
	EPFNo        int    `gorm:"column:epf_no;uniqueIndex:idx_employee_company_epf"`
	Name         string `gorm:"not null"`
	NIC          string `gorm:"column:nic"`
	Designation  string
	Active       bool
	DivideBy     *float64
	GrossSalary  *float64
	Incentive    *float64
	OTHoursRange string      `gorm:"column:ot_hours_range"`
	Details      []detailRow `gorm:"foreignKey:EmployeeID;constraint:OnDelete:CASCADE"`
}

func (employeeRow) TableName() string { return "employees" }

type detailRow struct {
	ID             uint   `gorm:"primaryKey"`
	EmployeeID     uint   `gorm:"not null;uniqueIndex:idx_detail_employee_period"`
	Period         string `gorm:"not null;uniqueIndex:idx_detail_employee_period"`
	GrossSalary    *float64
	OT             *float64 `gorm:"column:ot"`
	OTText         string   `gorm:"column:ot_text"`
	Allowances     *float64
	Incentive      *float64
	Deductions     *float64
	DeductionsText string
	MonthSalary    *float64
}

func (detailRow) TableName() string { return "period_details" }

type paymentRow struct {
	ID               uint       `gorm:"primaryKey"`
	CompanyID        uint       `gorm:"not null;uniqueIndex:idx_payment_company_period"`
	Period           string     `gorm:"not null;uniqueIndex:idx_payment_company_period"`
	EPFReferenceNo   string     `gorm:"column:epf_reference_no"`
	EPFAmount        *float64   `gorm:"column:epf_amount"`
	EPFPaymentMethod string     `gorm:"column:epf_payment_method"`
	EPFChequeNo      string     `gorm:"column:epf_cheque_no"`
	EPFCollectedDay  *time.Time `gorm:"column:epf_collected_day"`
	EPFPaidDay       *time.Time `gorm:"column:epf_paid_day"`
	ETFAmount        *float64   `gorm:"column:etf_amount"`
	ETFPaymentMethod string     `gorm:"column:etf_payment_method"`
	ETFChequeNo      string     `gorm:"column:etf_cheque_no"`
	ETFCollectedDay  *time.Time `gorm:"column:etf_collected_day"`
	ETFPaidDay       *time.Time `gorm:"column:etf_paid_day"`
}

func (paymentRow) TableName() string { return "period_payments" }

// OpenLocal opens (creating when needed) a SQLite database at path and
// migrates the record tables.
func OpenLocal(path string) (*LocalStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return NewLocalStore(db)
}

func NewLocalStore(db *gorm.DB) (*LocalStore, error) {
	if err := db.AutoMigrate(&companyRow{}, &employeeRow{}, &detailRow{}, &paymentRow{}); err != nil {
		return nil, err
	}
	return &LocalStore{DB: db}, nil
}

func (s *LocalStore) withRecords(ctx context.Context) *gorm.DB {
	return s.DB.WithContext(ctx).
		Preload("Employees", func(db *gorm.DB) *gorm.DB { return db.Order("position, epf_no") }).
		Preload("Employees.Details", func(db *gorm.DB) *gorm.DB { return db.Order("period") }).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("period") })
}

func (s *LocalStore) FindCompany(ctx context.Context, employerNo string) (Company, error) {
	var row companyRow
	err := s.withRecords(ctx).Where("employer_no = ?", employerNo).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Company{}, ErrCompanyNotFound
		}
		return Company{}, err
	}
	return row.toRecord(), nil
}

func (s *LocalStore) FindActiveCompanies(ctx context.Context) ([]Company, error) {
	var rows []companyRow
	if err := s.withRecords(ctx).Where("active = ?", true).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	companies := make([]Company, 0, len(rows))
	for _, row := range rows {
		companies = append(companies, row.toRecord())
	}
	return companies, nil
}

func (s *LocalStore) SetEPFReference(ctx context.Context, employerNo, period, reference string) error {
	var companyID uint
	err := s.DB.WithContext(ctx).Model(&companyRow{}).
		Where("employer_no = ?", employerNo).
		Select("id").
		Scan(&companyID).Error
	if err != nil {
		return err
	}
	if companyID == 0 {
		return ErrCompanyNotFound
	}
	res := s.DB.WithContext(ctx).Model(&paymentRow{}).
		Where("company_id = ? AND period = ?", companyID, period).
		Update("epf_reference_no", reference)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

// Save replaces the stored record for c.EmployerNo, keeping slice order as
// the stored order.
func (s *LocalStore) Save(ctx context.Context, c Company) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing companyRow
		err := tx.Where("employer_no = ?", c.EmployerNo).First(&existing).Error
		switch {
		case err == nil:
			employeeIDs := tx.Model(&employeeRow{}).Select("id").Where("company_id = ?", existing.ID)
			if err := tx.Where("employee_id IN (?)", employeeIDs).Delete(&detailRow{}).Error; err != nil {
				return err
			}
			if err := tx.Where("company_id = ?", existing.ID).Delete(&employeeRow{}).Error; err != nil {
				return err
			}
			if err := tx.Where("company_id = ?", existing.ID).Delete(&paymentRow{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}
		row := fromRecord(c)
		row.ID = existing.ID
		return tx.Create(&row).Error
	})
}

func (r companyRow) toRecord() Company {
	c := Company{
		ID:                      strconv.FormatUint(uint64(r.ID), 10),
		EmployerNo:              r.EmployerNo,
		Name:                    r.Name,
		Address:                 r.Address,
		Active:                  r.Active,
		SalarySheetRequired:     r.SalarySheetRequired,
		EPFRequired:             r.EPFRequired,
		ETFRequired:             r.ETFRequired,
		PayslipRequired:         r.PayslipRequired,
		DefaultEPFPaymentMethod: r.DefaultEPFPaymentMethod,
		DefaultETFPaymentMethod: r.DefaultETFPaymentMethod,
	}
	for _, e := range r.Employees {
		employee := Employee{
			EPFNo:        e.EPFNo,
			Name:         e.Name,
			NIC:          e.NIC,
			Designation:  e.Designation,
			Active:       e.Active,
			DivideBy:     e.DivideBy,
			GrossSalary:  e.GrossSalary,
			Incentive:    e.Incentive,
			OTHoursRange: e.OTHoursRange,
		}
		for _, d := range e.Details {
			employee.Details = append(employee.Details, PeriodDetail{
				Period:         d.Period,
				GrossSalary:    d.GrossSalary,
				OT:             d.OT,
				OTText:         d.OTText,
				Allowances:     d.Allowances,
				Incentive:      d.Incentive,
				Deductions:     d.Deductions,
				DeductionsText: d.DeductionsText,
				MonthSalary:    d.MonthSalary,
			})
		}
		c.Employees = append(c.Employees, employee)
	}
	for _, p := range r.Payments {
		c.Payments = append(c.Payments, PeriodPayment{
			Period:           p.Period,
			EPFReferenceNo:   p.EPFReferenceNo,
			EPFAmount:        p.EPFAmount,
			EPFPaymentMethod: p.EPFPaymentMethod,
			EPFChequeNo:      p.EPFChequeNo,
			EPFCollectedDay:  p.EPFCollectedDay,
			EPFPaidDay:       p.EPFPaidDay,
			ETFAmount:        p.ETFAmount,
			ETFPaymentMethod: p.ETFPaymentMethod,
			ETFChequeNo:      p.ETFChequeNo,
			ETFCollectedDay:  p.ETFCollectedDay,
			ETFPaidDay:       p.ETFPaidDay,
		})
	}
	return c
}

func fromRecord(c Company) companyRow {
	row := companyRow{
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
	}
	for i, e := range c.Employees {
		employee := employeeRow{
			Position:     i,
			EPFNo:        e.EPFNo,
			Name:         e.Name,
			NIC:          e.NIC,
			Designation:  e.Designation,
			Active:       e.Active,
			DivideBy:     e.DivideBy,
			GrossSalary:  e.GrossSalary,
			Incentive:    e.Incentive,
			OTHoursRange: e.OTHoursRange,
		}
		for _, d := range e.Details {
			employee.Details = append(employee.Details, detailRow{
				Period:         d.Period,
				GrossSalary:    d.GrossSalary,
				OT:             d.OT,
				OTText:         d.OTText,
				Allowances:     d.Allowances,
				Incentive:      d.Incentive,
				Deductions:     d.Deductions,
				DeductionsText: d.DeductionsText,
				MonthSalary:    d.MonthSalary,
			})
		}
		row.Employees = append(row.Employees, employee)
	}
	for _, p := range c.Payments {
		row.Payments = append(row.Payments, paymentRow{
			Period:           p.Period,
			EPFReferenceNo:   p.EPFReferenceNo,
			EPFAmount:        p.EPFAmount,
			EPFPaymentMethod: p.EPFPaymentMethod,
			EPFChequeNo:      p.EPFChequeNo,
			EPFCollectedDay:  p.EPFCollectedDay,
			EPFPaidDay:       p.EPFPaidDay,
			ETFAmount:        p.ETFAmount,
			ETFPaymentMethod: p.ETFPaymentMethod,
			ETFChequeNo:      p.ETFChequeNo,
			ETFCollectedDay:  p.ETFCollectedDay,
			ETFPaidDay:       p.ETFPaidDay,
		})
	}
	return row
}

func (s *LocalStore) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
