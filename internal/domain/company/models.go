package company

import (
	"strings"
	"time"
)

type Company struct {
	ID                      string          `json:"id"`
	EmployerNo              string          `json:"employerNo"`
	Name                    string          `json:"name"`
	Address                 string          `json:"address"`
	Active                  bool            `json:"active"`
	SalarySheetRequired     bool            `json:"salarySheetRequired"`
	EPFRequired             bool            `json:"epfRequired"`
	ETFRequired             bool            `json:"etfRequired"`
	PayslipRequired         bool            `json:"payslipRequired"`
	DefaultEPFPaymentMethod string          `json:"defaultEpfPaymentMethod"`
	DefaultETFPaymentMethod string          `json:"defaultEtfPaymentMethod"`
	Employees               []Employee      `json:"employees"`
	Payments                []PeriodPayment `json:"payments"`
}

type Employee struct {
	EPFNo        int            `json:"epfNo"`
	Name         string         `json:"name"`
	NIC          string         `json:"nic"`
	Designation  string         `json:"designation"`
	Active       bool           `json:"active"`
	DivideBy     *float64       `json:"divideBy,omitempty"`
	GrossSalary  *float64       `json:"grossSalary,omitempty"`
	Incentive    *float64       `json:"incentive,omitempty"`
	OTHoursRange string         `json:"otHoursRange"`
	Details      []PeriodDetail `json:"details"`
}

// PeriodDetail is one employee's figures for a single pay period.
type PeriodDetail struct {
	Period         string   `json:"period"`
	GrossSalary    *float64 `json:"grossSalary,omitempty"`
	OT             *float64 `json:"ot,omitempty"`
	OTText         string   `json:"otText"`
	Allowances     *float64 `json:"allowances,omitempty"`
	Incentive      *float64 `json:"incentive,omitempty"`
	Deductions     *float64 `json:"deductions,omitempty"`
	DeductionsText string   `json:"deductionsText"`
	MonthSalary    *float64 `json:"monthSalary,omitempty"`
}

// PeriodPayment records the company's EPF/ETF remittance for a period.
type PeriodPayment struct {
	Period           string     `json:"period"`
	EPFReferenceNo   string     `json:"epfReferenceNo"`
	EPFAmount        *float64   `json:"epfAmount,omitempty"`
	EPFPaymentMethod string     `json:"epfPaymentMethod"`
	EPFChequeNo      string     `json:"epfChequeNo"`
	EPFCollectedDay  *time.Time `json:"epfCollectedDay,omitempty"`
	EPFPaidDay       *time.Time `json:"epfPaidDay,omitempty"`
	ETFAmount        *float64   `json:"etfAmount,omitempty"`
	ETFPaymentMethod string     `json:"etfPaymentMethod"`
	ETFChequeNo      string     `json:"etfChequeNo"`
	ETFCollectedDay  *time.Time `json:"etfCollectedDay,omitempty"`
	ETFPaidDay       *time.Time `json:"etfPaidDay,omitempty"`
}

func (c Company) Payment(period string) (PeriodPayment, bool) {
	for _, payment := range c.Payments {
		if payment.Period == period {
			return payment, true
		}
	}
	return PeriodPayment{}, false
}

func (c Company) Employee(epfNo int) (Employee, bool) {
	for _, employee := range c.Employees {
		if employee.EPFNo == epfNo {
			return employee, true
		}
	}
	return Employee{}, false
}

func (e Employee) Detail(period string) (PeriodDetail, bool) {
	for _, detail := range e.Details {
		if detail.Period == period {
			return detail, true
		}
	}
	return PeriodDetail{}, false
}

// ValidPeriod reports whether period is a YYYY-MM key.
func ValidPeriod(period string) bool {
	if len(period) != 7 || strings.Count(period, "-") != 1 {
		return false
	}
	_, err := time.Parse("2006-01", period)
	return err == nil
}
