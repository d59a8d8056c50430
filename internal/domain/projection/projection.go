package projection

import (
	"fmt"
	"strconv"

	"payrolldocs/internal/domain/company"
	"payrolldocs/internal/domain/statutory"
)

// Fields is a flat name to display-text map handed to renderers.
type Fields map[string]string

// Degradation notes a field that was rendered from a default because its
// source was missing. It never fails a request.
type Degradation struct {
	EPFNo  int
	Field  string
	Reason string
}

func (d Degradation) String() string {
	return fmt.Sprintf("epf %d: %s %s", d.EPFNo, d.Field, d.Reason)
}

// Projection is the renderer-facing view of one document.
type Projection struct {
	Doc           DocType
	Period        string
	PeriodDisplay string
	Header        Fields
	Rows          []Fields
	Totals        Fields
	Degradations  []Degradation
}

type cell struct {
	text    string
	num     float64
	numeric bool
}

func numberCell(v *float64) cell {
	if v == nil {
		return cell{numeric: true}
	}
	return cell{text: formatRaw(*v), num: *v, numeric: true}
}

func derivedCell(v float64) cell {
	return cell{text: formatRaw(v), num: v, numeric: true}
}

type row struct {
	cells map[string]cell
	order []string
}

func (r *row) set(name string, c cell) {
	if _, ok := r.cells[name]; !ok {
		r.order = append(r.order, name)
	}
	r.cells[name] = c
}

type pair struct {
	employee company.Employee
	detail   company.PeriodDetail
}

// Project builds the document view for every employee with figures for period.
func Project(c company.Company, period string, doc DocType) (Projection, error) {
	if !doc.Valid() {
		return Projection{}, fmt.Errorf("%w: %q", ErrUnknownDocument, doc)
	}
	payment, ok := c.Payment(period)
	if !ok {
		return Projection{}, fmt.Errorf("%s %s: %w", c.EmployerNo, period, ErrPaymentNotFound)
	}
	var pairs []pair
	for _, employee := range c.Employees {
		detail, ok := employee.Detail(period)
		if !ok {
			continue
		}
		pairs = append(pairs, pair{employee: employee, detail: detail})
	}
	if len(pairs) == 0 {
		return Projection{}, fmt.Errorf("%s %s: %w", c.EmployerNo, period, ErrDetailNotFound)
	}
	return build(c, payment, pairs, doc), nil
}

// ProjectPayslip builds a single-row payslip view for one employee.
func ProjectPayslip(c company.Company, period string, epfNo int) (Projection, error) {
	payment, ok := c.Payment(period)
	if !ok {
		return Projection{}, fmt.Errorf("%s %s: %w", c.EmployerNo, period, ErrPaymentNotFound)
	}
	employee, ok := c.Employee(epfNo)
	if !ok {
		return Projection{}, fmt.Errorf("%s epf %d: %w", c.EmployerNo, epfNo, ErrEmployeeNotFound)
	}
	detail, ok := employee.Detail(period)
	if !ok {
		return Projection{}, fmt.Errorf("%s epf %d %s: %w", c.EmployerNo, epfNo, period, ErrDetailNotFound)
	}
	return build(c, payment, []pair{{employee: employee, detail: detail}}, DocPayslip), nil
}

// PayslipEmployees returns, in stored order, the EPF numbers that have
// figures for period.
func PayslipEmployees(c company.Company, period string) []int {
	var out []int
	for _, employee := range c.Employees {
		if _, ok := employee.Detail(period); ok {
			out = append(out, employee.EPFNo)
		}
	}
	return out
}

func build(c company.Company, payment company.PeriodPayment, pairs []pair, doc DocType) Projection {
	p := Projection{
		Doc:           doc,
		Period:        payment.Period,
		PeriodDisplay: PeriodDisplay(payment.Period),
		Header:        header(c, payment),
	}

	money := make(map[string]bool)
	for _, name := range currencyColumns[doc] {
		money[name] = true
	}

	sums := make(map[string]float64)
	var sumOrder []string
	for _, pr := range pairs {
		r, notes := projectRow(pr)
		p.Degradations = append(p.Degradations, notes...)

		out := make(Fields, len(r.order))
		for _, name := range r.order {
			v := r.cells[name]
			out[name] = display(v, money[name])
			if !v.numeric {
				continue
			}
			if _, seen := sums[name]; !seen {
				sumOrder = append(sumOrder, name)
			}
			sums[name] += v.num
		}
		p.Rows = append(p.Rows, out)
	}

	p.Totals = make(Fields, len(sumOrder)+1)
	for _, name := range sumOrder {
		p.Totals[name] = display(derivedCell(sums[name]), money[name])
	}
	p.Totals[NoOfEmployees] = strconv.Itoa(len(pairs))
	return p
}

func display(c cell, money bool) string {
	if money {
		if !c.numeric {
			return Placeholder
		}
		return FormatCurrency(c.num)
	}
	return c.text
}

func projectRow(pr pair) (row, []Degradation) {
	e, d := pr.employee, pr.detail
	r := row{cells: make(map[string]cell)}

	r.set(EmployeeEPFNo, cell{text: strconv.Itoa(e.EPFNo)})
	r.set(EmployeeName, cell{text: e.Name})
	r.set(EmployeeNIC, cell{text: e.NIC})
	r.set(EmployeeDesignation, cell{text: e.Designation})
	r.set(EmployeeDivideBy, numberCell(e.DivideBy))
	r.set(EmployeeGrossSalary, numberCell(e.GrossSalary))
	r.set(EmployeeIncentive, numberCell(e.Incentive))
	r.set(EmployeeOTHoursRange, cell{text: e.OTHoursRange})

	r.set(MonthlyPeriod, cell{text: PeriodDisplay(d.Period)})
	r.set(MonthlyGrossSalary, numberCell(d.GrossSalary))
	r.set(MonthlyOT, numberCell(d.OT))
	r.set(MonthlyOTText, cell{text: d.OTText})
	r.set(MonthlyAllowances, numberCell(d.Allowances))
	r.set(MonthlyIncentive, numberCell(d.Incentive))
	r.set(MonthlyDeductions, numberCell(d.Deductions))
	r.set(MonthlyDeductionsText, cell{text: d.DeductionsText})
	r.set(MonthlyMonthSalary, numberCell(d.MonthSalary))

	var notes []Degradation
	figures, ok := statutory.Derive(d.GrossSalary)
	if !ok {
		notes = append(notes, Degradation{
			EPFNo:  e.EPFNo,
			Field:  MonthlyGrossSalary,
			Reason: "missing, derived figures default to zero",
		})
	}
	r.set(MonthlyEPF8, derivedCell(figures.EPF8))
	r.set(MonthlyEPF12, derivedCell(figures.EPF12))
	r.set(MonthlyEPF20, derivedCell(figures.EPF20))
	r.set(MonthlyETF3, derivedCell(figures.ETF3))
	r.set(MonthlyBasicSalary, derivedCell(figures.BasicSalary))
	r.set(MonthlyBudgetaryAllowance, derivedCell(figures.BudgetaryAllowance))
	r.set(MonthlyNetPay, derivedCell(figures.NetPay))
	return r, notes
}

func header(c company.Company, payment company.PeriodPayment) Fields {
	epfMethod := payment.EPFPaymentMethod
	if epfMethod == "" {
		epfMethod = c.DefaultEPFPaymentMethod
	}
	etfMethod := payment.ETFPaymentMethod
	if etfMethod == "" {
		etfMethod = c.DefaultETFPaymentMethod
	}
	return Fields{
		CompanyName:       c.Name,
		CompanyEmployerNo: c.EmployerNo,
		CompanyAddress:    c.Address,

		PaymentPeriod:           PeriodDisplay(payment.Period),
		PaymentPeriodKey:        payment.Period,
		PaymentEPFReferenceNo:   payment.EPFReferenceNo,
		PaymentEPFAmount:        display(numberCell(payment.EPFAmount), true),
		PaymentEPFPaymentMethod: epfMethod,
		PaymentEPFChequeNo:      payment.EPFChequeNo,
		PaymentEPFCollectedDay:  formatDate(payment.EPFCollectedDay),
		PaymentEPFPaidDay:       formatDate(payment.EPFPaidDay),
		PaymentETFAmount:        display(numberCell(payment.ETFAmount), true),
		PaymentETFPaymentMethod: etfMethod,
		PaymentETFChequeNo:      payment.ETFChequeNo,
		PaymentETFCollectedDay:  formatDate(payment.ETFCollectedDay),
		PaymentETFPaidDay:       formatDate(payment.ETFPaidDay),
	}
}
