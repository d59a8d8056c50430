package projection

// Field names shared by the projector and the document layouts. Employee
// sourced fields carry the employee_ prefix, period sourced and derived
// fields the monthly_ prefix, and header fields company_ or payment_.
const (
	EmployeeEPFNo        = "employee_epf_no"
	EmployeeName         = "employee_name"
	EmployeeNIC          = "employee_nic"
	EmployeeDesignation  = "employee_designation"
	EmployeeDivideBy     = "employee_divide_by"
	EmployeeGrossSalary  = "employee_gross_salary"
	EmployeeIncentive    = "employee_incentive"
	EmployeeOTHoursRange = "employee_ot_hours_range"

	MonthlyPeriod             = "monthly_period"
	MonthlyGrossSalary        = "monthly_gross_salary"
	MonthlyOT                 = "monthly_ot"
	MonthlyOTText             = "monthly_ot_y"
	MonthlyAllowances         = "monthly_allowances"
	MonthlyIncentive          = "monthly_incentive"
	MonthlyDeductions         = "monthly_deductions"
	MonthlyDeductionsText     = "monthly_deductions_y"
	MonthlyMonthSalary        = "monthly_month_salary"
	MonthlyEPF8               = "monthly_epf_8"
	MonthlyEPF12              = "monthly_epf_12"
	MonthlyEPF20              = "monthly_epf_20"
	MonthlyETF3               = "monthly_etf_3"
	MonthlyBasicSalary        = "monthly_basic_salary"
	MonthlyBudgetaryAllowance = "monthly_budgetary_allowance"
	MonthlyNetPay             = "monthly_net_pay"

	CompanyName       = "company_name"
	CompanyEmployerNo = "company_employer_no"
	CompanyAddress    = "company_address"

	PaymentPeriod           = "payment_period"
	PaymentPeriodKey        = "payment_period_key"
	PaymentEPFReferenceNo   = "payment_epf_reference_no"
	PaymentEPFAmount        = "payment_epf_amount"
	PaymentEPFPaymentMethod = "payment_epf_payment_method"
	PaymentEPFChequeNo      = "payment_epf_cheque_no"
	PaymentEPFCollectedDay  = "payment_epf_collected_day"
	PaymentEPFPaidDay       = "payment_epf_paid_day"
	PaymentETFAmount        = "payment_etf_amount"
	PaymentETFPaymentMethod = "payment_etf_payment_method"
	PaymentETFChequeNo      = "payment_etf_cheque_no"
	PaymentETFCollectedDay  = "payment_etf_collected_day"
	PaymentETFPaidDay       = "payment_etf_paid_day"

	NoOfEmployees = "no_of_employees"
)

type DocType string

const (
	DocSalary  DocType = "salary"
	DocEPF     DocType = "epf"
	DocETF     DocType = "etf"
	DocPayslip DocType = "payslip"
)

func (d DocType) Valid() bool {
	_, ok := currencyColumns[d]
	return ok
}

var payslipColumns = []string{
	MonthlyGrossSalary,
	MonthlyDeductions,
	MonthlyEPF8,
	MonthlyETF3,
	MonthlyEPF12,
	MonthlyIncentive,
	MonthlyAllowances,
	MonthlyOT,
	MonthlyMonthSalary,
	MonthlyNetPay,
	MonthlyBudgetaryAllowance,
	MonthlyBasicSalary,
}

// currencyColumns lists, per document, the fields rendered as money.
var currencyColumns = map[DocType][]string{
	DocSalary:  payslipColumns,
	DocPayslip: payslipColumns,
	DocEPF:     {MonthlyGrossSalary, MonthlyEPF8, MonthlyEPF12, MonthlyEPF20},
	DocETF:     {MonthlyGrossSalary, MonthlyETF3},
}

// CurrencyColumns returns a copy of the money columns for doc.
func CurrencyColumns(doc DocType) []string {
	return append([]string(nil), currencyColumns[doc]...)
}
