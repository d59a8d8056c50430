package render

import "payrolldocs/internal/domain/projection"

type column struct {
	title string
	field string
	width float64
	align string
}

type headerLine struct {
	label string
	field string
}

type layout struct {
	orientation string
	title       string
	header      []headerLine
	columns     []column
	// slip prints one page per row as label/value pairs instead of a table.
	slip []headerLine
}

var layouts = map[string]layout{
	string(projection.DocSalary): {
		orientation: "L",
		title:       "Salary Sheet",
		header: []headerLine{
			{"Employer No", projection.CompanyEmployerNo},
			{"Address", projection.CompanyAddress},
			{"Month", projection.PaymentPeriod},
		},
		columns: []column{
			{"EPF No", projection.EmployeeEPFNo, 14, "C"},
			{"Name", projection.EmployeeName, 45, "L"},
			{"Designation", projection.EmployeeDesignation, 28, "L"},
			{"Basic", projection.MonthlyBasicSalary, 22, "R"},
			{"Budgetary", projection.MonthlyBudgetaryAllowance, 20, "R"},
			{"Gross", projection.MonthlyGrossSalary, 22, "R"},
			{"OT", projection.MonthlyOT, 18, "R"},
			{"Allowances", projection.MonthlyAllowances, 20, "R"},
			{"Incentive", projection.MonthlyIncentive, 18, "R"},
			{"Deductions", projection.MonthlyDeductions, 20, "R"},
			{"EPF 8%", projection.MonthlyEPF8, 18, "R"},
			{"Net Pay", projection.MonthlyNetPay, 22, "R"},
		},
	},
	string(projection.DocEPF): {
		orientation: "P",
		title:       "EPF Contribution Statement",
		header: []headerLine{
			{"Employer No", projection.CompanyEmployerNo},
			{"Address", projection.CompanyAddress},
			{"Month", projection.PaymentPeriod},
			{"Reference No", projection.PaymentEPFReferenceNo},
			{"Amount Paid", projection.PaymentEPFAmount},
			{"Payment Method", projection.PaymentEPFPaymentMethod},
			{"Cheque No", projection.PaymentEPFChequeNo},
			{"Paid On", projection.PaymentEPFPaidDay},
		},
		columns: []column{
			{"EPF No", projection.EmployeeEPFNo, 16, "C"},
			{"Name", projection.EmployeeName, 56, "L"},
			{"NIC", projection.EmployeeNIC, 28, "L"},
			{"Gross", projection.MonthlyGrossSalary, 24, "R"},
			{"Employee 8%", projection.MonthlyEPF8, 22, "R"},
			{"Employer 12%", projection.MonthlyEPF12, 22, "R"},
			{"Total 20%", projection.MonthlyEPF20, 22, "R"},
		},
	},
	string(projection.DocETF): {
		orientation: "P",
		title:       "ETF Contribution Statement",
		header: []headerLine{
			{"Employer No", projection.CompanyEmployerNo},
			{"Address", projection.CompanyAddress},
			{"Month", projection.PaymentPeriod},
			{"Amount Paid", projection.PaymentETFAmount},
			{"Payment Method", projection.PaymentETFPaymentMethod},
			{"Cheque No", projection.PaymentETFChequeNo},
			{"Paid On", projection.PaymentETFPaidDay},
		},
		columns: []column{
			{"EPF No", projection.EmployeeEPFNo, 20, "C"},
			{"Name", projection.EmployeeName, 80, "L"},
			{"NIC", projection.EmployeeNIC, 30, "L"},
			{"Gross", projection.MonthlyGrossSalary, 30, "R"},
			{"ETF 3%", projection.MonthlyETF3, 30, "R"},
		},
	},
	string(projection.DocPayslip): {
		orientation: "P",
		title:       "Payslip",
		header: []headerLine{
			{"Employer No", projection.CompanyEmployerNo},
			{"Month", projection.PaymentPeriod},
		},
		slip: []headerLine{
			{"EPF No", projection.EmployeeEPFNo},
			{"Name", projection.EmployeeName},
			{"Designation", projection.EmployeeDesignation},
			{"Basic Salary", projection.MonthlyBasicSalary},
			{"Budgetary Allowance", projection.MonthlyBudgetaryAllowance},
			{"Gross Salary", projection.MonthlyGrossSalary},
			{"Overtime", projection.MonthlyOT},
			{"Allowances", projection.MonthlyAllowances},
			{"Incentive", projection.MonthlyIncentive},
			{"Deductions", projection.MonthlyDeductions},
			{"EPF 8%", projection.MonthlyEPF8},
			{"Month Salary", projection.MonthlyMonthSalary},
			{"Net Pay", projection.MonthlyNetPay},
			{"Employer EPF 12%", projection.MonthlyEPF12},
			{"Employer ETF 3%", projection.MonthlyETF3},
		},
	},
}

// Layouts lists the layout names the PDF renderer knows.
func Layouts() []string {
	return []string{
		string(projection.DocSalary),
		string(projection.DocEPF),
		string(projection.DocETF),
		string(projection.DocPayslip),
	}
}
