package statements

import (
	"fmt"

	"payrolldocs/internal/compose"
	"payrolldocs/internal/domain/company"
	"payrolldocs/internal/domain/projection"
	"payrolldocs/internal/render"
)

const printableSuffix = "_printable"

func statementLabel(doc projection.DocType) string {
	switch doc {
	case projection.DocSalary:
		return "Salary Sheet"
	case projection.DocEPF:
		return "EPF"
	case projection.DocETF:
		return "ETF"
	case projection.DocPayslip:
		return "Payslips"
	}
	return string(doc)
}

// FileName builds "{company} - {period display} - {statement}.pdf", with the
// printable suffix before the extension when requested.
func FileName(companyName, period, statement string, printable bool) string {
	suffix := ""
	if printable {
		suffix = printableSuffix
	}
	return fmt.Sprintf("%s - %s - %s%s.pdf", companyName, projection.PeriodDisplay(period), statement, suffix)
}

func taskFor(employerNo, period string, p projection.Projection) task {
	rows := make([]map[string]string, len(p.Rows))
	for i, r := range p.Rows {
		rows[i] = r
	}
	return task{
		employerNo: employerNo,
		period:     period,
		layout:     string(p.Doc),
		input:      render.Input{Header: p.Header, Rows: rows, Totals: p.Totals},
	}
}

// payslipSlot renders one payslip per employee with figures for period,
// tiled four to a page.
func payslipSlot(c company.Company, period string) (slot, []projection.Degradation, error) {
	employees := projection.PayslipEmployees(c, period)
	if len(employees) == 0 {
		err := fmt.Errorf("%s %s: %w", c.EmployerNo, period, projection.ErrDetailNotFound)
		return slot{}, nil, wrap(err, c.EmployerNo, period, string(projection.DocPayslip))
	}
	part := slot{mode: compose.Tiled}
	var notes []projection.Degradation
	for _, epfNo := range employees {
		p, err := projection.ProjectPayslip(c, period, epfNo)
		if err != nil {
			return slot{}, nil, wrap(err, c.EmployerNo, period, string(projection.DocPayslip))
		}
		notes = append(notes, p.Degradations...)
		part.tasks = append(part.tasks, taskFor(c.EmployerNo, period, p))
	}
	return part, notes, nil
}

// bundleSlots lays out a company's statutory bundle. Printable mode turns the
// salary sheet a quarter turn to portrait and prints EPF and ETF twice.
func bundleSlots(c company.Company, period string, printable bool) ([]slot, []projection.Degradation, error) {
	copies, turns := 1, 0
	if printable {
		copies, turns = 2, 1
	}

	var slots []slot
	var notes []projection.Degradation
	statement := func(doc projection.DocType, copies, turns int) error {
		p, err := projection.Project(c, period, doc)
		if err != nil {
			return wrap(err, c.EmployerNo, period, string(doc))
		}
		notes = append(notes, p.Degradations...)
		slots = append(slots, slot{
			tasks:        []task{taskFor(c.EmployerNo, period, p)},
			mode:         compose.Sequential,
			copies:       copies,
			quarterTurns: turns,
		})
		return nil
	}

	if c.SalarySheetRequired {
		if err := statement(projection.DocSalary, 1, turns); err != nil {
			return nil, nil, err
		}
	}
	if c.EPFRequired {
		if err := statement(projection.DocEPF, copies, 0); err != nil {
			return nil, nil, err
		}
	}
	if c.ETFRequired {
		if err := statement(projection.DocETF, copies, 0); err != nil {
			return nil, nil, err
		}
	}
	if c.PayslipRequired {
		part, payslipNotes, err := payslipSlot(c, period)
		if err != nil {
			return nil, nil, err
		}
		notes = append(notes, payslipNotes...)
		slots = append(slots, part)
	}
	if len(slots) == 0 {
		return nil, nil, wrap(fmt.Errorf("no statements required: %w", compose.ErrEmpty), c.EmployerNo, period, "bundle")
	}
	return slots, notes, nil
}
