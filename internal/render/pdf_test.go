package render

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"payrolldocs/internal/compose"
	"payrolldocs/internal/domain/projection"
)

func sampleInput(rows int) Input {
	in := Input{
		Header: map[string]string{
			projection.CompanyName:       "Kandy Spice Exports",
			projection.CompanyEmployerNo: "B/99812",
			projection.PaymentPeriod:     "March - 2024",
		},
		Totals: map[string]string{
			projection.MonthlyGrossSalary: "70,000.00",
			projection.NoOfEmployees:      "2",
		},
	}
	for i := 0; i < rows; i++ {
		in.Rows = append(in.Rows, map[string]string{
			projection.EmployeeEPFNo:      "7",
			projection.EmployeeName:       "Nimal Perera",
			projection.MonthlyGrossSalary: "20,000.00",
		})
	}
	return in
}

func TestRenderEveryLayout(t *testing.T) {
	r := NewPDFRenderer()
	for _, name := range Layouts() {
		out, err := r.Render(context.Background(), name, sampleInput(2))
		if err != nil {
			t.Fatalf("%s: render failed: %v", name, err)
		}
		if !bytes.HasPrefix(out, []byte("%PDF")) {
			t.Fatalf("%s: output is not a PDF", name)
		}
	}
}

func TestRenderSalaryIsLandscape(t *testing.T) {
	out, err := NewPDFRenderer().Render(context.Background(), string(projection.DocSalary), sampleInput(1))
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	sizes, err := compose.Inspect(out)
	if err != nil {
		t.Fatalf("inspect failed: %v", err)
	}
	if sizes[0].Width <= sizes[0].Height {
		t.Fatalf("salary sheet should be landscape, got %.1fx%.1f", sizes[0].Width, sizes[0].Height)
	}
}

func TestRenderPayslipPagePerRow(t *testing.T) {
	out, err := NewPDFRenderer().Render(context.Background(), string(projection.DocPayslip), sampleInput(3))
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	n, err := compose.PageCount(out)
	if err != nil {
		t.Fatalf("page count failed: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected one page per payslip row, got %d", n)
	}
}

func TestRenderRejects(t *testing.T) {
	r := NewPDFRenderer()
	if _, err := r.Render(context.Background(), "bonus", sampleInput(1)); !errors.Is(err, ErrUnknownLayout) {
		t.Fatalf("expected ErrUnknownLayout, got %v", err)
	}
	if _, err := r.Render(context.Background(), "epf", Input{}); !errors.Is(err, ErrNoRows) {
		t.Fatalf("expected ErrNoRows, got %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Render(ctx, "epf", sampleInput(1)); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
