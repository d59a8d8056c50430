package statutory

import (
	"math"
	"strconv"
	"strings"
)

const (
	LowerBandCeiling = 23500
	UpperBandCeiling = 42500

	LowerBandAllowance = 3500
	UpperBandAllowance = 2500

	EmployeeEPFRate = 0.08
	EmployerEPFRate = 0.12
	EmployerETFRate = 0.03
)

// Figures holds every derived value for one gross salary. Values are unrounded.
type Figures struct {
	Gross              float64
	BudgetaryAllowance float64
	BasicSalary        float64
	EPF8               float64
	EPF12              float64
	EPF20              float64
	ETF3               float64
	NetPay             float64
}

// ParseGross accepts plain and thousands-separated decimals such as "50,000.00".
func ParseGross(text string) (float64, bool) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	if cleaned == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}

func BudgetaryAllowance(gross float64) float64 {
	switch {
	case gross <= LowerBandCeiling:
		return LowerBandAllowance
	case gross <= UpperBandCeiling:
		return UpperBandAllowance
	default:
		return 0
	}
}

func BasicSalary(gross float64) float64 {
	return gross - BudgetaryAllowance(gross)
}

func EPF8(gross float64) float64 {
	return gross * EmployeeEPFRate
}

func EPF12(gross float64) float64 {
	return gross * EmployerEPFRate
}

func EPF20(gross float64) float64 {
	return EPF8(gross) + EPF12(gross)
}

func ETF3(gross float64) float64 {
	return gross * EmployerETFRate
}

func NetPay(gross float64) float64 {
	return gross - EPF8(gross)
}

// Derive computes all figures. A missing gross yields zero for every figure
// and ok=false so callers can note the degraded field.
func Derive(gross *float64) (Figures, bool) {
	if gross == nil || math.IsNaN(*gross) || math.IsInf(*gross, 0) {
		return Figures{}, false
	}
	value := *gross
	return Figures{
		Gross:              value,
		BudgetaryAllowance: BudgetaryAllowance(value),
		BasicSalary:        BasicSalary(value),
		EPF8:               EPF8(value),
		EPF12:              EPF12(value),
		EPF20:              EPF20(value),
		ETF3:               ETF3(value),
		NetPay:             NetPay(value),
	}, true
}
