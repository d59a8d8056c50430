package company

import (
	"bytes"
	"encoding/json"
	"fmt"

	"payrolldocs/internal/domain/statutory"
)

// decodeAmount reads a money field written either as a JSON number or as
// formatted text such as "50,000.00". Text that is not a number decodes to
// nil so the figure is reported as missing rather than failing the import.
func decodeAmount(raw json.RawMessage) (*float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] == '"' {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return nil, err
		}
		value, ok := statutory.ParseGross(text)
		if !ok {
			return nil, nil
		}
		return &value, nil
	}
	var value float64
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, fmt.Errorf("amount %s: %w", raw, err)
	}
	return &value, nil
}

func decodeAmounts(fields map[string]json.RawMessage, targets map[string]**float64) error {
	for name, target := range targets {
		value, err := decodeAmount(fields[name])
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*target = value
	}
	return nil
}

func (e *Employee) UnmarshalJSON(data []byte) error {
	type plain Employee
	aux := struct {
		*plain
		GrossSalary json.RawMessage `json:"grossSalary"`
		Incentive   json.RawMessage `json:"incentive"`
	}{plain: (*plain)(e)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	return decodeAmounts(
		map[string]json.RawMessage{"grossSalary": aux.GrossSalary, "incentive": aux.Incentive},
		map[string]**float64{"grossSalary": &e.GrossSalary, "incentive": &e.Incentive},
	)
}

func (d *PeriodDetail) UnmarshalJSON(data []byte) error {
	type plain PeriodDetail
	aux := struct {
		*plain
		GrossSalary json.RawMessage `json:"grossSalary"`
		OT          json.RawMessage `json:"ot"`
		Allowances  json.RawMessage `json:"allowances"`
		Incentive   json.RawMessage `json:"incentive"`
		Deductions  json.RawMessage `json:"deductions"`
		MonthSalary json.RawMessage `json:"monthSalary"`
	}{plain: (*plain)(d)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	return decodeAmounts(
		map[string]json.RawMessage{
			"grossSalary": aux.GrossSalary,
			"ot":          aux.OT,
			"allowances":  aux.Allowances,
			"incentive":   aux.Incentive,
			"deductions":  aux.Deductions,
			"monthSalary": aux.MonthSalary,
		},
		map[string]**float64{
			"grossSalary": &d.GrossSalary,
			"ot":          &d.OT,
			"allowances":  &d.Allowances,
			"incentive":   &d.Incentive,
			"deductions":  &d.Deductions,
			"monthSalary": &d.MonthSalary,
		},
	)
}

func (p *PeriodPayment) UnmarshalJSON(data []byte) error {
	type plain PeriodPayment
	aux := struct {
		*plain
		EPFAmount json.RawMessage `json:"epfAmount"`
		ETFAmount json.RawMessage `json:"etfAmount"`
	}{plain: (*plain)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	return decodeAmounts(
		map[string]json.RawMessage{"epfAmount": aux.EPFAmount, "etfAmount": aux.ETFAmount},
		map[string]**float64{"epfAmount": &p.EPFAmount, "etfAmount": &p.ETFAmount},
	)
}
