package projection

import (
	"strconv"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Placeholder is printed for money cells that are zero, absent or not numeric.
const Placeholder = "-"

var printer = message.NewPrinter(language.English)

// FormatCurrency renders two fraction digits with thousands separators.
func FormatCurrency(value float64) string {
	if value == 0 {
		return Placeholder
	}
	return printer.Sprintf("%.2f", value)
}

// PeriodDisplay turns "2024-03" into "March - 2024". Keys that do not parse
// are returned unchanged.
func PeriodDisplay(period string) string {
	t, err := time.Parse("2006-01", period)
	if err != nil {
		return period
	}
	return t.Month().String() + " - " + strconv.Itoa(t.Year())
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatRaw(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
