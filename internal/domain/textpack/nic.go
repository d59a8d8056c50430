package textpack

import (
	"strconv"
	"strings"
	"time"
)

const (
	SexMale   = "Male"
	SexFemale = "Female"

	legacyIDLength  = 10
	currentIDLength = 12
	femaleDayOffset = 500
)

// Biographic facts encoded in a national identity number. All fields are
// empty when the number cannot be decoded.
type Biographic struct {
	BirthDate string
	Age       string
	Sex       string
}

// DeriveFromNationalID decodes the birth year and day-of-year ordinal from a
// 10 character legacy or 12 digit current identity number. Age is computed
// as of now.
func DeriveFromNationalID(id string, now time.Time) Biographic {
	id = strings.TrimSpace(id)

	var yearText, dayText string
	switch len(id) {
	case legacyIDLength:
		yearText, dayText = "19"+id[0:2], id[2:5]
	case currentIDLength:
		yearText, dayText = id[0:4], id[4:7]
	default:
		return Biographic{}
	}

	year, err := strconv.Atoi(yearText)
	if err != nil {
		return Biographic{}
	}
	day, err := strconv.Atoi(dayText)
	if err != nil || day <= 0 {
		return Biographic{}
	}

	sex := SexMale
	if day > femaleDayOffset {
		sex = SexFemale
		day -= femaleDayOffset
	}

	birth := time.Date(year, time.January, day, 0, 0, 0, 0, time.UTC)

	age := now.Year() - year
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}

	return Biographic{
		BirthDate: birth.Format("02/01/2006"),
		Age:       strconv.Itoa(age),
		Sex:       sex,
	}
}
