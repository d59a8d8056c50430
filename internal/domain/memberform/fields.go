package memberform

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"payrolldocs/internal/domain/textpack"
)

// MaxNominations is the number of nominee rows on the form.
const MaxNominations = 5

// Widths, in characters, of the first line of each two-line form region.
var maxLength = map[string]int{
	"fullNamePart1":                      45,
	"fullNamePart2":                      50,
	"fullNamePart3":                      50,
	"otherNamesPart1":                    45,
	"otherNamesPart2":                    50,
	"addressPart2":                       50,
	"spouseNamePart1":                    40,
	"motherNamePart1":                    40,
	"nameAndBirthPlaceFatherPart1":       40,
	"nameAndBirthPlaceFatherFatherPart1": 40,
	"nameAndBirthPlaceMotherFatherPart1": 40,
	"lastEmployerNameAddressPart1":       45,
	"witnessPositionAndAddressPart3":     45,
}

func splitInto(fields map[string]string, region, text string) {
	first, rest := textpack.SplitAtWordBoundary(text, maxLength[region])
	fields[region+"_1"] = first
	fields[region+"_2"] = rest
}

func slashDate(date string) string {
	return strings.ReplaceAll(date, "-", "/")
}

func Validate(req Request) error {
	if strings.TrimSpace(req.FullName) == "" {
		return ErrFullNameRequired
	}
	if strings.TrimSpace(req.NIC) == "" {
		return ErrNICRequired
	}
	if len(req.Nominations) > MaxNominations {
		return fmt.Errorf("%w: %d given, %d allowed", ErrTooManyNominations, len(req.Nominations), MaxNominations)
	}
	return nil
}

// Fields maps a request onto the form's field names. Ages are computed as
// of now.
func Fields(req Request, now time.Time) (map[string]string, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	epfNo := ""
	if req.EPFNo != 0 {
		epfNo = strconv.Itoa(req.EPFNo)
	}
	member := textpack.DeriveFromNationalID(req.NIC, now)
	date := slashDate(req.Date)

	fields := map[string]string{
		"employerNoPart1":      req.EmployerNo,
		"employerNoPart2":      req.EmployerNo,
		"employerNoPart3":      req.EmployerNo,
		"epfNoPart1":           epfNo,
		"epfNoPart2":           epfNo,
		"epfNoPart3":           epfNo,
		"addressPart1":         req.Address,
		"nationalityPart1":     req.Nationality,
		"sexPart1":             member.Sex,
		"agePart1":             member.Age,
		"birthDayPart1":        member.BirthDate,
		"placeOfBirthPart1":    req.PlaceOfBirth,
		"marriedOrSinglePart1": req.MarriedOrSingle,
		"nicPart1":             req.NIC,
		"nicPart2":             req.NIC,
		"lastEmployment":       req.LastEmployment,
		"lastEmploymentPeriod": req.LastEmploymentPeriod,

		"employerAndAddressPart2": textpack.CombineFields(req.Employer, req.EmployerAddress),
		"employmentPart2":         req.Employment,
		"employedDatePart2":       slashDate(req.EmployedDate),
		"grossSalaryPart2":        "Rs. " + req.GrossSalary,
		"datePart2":               date,

		"datePart3_1":        date,
		"datePart3_2":        req.Date,
		"namePart3":          textpack.InitialsForm(req.FullName),
		"witnessNamePart3_1": req.WitnessName,
		"witnessNamePart3_2": req.WitnessName,
	}

	splitInto(fields, "fullNamePart1", req.FullName)
	splitInto(fields, "fullNamePart2", req.FullName)
	splitInto(fields, "fullNamePart3", req.FullName)
	splitInto(fields, "otherNamesPart1", req.OtherNames)
	splitInto(fields, "otherNamesPart2", req.OtherNames)
	splitInto(fields, "addressPart2", req.Address)
	splitInto(fields, "spouseNamePart1", req.SpouseName)
	splitInto(fields, "motherNamePart1", req.MotherName)
	splitInto(fields, "nameAndBirthPlaceFatherPart1", textpack.CombineFields(req.FatherName, req.FatherBirthPlace))
	splitInto(fields, "nameAndBirthPlaceFatherFatherPart1", textpack.CombineFields(req.FatherFatherName, req.FatherFatherBirthPlace))
	splitInto(fields, "nameAndBirthPlaceMotherFatherPart1", textpack.CombineFields(req.MotherFatherName, req.MotherFatherBirthPlace))
	splitInto(fields, "lastEmployerNameAddressPart1", textpack.CombineFields(req.LastEmployerName, req.LastEmployerAddress))
	splitInto(fields, "witnessPositionAndAddressPart3", textpack.CombineFields(req.WitnessPosition, req.WitnessAddress))

	for i, n := range req.Nominations {
		prefix := fmt.Sprintf("nominations%dPart2", i)
		share := strings.TrimSpace(n.Share)
		if share != "" {
			share += "%"
		}
		fields[prefix+"Name"] = n.Name
		fields[prefix+"Nic"] = n.NIC
		fields[prefix+"Age"] = textpack.DeriveFromNationalID(n.NIC, now).Age
		fields[prefix+"Relationship"] = n.Relationship
		fields[prefix+"Share"] = share
	}
	return fields, nil
}
