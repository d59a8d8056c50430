package textpack

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitAtWordBoundaryShortInput(t *testing.T) {
	first, rest := SplitAtWordBoundary("Colombo", 40)
	assert.Equal(t, "Colombo", first)
	assert.Empty(t, rest)

	first, rest = SplitAtWordBoundary("", 10)
	assert.Empty(t, first)
	assert.Empty(t, rest)
}

func TestSplitAtWordBoundaryBreaksBeforeOverflow(t *testing.T) {
	first, rest := SplitAtWordBoundary("Kankanamge Don Nuwan Pradeep Perera", 20)
	assert.Equal(t, "Kankanamge Don", first)
	assert.Equal(t, "Nuwan Pradeep Perera", rest)
}

func TestSplitAtWordBoundaryKeepsCommaOnWord(t *testing.T) {
	first, rest := SplitAtWordBoundary("No 12, Temple Road, Maharagama", 16)
	assert.Equal(t, "No 12, Temple", first)
	assert.Equal(t, "Road, Maharagama", rest)

	first, rest = SplitAtWordBoundary("12,Temple Road,Nugegoda", 12)
	assert.Equal(t, "12,Temple", first)
	assert.Equal(t, "Road,Nugegoda", rest)
}

func TestSplitAtWordBoundaryReconstructs(t *testing.T) {
	inputs := []string{
		"Wijesinghe Arachchige Don Sunil Kumara",
		"No 45/2,  Galle Road,Colombo 03, Western Province",
		"a b c d e f g h i j k l m n o p",
	}
	for _, input := range inputs {
		for limit := 5; limit <= 30; limit++ {
			first, rest := SplitAtWordBoundary(input, limit)
			rebuilt := strings.TrimSpace(first + " " + rest)
			require.Equal(t, normalize(input), normalize(rebuilt), "limit %d", limit)
			if first != "" {
				assert.LessOrEqual(t, utf8.RuneCountInString(first), limit, "limit %d", limit)
			}
		}
	}
}

func TestSplitAtWordBoundaryOversizedFirstToken(t *testing.T) {
	first, rest := SplitAtWordBoundary("Abeywickramasinghe Perera", 10)
	assert.Empty(t, first)
	assert.Equal(t, "Abeywickramasinghe Perera", rest)
}

func normalize(s string) string {
	s = strings.ReplaceAll(s, ",", ", ")
	return strings.Join(strings.Fields(s), " ")
}

func TestCombineFields(t *testing.T) {
	assert.Equal(t, "", CombineFields("", ""))
	assert.Equal(t, "A", CombineFields("A", ""))
	assert.Equal(t, "B", CombineFields("", "B"))
	assert.Equal(t, "A - B", CombineFields("A", "B"))
}

func TestInitialsForm(t *testing.T) {
	assert.Equal(t, "J. M. Silva", InitialsForm("John Michael Silva"))
	assert.Equal(t, "K. D. N. Perera", InitialsForm("  kankanamge don  nuwan Perera "))
	assert.Equal(t, "Silva", InitialsForm("Silva"))
	assert.Equal(t, "", InitialsForm(""))
}

func TestDeriveFromNationalIDCurrentFormat(t *testing.T) {
	now := time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC)

	bio := DeriveFromNationalID("199000100123", now)
	assert.Equal(t, "01/01/1990", bio.BirthDate)
	assert.Equal(t, SexMale, bio.Sex)
	assert.Equal(t, "36", bio.Age)

	bio = DeriveFromNationalID("199050100123", now)
	assert.Equal(t, "01/01/1990", bio.BirthDate)
	assert.Equal(t, SexFemale, bio.Sex)
}

func TestDeriveFromNationalIDLegacyFormat(t *testing.T) {
	now := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)

	// day 340 of 1985 is 6 December
	bio := DeriveFromNationalID("853400937V", now)
	assert.Equal(t, "06/12/1985", bio.BirthDate)
	assert.Equal(t, SexMale, bio.Sex)
	assert.Equal(t, "40", bio.Age)
}

func TestDeriveFromNationalIDAgeAfterBirthday(t *testing.T) {
	now := time.Date(2026, time.December, 6, 0, 0, 0, 0, time.UTC)
	bio := DeriveFromNationalID("853400937V", now)
	assert.Equal(t, "41", bio.Age)
}

func TestDeriveFromNationalIDInvalid(t *testing.T) {
	now := time.Now()
	assert.Equal(t, Biographic{}, DeriveFromNationalID("123456789", now))
	assert.Equal(t, Biographic{}, DeriveFromNationalID("", now))
	assert.Equal(t, Biographic{}, DeriveFromNationalID("ABCDEFGHIJ", now))
}
