package validation

import (
	"strconv"
	"strings"
	"time"
)

// NationalID is a parsed Czech/Slovak birth number
type NationalID struct {
	// Normalized is the canonical "YYMMDD/XXXX" form
	Normalized string
	BirthDate  time.Time
	Female     bool
}

// ParseNationalID checks the format, embedded birth date and checksum of a
// birth number as of today. Only the local rules are checked here; the
// registry lookup happens separately.
//
// Month offsets: +50 for women, +20 (+70) for the extended series. A 3 digit
// suffix is only issued before 1954 and carries no checksum. A 4 digit
// number must be divisible by 11, except that when the first nine digits
// leave remainder 10 the check digit is 0.
func ParseNationalID(raw string, today time.Time) (NationalID, error) {
	value := strings.ReplaceAll(strings.TrimSpace(raw), " ", "")
	if value == "" {
		return NationalID{}, ValidationError{Field: "national_id", Message: "is required"}
	}

	m := nationalIDRegex.FindStringSubmatch(value)
	if m == nil {
		return NationalID{}, ValidationError{Field: "national_id", Message: "must be in the format 123456/7890"}
	}
	base, ext := m[1], m[2]

	yy, _ := strconv.Atoi(base[0:2])
	month, _ := strconv.Atoi(base[2:4])
	day, _ := strconv.Atoi(base[4:6])

	female := false
	switch {
	case month > 70:
		month -= 70
		female = true
	case month > 50:
		month -= 50
		female = true
	case month > 20:
		month -= 20
	}
	if month < 1 || month > 12 {
		return NationalID{}, ValidationError{Field: "national_id", Message: "contains an invalid month"}
	}

	var year int
	if len(ext) == 3 {
		year = 1900 + yy
	} else {
		if yy <= today.Year()%100 {
			year = 2000 + yy
		} else {
			year = 1900 + yy
		}
		first9, _ := strconv.ParseInt(base+ext[:3], 10, 64)
		check := int64(ext[3] - '0')
		if first9%11%10 != check {
			return NationalID{}, ValidationError{Field: "national_id", Message: "failed the checksum"}
		}
	}

	born := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if born.Year() != year || int(born.Month()) != month || born.Day() != day {
		return NationalID{}, ValidationError{Field: "national_id", Message: "contains an invalid date"}
	}
	y, mo, d := today.Date()
	if born.After(time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)) {
		return NationalID{}, ValidationError{Field: "national_id", Message: "contains a date in the future"}
	}

	return NationalID{
		Normalized: base + "/" + ext,
		BirthDate:  born,
		Female:     female,
	}, nil
}
