package auth

import (
	"fmt"
	"time"
)

// DateLayout is the DDMMYYYY encoding used for dates of birth and Student/Parent secrets.
const DateLayout = "DDMMYYYY"

// IsValidDate reports whether s is exactly eight digits forming a real DDMMYYYY calendar date.
func IsValidDate(s string) bool {
	if len(s) != 8 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}

	day := atoi(s[0:2])
	month := atoi(s[2:4])
	year := atoi(s[4:8])
	if year < 100 {
		return false
	}

	// time.Date normalises overflow (31/04 becomes 01/05), so a round trip exposes impossible dates.
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return t.Day() == day && int(t.Month()) == month && t.Year() == year
}

func atoi(digits string) int {
	n := 0
	for i := 0; i < len(digits); i++ {
		n = n*10 + int(digits[i]-'0')
	}
	return n
}

// ValidationError reports a date-of-birth field that failed the DDMMYYYY check.
type ValidationError struct {
	Field string
	Value string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s is not a valid date in %s format", e.Field, e.Value, DateLayout)
}
