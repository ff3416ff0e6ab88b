package eligibility

import (
	"errors"
	"math"
	"regexp"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// ErrInvalidDateOfBirth is returned when a date of birth is missing,
// malformed, or not strictly in the past.
var ErrInvalidDateOfBirth = errors.New("invalid date of birth")

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ParseDate parses a YYYY-MM-DD calendar date at UTC midnight.
func ParseDate(value string) (time.Time, error) {
	if !datePattern.MatchString(value) {
		return time.Time{}, errors.New("date must be YYYY-MM-DD")
	}
	return time.Parse(DateLayout, value)
}

// IsValidPastDate reports whether value is a well formed date before now.
func IsValidPastDate(value string, now time.Time) bool {
	d, err := ParseDate(value)
	if err != nil {
		return false
	}
	return d.Before(now)
}

// Age returns the number of completed years between dob and now.
func Age(dob string, now time.Time) (int, error) {
	d, err := ParseDate(dob)
	if err != nil || !d.Before(now) {
		return 0, ErrInvalidDateOfBirth
	}
	return ageAt(d, now), nil
}

func ageAt(dob, now time.Time) int {
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	return age
}

// DaysUntil returns the whole days, rounded up, from now until the deadline's
// UTC midnight. Past deadlines give a negative count.
func DaysUntil(deadline string, now time.Time) (int, error) {
	d, err := ParseDate(deadline)
	if err != nil {
		return 0, err
	}
	return int(math.Ceil(d.Sub(now).Hours() / 24)), nil
}
