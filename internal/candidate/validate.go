package candidate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// MaxYearsExperience is the inclusive upper bound accepted for experience.
const MaxYearsExperience = 50

const minPhoneDigits = 10

var (
	emailRe      = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	phoneCharsRe = regexp.MustCompile(`^[0-9+()\s.\-]+$`)
	digitsRe     = regexp.MustCompile(`[0-9]`)
)

// ValidationError describes a field value rejected by format or range rules.
type ValidationError struct {
	Field  Field
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %q: %s", e.Field, e.Value, e.Reason)
}

func invalid(f Field, value, reason string) error {
	return &ValidationError{Field: f, Value: value, Reason: reason}
}

// Validate normalizes a raw value for the given scalar field, or rejects it.
// Values are never coerced into range: an out-of-bounds or malformed value is
// an error the caller decides how to handle.
func Validate(f Field, raw string) (string, error) {
	switch f {
	case FieldEmail:
		return ValidateEmail(raw)
	case FieldPhone:
		return ValidatePhone(raw)
	case FieldYearsExperience:
		years, err := ValidateYears(raw)
		if err != nil {
			return "", err
		}
		return strconv.Itoa(years), nil
	case FieldFullName, FieldDesiredPositions, FieldCurrentLocation, FieldTechStack:
		value := strings.TrimSpace(raw)
		if value == "" {
			return "", invalid(f, raw, "empty value")
		}
		return value, nil
	}
	return "", invalid(f, raw, "unknown field")
}

// ValidateEmail accepts local@domain.tld shapes only.
func ValidateEmail(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if !emailRe.MatchString(value) {
		return "", invalid(FieldEmail, raw, "not a valid email address")
	}
	return value, nil
}

// ValidatePhone accepts digits plus +, spaces, hyphens and parentheses, with
// at least 10 digits overall.
func ValidatePhone(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if value == "" || !phoneCharsRe.MatchString(value) {
		return "", invalid(FieldPhone, raw, "contains non-phone characters")
	}
	if len(digitsRe.FindAllString(value, -1)) < minPhoneDigits {
		return "", invalid(FieldPhone, raw, fmt.Sprintf("fewer than %d digits", minPhoneDigits))
	}
	return value, nil
}

// ValidateYears parses an integer in [0, MaxYearsExperience].
func ValidateYears(raw string) (int, error) {
	value := strings.TrimSpace(raw)
	years, err := strconv.Atoi(value)
	if err != nil {
		return 0, invalid(FieldYearsExperience, raw, "not an integer")
	}
	if years < 0 || years > MaxYearsExperience {
		return 0, invalid(FieldYearsExperience, raw, fmt.Sprintf("outside [0, %d]", MaxYearsExperience))
	}
	return years, nil
}

// ValidateYearsValue checks an already-parsed integer against the range rule.
func ValidateYearsValue(years int) (int, error) {
	if years < 0 || years > MaxYearsExperience {
		return 0, invalid(FieldYearsExperience, strconv.Itoa(years), fmt.Sprintf("outside [0, %d]", MaxYearsExperience))
	}
	return years, nil
}
