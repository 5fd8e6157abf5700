package validation

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"time"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Error lets services return violations as an error; handlers recover them with errors.As.
func (v Violations) Error() string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + v[k]
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe = regexp.MustCompile(`^(\+57)?3\d{9}$`)
	nitRe   = regexp.MustCompile(`^\d{9,10}$`)
)

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func PositiveFloat(field string, val float64, v Violations) {
	if val <= 0 {
		v[field] = "must_be_positive"
	}
}

func RangeFloat(field string, val, minVal, maxVal float64, v Violations) {
	if val < minVal || val > maxVal {
		v[field] = "out_of_range"
	}
}

// OneOf flags values outside the allowed set. Empty values are left to Required.
func OneOf(field, value string, allowed []string, v Violations) {
	if value == "" {
		return
	}
	for _, a := range allowed {
		if a == value {
			return
		}
	}
	v[field] = "invalid_choice"
}

// IsNIT accepts a Colombian tax id of 9 or 10 digits, ignoring dots, dashes and spaces.
func IsNIT(nit string) bool {
	clean := strings.NewReplacer(".", "", "-", "", " ", "").Replace(nit)
	return nitRe.MatchString(clean)
}

func IsEmail(email string) bool { return emailRe.MatchString(strings.TrimSpace(email)) }

// IsPhone accepts a Colombian mobile number with optional +57 prefix.
func IsPhone(phone string) bool {
	clean := strings.NewReplacer(" ", "", "-", "").Replace(phone)
	return phoneRe.MatchString(clean)
}

// IsPrice accepts finite non-negative amounts.
func IsPrice(p float64) bool {
	return p >= 0 && !math.IsInf(p, 0) && !math.IsNaN(p)
}

func NIT(field, value string, v Violations) {
	if value != "" && !IsNIT(value) {
		v[field] = "invalid_nit"
	}
}

// Email and Phone only check non-empty values.
func Email(field, value string, v Violations) {
	if value != "" && !IsEmail(value) {
		v[field] = "invalid_email"
	}
}

func Phone(field, value string, v Violations) {
	if value != "" && !IsPhone(value) {
		v[field] = "invalid_phone"
	}
}

func Price(field string, val float64, v Violations) {
	if !IsPrice(val) {
		v[field] = "invalid_price"
	}
}

// DateRange flags end before start. Missing dates are not checked.
func DateRange(field string, start, end *time.Time, v Violations) {
	if start != nil && end != nil && end.Before(*start) {
		v[field] = "end_before_start"
	}
}
