package validator

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/attendly/attendly-backend-go/internal/pkg/civil"
	"github.com/shopspring/decimal"
)

type ValidationError struct {
	Field   string
	Message string
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var msgs []string
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string)
	for _, err := range v {
		result[err.Field] = err.Message
	}
	return result
}

// Add appends a field error.
func (v *ValidationErrors) Add(field, message string) {
	*v = append(*v, ValidationError{Field: field, Message: message})
}

// Err returns v as an error, or nil when nothing was recorded.
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Email validation
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// Numeric validation
var numericRegex = regexp.MustCompile(`^[0-9]+$`)

func IsNumeric(s string) bool {
	return numericRegex.MatchString(s)
}

// Date validation
func IsValidDate(dateStr string) (civil.Date, bool) {
	date, err := civil.ParseDate(dateStr)
	return date, err == nil
}

// Slice contains check
func IsInSlice(value string, slice []string) bool {
	for _, item := range slice {
		if item == value {
			return true
		}
	}
	return false
}

var employeeCodeRegex = regexp.MustCompile(`^EMP-[0-9A-F]{8}$`)

func IsValidEmployeeCode(code string) bool {
	return employeeCodeRegex.MatchString(code)
}

var registrationCodeRegex = regexp.MustCompile(`^[0-9A-F]{6}$`)

// IsValidRegistrationCode checks the shape of a code, not whether it exists.
func IsValidRegistrationCode(code string) bool {
	return registrationCodeRegex.MatchString(code)
}

// IsValidPeriod checks a payroll month/year pair.
func IsValidPeriod(month, year int) bool {
	return month >= 1 && month <= 12 && year >= 2000 && year <= 2100
}

// InRange reports whether min < d <= max.
func InRange(d, min, max decimal.Decimal) bool {
	return d.GreaterThan(min) && d.LessThanOrEqual(max)
}

// HasMaxPlaces reports whether d has at most places digits after the point.
func HasMaxPlaces(d decimal.Decimal, places int32) bool {
	return d.Equal(d.Truncate(places))
}

// Itoa converts an integer to a string.
func Itoa(i int) string {
	return strconv.Itoa(i)
}

// IsValidDateTime checks if a string is a valid ISO8601 timestamp.
// Accepts formats like: "2024-01-15T10:30:00Z" or "2024-01-15T10:30:00+07:00"
func IsValidDateTime(dateTimeStr string) (time.Time, bool) {
	// Try RFC3339 format (ISO8601 with timezone)
	t, err := time.Parse(time.RFC3339, dateTimeStr)
	if err == nil {
		return t, true
	}

	// Try RFC3339Nano format (with nanoseconds)
	t, err = time.Parse(time.RFC3339Nano, dateTimeStr)
	if err == nil {
		return t, true
	}

	return time.Time{}, false
}

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// ValidatePagination applies page/limit defaults and records out-of-range values.
func ValidatePagination(page, limit *int, errs *ValidationErrors) {
	if *page < 0 {
		errs.Add("page", "page must be a positive number")
	}
	if *page == 0 {
		*page = DefaultPage
	}

	if *limit < 0 {
		errs.Add("limit", "limit must be a positive number")
	}
	if *limit == 0 {
		*limit = DefaultLimit
	}
	if *limit > MaxLimit {
		errs.Add("limit", "limit must not exceed 100")
	}
}

// ValidateDateRange parses optional start/end dates and checks their order.
func ValidateDateRange(start, end *string, errs *ValidationErrors) (from, to *civil.Date) {
	if start != nil && *start != "" {
		if d, ok := IsValidDate(*start); ok {
			from = &d
		} else {
			errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
		}
	}
	if end != nil && *end != "" {
		if d, ok := IsValidDate(*end); ok {
			to = &d
		} else {
			errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
		}
	}
	if from != nil && to != nil && to.Before(*from) {
		errs.Add("end_date", "end_date must not be before start_date")
	}
	return from, to
}
