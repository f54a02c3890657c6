package validator

import (
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
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

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Numeric validation
var numericRegex = regexp.MustCompile(`^[0-9]+$`)

func IsNumeric(s string) bool {
	return numericRegex.MatchString(s)
}

const (
	MinUsernameLength = 3
	MinPasswordLength = 8
)

// IsValidUsernameLength reports whether a chat username is long enough.
func IsValidUsernameLength(username string) bool {
	return utf8.RuneCountInString(username) >= MinUsernameLength
}

// PasswordProblem describes why a password is rejected.
type PasswordProblem int

const (
	PasswordOK PasswordProblem = iota
	PasswordTooShort
	PasswordMissingDigit
)

// CheckPassword applies the signup password policy: 8+ characters with at
// least one digit. Length is checked first.
func CheckPassword(password string) PasswordProblem {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return PasswordTooShort
	}
	for _, r := range password {
		if unicode.IsDigit(r) {
			return PasswordOK
		}
	}
	return PasswordMissingDigit
}

// Loose phone check: optional leading +, then 10-15 digits, spaces or hyphens.
var phoneRegex = regexp.MustCompile(`^\+?[\d\s-]{10,15}$`)

func IsValidPhoneNumber(phone string) bool {
	return phoneRegex.MatchString(phone)
}

// DateLayout is the day-first format used in chat commands.
const DateLayout = "02-01-2006"

var chatDateRegex = regexp.MustCompile(`\d{2}-\d{2}-\d{4}`)

// ExtractDates returns every DD-MM-YYYY token in s, in order of appearance.
// Tokens are matched by shape only; use ParseDate to reject impossible dates.
func ExtractDates(s string) []string {
	return chatDateRegex.FindAllString(s, -1)
}

// ParseDate parses a DD-MM-YYYY string into a UTC date.
func ParseDate(dateStr string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(dateStr))
}

// FormatDate renders a date as DD-MM-YYYY.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
