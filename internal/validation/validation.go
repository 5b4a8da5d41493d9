package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	emailRegex      = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	nationalIDRegex = regexp.MustCompile(`^(\d{6})/?(\d{3,4})$`)
	passportRegex   = regexp.MustCompile(`^[A-Z0-9]{5,20}$`)
	postalCodeRegex = regexp.MustCompile(`^\d{5}$`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// Official forms of common Czech nicknames are required on registration
var commonDiminutives = map[string]bool{
	"honzík": true, "honza": true, "péťa": true, "peťa": true, "anička": true,
	"kája": true, "kájík": true, "míša": true, "dáda": true, "venca": true,
	"šťepa": true, "luky": true, "tomík": true, "tomášek": true, "maruška": true,
}

// ValidationError represents a validation error on a single field
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// ValidatePassword checks if a password meets requirements
func ValidatePassword(password string) error {
	if password == "" {
		return ValidationError{Field: "password", Message: "password is required"}
	}
	if len(password) < 8 {
		return ValidationError{Field: "password", Message: "password must be at least 8 characters"}
	}
	return nil
}

// NormalizeSpaces trims and collapses runs of whitespace
func NormalizeSpaces(s string) string {
	return whitespaceRegex.ReplaceAllString(strings.TrimSpace(s), " ")
}

// NormalizePersonName validates a first or last name and returns it with
// whitespace collapsed. Every part must start with a capital letter and
// nicknames are rejected.
func NormalizePersonName(field, name string) (string, error) {
	name = NormalizeSpaces(name)
	if name == "" {
		return "", ValidationError{Field: field, Message: "is required"}
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && r != ' ' && r != '-' && r != '\'' {
			return "", ValidationError{Field: field, Message: "contains invalid characters"}
		}
	}
	if len([]rune(name)) < 2 {
		return "", ValidationError{Field: field, Message: "is too short"}
	}
	for _, part := range strings.Split(name, " ") {
		first := []rune(part)[0]
		if !unicode.IsUpper(first) {
			return "", ValidationError{Field: field, Message: "must start with a capital letter"}
		}
		if commonDiminutives[strings.ToLower(part)] {
			return "", ValidationError{Field: field, Message: "looks like a nickname, use the official form"}
		}
	}
	return name, nil
}

// NormalizePhone returns a Czech phone number as 9 digits. The +420 / 00420
// prefix and common separators are stripped. An empty value is allowed when
// required is false.
func NormalizePhone(field, phone string, required bool) (string, error) {
	raw := strings.TrimSpace(phone)
	if raw == "" {
		if required {
			return "", ValidationError{Field: field, Message: "is required"}
		}
		return "", nil
	}

	normalized := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(raw)
	if strings.HasPrefix(normalized, "00") {
		normalized = "+" + normalized[2:]
	}
	switch {
	case strings.HasPrefix(normalized, "+420"):
		normalized = normalized[4:]
	case strings.HasPrefix(normalized, "420") && len(normalized) > 9:
		normalized = normalized[3:]
	}

	if _, err := strconv.ParseUint(normalized, 10, 64); err != nil {
		return "", ValidationError{Field: field, Message: "must contain digits only"}
	}
	if len(normalized) != 9 {
		return "", ValidationError{Field: field, Message: "must have 9 digits"}
	}
	return normalized, nil
}

// NormalizePostalCode returns a 5 digit postal code, accepting "252 10"
func NormalizePostalCode(code string) (string, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(code), " ", "")
	if normalized == "" {
		return "", ValidationError{Field: "postal_code", Message: "is required"}
	}
	if !postalCodeRegex.MatchString(normalized) {
		return "", ValidationError{Field: "postal_code", Message: "must have 5 digits"}
	}
	return normalized, nil
}

// NormalizeAddressLine validates a street or city value
func NormalizeAddressLine(field, value string, minLen int) (string, error) {
	value = NormalizeSpaces(value)
	if value == "" {
		return "", ValidationError{Field: field, Message: "is required"}
	}
	if len([]rune(value)) < minLen {
		return "", ValidationError{Field: field, Message: "is too short"}
	}
	for _, r := range value {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !strings.ContainsRune(" -'./,", r) {
			return "", ValidationError{Field: field, Message: "contains invalid characters"}
		}
	}
	return value, nil
}

// NormalizePassport upper-cases a passport number and checks its shape
func NormalizePassport(number string) (string, error) {
	normalized := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(number), " ", ""))
	if normalized == "" {
		return "", ValidationError{Field: "passport_number", Message: "is required"}
	}
	if !passportRegex.MatchString(normalized) {
		return "", ValidationError{Field: "passport_number", Message: "must be 5 to 20 letters or digits"}
	}
	return normalized, nil
}
