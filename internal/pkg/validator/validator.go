package validator

import (
	"fmt"
	"regexp"
	"strings"
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

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Email validation
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// ValidateEmailDomain checks the format of email and, when domain is not
// empty, that it belongs to domain (e.g. "@example.com"). It returns an empty
// message when the address is acceptable.
func ValidateEmailDomain(email, domain string) string {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return "Email address is required"
	}
	if !IsValidEmail(trimmed) {
		return "Invalid email format"
	}
	if domain == "" {
		return ""
	}
	if !strings.HasSuffix(strings.ToLower(trimmed), strings.ToLower(domain)) {
		return fmt.Sprintf("Email must be from %s domain", domain)
	}
	return ""
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
