package auth

import (
	"regexp"
	"unicode/utf8"
)

// emailPattern is the basic local@domain.tld shape.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateLogin checks the login form before any network call. Returns a
// user-facing message, or "" when the form may be submitted.
func ValidateLogin(in LoginInput) string {
	if in.Email == "" || in.Password == "" {
		return msgRequiredFields
	}
	if !emailPattern.MatchString(in.Email) {
		return msgInvalidEmail
	}
	return ""
}

// ValidateRegister checks the registration form before any network call.
// Checks run in the same order the form shows them.
func ValidateRegister(in RegisterInput) string {
	if in.Email == "" || in.Password == "" {
		return msgRequiredFields
	}
	if in.Name == "" {
		return msgNameRequired
	}
	if utf8.RuneCountInString(in.Password) < minPasswordLength {
		return msgPasswordTooShort
	}
	if in.Password != in.Confirm {
		return msgPasswordMismatch
	}
	if !emailPattern.MatchString(in.Email) {
		return msgInvalidEmail
	}
	return ""
}
