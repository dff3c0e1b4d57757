package validator

import (
	"errors"
	"regexp"
	"strings"
)

var (
	emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)
	phonePattern = regexp.MustCompile(`^\+?[1-9]\d{0,15}$`)
	codePattern  = regexp.MustCompile(`^\d{6}$`)
)

var (
	ErrInvalidEmail = errors.New("Please enter a valid email")
	ErrInvalidPhone = errors.New("Please enter a valid phone number")
)

func IsEmail(email string) bool {
	return emailPattern.MatchString(strings.ToLower(strings.TrimSpace(email)))
}

func IsPhone(phone string) bool {
	return phonePattern.MatchString(strings.TrimSpace(phone))
}

// IsGuestCode reports whether code is exactly six ASCII digits.
func IsGuestCode(code string) bool {
	return codePattern.MatchString(code)
}

// ValidateContact checks an email (when present) and a phone number.
func ValidateContact(email, phone string) error {
	if email != "" && !IsEmail(email) {
		return ErrInvalidEmail
	}
	if !IsPhone(phone) {
		return ErrInvalidPhone
	}
	return nil
}

// InRange reports whether minutes lies within [min, max].
func InRange(minutes, min, max int) bool {
	return minutes >= min && minutes <= max
}
