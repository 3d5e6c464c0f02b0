package validator

import (
	"errors"
	"regexp"
	"unicode/utf8"

	"storefront/internal/domain/model"
)

var (
	ErrNameRequired    = errors.New("name is required")
	ErrAddressRequired = errors.New("address is required")
	ErrInvalidEmail    = errors.New("email is not valid")
	ErrFieldTooLong    = errors.New("field is too long")
	ErrInvalidPhone    = errors.New("phone number is not valid")
)

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe = regexp.MustCompile(`^\+?[0-9 ()-]{6,30}$`)
)

// ValidateShipping checks already-trimmed shipping details. Email may be empty
// when the caller falls back to the account email.
func ValidateShipping(s model.ShippingDetails) error {
	if s.Name == "" {
		return ErrNameRequired
	}
	if s.Address == "" {
		return ErrAddressRequired
	}
	if s.Email != "" && !IsEmailLike(s.Email) {
		return ErrInvalidEmail
	}
	if s.PhoneNumber != "" && !phoneRe.MatchString(s.PhoneNumber) {
		return ErrInvalidPhone
	}

	// column widths
	for _, f := range []struct {
		v   string
		max int
	}{
		{s.Name, 255}, {s.Email, 255}, {s.Address, 255}, {s.City, 255},
		{s.State, 100}, {s.PostalCode, 20},
	} {
		if utf8.RuneCountInString(f.v) > f.max {
			return ErrFieldTooLong
		}
	}
	return nil
}

func IsEmailLike(s string) bool {
	return emailRe.MatchString(s)
}
