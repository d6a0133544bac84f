// Package validate checks customer-entered contact details.
package validate

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aretw0/bakecake/pkg/domain"
)

var validate = validator.New()

// Phone normalizes a customer-entered phone number and validates it as E.164.
// Domestic numbers written with a leading 8 are rewritten to +7, matching how
// customers of the bakery actually type them. Returns the normalized number
// or a domain.ValidationError.
func Phone(raw string) (string, error) {
	number := normalize(raw)

	// 8 XXX XXX-XX-XX is the domestic form of +7 XXX XXX-XX-XX.
	if len(number) == 11 && strings.HasPrefix(number, "8") {
		number = "+7" + number[1:]
	}

	if err := validate.Var(number, "required,e164"); err != nil {
		return "", &domain.ValidationError{
			Field:   "phone",
			Message: "expected an international number like +79161234567",
		}
	}
	return number, nil
}

// Address trims and validates a delivery address. Free text, no format
// checks beyond non-emptiness.
func Address(raw string) (string, error) {
	address := strings.TrimSpace(raw)
	if address == "" {
		return "", &domain.ValidationError{
			Field:   "address",
			Message: "address must not be empty",
		}
	}
	return address, nil
}

// normalize strips the punctuation people put into phone numbers.
func normalize(raw string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && b.Len() == 0:
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '(' || r == ')':
			// separators are dropped
		default:
			// Keep anything else so validation fails loudly instead of
			// silently accepting garbage like "abc".
			b.WriteRune(r)
		}
	}
	return b.String()
}
