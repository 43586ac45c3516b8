// Copyright (c) 2026 Agora. All rights reserved.
// Author: bao.nguyen.dn@gmail.com

// Package validate provides a chainable Validator that collects field-level
// errors before returning a single [apperr.AppError].
//
// # Architecture
//
// Handlers run these rules on decoded request payloads at the HTTP boundary,
// so the service layer only ever operates on semantically valid data.
//
// All rules are pure and total: malformed or empty input never panics, it
// simply records a field error.
package validate

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/baonguyen/agora/internal/platform/apperr"
)

const (
	// UsernameMinLen and UsernameMaxLen bound the accepted username length.
	UsernameMinLen = 3
	UsernameMaxLen = 30

	// PasswordMinLen is the minimum accepted password length.
	PasswordMinLen = 8

	// passwordSymbols is the punctuation set accepted as the "symbol"
	// character class for password strength.
	passwordSymbols = "!@#$%^&*()-_=+[]{};:'\",.<>/?\\|`~"
)

var (
	// usernameRegex matches usernames: ASCII letters, digits, underscores.
	usernameRegex = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	// slugRegex matches slug format: lowercase letters, digits, hyphens.
	slugRegex = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	// uuidRegex matches a UUIDv4 or UUIDv7 string.
	uuidRegex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

	// ErrInvalidJSON is returned when the request body cannot be decoded.
	ErrInvalidJSON = apperr.ValidationError("Invalid JSON payload")
)

// Validator collects field-level validation errors via a fluent, chainable API.
//
// # Concurrency
//
// Validator is not safe for concurrent use. A new instance must be created
// for every request/operation.
type Validator struct {
	errs []apperr.FieldError
}

// Required fails if the trimmed value is empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.add(field, "This field is required")
	}
	return v
}

// MaxLen fails if the Unicode character count exceeds max.
func (v *Validator) MaxLen(field, value string, max int) *Validator {
	if utf8.RuneCountInString(value) > max {
		v.add(field, fmt.Sprintf("Maximum %d characters", max))
	}
	return v
}

// MinLen fails if the Unicode character count is below min.
func (v *Validator) MinLen(field, value string, min int) *Validator {
	if utf8.RuneCountInString(value) < min {
		v.add(field, fmt.Sprintf("Minimum %d characters", min))
	}
	return v
}

// Range fails if the value is outside the [min, max] range (inclusive).
func (v *Validator) Range(field string, value, min, max int) *Validator {
	if value < min || value > max {
		v.add(field, fmt.Sprintf("Must be between %d and %d", min, max))
	}
	return v
}

// Username fails unless the value is 3-30 characters consisting solely of
// ASCII letters, digits, and underscores.
func (v *Validator) Username(field, value string) *Validator {
	length := len(value)
	if length < UsernameMinLen || length > UsernameMaxLen || !usernameRegex.MatchString(value) {
		v.add(field, fmt.Sprintf(
			"Must be %d-%d characters of letters, digits, or underscores",
			UsernameMinLen, UsernameMaxLen,
		))
	}
	return v
}

// Email fails if the value is not a valid RFC 5322 address whose domain
// contains at least one dot.
func (v *Validator) Email(field, value string) *Validator {
	address, err := mail.ParseAddress(value)

	// The parsed address must be the bare addr-spec — display names such as
	// "Alice <alice@example.com>" are not acceptable account identifiers.
	if err != nil || address.Address != value {
		v.add(field, "Must be a valid email address")
		return v
	}

	atIndex := strings.LastIndex(value, "@")
	if atIndex < 0 || !strings.Contains(value[atIndex+1:], ".") {
		v.add(field, "Must be a valid email address")
	}
	return v
}

// StrongPassword fails unless the value is at least 8 characters and contains
// one uppercase letter, one lowercase letter, one digit, and one symbol.
//
// # Failure Message
//
// The recorded message enumerates every missing requirement so API clients
// can present actionable feedback instead of a generic "weak password".
func (v *Validator) StrongPassword(field, value string) *Validator {
	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range value {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(passwordSymbols, r):
			hasSymbol = true
		}
	}

	var missing []string
	if utf8.RuneCountInString(value) < PasswordMinLen {
		missing = append(missing, fmt.Sprintf("at least %d characters", PasswordMinLen))
	}
	if !hasUpper {
		missing = append(missing, "an uppercase letter")
	}
	if !hasLower {
		missing = append(missing, "a lowercase letter")
	}
	if !hasDigit {
		missing = append(missing, "a digit")
	}
	if !hasSymbol {
		missing = append(missing, "a symbol")
	}

	if len(missing) > 0 {
		v.add(field, "Password must contain "+strings.Join(missing, ", "))
	}
	return v
}

// Slug fails if the value is not a valid URL slug.
//
// # Format
//
// Slugs must consist only of lowercase letters, digits, and hyphens,
// with no leading or trailing hyphens.
func (v *Validator) Slug(field, value string) *Validator {
	if !slugRegex.MatchString(value) {
		v.add(field, "Must be a valid URL slug (lowercase letters, digits, hyphens only)")
	}
	return v
}

// UUID fails if the value is not a valid UUID string (case-insensitive).
func (v *Validator) UUID(field, value string) *Validator {
	lower := strings.ToLower(value)
	if !uuidRegex.MatchString(lower) {
		v.add(field, "Must be a valid UUID")
	}
	return v
}

// OneOf fails if the value is not in the allowed set of strings.
func (v *Validator) OneOf(field, value string, allowed ...string) *Validator {
	for _, a := range allowed {
		if value == a {
			return v
		}
	}
	v.add(field, fmt.Sprintf("Must be one of: %s", strings.Join(allowed, ", ")))
	return v
}

// Custom adds a failure with a custom message if the condition is true.
//
// # Example
//
//	v.Custom("score", score < 1 || score > 10, "Must be between 1 and 10")
func (v *Validator) Custom(field string, failed bool, message string) *Validator {
	if failed {
		v.add(field, message)
	}
	return v
}

// Err returns a [apperr.AppError] (VALIDATION_ERROR) if any rules failed,
// or nil if all rules passed.
//
// This is the only output method — call it at the end of the chain.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return apperr.ValidationError("Validation failed", v.errs...)
}

// HasErrors reports whether any validation rule has failed so far.
func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

// add appends a [apperr.FieldError] to the internal slice.
func (v *Validator) add(field, message string) {
	v.errs = append(v.errs, apperr.FieldError{Field: field, Message: message})
}

// RequiredError is a shortcut to create a single-field validation error.
func RequiredError(field, message string) *apperr.AppError {
	return apperr.ValidationError("Validation failed", apperr.FieldError{
		Field:   field,
		Message: message,
	})
}
