package validation

import (
	"errors"
	"regexp"
	"strings"
)

// identityNumberPattern is the fixed IIN format: four dash-separated groups of
// four alphanumeric characters, uppercase.
var identityNumberPattern = regexp.MustCompile(`^[A-Z0-9]{4}-[A-Z0-9]{4}-[A-Z0-9]{4}-[A-Z0-9]{4}$`)

// IdentityNumberValidator validates end-user identity numbers (IINs)
type IdentityNumberValidator struct{}

// NewIdentityNumberValidator creates a new IdentityNumberValidator
func NewIdentityNumberValidator() *IdentityNumberValidator {
	return &IdentityNumberValidator{}
}

// Normalize trims surrounding whitespace and uppercases the candidate.
// Validation always runs on the normalized form.
func (v *IdentityNumberValidator) Normalize(candidate string) string {
	return strings.ToUpper(strings.TrimSpace(candidate))
}

// Validate checks the candidate against the IIN pattern after normalization
func (v *IdentityNumberValidator) Validate(candidate string) error {
	normalized := v.Normalize(candidate)

	if normalized == "" {
		return errors.New("identity number cannot be empty")
	}

	if !identityNumberPattern.MatchString(normalized) {
		return errors.New("identity number must match the format XXXX-XXXX-XXXX-XXXX")
	}

	return nil
}

// IsValid reports whether the candidate is a well-formed IIN
func (v *IdentityNumberValidator) IsValid(candidate string) bool {
	return v.Validate(candidate) == nil
}
