package services

import (
	apperrors "accountsvc/internal/errors"
	"accountsvc/internal/password"
)

// minPasswordLength is the minimum accepted password length.
const minPasswordLength = 12

// breachedPasswords is the fixed known-breached set. Matching is exact and
// case-sensitive.
var breachedPasswords = map[string]bool{
	"PasswordForJanuary":   true,
	"PasswordForFebruary":  true,
	"PasswordForMarch":     true,
	"PasswordForApril":     true,
	"PasswordForMay":       true,
	"PasswordForJune":      true,
	"PasswordForJuly":      true,
	"PasswordForAugust":    true,
	"PasswordForSeptember": true,
	"PasswordForOctober":   true,
	"PasswordForNovember":  true,
	"PasswordForDecember":  true,
}

// PasswordPolicy is a stateless evaluator of password rules. All checks are
// pure and run before any persistence.
type PasswordPolicy struct {
	hasher password.Hasher
}

// NewPasswordPolicy creates a PasswordPolicy using the given hasher for
// reuse checks.
func NewPasswordPolicy(hasher password.Hasher) *PasswordPolicy {
	return &PasswordPolicy{hasher: hasher}
}

// ValidateStrength rejects passwords shorter than twelve characters or
// present in the breached set.
func (p *PasswordPolicy) ValidateStrength(plain string) error {
	if len(plain) < minPasswordLength {
		return apperrors.ErrWeakPassword
	}
	if breachedPasswords[plain] {
		return apperrors.WithMessage(apperrors.ErrWeakPassword, "The password is in the hacker's database!")
	}
	return nil
}

// ValidateDistinct rejects a new password that verifies against the old
// stored hash.
func (p *PasswordPolicy) ValidateDistinct(newPlain, oldHash string) error {
	if p.hasher.Verify(newPlain, oldHash) {
		return apperrors.ErrPasswordReuse
	}
	return nil
}
