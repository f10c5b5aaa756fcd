// backend/src/security/validation/field_validator.go
package validation

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

var ErrValidationFailed = fmt.Errorf("validation failed")

const (
	MaxDescriptionLength = 255
	MaxNameLength        = 100
	MinCreditScore       = 300
	MaxCreditScore       = 850
)

var accountTypes = map[string]bool{
	"checking":   true,
	"savings":    true,
	"credit":     true,
	"investment": true,
}

var goalTypes = map[string]bool{
	"emergency":  true,
	"house":      true,
	"retirement": true,
	"vacation":   true,
	"education":  true,
	"other":      true,
}

// ValidateStringNotEmpty checks if a string is not empty after trimming.
func ValidateStringNotEmpty(s, fieldName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s cannot be empty", ErrValidationFailed, fieldName)
	}
	return nil
}

// ValidateStringMaxLength checks if a string's UTF-8 character count is within max bounds.
func ValidateStringMaxLength(s string, maxLength int, fieldName string) error {
	if utf8.RuneCountInString(s) > maxLength {
		return fmt.Errorf("%w: %s exceeds maximum length of %d characters", ErrValidationFailed, fieldName, maxLength)
	}
	return nil
}

// ValidateAmountString parses a currency amount and rejects values that would
// lose precision or overflow sensible account balances.
func ValidateAmountString(s, fieldName string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return decimal.Zero, fmt.Errorf("%w: %s cannot be empty", ErrValidationFailed, fieldName)
	}
	amount, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s is not a valid amount", ErrValidationFailed, fieldName)
	}
	if amount.Exponent() < -2 {
		return decimal.Zero, fmt.Errorf("%w: %s has more than two decimal places", ErrValidationFailed, fieldName)
	}
	if amount.Abs().GreaterThan(decimal.NewFromInt(1_000_000_000)) {
		return decimal.Zero, fmt.Errorf("%w: %s is out of range", ErrValidationFailed, fieldName)
	}
	return amount, nil
}

// ValidateDateString parses a YYYY-MM-DD date and rejects future-dated values
// when allowFuture is false.
func ValidateDateString(s, fieldName string, allowFuture bool) (time.Time, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be a YYYY-MM-DD date", ErrValidationFailed, fieldName)
	}
	if !allowFuture && t.After(time.Now().AddDate(0, 0, 1)) {
		return time.Time{}, fmt.Errorf("%w: %s cannot be in the future", ErrValidationFailed, fieldName)
	}
	return t, nil
}

// ValidateAccountType checks membership in the fixed account-type set.
func ValidateAccountType(s string) error {
	if !accountTypes[strings.ToLower(strings.TrimSpace(s))] {
		return fmt.Errorf("%w: account_type must be one of checking, savings, credit, investment", ErrValidationFailed)
	}
	return nil
}

// ValidateGoalType checks membership in the fixed goal-type set.
func ValidateGoalType(s string) error {
	if !goalTypes[strings.ToLower(strings.TrimSpace(s))] {
		return fmt.Errorf("%w: goal_type is not recognized", ErrValidationFailed)
	}
	return nil
}

// ValidateCreditScore checks the FICO-style score range.
func ValidateCreditScore(score int) error {
	if score < MinCreditScore || score > MaxCreditScore {
		return fmt.Errorf("%w: credit_score must be between %d and %d", ErrValidationFailed, MinCreditScore, MaxCreditScore)
	}
	return nil
}
