package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidSheetName = fmt.Errorf("invalid sheet name")
	ErrAmountTooLarge   = fmt.Errorf("amount exceeds maximum allowed")
)

// Validation constants
const (
	MaxSheetNameLength = 255
	MinSheetNameLength = 1
	MaxEntryAmount     = "1000000000000" // 1 trillion
)

// ParseAmount coerces user-supplied monetary input to a decimal. Invalid or
// empty input becomes zero rather than an error; required-amount checks
// happen on the write path, never on display reads.
func ParseAmount(raw string) decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}

	return d
}

// ValidateSheetName validates a sheet display name.
func ValidateSheetName(name string) error {
	name = strings.TrimSpace(name)

	if len(name) < MinSheetNameLength {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidSheetName)
	}

	if len(name) > MaxSheetNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidSheetName, MaxSheetNameLength)
	}

	return nil
}

// ValidateAmount validates a required entry amount.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	maxAmount, _ := decimal.NewFromString(MaxEntryAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxEntryAmount)
	}

	return nil
}

// ValidatePagination validates and limits pagination parameters.
func ValidatePagination(limit, offset int) (int, int) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
