package domain

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want decimal.Decimal
	}{
		{name: "plain integer", raw: "500", want: decimal.NewFromInt(500)},
		{name: "decimal", raw: "12.34", want: decimal.RequireFromString("12.34")},
		{name: "padded", raw: "  99.5  ", want: decimal.RequireFromString("99.5")},
		{name: "negative passes through", raw: "-10", want: decimal.NewFromInt(-10)},
		{name: "empty coerces to zero", raw: "", want: decimal.Zero},
		{name: "garbage coerces to zero", raw: "twelve", want: decimal.Zero},
		{name: "partial garbage coerces to zero", raw: "12.3.4", want: decimal.Zero},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAmount(tt.raw)
			if !got.Equal(tt.want) {
				t.Errorf("ParseAmount(%q) = %s, want %s", tt.raw, got, tt.want)
			}
		})
	}
}

func TestValidateSheetName(t *testing.T) {
	if err := ValidateSheetName("June petty cash"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	if err := ValidateSheetName("   "); err == nil {
		t.Error("expected error for blank name")
	}

	if err := ValidateSheetName(strings.Repeat("x", MaxSheetNameLength+1)); err == nil {
		t.Error("expected error for oversized name")
	}
}

func TestValidateAmount(t *testing.T) {
	if err := ValidateAmount(decimal.NewFromInt(1)); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	if err := ValidateAmount(decimal.Zero); err == nil {
		t.Error("expected error for zero amount")
	}

	if err := ValidateAmount(decimal.RequireFromString(MaxEntryAmount).Add(decimal.NewFromInt(1))); err == nil {
		t.Error("expected error for amount over the cap")
	}
}

func TestValidatePagination(t *testing.T) {
	limit, offset := ValidatePagination(0, -3)
	if limit != 50 || offset != 0 {
		t.Errorf("expected defaults 50/0, got %d/%d", limit, offset)
	}

	limit, _ = ValidatePagination(5000, 0)
	if limit != 1000 {
		t.Errorf("expected clamp to 1000, got %d", limit)
	}
}
