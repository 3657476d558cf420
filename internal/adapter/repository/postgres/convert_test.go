package postgres

import (
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

func TestNumericToDecimal(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		want := decimal.RequireFromString("1234.56")
		got := numericToDecimal(decimalToNumeric(want))
		if !got.Equal(want) {
			t.Fatalf("got %s, want %s", got, want)
		}
	})

	t.Run("null is zero", func(t *testing.T) {
		if got := numericToDecimal(pgtype.Numeric{}); !got.IsZero() {
			t.Fatalf("got %s, want 0", got)
		}
	})

	t.Run("NaN is zero", func(t *testing.T) {
		n := pgtype.Numeric{NaN: true, Valid: true}
		if got := numericToDecimal(n); !got.IsZero() {
			t.Fatalf("got %s, want 0", got)
		}
	})
}
