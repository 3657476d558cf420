package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Entry is one transaction line belonging to exactly one sheet. Exactly one
// of CreditAmount/DebitAmount is positive, chosen by the entry's kind via
// the owning book's profile; the other is zero.
type Entry struct {
	ID           string
	SheetID      string
	Kind         EntryKind
	EntryDate    time.Time
	Particulars  string
	CreditAmount decimal.Decimal
	DebitAmount  decimal.Decimal
	Tag          string
	Note         string
	CreatedBy    string
	UpdatedBy    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Amount returns the entry's positive amount regardless of side.
func (e *Entry) Amount() decimal.Decimal {
	if e.CreditAmount.IsPositive() {
		return e.CreditAmount
	}

	return e.DebitAmount
}

// SetAmount places amount on the side the book assigns to the entry's kind
// and zeroes the other column.
func (e *Entry) SetAmount(book BookProfile, amount decimal.Decimal) error {
	side, err := book.Side(e.Kind)
	if err != nil {
		return err
	}

	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	switch side {
	case CreditSide:
		e.CreditAmount = amount
		e.DebitAmount = decimal.Zero
	case DebitSide:
		e.DebitAmount = amount
		e.CreditAmount = decimal.Zero
	}

	return nil
}

// TagTotal is the summed contribution of entries sharing a tag, used by the
// dashboard aggregators to group a sheet by container code.
type TagTotal struct {
	Tag         string
	TotalCredit decimal.Decimal
	TotalDebit  decimal.Decimal
	EntryCount  int64
}
