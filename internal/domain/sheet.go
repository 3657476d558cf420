package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SheetStatus is the lifecycle state of a sheet.
type SheetStatus string

const (
	SheetActive   SheetStatus = "ACTIVE"
	SheetArchived SheetStatus = "ARCHIVED"
)

// Sheet is one accounting book instance (a period, container or partner
// account). TotalCredit, TotalDebit and ClosingBalance are denormalized
// aggregates over the sheet's entries; only the balance engine may write
// them, and after every mutation
//
//	ClosingBalance == OpeningBalance + TotalCredit - TotalDebit
//
// must hold.
type Sheet struct {
	ID             string
	BookCode       string
	Name           string
	Description    string
	OpeningBalance decimal.Decimal
	TotalCredit    decimal.Decimal
	TotalDebit     decimal.Decimal
	ClosingBalance decimal.Decimal
	Status         SheetStatus
	Locked         bool
	CreatedBy      string
	UpdatedBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Recalculate replaces the aggregate fields from freshly summed entry
// totals and rederives the closing balance.
func (s *Sheet) Recalculate(totalCredit, totalDebit decimal.Decimal) {
	s.TotalCredit = totalCredit
	s.TotalDebit = totalDebit
	s.ClosingBalance = s.OpeningBalance.Add(totalCredit).Sub(totalDebit)
}

// CanMutate reports whether entry mutations are currently allowed.
func (s *Sheet) CanMutate() error {
	if s.Status == SheetArchived {
		return ErrSheetArchived
	}

	if s.Locked {
		return ErrSheetLocked
	}

	return nil
}

// Stamp records the acting user on the sheet.
func (s *Sheet) Stamp(actor string, at time.Time) {
	s.UpdatedBy = actor
	s.UpdatedAt = at
}
