package domain

// EntryKind classifies an entry within its book.
type EntryKind string

const (
	KindCredit  EntryKind = "CREDIT"
	KindDebit   EntryKind = "DEBIT"
	KindAdvance EntryKind = "ADVANCE"
	KindExpense EntryKind = "EXPENSE"
)

// Side is the column an entry amount lands on.
type Side int

const (
	CreditSide Side = iota
	DebitSide
)

// BookProfile describes how one financial module instantiates the generic
// sheet/entry shape: which two kinds it uses and which side each kind
// contributes to. The balance arithmetic itself is identical across books.
type BookProfile struct {
	Code       string
	Name       string
	CreditKind EntryKind
	DebitKind  EntryKind
}

// Side maps an entry kind to the amount column it belongs to.
func (p BookProfile) Side(kind EntryKind) (Side, error) {
	switch kind {
	case p.CreditKind:
		return CreditSide, nil
	case p.DebitKind:
		return DebitSide, nil
	default:
		return 0, ErrInvalidKind
	}
}

// Kinds returns the two kinds the book accepts.
func (p BookProfile) Kinds() []EntryKind {
	return []EntryKind{p.CreditKind, p.DebitKind}
}

var (
	// PettyCashBook: branch petty cash. Advances received increase the
	// balance, expenses paid out decrease it.
	PettyCashBook = BookProfile{
		Code:       "pettycash",
		Name:       "Petty Cash",
		CreditKind: KindAdvance,
		DebitKind:  KindExpense,
	}

	// CityLedgerBook: the branch office ledger, plain credit/debit lines.
	CityLedgerBook = BookProfile{
		Code:       "cityledger",
		Name:       "City Ledger",
		CreditKind: KindCredit,
		DebitKind:  KindDebit,
	}

	// PartnerBook: forex partner sheets, credit/debit lines tagged with the
	// container code they settle.
	PartnerBook = BookProfile{
		Code:       "partner",
		Name:       "Partner Sheet",
		CreditKind: KindCredit,
		DebitKind:  KindDebit,
	}
)

var books = map[string]BookProfile{
	PettyCashBook.Code:  PettyCashBook,
	CityLedgerBook.Code: CityLedgerBook,
	PartnerBook.Code:    PartnerBook,
}

// BookByCode looks up a registered book profile.
func BookByCode(code string) (BookProfile, error) {
	book, ok := books[code]
	if !ok {
		return BookProfile{}, ErrUnknownBook
	}

	return book, nil
}

// Books returns all registered book profiles.
func Books() []BookProfile {
	return []BookProfile{PettyCashBook, CityLedgerBook, PartnerBook}
}
