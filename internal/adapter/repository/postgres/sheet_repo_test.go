package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/sagarline/sheetledger/internal/domain"
)

func TestSheetRepositoryCreateMapsUniqueViolation(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectBegin()
	mockPool.ExpectExec("INSERT INTO sheets").WillReturnError(&pgconn.PgError{
		Code:           pgErrUniqueViolation,
		ConstraintName: "sheets_book_name_unique",
	})
	mockPool.ExpectRollback()

	manager := newTxManagerWithPool(mockPool)
	tx, err := manager.Begin(context.Background())
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	defer tx.Rollback(context.Background())

	repo := &SheetRepository{}
	sheet := &domain.Sheet{
		ID:             "sheet-1",
		BookCode:       domain.CityLedgerBook.Code,
		Name:           "March 2026",
		OpeningBalance: decimal.NewFromInt(100),
		TotalCredit:    decimal.Zero,
		TotalDebit:     decimal.Zero,
		ClosingBalance: decimal.NewFromInt(100),
		Status:         domain.SheetActive,
		CreatedBy:      "tester",
		UpdatedBy:      "tester",
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}

	err = repo.Create(context.Background(), tx, sheet)
	if !errors.Is(err, domain.ErrDuplicateSheetName) {
		t.Fatalf("expected ErrDuplicateSheetName, got %v", err)
	}
}

func TestSheetRepositoryCreatePassesOtherErrorsThrough(t *testing.T) {
	mockPool := newMockPool(t)
	mockErr := &pgconn.PgError{Code: pgErrDeadlock}
	mockPool.ExpectBegin()
	mockPool.ExpectExec("INSERT INTO sheets").WillReturnError(mockErr)
	mockPool.ExpectRollback()

	manager := newTxManagerWithPool(mockPool)
	tx, err := manager.Begin(context.Background())
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	defer tx.Rollback(context.Background())

	repo := &SheetRepository{}
	err = repo.Create(context.Background(), tx, &domain.Sheet{
		ID:       "sheet-1",
		BookCode: domain.CityLedgerBook.Code,
		Name:     "March 2026",
	})
	if !errors.Is(err, mockErr) {
		t.Fatalf("expected the deadlock error unchanged, got %v", err)
	}
}
