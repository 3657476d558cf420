package integration

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/sagarline/sheetledger/internal/domain"
	"github.com/sagarline/sheetledger/internal/usecase"
	"github.com/sagarline/sheetledger/tests/testutil"
)

func TestSheetLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()

	s := newStack(testDB.Pool)

	t.Run("duplicate name rejected across statuses", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		first, err := s.sheets.CreateSheet(ctx, usecase.CreateSheetInput{
			BookCode: domain.PettyCashBook.Code,
			Name:     "March 2026",
			Actor:    "clerk",
		})
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}

		if _, err := s.sheets.CreateSheet(ctx, usecase.CreateSheetInput{
			BookCode: domain.PettyCashBook.Code,
			Name:     "March 2026",
			Actor:    "clerk",
		}); !errors.Is(err, domain.ErrDuplicateSheetName) {
			t.Fatalf("expected ErrDuplicateSheetName, got %v", err)
		}

		if err := s.sheets.ArchiveSheet(ctx, first.ID, "clerk"); err != nil {
			t.Fatalf("archive failed: %v", err)
		}

		// Still reserved by the archived sheet.
		if _, err := s.sheets.CreateSheet(ctx, usecase.CreateSheetInput{
			BookCode: domain.PettyCashBook.Code,
			Name:     "March 2026",
			Actor:    "clerk",
		}); !errors.Is(err, domain.ErrDuplicateSheetName) {
			t.Fatalf("expected ErrDuplicateSheetName against archived sheet, got %v", err)
		}
	})

	t.Run("delete archives when entries exist", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		sheet, err := s.sheets.CreateSheet(ctx, usecase.CreateSheetInput{
			BookCode: domain.CityLedgerBook.Code,
			Name:     "busy sheet",
			Actor:    "clerk",
		})
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}

		if _, err := s.ledger.AddEntry(ctx, usecase.AddEntryInput{
			SheetID: sheet.ID,
			Kind:    domain.KindCredit,
			Amount:  decimal.NewFromInt(10),
			Actor:   "clerk",
		}); err != nil {
			t.Fatalf("add failed: %v", err)
		}

		result, err := s.sheets.DeleteSheet(ctx, sheet.ID, "clerk")
		if err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		if !result.Archived {
			t.Fatal("expected archive, not hard delete")
		}

		got, err := s.sheetRepo.GetByID(ctx, sheet.ID)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got.Status != domain.SheetArchived {
			t.Errorf("status = %s, want ARCHIVED", got.Status)
		}

		// Archived sheets refuse mutations but keep their entries.
		if _, err := s.ledger.AddEntry(ctx, usecase.AddEntryInput{
			SheetID: sheet.ID,
			Kind:    domain.KindCredit,
			Amount:  decimal.NewFromInt(10),
			Actor:   "clerk",
		}); !errors.Is(err, domain.ErrSheetArchived) {
			t.Fatalf("expected ErrSheetArchived, got %v", err)
		}

		count, err := s.entryRepo.CountBySheet(ctx, nil, sheet.ID)
		if err != nil {
			t.Fatalf("count failed: %v", err)
		}
		if count != 1 {
			t.Errorf("entries = %d, want 1 preserved", count)
		}
	})

	t.Run("delete removes an empty sheet outright", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		sheet, err := s.sheets.CreateSheet(ctx, usecase.CreateSheetInput{
			BookCode: domain.CityLedgerBook.Code,
			Name:     "empty sheet",
			Actor:    "clerk",
		})
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}

		result, err := s.sheets.DeleteSheet(ctx, sheet.ID, "clerk")
		if err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		if result.Archived {
			t.Fatal("expected hard delete of empty sheet")
		}

		if _, err := s.sheetRepo.GetByID(ctx, sheet.ID); !errors.Is(err, domain.ErrSheetNotFound) {
			t.Fatalf("expected ErrSheetNotFound, got %v", err)
		}
	})

	t.Run("restore reopens an archived sheet for mutations", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		sheet, err := s.sheets.CreateSheet(ctx, usecase.CreateSheetInput{
			BookCode: domain.PartnerBook.Code,
			Name:     "partner sheet",
			Actor:    "clerk",
		})
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}

		if err := s.sheets.ArchiveSheet(ctx, sheet.ID, "clerk"); err != nil {
			t.Fatalf("archive failed: %v", err)
		}
		if err := s.sheets.RestoreSheet(ctx, sheet.ID, "clerk"); err != nil {
			t.Fatalf("restore failed: %v", err)
		}

		if _, err := s.ledger.AddEntry(ctx, usecase.AddEntryInput{
			SheetID: sheet.ID,
			Kind:    domain.KindCredit,
			Amount:  decimal.NewFromInt(1),
			Tag:     "CONT-001",
			Actor:   "clerk",
		}); err != nil {
			t.Fatalf("add after restore failed: %v", err)
		}
	})

	t.Run("duplicating a sheet copies balances and entries", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		source, err := s.sheets.CreateSheet(ctx, usecase.CreateSheetInput{
			BookCode:       domain.PettyCashBook.Code,
			Name:           "February 2026",
			OpeningBalance: decimal.NewFromInt(500),
			Actor:          "clerk",
		})
		if err != nil {
			t.Fatalf("create source failed: %v", err)
		}

		for _, amount := range []int64{120, 80} {
			if _, err := s.ledger.AddEntry(ctx, usecase.AddEntryInput{
				SheetID: source.ID,
				Kind:    domain.KindExpense,
				Amount:  decimal.NewFromInt(amount),
				Actor:   "clerk",
			}); err != nil {
				t.Fatalf("seed entry failed: %v", err)
			}
		}

		dup, err := s.sheets.CreateSheet(ctx, usecase.CreateSheetInput{
			BookCode:      domain.PettyCashBook.Code,
			Name:          "February 2026 (copy)",
			SourceSheetID: source.ID,
			Actor:         "clerk",
		})
		if err != nil {
			t.Fatalf("duplicate failed: %v", err)
		}

		if !dup.OpeningBalance.Equal(decimal.NewFromInt(500)) {
			t.Errorf("opening = %s, want 500", dup.OpeningBalance)
		}
		if !dup.TotalDebit.Equal(decimal.NewFromInt(200)) {
			t.Errorf("total debit = %s, want 200", dup.TotalDebit)
		}
		if !dup.ClosingBalance.Equal(decimal.NewFromInt(300)) {
			t.Errorf("closing = %s, want 300", dup.ClosingBalance)
		}

		count, err := s.entryRepo.CountBySheet(ctx, nil, dup.ID)
		if err != nil {
			t.Fatalf("count failed: %v", err)
		}
		if count != 2 {
			t.Errorf("copied entries = %d, want 2", count)
		}

		drift, err := s.report.CheckConsistency(ctx)
		if err != nil {
			t.Fatalf("consistency check failed: %v", err)
		}
		if len(drift) != 0 {
			t.Fatalf("expected duplicated sheet to be consistent, got %+v", drift)
		}
	})
}
