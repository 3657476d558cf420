package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"

	"github.com/sagarline/sheetledger/internal/domain"
	"github.com/sagarline/sheetledger/internal/usecase"
	"github.com/sagarline/sheetledger/internal/usecase/mocks"
)

func newReportFixture() (*fixture, *usecase.ReportUseCase, *mocks.MockLedgerRepository) {
	f := newFixture()
	ledgerRepo := mocks.NewMockLedgerRepository()
	reports := usecase.NewReportUseCase(f.sheetRepo, f.entryRepo, ledgerRepo, f.auditRepo, f.cache, f.metrics)
	return f, reports, ledgerRepo
}

func TestReportUseCase_SheetSummary(t *testing.T) {
	f, reports, _ := newReportFixture()
	f.seedSheet("sheet-1", domain.CityLedgerBook.Code, decimal.NewFromInt(100))

	ctx := context.Background()

	_, err := f.ledger.AddEntry(ctx, usecase.AddEntryInput{
		SheetID: "sheet-1",
		Kind:    domain.KindCredit,
		Amount:  decimal.NewFromInt(25),
		Actor:   "tester",
	})
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}

	summary, err := reports.SheetSummary(ctx, "sheet-1")
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}

	if summary.ClosingBalance.String() != "125" {
		t.Errorf("closing = %s, want 125", summary.ClosingBalance)
	}
	if summary.EntryCount != 1 {
		t.Errorf("entry count = %d, want 1", summary.EntryCount)
	}
	if got := testutil.ToFloat64(f.metrics.CacheMisses); got != 1 {
		t.Errorf("cache misses = %v, want 1", got)
	}
	if !f.cache.Contains(summaryCacheKeyFor("sheet-1")) {
		t.Error("expected summary to be cached after first read")
	}

	again, err := reports.SheetSummary(ctx, "sheet-1")
	if err != nil {
		t.Fatalf("cached summary failed: %v", err)
	}
	if !again.GeneratedAt.Equal(summary.GeneratedAt) {
		t.Error("expected second read to be served from cache")
	}
	if got := testutil.ToFloat64(f.metrics.CacheHits); got != 1 {
		t.Errorf("cache hits = %v, want 1", got)
	}
}

func TestReportUseCase_SheetSummaryNotFound(t *testing.T) {
	_, reports, _ := newReportFixture()

	_, err := reports.SheetSummary(context.Background(), "no-such-sheet")
	if !errors.Is(err, domain.ErrSheetNotFound) {
		t.Fatalf("expected ErrSheetNotFound, got %v", err)
	}
}

func TestReportUseCase_TagTotals(t *testing.T) {
	f, reports, _ := newReportFixture()
	f.seedSheet("sheet-1", domain.PartnerBook.Code, decimal.Zero)

	ctx := context.Background()

	entries := []struct {
		kind   domain.EntryKind
		amount int64
		tag    string
	}{
		{domain.KindCredit, 100, "CONT-001"},
		{domain.KindDebit, 40, "CONT-001"},
		{domain.KindCredit, 75, "CONT-002"},
	}
	for _, e := range entries {
		_, err := f.ledger.AddEntry(ctx, usecase.AddEntryInput{
			SheetID: "sheet-1",
			Kind:    e.kind,
			Amount:  decimal.NewFromInt(e.amount),
			Tag:     e.tag,
			Actor:   "tester",
		})
		if err != nil {
			t.Fatalf("add failed: %v", err)
		}
	}

	totals, err := reports.TagTotals(ctx, "sheet-1")
	if err != nil {
		t.Fatalf("tag totals failed: %v", err)
	}
	if len(totals) != 2 {
		t.Fatalf("got %d tag groups, want 2", len(totals))
	}

	byTag := make(map[string]domain.TagTotal)
	for _, total := range totals {
		byTag[total.Tag] = total
	}

	if got := byTag["CONT-001"]; got.TotalCredit.String() != "100" || got.TotalDebit.String() != "40" || got.EntryCount != 2 {
		t.Errorf("CONT-001 = %s/%s count %d, want 100/40 count 2", got.TotalCredit, got.TotalDebit, got.EntryCount)
	}
	if got := byTag["CONT-002"]; got.TotalCredit.String() != "75" || got.EntryCount != 1 {
		t.Errorf("CONT-002 = %s count %d, want 75 count 1", got.TotalCredit, got.EntryCount)
	}
}

func TestReportUseCase_CheckConsistency(t *testing.T) {
	f, reports, ledgerRepo := newReportFixture()

	t.Run("clean ledger reports nothing", func(t *testing.T) {
		drift, err := reports.CheckConsistency(context.Background())
		if err != nil {
			t.Fatalf("check failed: %v", err)
		}
		if len(drift) != 0 {
			t.Fatalf("expected no drift, got %d", len(drift))
		}
	})

	t.Run("drift is reported and counted", func(t *testing.T) {
		ledgerRepo.FindDriftFunc = func(ctx context.Context) ([]usecase.Drift, error) {
			return []usecase.Drift{{
				SheetID:        "sheet-1",
				Name:           "March 2026",
				StoredCredit:   decimal.NewFromInt(100),
				ComputedCredit: decimal.NewFromInt(150),
				StoredDebit:    decimal.Zero,
				ComputedDebit:  decimal.Zero,
			}}, nil
		}

		drift, err := reports.CheckConsistency(context.Background())
		if err != nil {
			t.Fatalf("check failed: %v", err)
		}
		if len(drift) != 1 {
			t.Fatalf("expected 1 drifted sheet, got %d", len(drift))
		}
		if got := testutil.ToFloat64(f.metrics.DriftDetected); got != 1 {
			t.Errorf("drift metric = %v, want 1", got)
		}
	})
}

func TestReportUseCase_AuditTrail(t *testing.T) {
	f, reports, _ := newReportFixture()
	f.seedSheet("sheet-1", domain.CityLedgerBook.Code, decimal.NewFromInt(100))

	ctx := context.Background()

	entry, err := f.ledger.AddEntry(ctx, usecase.AddEntryInput{
		SheetID: "sheet-1",
		Kind:    domain.KindCredit,
		Amount:  decimal.NewFromInt(25),
		Actor:   "tester",
	})
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}

	amount := decimal.NewFromInt(40)
	if _, err := f.ledger.UpdateEntry(ctx, usecase.UpdateEntryInput{
		EntryID: entry.ID,
		Amount:  &amount,
		Actor:   "tester",
	}); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	logs, err := reports.AuditTrail(ctx, "entry", entry.ID, 0, 0)
	if err != nil {
		t.Fatalf("audit trail failed: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("expected 2 audit logs, got %d", len(logs))
	}
	actions := map[domain.AuditAction]bool{}
	for _, l := range logs {
		actions[l.Action] = true
		if l.ResourceID != entry.ID {
			t.Errorf("resource id = %s, want %s", l.ResourceID, entry.ID)
		}
	}
	if !actions[domain.AuditActionEntryAdd] || !actions[domain.AuditActionEntryUpdate] {
		t.Errorf("actions = %v, want add and update", actions)
	}

	empty, err := reports.AuditTrail(ctx, "entry", "no-such-entry", 0, 0)
	if err != nil {
		t.Fatalf("audit trail failed: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected no logs for unknown resource, got %d", len(empty))
	}
}
