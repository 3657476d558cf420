package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sagarline/sheetledger/internal/domain"
	"github.com/sagarline/sheetledger/internal/infrastructure/metrics"
)

// SheetSummary is the dashboard view of one sheet: the persisted aggregates
// plus an entry count. Summaries only read committed state and never
// mutate.
type SheetSummary struct {
	SheetID        string          `json:"sheet_id"`
	BookCode       string          `json:"book_code"`
	Name           string          `json:"name"`
	Status         string          `json:"status"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	TotalCredit    decimal.Decimal `json:"total_credit"`
	TotalDebit     decimal.Decimal `json:"total_debit"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
	EntryCount     int64           `json:"entry_count"`
	GeneratedAt    time.Time       `json:"generated_at"`
}

// ReportUseCase serves the read-only aggregators: sheet summaries (cached),
// tag groupings and the ledger-wide drift check.
type ReportUseCase struct {
	sheetRepo  SheetRepository
	entryRepo  EntryRepository
	ledgerRepo LedgerRepository
	auditRepo  AuditRepository
	cache      Cache
	metrics    *metrics.Metrics
}

// NewReportUseCase creates a new ReportUseCase.
func NewReportUseCase(
	sheetRepo SheetRepository,
	entryRepo EntryRepository,
	ledgerRepo LedgerRepository,
	auditRepo AuditRepository,
	cache Cache,
	m *metrics.Metrics,
) *ReportUseCase {
	return &ReportUseCase{
		sheetRepo:  sheetRepo,
		entryRepo:  entryRepo,
		ledgerRepo: ledgerRepo,
		auditRepo:  auditRepo,
		cache:      cache,
		metrics:    m,
	}
}

// SheetSummary returns the summary for one sheet, served from cache when a
// fresh copy exists. Engine mutations invalidate the cached copy.
func (uc *ReportUseCase) SheetSummary(ctx context.Context, sheetID string) (*SheetSummary, error) {
	key := summaryCacheKey(sheetID)

	if cached, err := uc.cache.Get(ctx, key); err == nil && cached != "" {
		var summary SheetSummary
		if err := json.Unmarshal([]byte(cached), &summary); err == nil {
			uc.metrics.CacheHits.Inc()
			return &summary, nil
		}
	}

	uc.metrics.CacheMisses.Inc()

	sheet, err := uc.sheetRepo.GetByID(ctx, sheetID)
	if err != nil {
		return nil, err
	}

	count, err := uc.entryRepo.CountBySheet(ctx, nil, sheetID)
	if err != nil {
		return nil, err
	}

	summary := &SheetSummary{
		SheetID:        sheet.ID,
		BookCode:       sheet.BookCode,
		Name:           sheet.Name,
		Status:         string(sheet.Status),
		OpeningBalance: sheet.OpeningBalance,
		TotalCredit:    sheet.TotalCredit,
		TotalDebit:     sheet.TotalDebit,
		ClosingBalance: sheet.ClosingBalance,
		EntryCount:     count,
		GeneratedAt:    time.Now().UTC(),
	}

	if data, err := json.Marshal(summary); err == nil {
		_ = uc.cache.Set(ctx, key, string(data), summaryCacheTTL)
	}

	return summary, nil
}

// TagTotals groups a sheet's entries by tag (container code) and sums each
// side per group.
func (uc *ReportUseCase) TagTotals(ctx context.Context, sheetID string) ([]domain.TagTotal, error) {
	if _, err := uc.sheetRepo.GetByID(ctx, sheetID); err != nil {
		return nil, err
	}

	return uc.entryRepo.SumByTag(ctx, sheetID)
}

// CheckConsistency recomputes every sheet's totals from its entries and
// returns the sheets whose stored aggregates disagree. A non-empty result
// means some write path bypassed the balance engine.
func (uc *ReportUseCase) CheckConsistency(ctx context.Context) ([]Drift, error) {
	drift, err := uc.ledgerRepo.FindDrift(ctx)
	if err != nil {
		return nil, err
	}

	if len(drift) > 0 {
		uc.metrics.DriftDetected.Add(float64(len(drift)))
	}

	return drift, nil
}

// AuditTrail returns the mutation history recorded for one resource,
// newest first.
func (uc *ReportUseCase) AuditTrail(ctx context.Context, resourceType, resourceID string, limit, offset int) ([]*domain.AuditLog, error) {
	limit, offset = domain.ValidatePagination(limit, offset)

	return uc.auditRepo.ListByResource(ctx, resourceType, resourceID, limit, offset)
}
