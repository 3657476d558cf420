package usecase_test

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/sagarline/sheetledger/internal/domain"
	"github.com/sagarline/sheetledger/internal/infrastructure/metrics"
	"github.com/sagarline/sheetledger/internal/usecase"
	"github.com/sagarline/sheetledger/internal/usecase/mocks"
)

// fixture wires a full engine against the in-memory mocks. The mock entry
// repository really sums its stored entries, so aggregate assertions go
// through the same recompute path production uses.
type fixture struct {
	txMgr     *mocks.MockTransactionManager
	sheetRepo *mocks.MockSheetRepository
	entryRepo *mocks.MockEntryRepository
	auditRepo *mocks.MockAuditRepository
	idGen     *mocks.MockIDGenerator
	retrier   *mocks.MockRetrier
	cache     *mocks.MockCache
	metrics   *metrics.Metrics

	ledger *usecase.LedgerUseCase
	sheets *usecase.SheetUseCase
}

func newFixture() *fixture {
	f := &fixture{
		txMgr:     mocks.NewMockTransactionManager(),
		sheetRepo: mocks.NewMockSheetRepository(),
		entryRepo: mocks.NewMockEntryRepository(),
		auditRepo: mocks.NewMockAuditRepository(),
		idGen:     mocks.NewMockIDGenerator(),
		retrier:   mocks.NewMockRetrier(),
		cache:     mocks.NewMockCache(),
		metrics:   metrics.NewWith(prometheus.NewRegistry()),
	}

	f.ledger = usecase.NewLedgerUseCase(
		f.txMgr, f.sheetRepo, f.entryRepo, f.auditRepo,
		f.idGen, f.retrier, f.cache, f.metrics,
	)
	f.sheets = usecase.NewSheetUseCase(
		f.txMgr, f.sheetRepo, f.entryRepo, f.auditRepo,
		f.idGen, f.retrier, f.cache, f.metrics,
	)

	return f
}

func (f *fixture) seedSheet(id, bookCode string, opening decimal.Decimal) *domain.Sheet {
	sheet := &domain.Sheet{
		ID:             id,
		BookCode:       bookCode,
		Name:           "sheet-" + id,
		OpeningBalance: opening,
		TotalCredit:    decimal.Zero,
		TotalDebit:     decimal.Zero,
		ClosingBalance: opening,
		Status:         domain.SheetActive,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}
	_ = f.sheetRepo.Create(context.Background(), nil, sheet)
	return sheet
}

func (f *fixture) mustGetSheet(id string) *domain.Sheet {
	sheet, err := f.sheetRepo.GetByID(context.Background(), id)
	if err != nil {
		panic(err)
	}
	return sheet
}

func summaryCacheKeyFor(sheetID string) string {
	return "sheet:summary:" + sheetID
}
