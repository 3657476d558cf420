package integration

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	postgresRepo "github.com/sagarline/sheetledger/internal/adapter/repository/postgres"
	redisRepo "github.com/sagarline/sheetledger/internal/adapter/repository/redis"
	"github.com/sagarline/sheetledger/internal/infrastructure/metrics"
	"github.com/sagarline/sheetledger/internal/usecase"
)

// stack is the full engine wired against a real database.
type stack struct {
	ledger *usecase.LedgerUseCase
	sheets *usecase.SheetUseCase
	report *usecase.ReportUseCase

	sheetRepo *postgresRepo.SheetRepository
	entryRepo *postgresRepo.EntryRepository
}

func newStack(pool *pgxpool.Pool) *stack {
	txManager := postgresRepo.NewTxManager(pool)
	sheetRepo := postgresRepo.NewSheetRepository(pool)
	entryRepo := postgresRepo.NewEntryRepository(pool)
	ledgerRepo := postgresRepo.NewLedgerRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier()
	cache := redisRepo.NewNullCache()
	m := metrics.NewWith(prometheus.NewRegistry())

	return &stack{
		ledger:    usecase.NewLedgerUseCase(txManager, sheetRepo, entryRepo, auditRepo, idGen, retrier, cache, m),
		sheets:    usecase.NewSheetUseCase(txManager, sheetRepo, entryRepo, auditRepo, idGen, retrier, cache, m),
		report:    usecase.NewReportUseCase(sheetRepo, entryRepo, ledgerRepo, auditRepo, cache, m),
		sheetRepo: sheetRepo,
		entryRepo: entryRepo,
	}
}
