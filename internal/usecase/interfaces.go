package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sagarline/sheetledger/internal/domain"
)

// SheetFilter narrows sheet listings.
type SheetFilter struct {
	BookCode string
	Status   *domain.SheetStatus
	Limit    int
	Offset   int
}

// SheetRepository defines data access for sheets.
type SheetRepository interface {
	Create(ctx context.Context, tx Transaction, sheet *domain.Sheet) error
	GetByID(ctx context.Context, id string) (*domain.Sheet, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Sheet, error)
	ExistsByName(ctx context.Context, tx Transaction, bookCode, name string) (bool, error)
	UpdateAggregates(ctx context.Context, tx Transaction, sheet *domain.Sheet) error
	UpdateMeta(ctx context.Context, tx Transaction, sheet *domain.Sheet) error
	UpdateStatus(ctx context.Context, tx Transaction, id string, status domain.SheetStatus, actor string, at time.Time) error
	Delete(ctx context.Context, tx Transaction, id string) error
	List(ctx context.Context, filter SheetFilter) ([]*domain.Sheet, error)
}

// EntryRepository defines data access for entries.
type EntryRepository interface {
	Create(ctx context.Context, tx Transaction, entry *domain.Entry) error
	GetByID(ctx context.Context, id string) (*domain.Entry, error)
	GetByIDTx(ctx context.Context, tx Transaction, id string) (*domain.Entry, error)
	Update(ctx context.Context, tx Transaction, entry *domain.Entry) error
	Delete(ctx context.Context, tx Transaction, id string) error
	ListBySheet(ctx context.Context, sheetID string, limit, offset int) ([]*domain.Entry, error)
	ListBySheetTx(ctx context.Context, tx Transaction, sheetID string) ([]*domain.Entry, error)
	CountBySheet(ctx context.Context, tx Transaction, sheetID string) (int64, error)
	SumBySheet(ctx context.Context, tx Transaction, sheetID string) (totalCredit, totalDebit decimal.Decimal, err error)
	SumByTag(ctx context.Context, sheetID string) ([]domain.TagTotal, error)
}

// ContainerRepository defines data access for container summaries.
type ContainerRepository interface {
	Create(ctx context.Context, tx Transaction, summary *domain.ContainerSummary) error
	GetByID(ctx context.Context, id string) (*domain.ContainerSummary, error)
	List(ctx context.Context, limit, offset int) ([]*domain.ContainerSummary, error)
	Delete(ctx context.Context, id string) error
}

// LedgerRepository defines ledger-wide read operations.
type LedgerRepository interface {
	// FindDrift returns sheets whose stored aggregates disagree with the
	// sums recomputed from their entries.
	FindDrift(ctx context.Context) ([]Drift, error)
}

// Drift is one sheet whose denormalized aggregates have desynced from its
// entry rows. An empty result set means the invariant holds everywhere.
type Drift struct {
	SheetID        string
	Name           string
	StoredCredit   decimal.Decimal
	ComputedCredit decimal.Decimal
	StoredDebit    decimal.Decimal
	ComputedDebit  decimal.Decimal
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	CreateTx(ctx context.Context, tx Transaction, log *domain.AuditLog) error
	ListByResource(ctx context.Context, resourceType, resourceID string, limit, offset int) ([]*domain.AuditLog, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation when the storage layer reports a transient
// conflict (deadlock, serialization failure).
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations for the read path.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
