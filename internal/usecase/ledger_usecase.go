package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sagarline/sheetledger/internal/domain"
	"github.com/sagarline/sheetledger/internal/infrastructure/metrics"
)

// LedgerUseCase is the balance engine: the only writer of a sheet's
// aggregate fields. Every operation runs inside one transaction that locks
// the sheet row, applies the entry mutation, recomputes TotalCredit and
// TotalDebit from the surviving entry rows and rederives ClosingBalance.
// Aggregates are always fully recomputed, never incremented, so a prior
// drift can never survive the next mutation.
type LedgerUseCase struct {
	txManager TransactionManager
	sheetRepo SheetRepository
	entryRepo EntryRepository
	auditRepo AuditRepository
	idGen     IDGenerator
	retrier   Retrier
	cache     Cache
	metrics   *metrics.Metrics
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(
	txManager TransactionManager,
	sheetRepo SheetRepository,
	entryRepo EntryRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	retrier Retrier,
	cache Cache,
	m *metrics.Metrics,
) *LedgerUseCase {
	return &LedgerUseCase{
		txManager: txManager,
		sheetRepo: sheetRepo,
		entryRepo: entryRepo,
		auditRepo: auditRepo,
		idGen:     idGen,
		retrier:   retrier,
		cache:     cache,
		metrics:   m,
	}
}

// AddEntryInput represents input for adding an entry to a sheet.
type AddEntryInput struct {
	SheetID     string
	Kind        domain.EntryKind
	EntryDate   time.Time
	Particulars string
	Amount      decimal.Decimal
	Tag         string
	Note        string
	Actor       string
}

// AddEntry appends an entry to a sheet and recomputes the sheet aggregates
// as one atomic unit.
func (uc *LedgerUseCase) AddEntry(ctx context.Context, input AddEntryInput) (*domain.Entry, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	var entry *domain.Entry

	err := uc.run(ctx, "add", func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		sheet, err := uc.sheetRepo.GetByIDForUpdate(ctx, tx, input.SheetID)
		if err != nil {
			return err
		}

		if err := sheet.CanMutate(); err != nil {
			return err
		}

		book, err := domain.BookByCode(sheet.BookCode)
		if err != nil {
			return err
		}

		now := time.Now().UTC()

		entryDate := input.EntryDate
		if entryDate.IsZero() {
			entryDate = now
		}

		entry = &domain.Entry{
			ID:          uc.idGen.Generate(),
			SheetID:     sheet.ID,
			Kind:        input.Kind,
			EntryDate:   entryDate,
			Particulars: input.Particulars,
			Tag:         input.Tag,
			Note:        input.Note,
			CreatedBy:   input.Actor,
			UpdatedBy:   input.Actor,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		if err := entry.SetAmount(book, input.Amount); err != nil {
			return err
		}

		if err := uc.entryRepo.Create(ctx, tx, entry); err != nil {
			return err
		}

		if err := uc.recompute(ctx, tx, sheet, input.Actor, now); err != nil {
			return err
		}

		if err := uc.audit(ctx, tx, input.Actor, domain.AuditActionEntryAdd, entry, sheet); err != nil {
			return err
		}

		return tx.Commit(ctx)
	})
	if err != nil {
		return nil, err
	}

	uc.afterMutation(ctx, input.SheetID)

	return entry, nil
}

// UpdateEntryInput represents a partial entry patch. Nil fields keep their
// previous values.
type UpdateEntryInput struct {
	EntryID     string
	Kind        *domain.EntryKind
	EntryDate   *time.Time
	Particulars *string
	Amount      *decimal.Decimal
	Tag         *string
	Note        *string
	Actor       string
}

// UpdateEntry patches an entry and recomputes the sheet aggregates. A kind
// or amount change is equivalent to removing the old contribution and
// adding the new one; the full recompute makes that trivially correct.
func (uc *LedgerUseCase) UpdateEntry(ctx context.Context, input UpdateEntryInput) (*domain.Entry, error) {
	if input.Amount != nil {
		if err := domain.ValidateAmount(*input.Amount); err != nil {
			return nil, err
		}
	}

	// Resolve the owning sheet outside the transaction; the entry is
	// re-read under the sheet lock before anything is written.
	existing, err := uc.entryRepo.GetByID(ctx, input.EntryID)
	if err != nil {
		return nil, err
	}

	var entry *domain.Entry

	err = uc.run(ctx, "update", func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		sheet, err := uc.sheetRepo.GetByIDForUpdate(ctx, tx, existing.SheetID)
		if err != nil {
			return err
		}

		if err := sheet.CanMutate(); err != nil {
			return err
		}

		book, err := domain.BookByCode(sheet.BookCode)
		if err != nil {
			return err
		}

		entry, err = uc.entryRepo.GetByIDTx(ctx, tx, input.EntryID)
		if err != nil {
			return err
		}

		if input.Kind != nil {
			entry.Kind = *input.Kind
		}

		if input.EntryDate != nil {
			entry.EntryDate = *input.EntryDate
		}

		if input.Particulars != nil {
			entry.Particulars = *input.Particulars
		}

		if input.Tag != nil {
			entry.Tag = *input.Tag
		}

		if input.Note != nil {
			entry.Note = *input.Note
		}

		amount := entry.Amount()
		if input.Amount != nil {
			amount = *input.Amount
		}

		// Re-place the amount even when only the kind changed, so the
		// amount follows the kind to the correct column.
		if err := entry.SetAmount(book, amount); err != nil {
			return err
		}

		now := time.Now().UTC()
		entry.UpdatedBy = input.Actor
		entry.UpdatedAt = now

		if err := uc.entryRepo.Update(ctx, tx, entry); err != nil {
			return err
		}

		if err := uc.recompute(ctx, tx, sheet, input.Actor, now); err != nil {
			return err
		}

		if err := uc.audit(ctx, tx, input.Actor, domain.AuditActionEntryUpdate, entry, sheet); err != nil {
			return err
		}

		return tx.Commit(ctx)
	})
	if err != nil {
		return nil, err
	}

	uc.afterMutation(ctx, existing.SheetID)

	return entry, nil
}

// DeleteEntry removes an entry and recomputes the sheet aggregates from the
// surviving entries.
func (uc *LedgerUseCase) DeleteEntry(ctx context.Context, entryID, actor string) error {
	existing, err := uc.entryRepo.GetByID(ctx, entryID)
	if err != nil {
		return err
	}

	err = uc.run(ctx, "delete", func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		sheet, err := uc.sheetRepo.GetByIDForUpdate(ctx, tx, existing.SheetID)
		if err != nil {
			return err
		}

		if err := sheet.CanMutate(); err != nil {
			return err
		}

		entry, err := uc.entryRepo.GetByIDTx(ctx, tx, entryID)
		if err != nil {
			return err
		}

		if err := uc.entryRepo.Delete(ctx, tx, entry.ID); err != nil {
			return err
		}

		now := time.Now().UTC()

		if err := uc.recompute(ctx, tx, sheet, actor, now); err != nil {
			return err
		}

		if err := uc.audit(ctx, tx, actor, domain.AuditActionEntryDelete, entry, sheet); err != nil {
			return err
		}

		return tx.Commit(ctx)
	})
	if err != nil {
		return err
	}

	uc.afterMutation(ctx, existing.SheetID)

	return nil
}

// ChangeOpeningBalance sets a sheet's opening balance. Entry totals are
// untouched; the closing balance shifts by exactly the opening delta.
func (uc *LedgerUseCase) ChangeOpeningBalance(ctx context.Context, sheetID string, opening decimal.Decimal, actor string) (*domain.Sheet, error) {
	var sheet *domain.Sheet

	err := uc.run(ctx, "opening", func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		sheet, err = uc.sheetRepo.GetByIDForUpdate(ctx, tx, sheetID)
		if err != nil {
			return err
		}

		if err := sheet.CanMutate(); err != nil {
			return err
		}

		now := time.Now().UTC()
		previous := sheet.OpeningBalance
		sheet.OpeningBalance = opening

		if err := uc.recompute(ctx, tx, sheet, actor, now); err != nil {
			return err
		}

		log := &domain.AuditLog{
			ID:           uc.idGen.Generate(),
			Actor:        actor,
			Action:       domain.AuditActionSheetOpening,
			ResourceType: "sheet",
			ResourceID:   sheet.ID,
			Detail: domain.JSON{
				"previous_opening": previous.String(),
				"new_opening":      opening.String(),
				"closing":          sheet.ClosingBalance.String(),
			},
			CreatedAt: now,
		}

		if err := uc.auditRepo.CreateTx(ctx, tx, log); err != nil {
			return err
		}

		return tx.Commit(ctx)
	})
	if err != nil {
		return nil, err
	}

	uc.afterMutation(ctx, sheetID)

	return sheet, nil
}

// recompute refreshes the sheet aggregates from the entry rows visible to
// the current transaction and persists them.
func (uc *LedgerUseCase) recompute(ctx context.Context, tx Transaction, sheet *domain.Sheet, actor string, now time.Time) error {
	totalCredit, totalDebit, err := uc.entryRepo.SumBySheet(ctx, tx, sheet.ID)
	if err != nil {
		return err
	}

	sheet.Recalculate(totalCredit, totalDebit)
	sheet.Stamp(actor, now)

	return uc.sheetRepo.UpdateAggregates(ctx, tx, sheet)
}

func (uc *LedgerUseCase) audit(ctx context.Context, tx Transaction, actor string, action domain.AuditAction, entry *domain.Entry, sheet *domain.Sheet) error {
	log := &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		Actor:        actor,
		Action:       action,
		ResourceType: "entry",
		ResourceID:   entry.ID,
		Detail: domain.JSON{
			"sheet_id": sheet.ID,
			"kind":     string(entry.Kind),
			"amount":   entry.Amount().String(),
			"closing":  sheet.ClosingBalance.String(),
		},
		CreatedAt: time.Now().UTC(),
	}

	return uc.auditRepo.CreateTx(ctx, tx, log)
}

// run wraps an engine operation with retry and metrics.
func (uc *LedgerUseCase) run(ctx context.Context, op string, fn func() error) error {
	start := time.Now()

	err := uc.retrier.Retry(ctx, fn)

	uc.metrics.EngineOpDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())

	if err != nil {
		uc.metrics.EngineOpErrors.WithLabelValues(op).Inc()
		return err
	}

	uc.metrics.EngineOps.WithLabelValues(op).Inc()

	return nil
}

// afterMutation drops the cached summary for the sheet. Cache invalidation
// is best effort: a miss later just falls through to the database.
func (uc *LedgerUseCase) afterMutation(ctx context.Context, sheetID string) {
	_ = uc.cache.Delete(ctx, summaryCacheKey(sheetID))
}
