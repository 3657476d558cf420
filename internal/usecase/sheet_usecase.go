package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sagarline/sheetledger/internal/domain"
	"github.com/sagarline/sheetledger/internal/infrastructure/metrics"
)

// SheetUseCase handles sheet lifecycle: creation (optionally seeded from a
// source sheet), metadata updates, archive/restore and deletion. Aggregate
// mutations stay with the balance engine; this use case only touches them
// when duplicating a sheet, and then with the same lock-and-recompute
// discipline.
type SheetUseCase struct {
	txManager TransactionManager
	sheetRepo SheetRepository
	entryRepo EntryRepository
	auditRepo AuditRepository
	idGen     IDGenerator
	retrier   Retrier
	cache     Cache
	metrics   *metrics.Metrics
}

// NewSheetUseCase creates a new SheetUseCase.
func NewSheetUseCase(
	txManager TransactionManager,
	sheetRepo SheetRepository,
	entryRepo EntryRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	retrier Retrier,
	cache Cache,
	m *metrics.Metrics,
) *SheetUseCase {
	return &SheetUseCase{
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

// CreateSheetInput represents input for creating a sheet.
type CreateSheetInput struct {
	BookCode       string
	Name           string
	Description    string
	OpeningBalance decimal.Decimal
	// SourceSheetID, when set, duplicates the source sheet's opening
	// balance and entries into the new sheet.
	SourceSheetID string
	Actor         string
}

// CreateSheet creates a sheet with zero totals, or seeds it from a source
// sheet when duplicating.
func (uc *SheetUseCase) CreateSheet(ctx context.Context, input CreateSheetInput) (*domain.Sheet, error) {
	book, err := domain.BookByCode(input.BookCode)
	if err != nil {
		return nil, err
	}

	if err := domain.ValidateSheetName(input.Name); err != nil {
		return nil, err
	}

	var sheet *domain.Sheet

	err = uc.retrier.Retry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		// The name must stay unique across active and archived sheets of
		// the book. This check gives the friendly error for the common
		// case; concurrent creates that both pass it are caught by the
		// unique constraint, which the repository maps to the same error.
		exists, err := uc.sheetRepo.ExistsByName(ctx, tx, book.Code, input.Name)
		if err != nil {
			return err
		}

		if exists {
			return domain.ErrDuplicateSheetName
		}

		now := time.Now().UTC()

		sheet = &domain.Sheet{
			ID:             uc.idGen.Generate(),
			BookCode:       book.Code,
			Name:           input.Name,
			Description:    input.Description,
			OpeningBalance: input.OpeningBalance,
			TotalCredit:    decimal.Zero,
			TotalDebit:     decimal.Zero,
			Status:         domain.SheetActive,
			CreatedBy:      input.Actor,
			UpdatedBy:      input.Actor,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		sheet.Recalculate(decimal.Zero, decimal.Zero)

		if input.SourceSheetID != "" {
			if err := uc.seedFromSource(ctx, tx, sheet, input.SourceSheetID, input.Actor, now); err != nil {
				return err
			}
		}

		if err := uc.sheetRepo.Create(ctx, tx, sheet); err != nil {
			return err
		}

		if input.SourceSheetID != "" {
			if err := uc.copyEntries(ctx, tx, sheet, input.SourceSheetID, input.Actor, now); err != nil {
				return err
			}
		}

		log := &domain.AuditLog{
			ID:           uc.idGen.Generate(),
			Actor:        input.Actor,
			Action:       domain.AuditActionSheetCreate,
			ResourceType: "sheet",
			ResourceID:   sheet.ID,
			Detail:       domain.MarshalState(sheet),
			CreatedAt:    now,
		}

		if err := uc.auditRepo.CreateTx(ctx, tx, log); err != nil {
			return err
		}

		return tx.Commit(ctx)
	})
	if err != nil {
		return nil, err
	}

	uc.metrics.SheetsCreated.WithLabelValues(book.Code).Inc()

	return sheet, nil
}

// seedFromSource copies the source sheet's opening balance and totals onto
// the new sheet. The source is locked so its entries cannot shift while
// they are being duplicated.
func (uc *SheetUseCase) seedFromSource(ctx context.Context, tx Transaction, sheet *domain.Sheet, sourceID, actor string, now time.Time) error {
	source, err := uc.sheetRepo.GetByIDForUpdate(ctx, tx, sourceID)
	if err != nil {
		return err
	}

	if source.BookCode != sheet.BookCode {
		return domain.ErrUnknownBook
	}

	sheet.OpeningBalance = source.OpeningBalance
	sheet.Recalculate(source.TotalCredit, source.TotalDebit)
	sheet.Stamp(actor, now)

	return nil
}

func (uc *SheetUseCase) copyEntries(ctx context.Context, tx Transaction, sheet *domain.Sheet, sourceID, actor string, now time.Time) error {
	entries, err := uc.entryRepo.ListBySheetTx(ctx, tx, sourceID)
	if err != nil {
		return err
	}

	for _, src := range entries {
		dup := *src
		dup.ID = uc.idGen.Generate()
		dup.SheetID = sheet.ID
		dup.CreatedBy = actor
		dup.UpdatedBy = actor
		dup.CreatedAt = now
		dup.UpdatedAt = now

		if err := uc.entryRepo.Create(ctx, tx, &dup); err != nil {
			return err
		}
	}

	return nil
}

// UpdateSheetInput represents a partial sheet metadata patch.
type UpdateSheetInput struct {
	SheetID     string
	Name        *string
	Description *string
	Locked      *bool
	Actor       string
}

// UpdateSheet patches sheet metadata. Opening balance changes go through
// the balance engine instead, so the closing balance is rederived under
// the same lock discipline as entry mutations.
func (uc *SheetUseCase) UpdateSheet(ctx context.Context, input UpdateSheetInput) (*domain.Sheet, error) {
	if input.Name != nil {
		if err := domain.ValidateSheetName(*input.Name); err != nil {
			return nil, err
		}
	}

	var sheet *domain.Sheet

	err := uc.retrier.Retry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		sheet, err = uc.sheetRepo.GetByIDForUpdate(ctx, tx, input.SheetID)
		if err != nil {
			return err
		}

		if input.Name != nil && *input.Name != sheet.Name {
			exists, err := uc.sheetRepo.ExistsByName(ctx, tx, sheet.BookCode, *input.Name)
			if err != nil {
				return err
			}

			if exists {
				return domain.ErrDuplicateSheetName
			}

			sheet.Name = *input.Name
		}

		if input.Description != nil {
			sheet.Description = *input.Description
		}

		if input.Locked != nil {
			sheet.Locked = *input.Locked
		}

		now := time.Now().UTC()
		sheet.Stamp(input.Actor, now)

		if err := uc.sheetRepo.UpdateMeta(ctx, tx, sheet); err != nil {
			return err
		}

		log := &domain.AuditLog{
			ID:           uc.idGen.Generate(),
			Actor:        input.Actor,
			Action:       domain.AuditActionSheetUpdate,
			ResourceType: "sheet",
			ResourceID:   sheet.ID,
			Detail:       domain.MarshalState(sheet),
			CreatedAt:    now,
		}

		if err := uc.auditRepo.CreateTx(ctx, tx, log); err != nil {
			return err
		}

		return tx.Commit(ctx)
	})
	if err != nil {
		return nil, err
	}

	_ = uc.cache.Delete(ctx, summaryCacheKey(input.SheetID))

	return sheet, nil
}

// DeleteSheetResult reports how a delete was resolved.
type DeleteSheetResult struct {
	SheetID  string
	Archived bool
}

// DeleteSheet archives a sheet that still owns entries and hard-deletes an
// empty one. Entries are never orphaned: the only path that removes the
// sheet row requires the entry count to be zero, checked under the sheet
// lock.
func (uc *SheetUseCase) DeleteSheet(ctx context.Context, sheetID, actor string) (*DeleteSheetResult, error) {
	result := &DeleteSheetResult{SheetID: sheetID}

	err := uc.retrier.Retry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		sheet, err := uc.sheetRepo.GetByIDForUpdate(ctx, tx, sheetID)
		if err != nil {
			return err
		}

		count, err := uc.entryRepo.CountBySheet(ctx, tx, sheet.ID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()

		var action domain.AuditAction

		if count > 0 {
			result.Archived = true
			action = domain.AuditActionSheetArchive

			if err := uc.sheetRepo.UpdateStatus(ctx, tx, sheet.ID, domain.SheetArchived, actor, now); err != nil {
				return err
			}
		} else {
			action = domain.AuditActionSheetDelete

			if err := uc.sheetRepo.Delete(ctx, tx, sheet.ID); err != nil {
				return err
			}
		}

		log := &domain.AuditLog{
			ID:           uc.idGen.Generate(),
			Actor:        actor,
			Action:       action,
			ResourceType: "sheet",
			ResourceID:   sheet.ID,
			Detail:       domain.JSON{"entry_count": count},
			CreatedAt:    now,
		}

		if err := uc.auditRepo.CreateTx(ctx, tx, log); err != nil {
			return err
		}

		return tx.Commit(ctx)
	})
	if err != nil {
		return nil, err
	}

	_ = uc.cache.Delete(ctx, summaryCacheKey(sheetID))

	if result.Archived {
		uc.metrics.SheetsArchived.Inc()
	} else {
		uc.metrics.SheetsDeleted.Inc()
	}

	return result, nil
}

// ArchiveSheet moves an active sheet to ARCHIVED.
func (uc *SheetUseCase) ArchiveSheet(ctx context.Context, sheetID, actor string) error {
	return uc.transition(ctx, sheetID, actor, domain.SheetActive, domain.SheetArchived, domain.AuditActionSheetArchive)
}

// RestoreSheet moves an archived sheet back to ACTIVE.
func (uc *SheetUseCase) RestoreSheet(ctx context.Context, sheetID, actor string) error {
	return uc.transition(ctx, sheetID, actor, domain.SheetArchived, domain.SheetActive, domain.AuditActionSheetRestore)
}

func (uc *SheetUseCase) transition(ctx context.Context, sheetID, actor string, from, to domain.SheetStatus, action domain.AuditAction) error {
	err := uc.retrier.Retry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		sheet, err := uc.sheetRepo.GetByIDForUpdate(ctx, tx, sheetID)
		if err != nil {
			return err
		}

		if sheet.Status != from {
			if from == domain.SheetActive {
				return domain.ErrSheetArchived
			}

			return domain.ErrSheetActive
		}

		now := time.Now().UTC()

		if err := uc.sheetRepo.UpdateStatus(ctx, tx, sheet.ID, to, actor, now); err != nil {
			return err
		}

		log := &domain.AuditLog{
			ID:           uc.idGen.Generate(),
			Actor:        actor,
			Action:       action,
			ResourceType: "sheet",
			ResourceID:   sheet.ID,
			Detail:       domain.JSON{"from": string(from), "to": string(to)},
			CreatedAt:    now,
		}

		if err := uc.auditRepo.CreateTx(ctx, tx, log); err != nil {
			return err
		}

		return tx.Commit(ctx)
	})
	if err != nil {
		return err
	}

	_ = uc.cache.Delete(ctx, summaryCacheKey(sheetID))

	return nil
}

// GetSheet retrieves a sheet by ID.
func (uc *SheetUseCase) GetSheet(ctx context.Context, id string) (*domain.Sheet, error) {
	return uc.sheetRepo.GetByID(ctx, id)
}

// ListSheetsInput represents input for listing sheets.
type ListSheetsInput struct {
	BookCode string
	Status   *domain.SheetStatus
	Limit    int
	Offset   int
}

// ListSheets lists sheets of a book, optionally filtered by status.
func (uc *SheetUseCase) ListSheets(ctx context.Context, input ListSheetsInput) ([]*domain.Sheet, error) {
	if input.BookCode != "" {
		if _, err := domain.BookByCode(input.BookCode); err != nil {
			return nil, err
		}
	}

	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	return uc.sheetRepo.List(ctx, SheetFilter{
		BookCode: input.BookCode,
		Status:   input.Status,
		Limit:    limit,
		Offset:   offset,
	})
}

// ListEntries lists a sheet's entries, newest first.
func (uc *SheetUseCase) ListEntries(ctx context.Context, sheetID string, limit, offset int) ([]*domain.Entry, error) {
	if _, err := uc.sheetRepo.GetByID(ctx, sheetID); err != nil {
		return nil, err
	}

	limit, offset = domain.ValidatePagination(limit, offset)

	return uc.entryRepo.ListBySheet(ctx, sheetID, limit, offset)
}
