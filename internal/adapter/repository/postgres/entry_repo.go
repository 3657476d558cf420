package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/sagarline/sheetledger/internal/domain"
	"github.com/sagarline/sheetledger/internal/usecase"
)

const entryColumns = `id, sheet_id, kind, entry_date, particulars, credit_amount,
		debit_amount, tag, note, created_by, updated_by, created_at, updated_at`

// EntryRepository implements usecase.EntryRepository.
type EntryRepository struct {
	pool *pgxpool.Pool
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(pool *pgxpool.Pool) *EntryRepository {
	return &EntryRepository{pool: pool}
}

// Create inserts a new entry inside the engine's transaction.
func (r *EntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	query := `
		INSERT INTO entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := pgxTxOf(tx).Exec(ctx, query,
		entry.ID,
		entry.SheetID,
		string(entry.Kind),
		timeToPgDate(entry.EntryDate),
		entry.Particulars,
		decimalToNumeric(entry.CreditAmount),
		decimalToNumeric(entry.DebitAmount),
		entry.Tag,
		entry.Note,
		entry.CreatedBy,
		entry.UpdatedBy,
		entry.CreatedAt,
		entry.UpdatedAt,
	)

	return err
}

// GetByID retrieves an entry by ID.
func (r *EntryRepository) GetByID(ctx context.Context, id string) (*domain.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE id = $1`

	return scanEntry(r.pool.QueryRow(ctx, query, id))
}

// GetByIDTx re-reads an entry inside the engine's transaction, after the
// sheet lock is held.
func (r *EntryRepository) GetByIDTx(ctx context.Context, tx usecase.Transaction, id string) (*domain.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE id = $1`

	return scanEntry(pgxTxOf(tx).QueryRow(ctx, query, id))
}

// Update rewrites all mutable entry fields.
func (r *EntryRepository) Update(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	query := `
		UPDATE entries
		SET kind = $2, entry_date = $3, particulars = $4, credit_amount = $5,
		    debit_amount = $6, tag = $7, note = $8, updated_by = $9, updated_at = $10
		WHERE id = $1
	`

	tag, err := pgxTxOf(tx).Exec(ctx, query,
		entry.ID,
		string(entry.Kind),
		timeToPgDate(entry.EntryDate),
		entry.Particulars,
		decimalToNumeric(entry.CreditAmount),
		decimalToNumeric(entry.DebitAmount),
		entry.Tag,
		entry.Note,
		entry.UpdatedBy,
		entry.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrEntryNotFound
	}

	return nil
}

// Delete removes an entry.
func (r *EntryRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	tag, err := pgxTxOf(tx).Exec(ctx, `DELETE FROM entries WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrEntryNotFound
	}

	return nil
}

// ListBySheet lists a sheet's entries, newest entry date first.
func (r *EntryRepository) ListBySheet(ctx context.Context, sheetID string, limit, offset int) ([]*domain.Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM entries
		WHERE sheet_id = $1
		ORDER BY entry_date DESC, created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, sheetID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectEntries(rows)
}

// ListBySheetTx lists all of a sheet's entries inside a transaction, used
// when duplicating a sheet.
func (r *EntryRepository) ListBySheetTx(ctx context.Context, tx usecase.Transaction, sheetID string) ([]*domain.Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM entries
		WHERE sheet_id = $1
		ORDER BY entry_date, created_at
	`

	rows, err := pgxTxOf(tx).Query(ctx, query, sheetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectEntries(rows)
}

// CountBySheet counts a sheet's entries. A nil tx reads latest committed
// state from the pool.
func (r *EntryRepository) CountBySheet(ctx context.Context, tx usecase.Transaction, sheetID string) (int64, error) {
	var count int64
	err := querierOf(r.pool, tx).QueryRow(ctx,
		`SELECT COUNT(*) FROM entries WHERE sheet_id = $1`, sheetID).Scan(&count)

	return count, err
}

// SumBySheet recomputes both aggregate totals from the sheet's entry rows
// as seen by the current transaction. This is the engine's source of truth;
// running totals are never trusted across operations.
func (r *EntryRepository) SumBySheet(ctx context.Context, tx usecase.Transaction, sheetID string) (decimal.Decimal, decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(credit_amount), 0), COALESCE(SUM(debit_amount), 0)
		FROM entries
		WHERE sheet_id = $1
	`

	var credit, debit pgtype.Numeric

	err := querierOf(r.pool, tx).QueryRow(ctx, query, sheetID).Scan(&credit, &debit)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	return numericToDecimal(credit), numericToDecimal(debit), nil
}

// SumByTag groups a sheet's entries by tag and sums each side.
func (r *EntryRepository) SumByTag(ctx context.Context, sheetID string) ([]domain.TagTotal, error) {
	query := `
		SELECT tag, COALESCE(SUM(credit_amount), 0), COALESCE(SUM(debit_amount), 0), COUNT(*)
		FROM entries
		WHERE sheet_id = $1
		GROUP BY tag
		ORDER BY tag
	`

	rows, err := r.pool.Query(ctx, query, sheetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var totals []domain.TagTotal

	for rows.Next() {
		var (
			total  domain.TagTotal
			credit pgtype.Numeric
			debit  pgtype.Numeric
		)

		if err := rows.Scan(&total.Tag, &credit, &debit, &total.EntryCount); err != nil {
			return nil, err
		}

		total.TotalCredit = numericToDecimal(credit)
		total.TotalDebit = numericToDecimal(debit)
		totals = append(totals, total)
	}

	return totals, rows.Err()
}

func scanEntry(row pgx.Row) (*domain.Entry, error) {
	var (
		entry  domain.Entry
		kind   string
		credit pgtype.Numeric
		debit  pgtype.Numeric
	)

	err := row.Scan(
		&entry.ID,
		&entry.SheetID,
		&kind,
		&entry.EntryDate,
		&entry.Particulars,
		&credit,
		&debit,
		&entry.Tag,
		&entry.Note,
		&entry.CreatedBy,
		&entry.UpdatedBy,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}

		return nil, err
	}

	entry.Kind = domain.EntryKind(kind)
	entry.CreditAmount = numericToDecimal(credit)
	entry.DebitAmount = numericToDecimal(debit)

	return &entry, nil
}

func collectEntries(rows pgx.Rows) ([]*domain.Entry, error) {
	var entries []*domain.Entry

	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}

		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
