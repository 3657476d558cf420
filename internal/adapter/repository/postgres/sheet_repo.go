package postgres

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sagarline/sheetledger/internal/domain"
	"github.com/sagarline/sheetledger/internal/usecase"
)

const sheetColumns = `id, book_code, name, description, opening_balance, total_credit,
		total_debit, closing_balance, status, locked, created_by, updated_by,
		created_at, updated_at`

// SheetRepository implements usecase.SheetRepository.
type SheetRepository struct {
	pool *pgxpool.Pool
}

// NewSheetRepository creates a new SheetRepository.
func NewSheetRepository(pool *pgxpool.Pool) *SheetRepository {
	return &SheetRepository{pool: pool}
}

// Create inserts a new sheet.
func (r *SheetRepository) Create(ctx context.Context, tx usecase.Transaction, sheet *domain.Sheet) error {
	query := `
		INSERT INTO sheets (` + sheetColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := pgxTxOf(tx).Exec(ctx, query,
		sheet.ID,
		sheet.BookCode,
		sheet.Name,
		sheet.Description,
		decimalToNumeric(sheet.OpeningBalance),
		decimalToNumeric(sheet.TotalCredit),
		decimalToNumeric(sheet.TotalDebit),
		decimalToNumeric(sheet.ClosingBalance),
		string(sheet.Status),
		sheet.Locked,
		sheet.CreatedBy,
		sheet.UpdatedBy,
		sheet.CreatedAt,
		sheet.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation && pgErr.ConstraintName == "sheets_book_name_unique" {
			return domain.ErrDuplicateSheetName
		}
		return err
	}

	return nil
}

// GetByID retrieves a sheet by ID.
func (r *SheetRepository) GetByID(ctx context.Context, id string) (*domain.Sheet, error) {
	query := `SELECT ` + sheetColumns + ` FROM sheets WHERE id = $1`

	return r.scanSheet(r.pool.QueryRow(ctx, query, id))
}

// GetByIDForUpdate retrieves a sheet by ID with a FOR UPDATE row lock. The
// lock serializes concurrent engine operations on the same sheet.
func (r *SheetRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Sheet, error) {
	query := `SELECT ` + sheetColumns + ` FROM sheets WHERE id = $1 FOR UPDATE`

	return r.scanSheet(pgxTxOf(tx).QueryRow(ctx, query, id))
}

// ExistsByName reports whether a sheet with the name exists in the book,
// regardless of lifecycle status.
func (r *SheetRepository) ExistsByName(ctx context.Context, tx usecase.Transaction, bookCode, name string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM sheets WHERE book_code = $1 AND name = $2)`

	var exists bool
	err := querierOf(r.pool, tx).QueryRow(ctx, query, bookCode, name).Scan(&exists)

	return exists, err
}

// UpdateAggregates writes the recomputed aggregate fields and the audit
// stamp. Only the balance engine calls this.
func (r *SheetRepository) UpdateAggregates(ctx context.Context, tx usecase.Transaction, sheet *domain.Sheet) error {
	query := `
		UPDATE sheets
		SET opening_balance = $2, total_credit = $3, total_debit = $4,
		    closing_balance = $5, updated_by = $6, updated_at = $7
		WHERE id = $1
	`

	tag, err := pgxTxOf(tx).Exec(ctx, query,
		sheet.ID,
		decimalToNumeric(sheet.OpeningBalance),
		decimalToNumeric(sheet.TotalCredit),
		decimalToNumeric(sheet.TotalDebit),
		decimalToNumeric(sheet.ClosingBalance),
		sheet.UpdatedBy,
		sheet.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrSheetNotFound
	}

	return nil
}

// UpdateMeta writes name, description and lock flag.
func (r *SheetRepository) UpdateMeta(ctx context.Context, tx usecase.Transaction, sheet *domain.Sheet) error {
	query := `
		UPDATE sheets
		SET name = $2, description = $3, locked = $4, updated_by = $5, updated_at = $6
		WHERE id = $1
	`

	tag, err := pgxTxOf(tx).Exec(ctx, query,
		sheet.ID,
		sheet.Name,
		sheet.Description,
		sheet.Locked,
		sheet.UpdatedBy,
		sheet.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrSheetNotFound
	}

	return nil
}

// UpdateStatus moves a sheet between ACTIVE and ARCHIVED.
func (r *SheetRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.SheetStatus, actor string, at time.Time) error {
	query := `UPDATE sheets SET status = $2, updated_by = $3, updated_at = $4 WHERE id = $1`

	tag, err := pgxTxOf(tx).Exec(ctx, query, id, string(status), actor, at)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrSheetNotFound
	}

	return nil
}

// Delete hard-deletes a sheet row. Callers must have verified the sheet
// owns no entries; the FK on entries restricts the delete otherwise.
func (r *SheetRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	tag, err := pgxTxOf(tx).Exec(ctx, `DELETE FROM sheets WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrSheetNotFound
	}

	return nil
}

// List lists sheets, most recently updated first.
func (r *SheetRepository) List(ctx context.Context, filter usecase.SheetFilter) ([]*domain.Sheet, error) {
	query := `SELECT ` + sheetColumns + ` FROM sheets WHERE 1=1`

	args := []any{}

	if filter.BookCode != "" {
		args = append(args, filter.BookCode)
		query += ` AND book_code = $` + strconv.Itoa(len(args))
	}

	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		query += ` AND status = $` + strconv.Itoa(len(args))
	}

	args = append(args, filter.Limit)
	query += ` ORDER BY updated_at DESC LIMIT $` + strconv.Itoa(len(args))

	args = append(args, filter.Offset)
	query += ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sheets []*domain.Sheet

	for rows.Next() {
		sheet, err := r.scanSheet(rows)
		if err != nil {
			return nil, err
		}

		sheets = append(sheets, sheet)
	}

	return sheets, rows.Err()
}

func (r *SheetRepository) scanSheet(row pgx.Row) (*domain.Sheet, error) {
	var (
		sheet   domain.Sheet
		opening pgtype.Numeric
		credit  pgtype.Numeric
		debit   pgtype.Numeric
		closing pgtype.Numeric
		status  string
	)

	err := row.Scan(
		&sheet.ID,
		&sheet.BookCode,
		&sheet.Name,
		&sheet.Description,
		&opening,
		&credit,
		&debit,
		&closing,
		&status,
		&sheet.Locked,
		&sheet.CreatedBy,
		&sheet.UpdatedBy,
		&sheet.CreatedAt,
		&sheet.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSheetNotFound
		}

		return nil, err
	}

	sheet.OpeningBalance = numericToDecimal(opening)
	sheet.TotalCredit = numericToDecimal(credit)
	sheet.TotalDebit = numericToDecimal(debit)
	sheet.ClosingBalance = numericToDecimal(closing)
	sheet.Status = domain.SheetStatus(status)

	return &sheet, nil
}
