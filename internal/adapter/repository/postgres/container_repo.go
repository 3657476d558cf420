package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sagarline/sheetledger/internal/domain"
	"github.com/sagarline/sheetledger/internal/usecase"
)

const containerColumns = `id, code, description, assessable_value, bcd_rate, sws_rate,
		igst_rate, bcd, sws, igst, total_duty, landed_cost, created_by, created_at`

// ContainerRepository implements usecase.ContainerRepository.
type ContainerRepository struct {
	pool *pgxpool.Pool
}

// NewContainerRepository creates a new ContainerRepository.
func NewContainerRepository(pool *pgxpool.Pool) *ContainerRepository {
	return &ContainerRepository{pool: pool}
}

// Create inserts a container summary with its precomputed duty figures.
func (r *ContainerRepository) Create(ctx context.Context, tx usecase.Transaction, summary *domain.ContainerSummary) error {
	query := `
		INSERT INTO container_summaries (` + containerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := pgxTxOf(tx).Exec(ctx, query,
		summary.ID,
		summary.Code,
		summary.Description,
		decimalToNumeric(summary.AssessableValue),
		decimalToNumeric(summary.BCDRate),
		decimalToNumeric(summary.SWSRate),
		decimalToNumeric(summary.IGSTRate),
		decimalToNumeric(summary.BCD),
		decimalToNumeric(summary.SWS),
		decimalToNumeric(summary.IGST),
		decimalToNumeric(summary.TotalDuty),
		decimalToNumeric(summary.LandedCost),
		summary.CreatedBy,
		summary.CreatedAt,
	)

	return err
}

// GetByID retrieves a container summary by ID.
func (r *ContainerRepository) GetByID(ctx context.Context, id string) (*domain.ContainerSummary, error) {
	query := `SELECT ` + containerColumns + ` FROM container_summaries WHERE id = $1`

	return scanContainer(r.pool.QueryRow(ctx, query, id))
}

// List returns container summaries, most recent first.
func (r *ContainerRepository) List(ctx context.Context, limit, offset int) ([]*domain.ContainerSummary, error) {
	query := `
		SELECT ` + containerColumns + `
		FROM container_summaries
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []*domain.ContainerSummary

	for rows.Next() {
		summary, err := scanContainer(rows)
		if err != nil {
			return nil, err
		}

		summaries = append(summaries, summary)
	}

	return summaries, rows.Err()
}

// Delete removes a container summary.
func (r *ContainerRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM container_summaries WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrContainerNotFound
	}

	return nil
}

func scanContainer(row pgx.Row) (*domain.ContainerSummary, error) {
	var (
		summary domain.ContainerSummary
		nums    [9]pgtype.Numeric
	)

	err := row.Scan(
		&summary.ID,
		&summary.Code,
		&summary.Description,
		&nums[0],
		&nums[1],
		&nums[2],
		&nums[3],
		&nums[4],
		&nums[5],
		&nums[6],
		&nums[7],
		&nums[8],
		&summary.CreatedBy,
		&summary.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrContainerNotFound
		}

		return nil, err
	}

	summary.AssessableValue = numericToDecimal(nums[0])
	summary.BCDRate = numericToDecimal(nums[1])
	summary.SWSRate = numericToDecimal(nums[2])
	summary.IGSTRate = numericToDecimal(nums[3])
	summary.BCD = numericToDecimal(nums[4])
	summary.SWS = numericToDecimal(nums[5])
	summary.IGST = numericToDecimal(nums[6])
	summary.TotalDuty = numericToDecimal(nums[7])
	summary.LandedCost = numericToDecimal(nums[8])

	return &summary, nil
}
