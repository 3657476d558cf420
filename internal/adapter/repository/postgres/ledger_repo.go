package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sagarline/sheetledger/internal/usecase"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	pool *pgxpool.Pool
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

// FindDrift compares every sheet's stored aggregates against the sums of
// its entry rows and returns the sheets where they disagree.
func (r *LedgerRepository) FindDrift(ctx context.Context) ([]usecase.Drift, error) {
	query := `
		SELECT s.id, s.name, s.total_credit, s.total_debit,
		       COALESCE(SUM(e.credit_amount), 0) AS computed_credit,
		       COALESCE(SUM(e.debit_amount), 0) AS computed_debit
		FROM sheets s
		LEFT JOIN entries e ON e.sheet_id = s.id
		GROUP BY s.id, s.name, s.total_credit, s.total_debit
		HAVING s.total_credit <> COALESCE(SUM(e.credit_amount), 0)
		    OR s.total_debit <> COALESCE(SUM(e.debit_amount), 0)
		ORDER BY s.name
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drifts []usecase.Drift

	for rows.Next() {
		var (
			drift          usecase.Drift
			storedCredit   pgtype.Numeric
			storedDebit    pgtype.Numeric
			computedCredit pgtype.Numeric
			computedDebit  pgtype.Numeric
		)

		err := rows.Scan(&drift.SheetID, &drift.Name,
			&storedCredit, &storedDebit, &computedCredit, &computedDebit)
		if err != nil {
			return nil, err
		}

		drift.StoredCredit = numericToDecimal(storedCredit)
		drift.StoredDebit = numericToDecimal(storedDebit)
		drift.ComputedCredit = numericToDecimal(computedCredit)
		drift.ComputedDebit = numericToDecimal(computedDebit)
		drifts = append(drifts, drift)
	}

	return drifts, rows.Err()
}
