package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sagarline/sheetledger/internal/domain"
	"github.com/sagarline/sheetledger/internal/usecase"
)

// AuditRepository implements usecase.AuditRepository.
type AuditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

// CreateTx inserts an audit record inside the mutation's transaction so the
// trail commits or rolls back with the change it describes.
func (r *AuditRepository) CreateTx(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	detail, err := marshalDetail(log.Detail)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO audit_logs (id, actor, action, resource_type, resource_id, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = pgxTxOf(tx).Exec(ctx, query,
		log.ID,
		log.Actor,
		string(log.Action),
		log.ResourceType,
		log.ResourceID,
		detail,
		log.CreatedAt,
	)

	return err
}

// ListByResource returns a resource's audit trail, most recent first.
func (r *AuditRepository) ListByResource(ctx context.Context, resourceType, resourceID string, limit, offset int) ([]*domain.AuditLog, error) {
	query := `
		SELECT id, actor, action, resource_type, resource_id, detail, created_at
		FROM audit_logs
		WHERE resource_type = $1 AND resource_id = $2
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := r.pool.Query(ctx, query, resourceType, resourceID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*domain.AuditLog

	for rows.Next() {
		var (
			log    domain.AuditLog
			action string
			detail []byte
		)

		err := rows.Scan(&log.ID, &log.Actor, &action,
			&log.ResourceType, &log.ResourceID, &detail, &log.CreatedAt)
		if err != nil {
			return nil, err
		}

		log.Action = domain.AuditAction(action)

		if len(detail) > 0 {
			if err := json.Unmarshal(detail, &log.Detail); err != nil {
				return nil, fmt.Errorf("unmarshal audit detail: %w", err)
			}
		}

		logs = append(logs, &log)
	}

	return logs, rows.Err()
}

func marshalDetail(detail domain.JSON) ([]byte, error) {
	if detail == nil {
		return nil, nil
	}

	data, err := json.Marshal(detail)
	if err != nil {
		return nil, fmt.Errorf("marshal audit detail: %w", err)
	}

	return data, nil
}
