package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sagarline/sheetledger/internal/domain"
	"github.com/sagarline/sheetledger/internal/infrastructure/metrics"
)

// ContainerUseCase manages container customs summaries. The duty figures
// are derived once at creation; the rows are immutable afterwards and only
// read by reports.
type ContainerUseCase struct {
	txManager     TransactionManager
	containerRepo ContainerRepository
	auditRepo     AuditRepository
	idGen         IDGenerator
	metrics       *metrics.Metrics
}

// NewContainerUseCase creates a new ContainerUseCase.
func NewContainerUseCase(
	txManager TransactionManager,
	containerRepo ContainerRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	m *metrics.Metrics,
) *ContainerUseCase {
	return &ContainerUseCase{
		txManager:     txManager,
		containerRepo: containerRepo,
		auditRepo:     auditRepo,
		idGen:         idGen,
		metrics:       m,
	}
}

// CreateContainerInput represents input for recording a container summary.
type CreateContainerInput struct {
	Code            string
	Description     string
	AssessableValue decimal.Decimal
	BCDRate         decimal.Decimal
	SWSRate         decimal.Decimal
	IGSTRate        decimal.Decimal
	Actor           string
}

// CreateContainer computes the duty breakdown and persists the summary.
func (uc *ContainerUseCase) CreateContainer(ctx context.Context, input CreateContainerInput) (*domain.ContainerSummary, error) {
	if strings.TrimSpace(input.Code) == "" {
		return nil, domain.ErrInvalidContainerCode
	}

	if err := domain.ValidateAmount(input.AssessableValue); err != nil {
		return nil, err
	}

	summary := &domain.ContainerSummary{
		ID:              uc.idGen.Generate(),
		Code:            strings.TrimSpace(input.Code),
		Description:     input.Description,
		AssessableValue: input.AssessableValue,
		BCDRate:         input.BCDRate,
		SWSRate:         input.SWSRate,
		IGSTRate:        input.IGSTRate,
		CreatedBy:       input.Actor,
		CreatedAt:       time.Now().UTC(),
	}
	summary.ComputeDuty()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := uc.containerRepo.Create(ctx, tx, summary); err != nil {
		return nil, err
	}

	log := &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		Actor:        input.Actor,
		Action:       domain.AuditActionContainerCreate,
		ResourceType: "container",
		ResourceID:   summary.ID,
		Detail: domain.JSON{
			"code":        summary.Code,
			"total_duty":  summary.TotalDuty.String(),
			"landed_cost": summary.LandedCost.String(),
		},
		CreatedAt: summary.CreatedAt,
	}

	if err := uc.auditRepo.CreateTx(ctx, tx, log); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	uc.metrics.ContainersCreated.Inc()

	return summary, nil
}

// GetContainer retrieves a container summary by ID.
func (uc *ContainerUseCase) GetContainer(ctx context.Context, id string) (*domain.ContainerSummary, error) {
	return uc.containerRepo.GetByID(ctx, id)
}

// ListContainers lists container summaries, newest first.
func (uc *ContainerUseCase) ListContainers(ctx context.Context, limit, offset int) ([]*domain.ContainerSummary, error) {
	limit, offset = domain.ValidatePagination(limit, offset)

	return uc.containerRepo.List(ctx, limit, offset)
}

// DeleteContainer removes a container summary.
func (uc *ContainerUseCase) DeleteContainer(ctx context.Context, id string) error {
	return uc.containerRepo.Delete(ctx, id)
}
