package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/sagarline/sheetledger/internal/domain"
	"github.com/sagarline/sheetledger/internal/infrastructure/metrics"
	"github.com/sagarline/sheetledger/internal/usecase"
	"github.com/sagarline/sheetledger/internal/usecase/mocks"
)

func newContainerUseCase() (*usecase.ContainerUseCase, *mocks.MockContainerRepository, *mocks.MockAuditRepository) {
	repo := mocks.NewMockContainerRepository()
	audit := mocks.NewMockAuditRepository()
	uc := usecase.NewContainerUseCase(
		mocks.NewMockTransactionManager(), repo, audit,
		mocks.NewMockIDGenerator(), metrics.NewWith(prometheus.NewRegistry()),
	)
	return uc, repo, audit
}

func TestContainerUseCase_CreateContainer(t *testing.T) {
	uc, _, _ := newContainerUseCase()

	summary, err := uc.CreateContainer(context.Background(), usecase.CreateContainerInput{
		Code:            "CONT-001",
		Description:     "40ft dry",
		AssessableValue: decimal.NewFromInt(100000),
		BCDRate:         decimal.NewFromInt(10),
		SWSRate:         decimal.NewFromInt(10),
		IGSTRate:        decimal.NewFromInt(18),
		Actor:           "tester",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	checks := []struct {
		field string
		got   decimal.Decimal
		want  string
	}{
		{"BCD", summary.BCD, "10000"},
		{"SWS", summary.SWS, "1000"},
		{"IGST", summary.IGST, "19980"},
		{"total duty", summary.TotalDuty, "30980"},
		{"landed cost", summary.LandedCost, "130980"},
	}
	for _, c := range checks {
		if c.got.String() != c.want {
			t.Errorf("%s = %s, want %s", c.field, c.got, c.want)
		}
	}
}

func TestContainerUseCase_CreateContainerValidation(t *testing.T) {
	uc, _, _ := newContainerUseCase()

	t.Run("blank code rejected", func(t *testing.T) {
		_, err := uc.CreateContainer(context.Background(), usecase.CreateContainerInput{
			Code:            "   ",
			AssessableValue: decimal.NewFromInt(1000),
			Actor:           "tester",
		})
		if !errors.Is(err, domain.ErrInvalidContainerCode) {
			t.Fatalf("expected ErrInvalidContainerCode, got %v", err)
		}
	})

	t.Run("non-positive value rejected", func(t *testing.T) {
		_, err := uc.CreateContainer(context.Background(), usecase.CreateContainerInput{
			Code:            "CONT-001",
			AssessableValue: decimal.Zero,
			Actor:           "tester",
		})
		if !errors.Is(err, domain.ErrInvalidAmount) {
			t.Fatalf("expected ErrInvalidAmount, got %v", err)
		}
	})
}

func TestContainerUseCase_CreateContainerWritesAuditLog(t *testing.T) {
	uc, _, audit := newContainerUseCase()

	summary, err := uc.CreateContainer(context.Background(), usecase.CreateContainerInput{
		Code:            "CONT-003",
		AssessableValue: decimal.NewFromInt(2000),
		BCDRate:         decimal.NewFromInt(10),
		Actor:           "tester",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	logs := audit.Logs()
	if len(logs) != 1 {
		t.Fatalf("expected 1 audit log, got %d", len(logs))
	}
	if logs[0].Action != domain.AuditActionContainerCreate {
		t.Errorf("action = %s, want %s", logs[0].Action, domain.AuditActionContainerCreate)
	}
	if logs[0].ResourceType != "container" || logs[0].ResourceID != summary.ID {
		t.Errorf("resource = %s/%s, want container/%s", logs[0].ResourceType, logs[0].ResourceID, summary.ID)
	}
	if logs[0].Actor != "tester" {
		t.Errorf("actor = %s, want tester", logs[0].Actor)
	}
}

func TestContainerUseCase_GetAndDelete(t *testing.T) {
	uc, _, _ := newContainerUseCase()

	summary, err := uc.CreateContainer(context.Background(), usecase.CreateContainerInput{
		Code:            "CONT-002",
		AssessableValue: decimal.NewFromInt(5000),
		BCDRate:         decimal.NewFromInt(5),
		Actor:           "tester",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	got, err := uc.GetContainer(context.Background(), summary.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Code != "CONT-002" {
		t.Errorf("code = %s, want CONT-002", got.Code)
	}

	if err := uc.DeleteContainer(context.Background(), summary.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, err := uc.GetContainer(context.Background(), summary.ID); !errors.Is(err, domain.ErrContainerNotFound) {
		t.Fatalf("expected ErrContainerNotFound, got %v", err)
	}
}
