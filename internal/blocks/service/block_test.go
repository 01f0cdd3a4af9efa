package service

import (
	"context"
	"testing"
	"time"

	"github.com/tecmax-dev/sisvida-sub008/internal/blocks/validator"
	"github.com/tecmax-dev/sisvida-sub008/pkg/config"
	mongotx "github.com/tecmax-dev/sisvida-sub008/pkg/db/mongo"
	apperrors "github.com/tecmax-dev/sisvida-sub008/pkg/errors"
	"github.com/tecmax-dev/sisvida-sub008/pkg/logger"
	"github.com/tecmax-dev/sisvida-sub008/pkg/model"
)

type mockBlockRepository struct {
	createFunc      func(ctx context.Context, b *model.Block) error
	findByIDFunc    func(ctx context.Context, id string) (*model.Block, error)
	findAllFunc     func(ctx context.Context, limit int, offset int64) ([]*model.Block, error)
	findByDateFunc  func(ctx context.Context, date string) ([]*model.Block, error)
	findInRangeFunc func(ctx context.Context, from, to string) ([]*model.Block, error)
	deleteFunc      func(ctx context.Context, id string) error
	countFunc       func(ctx context.Context) (int64, error)
}

func (m *mockBlockRepository) Create(ctx context.Context, b *model.Block) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, b)
	}
	return nil
}

func (m *mockBlockRepository) FindByID(ctx context.Context, id string) (*model.Block, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockBlockRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Block, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, limit, offset)
	}
	return []*model.Block{}, nil
}

func (m *mockBlockRepository) FindByDate(ctx context.Context, date string) ([]*model.Block, error) {
	if m.findByDateFunc != nil {
		return m.findByDateFunc(ctx, date)
	}
	return []*model.Block{}, nil
}

func (m *mockBlockRepository) FindInRange(ctx context.Context, from, to string) ([]*model.Block, error) {
	if m.findInRangeFunc != nil {
		return m.findInRangeFunc(ctx, from, to)
	}
	return []*model.Block{}, nil
}

func (m *mockBlockRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockBlockRepository) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func (m *mockBlockRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

func testConfig() *config.Config {
	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
	return &config.Config{
		Log:         log,
		ReadTimeout: 5 * time.Second,
	}
}

func newTestService(repo *mockBlockRepository, cfg *config.Config) BlockService {
	return NewBlockService(repo, validator.NewBlockValidator(cfg.Log), cfg)
}

func TestCreate_ClinicWideAndScopedCoexist(t *testing.T) {
	cfg := testConfig()

	var created *model.Block
	repo := &mockBlockRepository{
		findByDateFunc: func(ctx context.Context, date string) ([]*model.Block, error) {
			// A clinic-wide block already exists on this date.
			return []*model.Block{{ID: "b1", Date: date, ProfessionalID: ""}}, nil
		},
		createFunc: func(ctx context.Context, b *model.Block) error {
			created = b
			return nil
		},
	}
	svc := newTestService(repo, cfg)

	err := svc.Create(context.Background(), &model.Block{
		Date:           "2026-09-07",
		ProfessionalID: "prof-1",
		Reason:         "vacation",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created == nil {
		t.Fatal("scoped block should be created alongside a clinic-wide one")
	}
}

func TestCreate_DuplicateScopeConflicts(t *testing.T) {
	cfg := testConfig()

	repo := &mockBlockRepository{
		findByDateFunc: func(ctx context.Context, date string) ([]*model.Block, error) {
			return []*model.Block{{ID: "b1", Date: date, ProfessionalID: "prof-1"}}, nil
		},
		createFunc: func(ctx context.Context, b *model.Block) error {
			t.Fatal("create must not be reached on duplicate scope")
			return nil
		},
	}
	svc := newTestService(repo, cfg)

	err := svc.Create(context.Background(), &model.Block{
		Date:           "2026-09-07",
		ProfessionalID: "prof-1",
	})
	if err == nil {
		t.Fatal("expected conflict error, got nil")
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected CONFLICT, got %v", err)
	}
}

func TestCreate_RejectsImpossibleDate(t *testing.T) {
	cfg := testConfig()
	svc := newTestService(&mockBlockRepository{}, cfg)

	err := svc.Create(context.Background(), &model.Block{
		Date: "2026-02-30",
	})
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeValidation {
		t.Errorf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestGetByDate_RequiresDate(t *testing.T) {
	cfg := testConfig()
	svc := newTestService(&mockBlockRepository{}, cfg)

	_, err := svc.GetByDate(context.Background(), "   ")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}
