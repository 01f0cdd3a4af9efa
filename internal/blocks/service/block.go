package service

import (
	"context"
	"errors"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"

	blockerrors "github.com/tecmax-dev/sisvida-sub008/internal/blocks/errors"
	"github.com/tecmax-dev/sisvida-sub008/internal/blocks/repository"
	"github.com/tecmax-dev/sisvida-sub008/internal/blocks/validator"
	"github.com/tecmax-dev/sisvida-sub008/pkg/config"
	apperrors "github.com/tecmax-dev/sisvida-sub008/pkg/errors"
	"github.com/tecmax-dev/sisvida-sub008/pkg/model"
	"github.com/tecmax-dev/sisvida-sub008/pkg/sanitizer"
)

type BlockService interface {
	Create(ctx context.Context, b *model.Block) error
	GetByID(ctx context.Context, id string) (*model.Block, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Block, int64, error)
	GetByDate(ctx context.Context, date string) ([]*model.Block, error)
	Delete(ctx context.Context, id string) error
}

type blockService struct {
	repo      repository.BlockRepository
	validator *validator.BlockValidator
	cfg       *config.Config
}

func NewBlockService(
	repo repository.BlockRepository,
	validator *validator.BlockValidator,
	cfg *config.Config,
) BlockService {
	return &blockService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *blockService) Create(ctx context.Context, b *model.Block) error {
	s.sanitize(b)

	if err := s.validator.Validate(b); err != nil {
		s.cfg.Log.Warn("Block validation failed",
			"date", b.Date,
			"professional_id", b.ProfessionalID,
			"error", err,
		)
		return apperrors.Validation("Block validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		existing, err := s.repo.FindByDate(sessCtx, b.Date)
		if err != nil {
			return apperrors.Internal("Failed to check for existing blocks", err)
		}

		for _, e := range existing {
			if e.ProfessionalID == b.ProfessionalID {
				return apperrors.Conflict("Block for this date and scope already exists")
			}
		}
		return s.repo.Create(sessCtx, b)
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create block",
			"date", b.Date,
			"professional_id", b.ProfessionalID,
			"error", err,
		)
		return err
	}

	s.cfg.Log.Info("Block created successfully",
		"id", b.ID,
		"date", b.Date,
		"professional_id", b.ProfessionalID,
		"clinic_wide", b.ProfessionalID == "",
	)
	return nil
}

func (s *blockService) GetByID(ctx context.Context, id string) (*model.Block, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Block ID cannot be empty")
	}

	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, blockerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Block", id)
		}
		if errors.Is(err, blockerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid block ID format")
		}
		s.cfg.Log.Error("Failed to get block by ID",
			"id", id,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve block", err)
	}

	return b, nil
}

func (s *blockService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Block, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	sharedCtx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	var count int64
	var blocks []*model.Block
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.Count(sharedCtx)
		if err != nil {
			s.cfg.Log.Error("Failed to count blocks", "error", err)
			errCount = apperrors.Internal("Failed to count blocks", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		blocks, err = s.repo.FindAll(sharedCtx, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to get all blocks",
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve blocks", err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	return blocks, count, nil
}

func (s *blockService) GetByDate(ctx context.Context, date string) ([]*model.Block, error) {
	date = sanitizer.TrimAndNormalize(date)
	if date == "" {
		return nil, apperrors.InvalidInput("Date must be provided")
	}

	blocks, err := s.repo.FindByDate(ctx, date)
	if err != nil {
		s.cfg.Log.Error("Failed to get blocks by date",
			"date", date,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve blocks", err)
	}

	return blocks, nil
}

func (s *blockService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Block ID cannot be empty")
	}

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.Delete(sessCtx, id); err != nil {
			if errors.Is(err, blockerrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Block", id)
			}
			if errors.Is(err, blockerrors.ErrInvalidID) {
				return apperrors.InvalidInput("Invalid block ID format")
			}
			s.cfg.Log.Error("Failed to delete block",
				"id", id,
				"error", err,
			)
			return apperrors.Internal("Failed to delete block", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.cfg.Log.Info("Block deleted successfully", "id", id)
	return nil
}

func (s *blockService) sanitize(b *model.Block) {
	b.Date = sanitizer.TrimAndNormalize(b.Date)
	b.ProfessionalID = sanitizer.TrimAndNormalize(b.ProfessionalID)
	b.Reason = sanitizer.TrimAndNormalize(b.Reason)
}
