package service

import (
	"context"
	"errors"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"

	scheduleerrors "github.com/tecmax-dev/sisvida-sub008/internal/schedules/errors"
	"github.com/tecmax-dev/sisvida-sub008/internal/schedules/repository"
	"github.com/tecmax-dev/sisvida-sub008/internal/schedules/validator"
	"github.com/tecmax-dev/sisvida-sub008/pkg/config"
	apperrors "github.com/tecmax-dev/sisvida-sub008/pkg/errors"
	"github.com/tecmax-dev/sisvida-sub008/pkg/model"
	"github.com/tecmax-dev/sisvida-sub008/pkg/sanitizer"
)

type ScheduleService interface {
	Create(ctx context.Context, sc *model.Schedule) error
	GetByID(ctx context.Context, id string) (*model.Schedule, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Schedule, int64, error)
	GetByProfessional(ctx context.Context, professionalID string) ([]*model.Schedule, error)
	Update(ctx context.Context, id string, updates *model.ScheduleUpdate) error
	Delete(ctx context.Context, id string) error
}

type scheduleService struct {
	repo      repository.ScheduleRepository
	validator *validator.ScheduleValidator
	cfg       *config.Config
}

func NewScheduleService(
	repo repository.ScheduleRepository,
	validator *validator.ScheduleValidator,
	cfg *config.Config,
) ScheduleService {
	return &scheduleService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *scheduleService) Create(ctx context.Context, sc *model.Schedule) error {
	s.sanitize(sc)
	s.applyDefaults(sc)

	if err := s.validator.Validate(sc); err != nil {
		s.cfg.Log.Warn("Schedule validation failed",
			"professional_id", sc.ProfessionalID,
			"day_of_week", sc.DayOfWeek,
			"error", err,
		)
		return apperrors.Validation("Schedule validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		existing, err := s.repo.FindByProfessional(sessCtx, sc.ProfessionalID)
		if err != nil {
			return apperrors.Internal("Failed to check for existing schedules", err)
		}

		for _, e := range existing {
			if e.DayOfWeek == sc.DayOfWeek {
				return apperrors.Conflict("Schedule for this weekday already exists for this professional")
			}
		}
		return s.repo.Create(sessCtx, sc)
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create schedule",
			"professional_id", sc.ProfessionalID,
			"day_of_week", sc.DayOfWeek,
			"error", err,
		)
		return err
	}

	s.cfg.Log.Info("Schedule created successfully",
		"id", sc.ID,
		"professional_id", sc.ProfessionalID,
		"day_of_week", sc.DayOfWeek,
		"capacity", sc.Capacity,
	)
	return nil
}

func (s *scheduleService) GetByID(ctx context.Context, id string) (*model.Schedule, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Schedule ID cannot be empty")
	}

	sc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, scheduleerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Schedule", id)
		}
		if errors.Is(err, scheduleerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid schedule ID format")
		}
		s.cfg.Log.Error("Failed to get schedule by ID",
			"id", id,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve schedule", err)
	}

	return sc, nil
}

func (s *scheduleService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Schedule, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	// Shared timeout so one stalled operation cancels the other.
	sharedCtx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	var count int64
	var schedules []*model.Schedule
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.Count(sharedCtx)
		if err != nil {
			s.cfg.Log.Error("Failed to count schedules", "error", err)
			errCount = apperrors.Internal("Failed to count schedules", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		schedules, err = s.repo.FindAll(sharedCtx, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to get all schedules",
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve schedules", err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	return schedules, count, nil
}

func (s *scheduleService) GetByProfessional(ctx context.Context, professionalID string) ([]*model.Schedule, error) {
	professionalID = sanitizer.TrimAndNormalize(professionalID)
	if professionalID == "" {
		return nil, apperrors.InvalidInput("Professional ID must be provided")
	}

	schedules, err := s.repo.FindByProfessional(ctx, professionalID)
	if err != nil {
		s.cfg.Log.Error("Failed to get schedules by professional",
			"professional_id", professionalID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve schedules", err)
	}

	s.cfg.Log.Debug("Schedules lookup by professional completed",
		"professional_id", professionalID,
		"results_count", len(schedules),
	)

	return schedules, nil
}

func (s *scheduleService) Update(ctx context.Context, id string, updates *model.ScheduleUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Schedule ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, scheduleerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Schedule", id)
		}
		if errors.Is(err, scheduleerrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid schedule ID format")
		}
		return apperrors.Internal("Failed to check schedule existence", err)
	}

	s.sanitizeUpdate(updates)
	merged := s.mergeScheduleUpdates(existing, updates)
	if err := s.validator.Validate(merged); err != nil {
		s.cfg.Log.Warn("Schedule validation failed",
			"id", id,
			"professional_id", merged.ProfessionalID,
			"error", err,
		)
		return apperrors.Validation("Schedule validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		existingSchedules, err := s.repo.FindByProfessional(sessCtx, merged.ProfessionalID)
		if err != nil {
			return apperrors.Internal("Failed to check for duplicate schedules", err)
		}
		for _, e := range existingSchedules {
			if e.ID == merged.ID {
				continue
			}
			if e.DayOfWeek == merged.DayOfWeek {
				return apperrors.Conflict("Another schedule for this weekday already exists for this professional")
			}
		}
		if _, err := s.repo.Update(sessCtx, id, merged); err != nil {
			s.cfg.Log.Error("Failed to update schedule",
				"id", id,
				"error", err,
			)
			return apperrors.Internal("Failed to update schedule", err)
		}
		return nil
	})

	if err != nil {
		return err
	}

	s.cfg.Log.Info("Schedule updated successfully",
		"id", id,
		"professional_id", merged.ProfessionalID,
		"day_of_week", merged.DayOfWeek,
	)
	return nil
}

func (s *scheduleService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Schedule ID cannot be empty")
	}

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.Delete(sessCtx, id); err != nil {
			if errors.Is(err, scheduleerrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Schedule", id)
			}
			if errors.Is(err, scheduleerrors.ErrInvalidID) {
				return apperrors.InvalidInput("Invalid schedule ID format")
			}
			s.cfg.Log.Error("Failed to delete schedule",
				"id", id,
				"error", err,
			)
			return apperrors.Internal("Failed to delete schedule", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.cfg.Log.Info("Schedule deleted successfully", "id", id)
	return nil
}

func (s *scheduleService) sanitize(sc *model.Schedule) {
	sc.ProfessionalID = sanitizer.TrimAndNormalize(sc.ProfessionalID)
	sc.StartTime = sanitizer.TrimAndNormalize(sc.StartTime)
	sc.EndTime = sanitizer.TrimAndNormalize(sc.EndTime)
}

func (s *scheduleService) sanitizeUpdate(updates *model.ScheduleUpdate) {
	if updates.StartTime != "" {
		updates.StartTime = sanitizer.TrimAndNormalize(updates.StartTime)
	}
	if updates.EndTime != "" {
		updates.EndTime = sanitizer.TrimAndNormalize(updates.EndTime)
	}
}

func (s *scheduleService) applyDefaults(sc *model.Schedule) {
	if sc.StartTime == "" {
		sc.StartTime = s.cfg.DefaultStartOfDay
	}
	if sc.EndTime == "" {
		sc.EndTime = s.cfg.DefaultEndOfDay
	}
	if sc.Capacity == 0 {
		sc.Capacity = s.cfg.DefaultSlotCapacity
	}
}

func (s *scheduleService) mergeScheduleUpdates(existing *model.Schedule, updates *model.ScheduleUpdate) *model.Schedule {
	merged := *existing

	if updates.DayOfWeek != nil {
		merged.DayOfWeek = *updates.DayOfWeek
	}
	if updates.StartTime != "" {
		merged.StartTime = updates.StartTime
	}
	if updates.EndTime != "" {
		merged.EndTime = updates.EndTime
	}
	if updates.Capacity != nil {
		merged.Capacity = *updates.Capacity
	}

	merged.ID = existing.ID
	merged.ProfessionalID = existing.ProfessionalID
	merged.CreatedAt = existing.CreatedAt
	return &merged
}
