package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	appointmenterrors "github.com/tecmax-dev/sisvida-sub008/internal/appointments/errors"
	"github.com/tecmax-dev/sisvida-sub008/internal/appointments/repository"
	"github.com/tecmax-dev/sisvida-sub008/internal/appointments/validator"
	"github.com/tecmax-dev/sisvida-sub008/internal/availability/calculator"
	availability "github.com/tecmax-dev/sisvida-sub008/internal/availability/service"
	"github.com/tecmax-dev/sisvida-sub008/internal/notify"
	"github.com/tecmax-dev/sisvida-sub008/pkg/config"
	apperrors "github.com/tecmax-dev/sisvida-sub008/pkg/errors"
	"github.com/tecmax-dev/sisvida-sub008/pkg/model"
	"github.com/tecmax-dev/sisvida-sub008/pkg/sanitizer"
)

type AppointmentService interface {
	Create(ctx context.Context, a *model.Appointment) error
	GetByID(ctx context.Context, id string) (*model.Appointment, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Appointment, int64, error)
	Search(ctx context.Context, professionalID, date string) ([]*model.Appointment, error)
	Cancel(ctx context.Context, id string) error
}

type appointmentService struct {
	repo      repository.AppointmentRepository
	lockRepo  repository.SlotLockRepository
	schedules availability.ScheduleReader
	blocks    availability.BlockReader
	validator *validator.AppointmentValidator
	notifier  notify.Notifier
	cfg       *config.Config
	now       func() time.Time
}

func NewAppointmentService(
	repo repository.AppointmentRepository,
	lockRepo repository.SlotLockRepository,
	schedules availability.ScheduleReader,
	blocks availability.BlockReader,
	validator *validator.AppointmentValidator,
	notifier notify.Notifier,
	cfg *config.Config,
) AppointmentService {
	return &appointmentService{
		repo:      repo,
		lockRepo:  lockRepo,
		schedules: schedules,
		blocks:    blocks,
		validator: validator,
		notifier:  notifier,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *appointmentService) Create(ctx context.Context, a *model.Appointment) error {
	s.sanitize(a)
	s.applyDefaults(a)

	if err := s.validator.Validate(a); err != nil {
		s.cfg.Log.Warn("Appointment validation failed",
			"professional_id", a.ProfessionalID,
			"date", a.Date,
			"start_time", a.StartTime,
			"error", err,
		)
		return apperrors.Validation("Appointment validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.deriveEndTime(a); err != nil {
		return err
	}

	schedule, err := s.scheduleForSlot(ctx, a)
	if err != nil {
		return err
	}

	// Advisory lock serializes concurrent creates for the same slot; losers
	// get a clean conflict instead of racing the capacity count below.
	lockID, err := s.acquireSlotLock(ctx, a)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := s.lockRepo.Delete(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release slot lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		booked, err := s.repo.CountActiveBySlot(sessCtx, a.ProfessionalID, a.Date, a.StartTime)
		if err != nil {
			return apperrors.Internal("Failed to check slot load", err)
		}
		if booked >= int64(schedule.Capacity) {
			return apperrors.Conflict("This time slot is fully booked")
		}
		if err := s.repo.Create(sessCtx, a); err != nil {
			return apperrors.Internal("Failed to create appointment", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create appointment",
			"professional_id", a.ProfessionalID,
			"date", a.Date,
			"start_time", a.StartTime,
			"error", err,
		)
		return err
	}

	s.cfg.Log.Info("Appointment created successfully",
		"id", a.ID,
		"professional_id", a.ProfessionalID,
		"date", a.Date,
		"start_time", a.StartTime,
	)

	s.notifier.AppointmentCreated(a)
	return nil
}

func (s *appointmentService) GetByID(ctx context.Context, id string) (*model.Appointment, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Appointment ID cannot be empty")
	}

	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmenterrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Appointment", id)
		}
		if errors.Is(err, appointmenterrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid appointment ID format")
		}
		s.cfg.Log.Error("Failed to get appointment by ID",
			"id", id,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve appointment", err)
	}

	return a, nil
}

func (s *appointmentService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Appointment, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	sharedCtx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	var count int64
	var appointments []*model.Appointment
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.Count(sharedCtx)
		if err != nil {
			s.cfg.Log.Error("Failed to count appointments", "error", err)
			errCount = apperrors.Internal("Failed to count appointments", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		appointments, err = s.repo.FindAll(sharedCtx, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list appointments",
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve appointments", err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	return appointments, count, nil
}

func (s *appointmentService) Search(ctx context.Context, professionalID, date string) ([]*model.Appointment, error) {
	professionalID = sanitizer.TrimAndNormalize(professionalID)
	date = sanitizer.TrimAndNormalize(date)
	if professionalID == "" || date == "" {
		return nil, apperrors.InvalidInput("Professional ID and date must be provided")
	}

	appointments, err := s.repo.FindByProfessionalAndDate(ctx, professionalID, date)
	if err != nil {
		s.cfg.Log.Error("Failed to search appointments",
			"professional_id", professionalID,
			"date", date,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to search appointments", err)
	}

	return appointments, nil
}

// Cancel frees the slot. Cancelling an already cancelled appointment is a
// no-op, so retried cancellations stay safe.
func (s *appointmentService) Cancel(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Appointment ID cannot be empty")
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.Status == model.AppointmentStatusCancelled {
		return nil
	}

	if err := s.repo.UpdateStatus(ctx, id, model.AppointmentStatusCancelled); err != nil {
		if errors.Is(err, appointmenterrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Appointment", id)
		}
		s.cfg.Log.Error("Failed to cancel appointment",
			"id", id,
			"error", err,
		)
		return apperrors.Internal("Failed to cancel appointment", err)
	}

	s.cfg.Log.Info("Appointment cancelled", "id", id)
	return nil
}

func (s *appointmentService) sanitize(a *model.Appointment) {
	a.ProfessionalID = sanitizer.TrimAndNormalize(a.ProfessionalID)
	a.ServiceTypeID = sanitizer.TrimAndNormalize(a.ServiceTypeID)
	a.Date = sanitizer.TrimAndNormalize(a.Date)
	a.StartTime = sanitizer.TrimAndNormalize(a.StartTime)
	a.EndTime = sanitizer.TrimAndNormalize(a.EndTime)
	a.RequesterName = sanitizer.NormalizeName(a.RequesterName)
	a.RequesterContact = sanitizer.NormalizeContact(a.RequesterContact)
	a.OrgSnapshot.CompanyName = sanitizer.TrimAndNormalize(a.OrgSnapshot.CompanyName)
	a.OrgSnapshot.ContactPhone = sanitizer.NormalizePhone(a.OrgSnapshot.ContactPhone)
}

func (s *appointmentService) applyDefaults(a *model.Appointment) {
	if a.Status == "" {
		a.Status = model.AppointmentStatusScheduled
	}
	if a.DurationMin == 0 && a.EndTime == "" {
		a.DurationMin = s.cfg.DefaultSlotIntervalMin
	}
}

// deriveEndTime fills EndTime from StartTime plus DurationMin when the caller
// sent a duration instead of an explicit end.
func (s *appointmentService) deriveEndTime(a *model.Appointment) error {
	if a.EndTime != "" {
		return nil
	}

	start, ok := calculator.ParseMinutes(a.StartTime)
	if !ok {
		return apperrors.InvalidInput("Start time must be in HH:MM 24-hour format")
	}
	end := start + a.DurationMin
	if end >= 24*60 {
		return apperrors.InvalidInput("Appointment must end before midnight")
	}
	a.EndTime = calculator.FormatMinutes(end)
	return nil
}

// scheduleForSlot verifies the slot lies on an available day inside the
// weekly schedule window and returns the matching schedule for its capacity.
func (s *appointmentService) scheduleForSlot(ctx context.Context, a *model.Appointment) (*model.Schedule, error) {
	day, err := time.Parse("2006-01-02", a.Date)
	if err != nil {
		return nil, apperrors.InvalidInput("Date must be in YYYY-MM-DD format")
	}

	schedules, err := s.schedules.FindByProfessional(ctx, a.ProfessionalID)
	if err != nil {
		return nil, apperrors.Internal("Failed to load professional schedules", err)
	}

	var schedule *model.Schedule
	for _, sc := range schedules {
		if sc.DayOfWeek == int(day.Weekday()) {
			schedule = sc
			break
		}
	}

	blocks, err := s.blocks.FindByDate(ctx, a.Date)
	if err != nil {
		return nil, apperrors.Internal("Failed to load blocks", err)
	}

	if !calculator.DayAvailable(a.Date, a.ProfessionalID, schedule, blocks, s.now()) {
		return nil, apperrors.Conflict("Selected day is not available for booking")
	}

	start, _ := calculator.ParseMinutes(a.StartTime)
	end, _ := calculator.ParseMinutes(a.EndTime)
	windowStart, okStart := calculator.ParseMinutes(schedule.StartTime)
	windowEnd, okEnd := calculator.ParseMinutes(schedule.EndTime)
	if !okStart || !okEnd || start < windowStart || end > windowEnd {
		return nil, apperrors.Conflict("Selected time falls outside the working hours")
	}

	return schedule, nil
}

func (s *appointmentService) acquireSlotLock(ctx context.Context, a *model.Appointment) (string, error) {
	lockID := fmt.Sprintf("slot_lock_%s_%s_%s", a.ProfessionalID, a.Date, a.StartTime)

	lock := &model.SlotLock{
		ID:        lockID,
		ExpiresAt: s.now().Add(s.cfg.SlotLockTTL),
	}

	_, err := s.lockRepo.Create(ctx, lock)
	if err == nil {
		return lockID, nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return "", apperrors.Internal("Failed to acquire slot lock", err)
	}

	// Mongo's TTL monitor only sweeps about once a minute, so an abandoned
	// lock can outlive its expires_at. Reclaim it instead of waiting.
	if s.reclaimExpiredLock(ctx, lockID) {
		if _, retryErr := s.lockRepo.Create(ctx, lock); retryErr == nil {
			return lockID, nil
		} else if !mongo.IsDuplicateKeyError(retryErr) {
			return "", apperrors.Internal("Failed to acquire slot lock", retryErr)
		}
	}

	return "", apperrors.Conflict("This time slot is currently being booked by another request. Please try again.")
}

func (s *appointmentService) reclaimExpiredLock(ctx context.Context, lockID string) bool {
	existing, err := s.lockRepo.FindByID(ctx, lockID)
	if err != nil {
		return false
	}
	if existing == nil {
		return true
	}
	if existing.ExpiresAt.After(s.now()) {
		return false
	}
	return s.lockRepo.Delete(ctx, lockID) == nil
}
