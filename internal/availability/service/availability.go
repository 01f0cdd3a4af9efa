package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tecmax-dev/sisvida-sub008/internal/availability/calculator"
	"github.com/tecmax-dev/sisvida-sub008/pkg/config"
	apperrors "github.com/tecmax-dev/sisvida-sub008/pkg/errors"
	"github.com/tecmax-dev/sisvida-sub008/pkg/model"
	"github.com/tecmax-dev/sisvida-sub008/pkg/sanitizer"
)

// ScheduleReader is the slice of the schedules repository the availability
// reads need. The concrete mongo repository satisfies it as-is.
type ScheduleReader interface {
	FindByProfessional(ctx context.Context, professionalID string) ([]*model.Schedule, error)
}

type BlockReader interface {
	FindByDate(ctx context.Context, date string) ([]*model.Block, error)
	FindInRange(ctx context.Context, from, to string) ([]*model.Block, error)
}

type AppointmentReader interface {
	FindByProfessionalAndDate(ctx context.Context, professionalID, date string) ([]*model.Appointment, error)
}

// SlotsResult is the per-date slot listing. Degraded is set when one of the
// underlying reads failed and the listing fell back to "nothing bookable".
type SlotsResult struct {
	ProfessionalID string           `json:"professional_id"`
	Date           string           `json:"date"`
	IntervalMin    int              `json:"interval_min"`
	Slots          []model.TimeSlot `json:"slots"`
	Degraded       bool             `json:"degraded,omitempty"`
}

type DayAvailability struct {
	Date      string `json:"date"`
	Available bool   `json:"available"`
}

type MonthAvailability struct {
	ProfessionalID string            `json:"professional_id"`
	Month          string            `json:"month"`
	Days           []DayAvailability `json:"days"`
	Degraded       bool              `json:"degraded,omitempty"`
}

type AvailabilityService interface {
	GetSlots(ctx context.Context, professionalID, date string, intervalMin int) (*SlotsResult, error)
	GetDays(ctx context.Context, professionalID, month string) (*MonthAvailability, error)
	// IsSlotAvailable is the guard other flows use before accepting a time
	// selection. It shares GetSlots' degradation semantics: a degraded read
	// reports the slot as unavailable.
	IsSlotAvailable(ctx context.Context, professionalID, date, startTime string, intervalMin int) (bool, error)
	IsDayAvailable(ctx context.Context, professionalID, date string) (bool, error)
}

type availabilityService struct {
	schedules    ScheduleReader
	blocks       BlockReader
	appointments AppointmentReader
	cfg          *config.Config
	now          func() time.Time
}

func NewAvailabilityService(
	schedules ScheduleReader,
	blocks BlockReader,
	appointments AppointmentReader,
	cfg *config.Config,
) AvailabilityService {
	return &availabilityService{
		schedules:    schedules,
		blocks:       blocks,
		appointments: appointments,
		cfg:          cfg,
		now:          time.Now,
	}
}

func (s *availabilityService) GetSlots(ctx context.Context, professionalID, date string, intervalMin int) (*SlotsResult, error) {
	professionalID = sanitizer.TrimAndNormalize(professionalID)
	if professionalID == "" {
		return nil, apperrors.InvalidInput("Professional ID must be provided")
	}
	date = sanitizer.TrimAndNormalize(date)
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, apperrors.InvalidInput("Date must be in YYYY-MM-DD format")
	}
	if intervalMin < 0 {
		return nil, apperrors.InvalidInput("Interval must be a positive number of minutes")
	}
	if intervalMin == 0 {
		intervalMin = s.cfg.DefaultSlotIntervalMin
	}

	result := &SlotsResult{
		ProfessionalID: professionalID,
		Date:           date,
		IntervalMin:    intervalMin,
		Slots:          []model.TimeSlot{},
	}

	sharedCtx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	var (
		schedules    []*model.Schedule
		blocks       []*model.Block
		appointments []*model.Appointment
		errSchedules error
		errBlocks    error
		errAppts     error
		wg           sync.WaitGroup
	)
	wg.Add(3)

	go func() {
		defer wg.Done()
		schedules, errSchedules = s.schedules.FindByProfessional(sharedCtx, professionalID)
	}()
	go func() {
		defer wg.Done()
		blocks, errBlocks = s.blocks.FindByDate(sharedCtx, date)
	}()
	go func() {
		defer wg.Done()
		appointments, errAppts = s.appointments.FindByProfessionalAndDate(sharedCtx, professionalID, date)
	}()
	wg.Wait()

	// Reads degrade to an empty listing instead of failing the request;
	// an unbookable calendar is recoverable, a 500 on the booking page is not.
	if errSchedules != nil || errBlocks != nil || errAppts != nil {
		s.cfg.Log.Warn("Slot listing degraded to empty after read failure",
			"professional_id", professionalID,
			"date", date,
			"schedules_error", errSchedules,
			"blocks_error", errBlocks,
			"appointments_error", errAppts,
		)
		result.Degraded = true
		return result, nil
	}

	schedule := scheduleForDate(schedules, date)
	if !calculator.DayAvailable(date, professionalID, schedule, blocks, s.now()) {
		return result, nil
	}

	result.Slots = calculator.Slots(schedule, intervalMin, appointments)
	return result, nil
}

func (s *availabilityService) GetDays(ctx context.Context, professionalID, month string) (*MonthAvailability, error) {
	professionalID = sanitizer.TrimAndNormalize(professionalID)
	if professionalID == "" {
		return nil, apperrors.InvalidInput("Professional ID must be provided")
	}
	month = sanitizer.TrimAndNormalize(month)
	first, err := time.Parse("2006-01", month)
	if err != nil {
		return nil, apperrors.InvalidInput("Month must be in YYYY-MM format")
	}
	last := first.AddDate(0, 1, -1)

	result := &MonthAvailability{
		ProfessionalID: professionalID,
		Month:          month,
		Days:           make([]DayAvailability, 0, last.Day()),
	}

	sharedCtx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	var (
		schedules    []*model.Schedule
		blocks       []*model.Block
		errSchedules error
		errBlocks    error
		wg           sync.WaitGroup
	)
	wg.Add(2)

	go func() {
		defer wg.Done()
		schedules, errSchedules = s.schedules.FindByProfessional(sharedCtx, professionalID)
	}()
	go func() {
		defer wg.Done()
		blocks, errBlocks = s.blocks.FindInRange(sharedCtx,
			first.Format("2006-01-02"), last.Format("2006-01-02"))
	}()
	wg.Wait()

	if errSchedules != nil || errBlocks != nil {
		s.cfg.Log.Warn("Day availability degraded to all-unavailable after read failure",
			"professional_id", professionalID,
			"month", month,
			"schedules_error", errSchedules,
			"blocks_error", errBlocks,
		)
		result.Degraded = true
		for d := 1; d <= last.Day(); d++ {
			result.Days = append(result.Days, DayAvailability{
				Date:      fmt.Sprintf("%s-%02d", month, d),
				Available: false,
			})
		}
		return result, nil
	}

	now := s.now()
	for d := 1; d <= last.Day(); d++ {
		date := fmt.Sprintf("%s-%02d", month, d)
		schedule := scheduleForDate(schedules, date)
		result.Days = append(result.Days, DayAvailability{
			Date:      date,
			Available: calculator.DayAvailable(date, professionalID, schedule, blocks, now),
		})
	}

	return result, nil
}

func (s *availabilityService) IsSlotAvailable(ctx context.Context, professionalID, date, startTime string, intervalMin int) (bool, error) {
	if _, ok := calculator.ParseMinutes(startTime); !ok {
		return false, apperrors.InvalidInput("Time must be in HH:MM 24-hour format")
	}

	result, err := s.GetSlots(ctx, professionalID, date, intervalMin)
	if err != nil {
		return false, err
	}
	if result.Degraded {
		return false, nil
	}

	for _, slot := range result.Slots {
		if slot.Time == startTime {
			return slot.Available, nil
		}
	}
	return false, nil
}

func (s *availabilityService) IsDayAvailable(ctx context.Context, professionalID, date string) (bool, error) {
	professionalID = sanitizer.TrimAndNormalize(professionalID)
	if professionalID == "" {
		return false, apperrors.InvalidInput("Professional ID must be provided")
	}
	date = sanitizer.TrimAndNormalize(date)
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return false, apperrors.InvalidInput("Date must be in YYYY-MM-DD format")
	}

	sharedCtx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	var (
		schedules    []*model.Schedule
		blocks       []*model.Block
		errSchedules error
		errBlocks    error
		wg           sync.WaitGroup
	)
	wg.Add(2)

	go func() {
		defer wg.Done()
		schedules, errSchedules = s.schedules.FindByProfessional(sharedCtx, professionalID)
	}()
	go func() {
		defer wg.Done()
		blocks, errBlocks = s.blocks.FindByDate(sharedCtx, date)
	}()
	wg.Wait()

	if errSchedules != nil || errBlocks != nil {
		s.cfg.Log.Warn("Day availability check degraded to unavailable after read failure",
			"professional_id", professionalID,
			"date", date,
			"schedules_error", errSchedules,
			"blocks_error", errBlocks,
		)
		return false, nil
	}

	return calculator.DayAvailable(date, professionalID, scheduleForDate(schedules, date), blocks, s.now()), nil
}

// scheduleForDate picks the weekly rule matching the date's weekday, or nil.
func scheduleForDate(schedules []*model.Schedule, date string) *model.Schedule {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil
	}
	weekday := int(day.Weekday())
	for _, sc := range schedules {
		if sc.DayOfWeek == weekday {
			return sc
		}
	}
	return nil
}
