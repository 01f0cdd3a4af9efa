package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tecmax-dev/sisvida-sub008/pkg/config"
	apperrors "github.com/tecmax-dev/sisvida-sub008/pkg/errors"
	"github.com/tecmax-dev/sisvida-sub008/pkg/logger"
	"github.com/tecmax-dev/sisvida-sub008/pkg/model"
)

type mockScheduleReader struct {
	findByProfessionalFunc func(ctx context.Context, professionalID string) ([]*model.Schedule, error)
}

func (m *mockScheduleReader) FindByProfessional(ctx context.Context, professionalID string) ([]*model.Schedule, error) {
	if m.findByProfessionalFunc != nil {
		return m.findByProfessionalFunc(ctx, professionalID)
	}
	return []*model.Schedule{}, nil
}

type mockBlockReader struct {
	findByDateFunc  func(ctx context.Context, date string) ([]*model.Block, error)
	findInRangeFunc func(ctx context.Context, from, to string) ([]*model.Block, error)
}

func (m *mockBlockReader) FindByDate(ctx context.Context, date string) ([]*model.Block, error) {
	if m.findByDateFunc != nil {
		return m.findByDateFunc(ctx, date)
	}
	return []*model.Block{}, nil
}

func (m *mockBlockReader) FindInRange(ctx context.Context, from, to string) ([]*model.Block, error) {
	if m.findInRangeFunc != nil {
		return m.findInRangeFunc(ctx, from, to)
	}
	return []*model.Block{}, nil
}

type mockAppointmentReader struct {
	findFunc func(ctx context.Context, professionalID, date string) ([]*model.Appointment, error)
}

func (m *mockAppointmentReader) FindByProfessionalAndDate(ctx context.Context, professionalID, date string) ([]*model.Appointment, error) {
	if m.findFunc != nil {
		return m.findFunc(ctx, professionalID, date)
	}
	return []*model.Appointment{}, nil
}

func testConfig() *config.Config {
	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
	return &config.Config{
		Log:                    log,
		ReadTimeout:            5 * time.Second,
		DefaultSlotIntervalMin: 30,
	}
}

func fixedNow() time.Time {
	// 2026-09-07 is a Monday.
	return time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
}

func newTestService(
	schedules *mockScheduleReader,
	blocks *mockBlockReader,
	appointments *mockAppointmentReader,
) *availabilityService {
	svc := NewAvailabilityService(schedules, blocks, appointments, testConfig()).(*availabilityService)
	svc.now = fixedNow
	return svc
}

func mondaySchedules() []*model.Schedule {
	return []*model.Schedule{
		{ID: "sch-1", ProfessionalID: "prof-1", DayOfWeek: 1, StartTime: "09:00", EndTime: "10:00", Capacity: 2},
	}
}

func TestGetSlots_HappyPath(t *testing.T) {
	schedules := &mockScheduleReader{
		findByProfessionalFunc: func(ctx context.Context, professionalID string) ([]*model.Schedule, error) {
			return mondaySchedules(), nil
		},
	}
	appointments := &mockAppointmentReader{
		findFunc: func(ctx context.Context, professionalID, date string) ([]*model.Appointment, error) {
			return []*model.Appointment{
				{StartTime: "09:00", Status: model.AppointmentStatusScheduled},
			}, nil
		},
	}
	svc := newTestService(schedules, &mockBlockReader{}, appointments)

	result, err := svc.GetSlots(context.Background(), "prof-1", "2026-09-07", 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Degraded {
		t.Error("result must not be degraded")
	}
	if len(result.Slots) != 2 {
		t.Fatalf("got %d slots, want 2", len(result.Slots))
	}
	if result.Slots[0].Time != "09:00" || result.Slots[0].Booked != 1 || !result.Slots[0].Available {
		t.Errorf("unexpected first slot: %+v", result.Slots[0])
	}
	if result.Slots[1].Time != "09:30" || result.Slots[1].Booked != 0 {
		t.Errorf("unexpected second slot: %+v", result.Slots[1])
	}
}

func TestGetSlots_DefaultsInterval(t *testing.T) {
	schedules := &mockScheduleReader{
		findByProfessionalFunc: func(ctx context.Context, professionalID string) ([]*model.Schedule, error) {
			return mondaySchedules(), nil
		},
	}
	svc := newTestService(schedules, &mockBlockReader{}, &mockAppointmentReader{})

	result, err := svc.GetSlots(context.Background(), "prof-1", "2026-09-07", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IntervalMin != 30 {
		t.Errorf("interval not defaulted: %d", result.IntervalMin)
	}
	if len(result.Slots) != 2 {
		t.Errorf("got %d slots, want 2", len(result.Slots))
	}
}

func TestGetSlots_EmptyWhenDayUnavailable(t *testing.T) {
	tests := []struct {
		name   string
		date   string
		blocks []*model.Block
	}{
		{name: "no schedule for sunday", date: "2026-09-06"},
		{name: "date in the past", date: "2026-08-31"},
		{name: "clinic-wide block", date: "2026-09-07", blocks: []*model.Block{{Date: "2026-09-07"}}},
		{name: "scoped block", date: "2026-09-07", blocks: []*model.Block{{Date: "2026-09-07", ProfessionalID: "prof-1"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schedules := &mockScheduleReader{
				findByProfessionalFunc: func(ctx context.Context, professionalID string) ([]*model.Schedule, error) {
					return mondaySchedules(), nil
				},
			}
			blocks := &mockBlockReader{
				findByDateFunc: func(ctx context.Context, date string) ([]*model.Block, error) {
					return tt.blocks, nil
				},
			}
			svc := newTestService(schedules, blocks, &mockAppointmentReader{})

			result, err := svc.GetSlots(context.Background(), "prof-1", tt.date, 30)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Degraded {
				t.Error("unavailable day is not a degraded read")
			}
			if len(result.Slots) != 0 {
				t.Errorf("got %d slots, want 0", len(result.Slots))
			}
		})
	}
}

func TestGetSlots_DegradesOnReadFailure(t *testing.T) {
	boom := errors.New("mongo down")

	tests := []struct {
		name         string
		schedules    *mockScheduleReader
		blocks       *mockBlockReader
		appointments *mockAppointmentReader
	}{
		{
			name: "schedule read fails",
			schedules: &mockScheduleReader{
				findByProfessionalFunc: func(ctx context.Context, professionalID string) ([]*model.Schedule, error) {
					return nil, boom
				},
			},
			blocks:       &mockBlockReader{},
			appointments: &mockAppointmentReader{},
		},
		{
			name: "block read fails",
			schedules: &mockScheduleReader{
				findByProfessionalFunc: func(ctx context.Context, professionalID string) ([]*model.Schedule, error) {
					return mondaySchedules(), nil
				},
			},
			blocks: &mockBlockReader{
				findByDateFunc: func(ctx context.Context, date string) ([]*model.Block, error) {
					return nil, boom
				},
			},
			appointments: &mockAppointmentReader{},
		},
		{
			name: "appointment read fails",
			schedules: &mockScheduleReader{
				findByProfessionalFunc: func(ctx context.Context, professionalID string) ([]*model.Schedule, error) {
					return mondaySchedules(), nil
				},
			},
			blocks: &mockBlockReader{},
			appointments: &mockAppointmentReader{
				findFunc: func(ctx context.Context, professionalID, date string) ([]*model.Appointment, error) {
					return nil, boom
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(tt.schedules, tt.blocks, tt.appointments)

			result, err := svc.GetSlots(context.Background(), "prof-1", "2026-09-07", 30)
			if err != nil {
				t.Fatalf("degraded read must not surface an error, got: %v", err)
			}
			if !result.Degraded {
				t.Error("result must be flagged degraded")
			}
			if len(result.Slots) != 0 {
				t.Errorf("got %d slots, want 0", len(result.Slots))
			}
		})
	}
}

func TestGetSlots_InputValidation(t *testing.T) {
	svc := newTestService(&mockScheduleReader{}, &mockBlockReader{}, &mockAppointmentReader{})

	tests := []struct {
		name           string
		professionalID string
		date           string
		interval       int
	}{
		{"empty professional", "", "2026-09-07", 30},
		{"malformed date", "prof-1", "07/09/2026", 30},
		{"negative interval", "prof-1", "2026-09-07", -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.GetSlots(context.Background(), tt.professionalID, tt.date, tt.interval)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			appErr := apperrors.AsAppError(err)
			if appErr.Code != apperrors.CodeInvalidInput {
				t.Errorf("expected INVALID_INPUT, got %v", err)
			}
		})
	}
}

func TestGetDays_MarksMonth(t *testing.T) {
	schedules := &mockScheduleReader{
		findByProfessionalFunc: func(ctx context.Context, professionalID string) ([]*model.Schedule, error) {
			return mondaySchedules(), nil
		},
	}
	blocks := &mockBlockReader{
		findInRangeFunc: func(ctx context.Context, from, to string) ([]*model.Block, error) {
			return []*model.Block{{Date: "2026-09-14"}}, nil
		},
	}
	svc := newTestService(schedules, blocks, &mockAppointmentReader{})

	result, err := svc.GetDays(context.Background(), "prof-1", "2026-09")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Days) != 30 {
		t.Fatalf("got %d days, want 30", len(result.Days))
	}

	byDate := make(map[string]bool, len(result.Days))
	for _, d := range result.Days {
		byDate[d.Date] = d.Available
	}

	if !byDate["2026-09-07"] {
		t.Error("2026-09-07 (Monday) should be available")
	}
	if byDate["2026-09-14"] {
		t.Error("2026-09-14 is blocked clinic-wide")
	}
	if byDate["2026-09-08"] {
		t.Error("2026-09-08 (Tuesday) has no schedule")
	}
	if !byDate["2026-09-21"] || !byDate["2026-09-28"] {
		t.Error("remaining Mondays should be available")
	}
}

func TestGetDays_DegradesToAllUnavailable(t *testing.T) {
	schedules := &mockScheduleReader{
		findByProfessionalFunc: func(ctx context.Context, professionalID string) ([]*model.Schedule, error) {
			return nil, errors.New("mongo down")
		},
	}
	svc := newTestService(schedules, &mockBlockReader{}, &mockAppointmentReader{})

	result, err := svc.GetDays(context.Background(), "prof-1", "2026-09")
	if err != nil {
		t.Fatalf("degraded read must not surface an error, got: %v", err)
	}
	if !result.Degraded {
		t.Error("result must be flagged degraded")
	}
	for _, d := range result.Days {
		if d.Available {
			t.Fatalf("day %s available in a degraded month", d.Date)
		}
	}
}

func TestIsSlotAvailable(t *testing.T) {
	schedules := &mockScheduleReader{
		findByProfessionalFunc: func(ctx context.Context, professionalID string) ([]*model.Schedule, error) {
			return mondaySchedules(), nil
		},
	}
	appointments := &mockAppointmentReader{
		findFunc: func(ctx context.Context, professionalID, date string) ([]*model.Appointment, error) {
			return []*model.Appointment{
				{StartTime: "09:00", Status: model.AppointmentStatusScheduled},
				{StartTime: "09:00", Status: model.AppointmentStatusScheduled},
			}, nil
		},
	}
	svc := newTestService(schedules, &mockBlockReader{}, appointments)

	full, err := svc.IsSlotAvailable(context.Background(), "prof-1", "2026-09-07", "09:00", 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if full {
		t.Error("09:00 is at capacity and must not be available")
	}

	open, err := svc.IsSlotAvailable(context.Background(), "prof-1", "2026-09-07", "09:30", 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !open {
		t.Error("09:30 should be available")
	}

	offGrid, err := svc.IsSlotAvailable(context.Background(), "prof-1", "2026-09-07", "09:10", 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if offGrid {
		t.Error("09:10 is not on the slot grid and must not be available")
	}

	if _, err := svc.IsSlotAvailable(context.Background(), "prof-1", "2026-09-07", "half past", 30); err == nil {
		t.Error("malformed time must be rejected")
	}
}
