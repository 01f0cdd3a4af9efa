package validator

import (
	"testing"

	"github.com/tecmax-dev/sisvida-sub008/pkg/logger"
	"github.com/tecmax-dev/sisvida-sub008/pkg/model"
)

func newTestValidator() *ScheduleValidator {
	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
	return NewScheduleValidator(log)
}

func validSchedule() *model.Schedule {
	return &model.Schedule{
		ProfessionalID: "prof-1",
		DayOfWeek:      1,
		StartTime:      "09:00",
		EndTime:        "17:00",
		Capacity:       2,
	}
}

func TestScheduleValidator_Validate(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name    string
		modify  func(*model.Schedule)
		wantErr bool
	}{
		{
			name:    "valid schedule",
			modify:  func(sc *model.Schedule) {},
			wantErr: false,
		},
		{
			name:    "missing professional id",
			modify:  func(sc *model.Schedule) { sc.ProfessionalID = "" },
			wantErr: true,
		},
		{
			name:    "day of week below range",
			modify:  func(sc *model.Schedule) { sc.DayOfWeek = -1 },
			wantErr: true,
		},
		{
			name:    "day of week above range",
			modify:  func(sc *model.Schedule) { sc.DayOfWeek = 7 },
			wantErr: true,
		},
		{
			name:    "sunday is a valid day",
			modify:  func(sc *model.Schedule) { sc.DayOfWeek = 0 },
			wantErr: false,
		},
		{
			name:    "malformed start time",
			modify:  func(sc *model.Schedule) { sc.StartTime = "9am" },
			wantErr: true,
		},
		{
			name:    "hour out of range",
			modify:  func(sc *model.Schedule) { sc.EndTime = "25:00" },
			wantErr: true,
		},
		{
			name:    "end not after start",
			modify:  func(sc *model.Schedule) { sc.StartTime = "10:00"; sc.EndTime = "10:00" },
			wantErr: true,
		},
		{
			name:    "end before start",
			modify:  func(sc *model.Schedule) { sc.StartTime = "17:00"; sc.EndTime = "09:00" },
			wantErr: true,
		},
		{
			name:    "zero capacity",
			modify:  func(sc *model.Schedule) { sc.Capacity = 0 },
			wantErr: true,
		},
		{
			name:    "capacity above limit",
			modify:  func(sc *model.Schedule) { sc.Capacity = 201 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := validSchedule()
			tt.modify(sc)

			err := v.Validate(sc)
			if tt.wantErr && err == nil {
				t.Errorf("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestScheduleValidator_ValidateUpdate(t *testing.T) {
	v := newTestValidator()

	three := 3
	zero := 0

	tests := []struct {
		name    string
		update  *model.ScheduleUpdate
		wantErr bool
	}{
		{
			name:    "empty update is valid",
			update:  &model.ScheduleUpdate{},
			wantErr: false,
		},
		{
			name:    "valid time window",
			update:  &model.ScheduleUpdate{StartTime: "08:00", EndTime: "12:00"},
			wantErr: false,
		},
		{
			name:    "inverted time window",
			update:  &model.ScheduleUpdate{StartTime: "12:00", EndTime: "08:00"},
			wantErr: true,
		},
		{
			name:    "capacity pointer in range",
			update:  &model.ScheduleUpdate{Capacity: &three},
			wantErr: false,
		},
		{
			name:    "capacity pointer zero",
			update:  &model.ScheduleUpdate{Capacity: &zero},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateUpdate(tt.update)
			if tt.wantErr && err == nil {
				t.Errorf("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestValidateTimeOfDay_Formats(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"00:00", true},
		{"23:59", true},
		{"09:30", true},
		{"9:30", false},
		{"24:00", false},
		{"12:60", false},
		{"noon", false},
	}

	v := newTestValidator()
	for _, tt := range tests {
		sc := validSchedule()
		sc.StartTime = tt.value
		if tt.value >= sc.EndTime {
			sc.EndTime = "23:59"
			if tt.value == "23:59" {
				sc.StartTime = "00:00"
				sc.EndTime = tt.value
			}
		}
		err := v.Validate(sc)
		got := err == nil
		if got != tt.want {
			t.Errorf("time %q: valid = %v, want %v (err: %v)", tt.value, got, tt.want, err)
		}
	}
}
