package calculator

import (
	"fmt"
	"time"

	"github.com/tecmax-dev/sisvida-sub008/pkg/model"
)

// ParseMinutes converts "HH:MM" into minutes since midnight. The boolean is
// false for anything that is not a well-formed 24-hour time.
func ParseMinutes(value string) (int, bool) {
	if len(value) != 5 || value[2] != ':' {
		return 0, false
	}
	for _, i := range [4]int{0, 1, 3, 4} {
		if value[i] < '0' || value[i] > '9' {
			return 0, false
		}
	}
	hour := int(value[0]-'0')*10 + int(value[1]-'0')
	minute := int(value[3]-'0')*10 + int(value[4]-'0')
	if hour > 23 || minute > 59 {
		return 0, false
	}
	return hour*60 + minute, true
}

// FormatMinutes renders minutes since midnight back into "HH:MM".
func FormatMinutes(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// DayAvailable reports whether the professional can take bookings on the
// given date. A date earlier than today (calendar comparison, ignoring the
// time of day) is never available, nor is a date without a weekday schedule
// or with an applicable block.
func DayAvailable(date string, professionalID string, schedule *model.Schedule, blocks []*model.Block, now time.Time) bool {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return false
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if day.Before(today) {
		return false
	}

	if schedule == nil || schedule.DayOfWeek != int(day.Weekday()) {
		return false
	}

	for _, b := range blocks {
		if b.Date == date && b.AppliesTo(professionalID) {
			return false
		}
	}

	return true
}

// Slots expands a weekday schedule into bookable time slots of intervalMin
// minutes and marks each one with its booking load. The walk emits a slot at
// cur only while cur+interval still fits before the end of the window, so a
// 09:00-10:00 window with a 45-minute interval yields exactly one slot.
//
// Appointments count against the slot whose start time they carry; cancelled
// appointments never count. Malformed schedule times or a non-positive
// interval yield an empty result rather than an error.
func Slots(schedule *model.Schedule, intervalMin int, appointments []*model.Appointment) []model.TimeSlot {
	if schedule == nil || intervalMin <= 0 {
		return []model.TimeSlot{}
	}

	start, ok := ParseMinutes(schedule.StartTime)
	if !ok {
		return []model.TimeSlot{}
	}
	end, ok := ParseMinutes(schedule.EndTime)
	if !ok {
		return []model.TimeSlot{}
	}

	booked := bookedCounts(appointments)

	slots := []model.TimeSlot{}
	for cur := start; cur+intervalMin <= end; cur += intervalMin {
		t := FormatMinutes(cur)
		n := booked[t]
		slots = append(slots, model.TimeSlot{
			Time:      t,
			Available: n < schedule.Capacity,
			Capacity:  schedule.Capacity,
			Booked:    n,
		})
	}

	return slots
}

// bookedCounts tallies active appointments per start time. Start times are
// truncated to HH:MM first, so a value stored with seconds ("09:00:00")
// still counts against its slot.
func bookedCounts(appointments []*model.Appointment) map[string]int {
	counts := make(map[string]int, len(appointments))
	for _, a := range appointments {
		if !a.IsActive() {
			continue
		}
		t := a.StartTime
		if len(t) > 5 {
			t = t[:5]
		}
		m, ok := ParseMinutes(t)
		if !ok {
			continue
		}
		counts[FormatMinutes(m)]++
	}
	return counts
}
