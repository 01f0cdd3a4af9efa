package model

import "time"

// Schedule is a weekly recurring availability rule for one professional.
// DayOfWeek follows time.Weekday numbering (0 = Sunday).
type Schedule struct {
	ID             string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ProfessionalID string    `json:"professional_id" bson:"professional_id" validate:"required,min=1,max=64"`
	DayOfWeek      int       `json:"day_of_week" bson:"day_of_week" validate:"min=0,max=6"`
	StartTime      string    `json:"start_time" bson:"start_time" validate:"required,hhmm_time"`
	EndTime        string    `json:"end_time" bson:"end_time" validate:"required,hhmm_time"`
	Capacity       int       `json:"capacity" bson:"capacity" validate:"required,min=1,max=200"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type ScheduleUpdate struct {
	DayOfWeek *int   `json:"day_of_week,omitempty" validate:"omitempty,min=0,max=6"`
	StartTime string `json:"start_time,omitempty" validate:"omitempty,hhmm_time"`
	EndTime   string `json:"end_time,omitempty" validate:"omitempty,hhmm_time"`
	Capacity  *int   `json:"capacity,omitempty" validate:"omitempty,min=1,max=200"`
}
