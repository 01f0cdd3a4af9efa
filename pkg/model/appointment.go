package model

import "time"

const (
	AppointmentStatusScheduled = "scheduled"
	AppointmentStatusCompleted = "completed"
	AppointmentStatusCancelled = "cancelled"
)

// OrgSnapshot is the booking-time copy of the requester's organization data.
// It is deliberately denormalized: later edits to the source records must not
// retroactively alter historical appointments.
type OrgSnapshot struct {
	CompanyName  string `json:"company_name,omitempty" bson:"company_name,omitempty"`
	CompanyID    string `json:"company_id,omitempty" bson:"company_id,omitempty"`
	ContactPhone string `json:"contact_phone,omitempty" bson:"contact_phone,omitempty"`
}

type Appointment struct {
	ID             string `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ProfessionalID string `json:"professional_id" bson:"professional_id" validate:"required,min=1,max=64"`
	ServiceTypeID  string `json:"service_type_id,omitempty" bson:"service_type_id,omitempty" validate:"omitempty,max=64"`
	Date           string `json:"date" bson:"date" validate:"required,ymd_date"`
	StartTime      string `json:"start_time" bson:"start_time" validate:"required,hhmm_time"`
	EndTime        string `json:"end_time,omitempty" bson:"end_time" validate:"omitempty,hhmm_time"`

	// DurationMin is accepted on create to derive EndTime; it is not persisted.
	DurationMin int `json:"duration_min,omitempty" bson:"-" validate:"omitempty,min=5,max=480"`

	RequesterName    string      `json:"requester_name" bson:"requester_name" validate:"required,min=2,max=100"`
	RequesterContact string      `json:"requester_contact" bson:"requester_contact" validate:"required,min=3,max=100"`
	OrgSnapshot      OrgSnapshot `json:"org_snapshot,omitempty" bson:"org_snapshot,omitempty"`

	Status    string    `json:"status" bson:"status" validate:"required,oneof=scheduled completed cancelled"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// IsActive reports whether the appointment still occupies its slot.
func (a *Appointment) IsActive() bool {
	return a.Status != AppointmentStatusCancelled
}
