package bookingflow

import (
	"time"

	apperrors "github.com/tecmax-dev/sisvida-sub008/pkg/errors"
	"github.com/tecmax-dev/sisvida-sub008/pkg/model"
)

type State string

const (
	StateSelectingProfessional State = "selecting_professional"
	StateSelectingDatetime     State = "selecting_datetime"
	StateEnteringRequester     State = "entering_requester_details"
	StateConfirmed             State = "confirmed"
)

// Draft accumulates the user's selections across the flow. Fields captured at
// a given step are cleared again when the user navigates back out of it.
type Draft struct {
	ProfessionalID   string            `json:"professional_id,omitempty"`
	ServiceTypeID    string            `json:"service_type_id,omitempty"`
	DurationMin      int               `json:"duration_min,omitempty"`
	Date             string            `json:"date,omitempty"`
	Time             string            `json:"time,omitempty"`
	RequesterName    string            `json:"requester_name,omitempty"`
	RequesterContact string            `json:"requester_contact,omitempty"`
	OrgSnapshot      model.OrgSnapshot `json:"org_snapshot,omitempty"`
}

// Flow is one server-side booking session. It advances through a fixed linear
// sequence of states and becomes terminal once confirmed.
type Flow struct {
	ID            string    `json:"id"`
	State         State     `json:"state"`
	Draft         Draft     `json:"draft"`
	AppointmentID string    `json:"appointment_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	ExpiresAt     time.Time `json:"-"`
}

func (f *Flow) requireState(s State) error {
	if f.State == StateConfirmed {
		return apperrors.Conflict("Booking flow is already confirmed")
	}
	if f.State != s {
		return apperrors.Conflict("Action is not valid in state " + string(f.State))
	}
	return nil
}

// SelectProfessional records the chosen professional and advances to date and
// time selection. Eligibility is the caller's guard; the machine only tracks
// ordering.
func (f *Flow) SelectProfessional(professionalID, serviceTypeID string, durationMin int) error {
	if err := f.requireState(StateSelectingProfessional); err != nil {
		return err
	}
	f.Draft.ProfessionalID = professionalID
	f.Draft.ServiceTypeID = serviceTypeID
	f.Draft.DurationMin = durationMin
	f.State = StateSelectingDatetime
	return nil
}

// SelectDate stays within datetime selection. A previously chosen time is
// cleared because it may not exist on the new date.
func (f *Flow) SelectDate(date string) error {
	if err := f.requireState(StateSelectingDatetime); err != nil {
		return err
	}
	if f.Draft.Date != date {
		f.Draft.Time = ""
	}
	f.Draft.Date = date
	return nil
}

func (f *Flow) SelectTime(t string) error {
	if err := f.requireState(StateSelectingDatetime); err != nil {
		return err
	}
	if f.Draft.Date == "" {
		return apperrors.Conflict("A date must be selected before a time")
	}
	f.Draft.Time = t
	return nil
}

// SetRequester advances past datetime selection once both date and time are
// set, then records the requester identity.
func (f *Flow) SetRequester(name, contact string, snapshot model.OrgSnapshot) error {
	if f.State == StateSelectingDatetime {
		if f.Draft.Date == "" || f.Draft.Time == "" {
			return apperrors.Conflict("Both date and time must be selected before entering requester details")
		}
		f.State = StateEnteringRequester
	}
	if err := f.requireState(StateEnteringRequester); err != nil {
		return err
	}
	f.Draft.RequesterName = name
	f.Draft.RequesterContact = contact
	f.Draft.OrgSnapshot = snapshot
	return nil
}

// Back moves to the immediate predecessor state, clearing only the fields
// captured at the state being left.
func (f *Flow) Back() error {
	switch f.State {
	case StateSelectingProfessional:
		return apperrors.Conflict("Already at the first step")
	case StateSelectingDatetime:
		f.Draft.Date = ""
		f.Draft.Time = ""
		f.State = StateSelectingProfessional
	case StateEnteringRequester:
		f.Draft.RequesterName = ""
		f.Draft.RequesterContact = ""
		f.Draft.OrgSnapshot = model.OrgSnapshot{}
		f.State = StateSelectingDatetime
	case StateConfirmed:
		return apperrors.Conflict("Booking flow is already confirmed")
	}
	return nil
}

// ReadyToSubmit reports whether every field the write needs is present.
func (f *Flow) ReadyToSubmit() error {
	if f.State != StateEnteringRequester {
		return apperrors.Conflict("Action is not valid in state " + string(f.State))
	}
	missing := []string{}
	if f.Draft.ProfessionalID == "" {
		missing = append(missing, "professional")
	}
	if f.Draft.Date == "" {
		missing = append(missing, "date")
	}
	if f.Draft.Time == "" {
		missing = append(missing, "time")
	}
	if f.Draft.RequesterName == "" {
		missing = append(missing, "requester_name")
	}
	if f.Draft.RequesterContact == "" {
		missing = append(missing, "requester_contact")
	}
	if len(missing) > 0 {
		return apperrors.Validation("Booking draft is incomplete", map[string]any{
			"missing": missing,
		})
	}
	return nil
}

func (f *Flow) Confirm(appointmentID string) {
	f.AppointmentID = appointmentID
	f.State = StateConfirmed
}
