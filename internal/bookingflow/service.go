package bookingflow

import (
	"context"
	"time"

	"github.com/google/uuid"

	appointments "github.com/tecmax-dev/sisvida-sub008/internal/appointments/service"
	availability "github.com/tecmax-dev/sisvida-sub008/internal/availability/service"
	"github.com/tecmax-dev/sisvida-sub008/pkg/config"
	apperrors "github.com/tecmax-dev/sisvida-sub008/pkg/errors"
	"github.com/tecmax-dev/sisvida-sub008/pkg/model"
	"github.com/tecmax-dev/sisvida-sub008/pkg/sanitizer"
)

type RequesterDetails struct {
	Name        string            `json:"requester_name"`
	Contact     string            `json:"requester_contact"`
	OrgSnapshot model.OrgSnapshot `json:"org_snapshot"`
}

type FlowService interface {
	Start(ctx context.Context) (*Flow, error)
	Get(ctx context.Context, id string) (*Flow, error)
	SelectProfessional(ctx context.Context, id, professionalID, serviceTypeID string, durationMin int) (*Flow, error)
	SelectDate(ctx context.Context, id, date string) (*Flow, error)
	SelectTime(ctx context.Context, id, t string) (*Flow, error)
	SetRequester(ctx context.Context, id string, details RequesterDetails) (*Flow, error)
	Back(ctx context.Context, id string) (*Flow, error)
	Submit(ctx context.Context, id string) (*Flow, error)
}

type flowService struct {
	store        FlowStore
	availability availability.AvailabilityService
	schedules    availability.ScheduleReader
	appointments appointments.AppointmentService
	cfg          *config.Config
}

func NewFlowService(
	store FlowStore,
	availabilitySvc availability.AvailabilityService,
	schedules availability.ScheduleReader,
	appointmentsSvc appointments.AppointmentService,
	cfg *config.Config,
) FlowService {
	return &flowService{
		store:        store,
		availability: availabilitySvc,
		schedules:    schedules,
		appointments: appointmentsSvc,
		cfg:          cfg,
	}
}

func (s *flowService) Start(ctx context.Context) (*Flow, error) {
	flow := &Flow{
		ID:        uuid.NewString(),
		State:     StateSelectingProfessional,
		CreatedAt: time.Now(),
	}
	s.store.Put(flow)

	s.cfg.Log.Info("Booking flow started", "flow_id", flow.ID)
	return flow, nil
}

func (s *flowService) Get(ctx context.Context, id string) (*Flow, error) {
	return s.load(id)
}

func (s *flowService) SelectProfessional(ctx context.Context, id, professionalID, serviceTypeID string, durationMin int) (*Flow, error) {
	flow, err := s.load(id)
	if err != nil {
		return nil, err
	}

	professionalID = sanitizer.TrimAndNormalize(professionalID)
	if professionalID == "" {
		return nil, apperrors.InvalidInput("Professional ID must be provided")
	}
	if durationMin < 0 {
		return nil, apperrors.InvalidInput("Duration must be a positive number of minutes")
	}

	// Eligible professionals are those with at least one weekly schedule.
	schedules, err := s.schedules.FindByProfessional(ctx, professionalID)
	if err != nil {
		return nil, apperrors.Internal("Failed to check professional eligibility", err)
	}
	if len(schedules) == 0 {
		return nil, apperrors.Validation("Professional is not accepting bookings", map[string]any{
			"professional_id": professionalID,
		})
	}

	if err := flow.SelectProfessional(professionalID, sanitizer.TrimAndNormalize(serviceTypeID), durationMin); err != nil {
		return nil, err
	}

	s.store.Put(flow)
	s.cfg.Log.Debug("Booking flow professional selected",
		"flow_id", flow.ID,
		"professional_id", professionalID,
	)
	return flow, nil
}

func (s *flowService) SelectDate(ctx context.Context, id, date string) (*Flow, error) {
	flow, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if flow.State != StateSelectingDatetime {
		return nil, apperrors.Conflict("Action is not valid in state " + string(flow.State))
	}

	date = sanitizer.TrimAndNormalize(date)
	available, err := s.availability.IsDayAvailable(ctx, flow.Draft.ProfessionalID, date)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, apperrors.Validation("Selected day is not available", map[string]any{
			"date": date,
		})
	}

	if err := flow.SelectDate(date); err != nil {
		return nil, err
	}

	s.store.Put(flow)
	return flow, nil
}

func (s *flowService) SelectTime(ctx context.Context, id, t string) (*Flow, error) {
	flow, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if flow.State != StateSelectingDatetime {
		return nil, apperrors.Conflict("Action is not valid in state " + string(flow.State))
	}
	if flow.Draft.Date == "" {
		return nil, apperrors.Conflict("A date must be selected before a time")
	}

	t = sanitizer.TrimAndNormalize(t)
	available, err := s.availability.IsSlotAvailable(ctx, flow.Draft.ProfessionalID, flow.Draft.Date, t, flow.Draft.DurationMin)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, apperrors.Validation("Selected time is not available", map[string]any{
			"date": flow.Draft.Date,
			"time": t,
		})
	}

	if err := flow.SelectTime(t); err != nil {
		return nil, err
	}

	s.store.Put(flow)
	return flow, nil
}

func (s *flowService) SetRequester(ctx context.Context, id string, details RequesterDetails) (*Flow, error) {
	flow, err := s.load(id)
	if err != nil {
		return nil, err
	}

	name := sanitizer.NormalizeName(details.Name)
	contact := sanitizer.NormalizeContact(details.Contact)
	if name == "" || contact == "" {
		return nil, apperrors.Validation("Requester name and contact are required", nil)
	}

	if err := flow.SetRequester(name, contact, details.OrgSnapshot); err != nil {
		return nil, err
	}

	s.store.Put(flow)
	return flow, nil
}

func (s *flowService) Back(ctx context.Context, id string) (*Flow, error) {
	flow, err := s.load(id)
	if err != nil {
		return nil, err
	}

	if err := flow.Back(); err != nil {
		return nil, err
	}

	s.store.Put(flow)
	return flow, nil
}

// Submit hands the completed draft to the appointment write path. The write is
// authoritative: a capacity race lost here surfaces as a conflict and the flow
// stays on the requester step so another slot can be picked.
func (s *flowService) Submit(ctx context.Context, id string) (*Flow, error) {
	flow, err := s.load(id)
	if err != nil {
		return nil, err
	}

	if err := flow.ReadyToSubmit(); err != nil {
		return nil, err
	}

	appointment := &model.Appointment{
		ProfessionalID:   flow.Draft.ProfessionalID,
		ServiceTypeID:    flow.Draft.ServiceTypeID,
		Date:             flow.Draft.Date,
		StartTime:        flow.Draft.Time,
		DurationMin:      flow.Draft.DurationMin,
		RequesterName:    flow.Draft.RequesterName,
		RequesterContact: flow.Draft.RequesterContact,
		OrgSnapshot:      flow.Draft.OrgSnapshot,
		Status:           model.AppointmentStatusScheduled,
	}

	if err := s.appointments.Create(ctx, appointment); err != nil {
		s.cfg.Log.Warn("Booking flow submit failed",
			"flow_id", flow.ID,
			"professional_id", flow.Draft.ProfessionalID,
			"date", flow.Draft.Date,
			"time", flow.Draft.Time,
			"error", err,
		)
		return nil, err
	}

	flow.Confirm(appointment.ID)
	s.store.Put(flow)

	s.cfg.Log.Info("Booking flow confirmed",
		"flow_id", flow.ID,
		"appointment_id", appointment.ID,
	)
	return flow, nil
}

func (s *flowService) load(id string) (*Flow, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Flow ID cannot be empty")
	}
	flow, ok := s.store.Get(id)
	if !ok {
		return nil, apperrors.NotFoundWithID("Booking flow", id)
	}
	return flow, nil
}
