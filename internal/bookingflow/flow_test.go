package bookingflow

import (
	"context"
	"testing"
	"time"

	availability "github.com/tecmax-dev/sisvida-sub008/internal/availability/service"
	"github.com/tecmax-dev/sisvida-sub008/pkg/config"
	apperrors "github.com/tecmax-dev/sisvida-sub008/pkg/errors"
	"github.com/tecmax-dev/sisvida-sub008/pkg/logger"
	"github.com/tecmax-dev/sisvida-sub008/pkg/model"
)

type mockAvailabilityService struct {
	dayAvailable  bool
	slotAvailable bool
}

func (m *mockAvailabilityService) GetSlots(ctx context.Context, professionalID, date string, intervalMin int) (*availability.SlotsResult, error) {
	return &availability.SlotsResult{}, nil
}

func (m *mockAvailabilityService) GetDays(ctx context.Context, professionalID, month string) (*availability.MonthAvailability, error) {
	return &availability.MonthAvailability{}, nil
}

func (m *mockAvailabilityService) IsSlotAvailable(ctx context.Context, professionalID, date, startTime string, intervalMin int) (bool, error) {
	return m.slotAvailable, nil
}

func (m *mockAvailabilityService) IsDayAvailable(ctx context.Context, professionalID, date string) (bool, error) {
	return m.dayAvailable, nil
}

type mockScheduleReader struct {
	schedules []*model.Schedule
}

func (m *mockScheduleReader) FindByProfessional(ctx context.Context, professionalID string) ([]*model.Schedule, error) {
	return m.schedules, nil
}

type mockAppointmentService struct {
	createFunc func(ctx context.Context, a *model.Appointment) error
	created    []*model.Appointment
}

func (m *mockAppointmentService) Create(ctx context.Context, a *model.Appointment) error {
	if m.createFunc != nil {
		if err := m.createFunc(ctx, a); err != nil {
			return err
		}
	}
	a.ID = "507f1f77bcf86cd799439011"
	m.created = append(m.created, a)
	return nil
}

func (m *mockAppointmentService) GetByID(ctx context.Context, id string) (*model.Appointment, error) {
	return nil, nil
}

func (m *mockAppointmentService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Appointment, int64, error) {
	return nil, 0, nil
}

func (m *mockAppointmentService) Search(ctx context.Context, professionalID, date string) ([]*model.Appointment, error) {
	return nil, nil
}

func (m *mockAppointmentService) Cancel(ctx context.Context, id string) error {
	return nil
}

type fixture struct {
	store        *InMemoryFlowStore
	avail        *mockAvailabilityService
	appointments *mockAppointmentService
	svc          FlowService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
	cfg := &config.Config{Log: log, FlowSessionTTL: time.Minute}

	store := NewInMemoryFlowStore(time.Minute, time.Minute)
	t.Cleanup(store.Stop)

	avail := &mockAvailabilityService{dayAvailable: true, slotAvailable: true}
	appointments := &mockAppointmentService{}
	schedules := &mockScheduleReader{
		schedules: []*model.Schedule{
			{ID: "sch-1", ProfessionalID: "prof-1", DayOfWeek: 1, StartTime: "09:00", EndTime: "17:00", Capacity: 2},
		},
	}

	return &fixture{
		store:        store,
		avail:        avail,
		appointments: appointments,
		svc:          NewFlowService(store, avail, schedules, appointments, cfg),
	}
}

func (f *fixture) advanceToRequester(t *testing.T) *Flow {
	t.Helper()
	ctx := context.Background()

	flow, err := f.svc.Start(ctx)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := f.svc.SelectProfessional(ctx, flow.ID, "prof-1", "svc-1", 30); err != nil {
		t.Fatalf("select professional: %v", err)
	}
	if _, err := f.svc.SelectDate(ctx, flow.ID, "2026-09-07"); err != nil {
		t.Fatalf("select date: %v", err)
	}
	if _, err := f.svc.SelectTime(ctx, flow.ID, "09:00"); err != nil {
		t.Fatalf("select time: %v", err)
	}
	updated, err := f.svc.SetRequester(ctx, flow.ID, RequesterDetails{
		Name:    "Maria Silva",
		Contact: "maria@example.com",
	})
	if err != nil {
		t.Fatalf("set requester: %v", err)
	}
	return updated
}

func TestFlow_FullWalkthroughConfirms(t *testing.T) {
	f := newFixture(t)
	flow := f.advanceToRequester(t)

	confirmed, err := f.svc.Submit(context.Background(), flow.ID)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if confirmed.State != StateConfirmed {
		t.Errorf("state = %s, want confirmed", confirmed.State)
	}
	if confirmed.AppointmentID == "" {
		t.Error("appointment id not recorded on the flow")
	}
	if len(f.appointments.created) != 1 {
		t.Fatalf("appointment service called %d times, want 1", len(f.appointments.created))
	}

	a := f.appointments.created[0]
	if a.ProfessionalID != "prof-1" || a.Date != "2026-09-07" || a.StartTime != "09:00" {
		t.Errorf("draft not carried into the write: %+v", a)
	}
	if a.RequesterName != "Maria Silva" {
		t.Errorf("requester name not carried: %q", a.RequesterName)
	}
}

func TestFlow_StepsCannotBeSkipped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	flow, _ := f.svc.Start(ctx)

	if _, err := f.svc.SelectDate(ctx, flow.ID, "2026-09-07"); err == nil {
		t.Error("date selection before professional must fail")
	}
	if _, err := f.svc.SelectTime(ctx, flow.ID, "09:00"); err == nil {
		t.Error("time selection before professional must fail")
	}
	if _, err := f.svc.Submit(ctx, flow.ID); err == nil {
		t.Error("submit from the first step must fail")
	}

	if _, err := f.svc.SelectProfessional(ctx, flow.ID, "prof-1", "", 0); err != nil {
		t.Fatalf("select professional: %v", err)
	}
	if _, err := f.svc.SelectTime(ctx, flow.ID, "09:00"); err == nil {
		t.Error("time selection before date must fail")
	}
}

func TestFlow_DateChangeClearsTime(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	flow, _ := f.svc.Start(ctx)
	f.svc.SelectProfessional(ctx, flow.ID, "prof-1", "", 30)
	f.svc.SelectDate(ctx, flow.ID, "2026-09-07")
	f.svc.SelectTime(ctx, flow.ID, "09:00")

	updated, err := f.svc.SelectDate(ctx, flow.ID, "2026-09-14")
	if err != nil {
		t.Fatalf("re-selecting date: %v", err)
	}
	if updated.Draft.Time != "" {
		t.Errorf("time survived a date change: %q", updated.Draft.Time)
	}
	if updated.Draft.Date != "2026-09-14" {
		t.Errorf("date not updated: %q", updated.Draft.Date)
	}
}

func TestFlow_BackClearsOnlyTheStepBeingLeft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	flow := f.advanceToRequester(t)

	back, err := f.svc.Back(ctx, flow.ID)
	if err != nil {
		t.Fatalf("back from requester: %v", err)
	}
	if back.State != StateSelectingDatetime {
		t.Errorf("state = %s, want selecting_datetime", back.State)
	}
	if back.Draft.RequesterName != "" || back.Draft.RequesterContact != "" {
		t.Error("requester fields must be cleared when leaving that step")
	}
	if back.Draft.Date != "2026-09-07" || back.Draft.Time != "09:00" {
		t.Error("date and time must be preserved when backing out of requester details")
	}

	back, err = f.svc.Back(ctx, flow.ID)
	if err != nil {
		t.Fatalf("back from datetime: %v", err)
	}
	if back.State != StateSelectingProfessional {
		t.Errorf("state = %s, want selecting_professional", back.State)
	}
	if back.Draft.Date != "" || back.Draft.Time != "" {
		t.Error("date and time must be cleared when leaving datetime selection")
	}
	if back.Draft.ProfessionalID != "prof-1" {
		t.Error("professional must be preserved when backing into its step")
	}

	if _, err := f.svc.Back(ctx, flow.ID); err == nil {
		t.Error("back from the first step must fail")
	}
}

func TestFlow_GuardsRejectUnavailableSelections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	flow, _ := f.svc.Start(ctx)
	f.svc.SelectProfessional(ctx, flow.ID, "prof-1", "", 30)

	f.avail.dayAvailable = false
	if _, err := f.svc.SelectDate(ctx, flow.ID, "2026-09-07"); err == nil {
		t.Error("unavailable day must be rejected")
	}

	f.avail.dayAvailable = true
	f.svc.SelectDate(ctx, flow.ID, "2026-09-07")

	f.avail.slotAvailable = false
	if _, err := f.svc.SelectTime(ctx, flow.ID, "09:00"); err == nil {
		t.Error("full slot must be rejected")
	}
}

func TestFlow_IneligibleProfessionalRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	log := logger.New(logger.Config{Level: "error", Format: logger.JSON, Service: "test"})
	cfg := &config.Config{Log: log, FlowSessionTTL: time.Minute}
	svc := NewFlowService(f.store, f.avail, &mockScheduleReader{}, f.appointments, cfg)

	flow, _ := svc.Start(ctx)
	_, err := svc.SelectProfessional(ctx, flow.ID, "prof-none", "", 0)
	if err == nil {
		t.Fatal("professional without schedules must be rejected")
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeValidation {
		t.Errorf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestFlow_SubmitConflictKeepsFlowOpen(t *testing.T) {
	f := newFixture(t)
	f.appointments.createFunc = func(ctx context.Context, a *model.Appointment) error {
		return apperrors.Conflict("This time slot is fully booked")
	}

	flow := f.advanceToRequester(t)

	_, err := f.svc.Submit(context.Background(), flow.ID)
	if err == nil {
		t.Fatal("expected conflict error, got nil")
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected CONFLICT, got %v", err)
	}

	current, err := f.svc.Get(context.Background(), flow.ID)
	if err != nil {
		t.Fatalf("flow lookup after failed submit: %v", err)
	}
	if current.State != StateEnteringRequester {
		t.Errorf("state = %s, want entering_requester_details so the user can retry", current.State)
	}
}

func TestFlow_ConfirmedIsTerminal(t *testing.T) {
	f := newFixture(t)
	flow := f.advanceToRequester(t)
	ctx := context.Background()

	if _, err := f.svc.Submit(ctx, flow.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if _, err := f.svc.Back(ctx, flow.ID); err == nil {
		t.Error("back after confirmation must fail")
	}
	if _, err := f.svc.SelectDate(ctx, flow.ID, "2026-09-14"); err == nil {
		t.Error("date selection after confirmation must fail")
	}
	if _, err := f.svc.Submit(ctx, flow.ID); err == nil {
		t.Error("double submit must fail")
	}
}

func TestFlowStore_Expiry(t *testing.T) {
	store := NewInMemoryFlowStore(10*time.Millisecond, time.Hour)
	defer store.Stop()

	flow := &Flow{ID: "f1", State: StateSelectingProfessional}
	store.Put(flow)

	if _, ok := store.Get("f1"); !ok {
		t.Fatal("fresh flow must be retrievable")
	}

	time.Sleep(20 * time.Millisecond)
	if _, ok := store.Get("f1"); ok {
		t.Error("expired flow must not be returned")
	}
}

func TestFlowStore_GetReturnsCopy(t *testing.T) {
	store := NewInMemoryFlowStore(time.Minute, time.Hour)
	defer store.Stop()

	store.Put(&Flow{ID: "f1", State: StateSelectingProfessional})

	first, _ := store.Get("f1")
	first.Draft.ProfessionalID = "mutated"

	second, _ := store.Get("f1")
	if second.Draft.ProfessionalID != "" {
		t.Error("mutating a returned flow must not affect the stored one")
	}
}
