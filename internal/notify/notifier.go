package notify

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tecmax-dev/sisvida-sub008/pkg/config"
	"github.com/tecmax-dev/sisvida-sub008/pkg/kafka"
	"github.com/tecmax-dev/sisvida-sub008/pkg/model"
)

// Notifier is the outbound side channel for booking events. Delivery is
// best-effort and at-most-once: implementations must never block the caller
// and must never surface a delivery failure as an error.
type Notifier interface {
	AppointmentCreated(appointment *model.Appointment)
}

const EventAppointmentCreated = "appointment.created"

// AppointmentCreatedEvent is the published payload. It carries the full
// denormalized snapshot so consumers do not need a read back.
type AppointmentCreatedEvent struct {
	AppointmentID    string            `json:"appointment_id"`
	ProfessionalID   string            `json:"professional_id"`
	ServiceTypeID    string            `json:"service_type_id,omitempty"`
	Date             string            `json:"date"`
	StartTime        string            `json:"start_time"`
	EndTime          string            `json:"end_time,omitempty"`
	RequesterName    string            `json:"requester_name"`
	RequesterContact string            `json:"requester_contact"`
	OrgSnapshot      model.OrgSnapshot `json:"org_snapshot,omitempty"`
}

type publisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// KafkaNotifier publishes appointment events to the broker. Each notification
// runs in its own goroutine with its own deadline; a failed publish is logged
// and dropped, never retried.
type KafkaNotifier struct {
	producer publisher
	cfg      *config.Config
}

func NewKafkaNotifier(producer *kafka.Producer, cfg *config.Config) *KafkaNotifier {
	return &KafkaNotifier{
		producer: producer,
		cfg:      cfg,
	}
}

func (n *KafkaNotifier) AppointmentCreated(appointment *model.Appointment) {
	event := AppointmentCreatedEvent{
		AppointmentID:    appointment.ID,
		ProfessionalID:   appointment.ProfessionalID,
		ServiceTypeID:    appointment.ServiceTypeID,
		Date:             appointment.Date,
		StartTime:        appointment.StartTime,
		EndTime:          appointment.EndTime,
		RequesterName:    appointment.RequesterName,
		RequesterContact: appointment.RequesterContact,
		OrgSnapshot:      appointment.OrgSnapshot,
	}

	msg := kafka.NewMessage().
		WithKey(fmt.Sprintf("%s_%s_%s", appointment.ProfessionalID, appointment.Date, appointment.StartTime)).
		WithValue(event).
		WithEventType(EventAppointmentCreated).
		WithCorrelationID(uuid.NewString()).
		WithSource(n.cfg.ServiceName).
		Build()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), n.cfg.NotifyTimeout)
		defer cancel()

		if err := n.producer.Publish(ctx, msg); err != nil {
			n.cfg.Log.Warn("Failed to publish appointment created event",
				"appointment_id", appointment.ID,
				"error", err,
			)
			return
		}

		n.cfg.Log.Debug("Appointment created event published",
			"appointment_id", appointment.ID,
		)
	}()
}

// NopNotifier is used when the broker is disabled.
type NopNotifier struct{}

func (NopNotifier) AppointmentCreated(*model.Appointment) {}
