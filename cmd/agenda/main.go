package main

import (
	"context"

	appointmenthandler "github.com/tecmax-dev/sisvida-sub008/internal/appointments/handler"
	appointmentrepository "github.com/tecmax-dev/sisvida-sub008/internal/appointments/repository"
	appointmentservice "github.com/tecmax-dev/sisvida-sub008/internal/appointments/service"
	appointmentvalidator "github.com/tecmax-dev/sisvida-sub008/internal/appointments/validator"
	availabilityhandler "github.com/tecmax-dev/sisvida-sub008/internal/availability/handler"
	availabilityservice "github.com/tecmax-dev/sisvida-sub008/internal/availability/service"
	blockhandler "github.com/tecmax-dev/sisvida-sub008/internal/blocks/handler"
	blockrepository "github.com/tecmax-dev/sisvida-sub008/internal/blocks/repository"
	blockservice "github.com/tecmax-dev/sisvida-sub008/internal/blocks/service"
	blockvalidator "github.com/tecmax-dev/sisvida-sub008/internal/blocks/validator"
	"github.com/tecmax-dev/sisvida-sub008/internal/bookingflow"
	migrations "github.com/tecmax-dev/sisvida-sub008/internal/migrations/mongo"
	"github.com/tecmax-dev/sisvida-sub008/internal/notify"
	schedulehandler "github.com/tecmax-dev/sisvida-sub008/internal/schedules/handler"
	schedulerepository "github.com/tecmax-dev/sisvida-sub008/internal/schedules/repository"
	scheduleservice "github.com/tecmax-dev/sisvida-sub008/internal/schedules/service"
	schedulevalidator "github.com/tecmax-dev/sisvida-sub008/internal/schedules/validator"
	"github.com/tecmax-dev/sisvida-sub008/pkg/app"
	"github.com/tecmax-dev/sisvida-sub008/pkg/config"
	"github.com/tecmax-dev/sisvida-sub008/pkg/kafka"
	kafka_config "github.com/tecmax-dev/sisvida-sub008/pkg/kafka/config"
)

const serviceName = "agenda"

func main() {
	cfg := config.Load(serviceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.MongoConnTimeout)
	defer cancel()
	if err := migrations.EnsureIndexes(ctx, cfg); err != nil {
		cfg.Log.Fatal("Failed to ensure Mongo indexes", "error", err)
	}

	serverApp := app.NewApplication(cfg)
	initServices(cfg, serverApp)
	serverApp.Run()
}

func initServices(cfg *config.Config, serverApp *app.Application) {
	// Schedules
	scheduleRepo := schedulerepository.NewMongoScheduleRepository(cfg)
	scheduleSvc := scheduleservice.NewScheduleService(
		scheduleRepo,
		schedulevalidator.NewScheduleValidator(cfg.Log),
		cfg,
	)
	scheduleH := schedulehandler.NewScheduleHandler(scheduleSvc, cfg.Log)

	// Blocks
	blockRepo := blockrepository.NewMongoBlockRepository(cfg)
	blockSvc := blockservice.NewBlockService(
		blockRepo,
		blockvalidator.NewBlockValidator(cfg.Log),
		cfg,
	)
	blockH := blockhandler.NewBlockHandler(blockSvc, cfg.Log)

	// Availability
	appointmentRepo := appointmentrepository.NewMongoAppointmentRepository(cfg)
	availabilitySvc := availabilityservice.NewAvailabilityService(
		scheduleRepo,
		blockRepo,
		appointmentRepo,
		cfg,
	)
	availabilityH := availabilityhandler.NewAvailabilityHandler(availabilitySvc, cfg.Log)

	// Appointments
	appointmentSvc := appointmentservice.NewAppointmentService(
		appointmentRepo,
		appointmentrepository.NewSlotLockRepository(cfg),
		scheduleRepo,
		blockRepo,
		appointmentvalidator.NewAppointmentValidator(cfg.Log),
		newNotifier(cfg, serverApp),
		cfg,
	)
	appointmentH := appointmenthandler.NewAppointmentHandler(appointmentSvc, cfg.Log)

	// Booking flow
	flowStore := bookingflow.NewInMemoryFlowStore(cfg.FlowSessionTTL, cfg.FlowSessionTTL/2)
	serverApp.AddStopper(flowStore)
	flowSvc := bookingflow.NewFlowService(
		flowStore,
		availabilitySvc,
		scheduleRepo,
		appointmentSvc,
		cfg,
	)
	flowH := bookingflow.NewFlowHandler(flowSvc, cfg.Log)

	serverApp.SetApp(scheduleH, blockH, availabilityH, appointmentH, flowH)
}

func newNotifier(cfg *config.Config, serverApp *app.Application) notify.Notifier {
	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Failed to load Kafka configuration", "error", err)
	}
	if !kafkaCfg.Enabled {
		cfg.Log.Info("Kafka disabled, appointment events will not be published")
		return notify.NopNotifier{}
	}

	producer, err := kafka.NewProducer(kafkaCfg, kafkaCfg.AppointmentCreatedTopic, kafkaCfg.DLQTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	serverApp.AddStopper(app.StopperFunc(func() {
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
	}))
	return notify.NewKafkaNotifier(producer, cfg)
}
