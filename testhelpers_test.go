//go:build integration

package main_test

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/laraibshahid/carrental/internal/application"
	bookingDomain "github.com/laraibshahid/carrental/internal/domain/booking"
	"github.com/laraibshahid/carrental/internal/payment"
	"github.com/laraibshahid/carrental/internal/repository"
	"github.com/laraibshahid/carrental/pkg/kafka"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	KafkaBrokers []string
	Cleanup      func()
}

// rentalStack holds wired-up rental service components.
type rentalStack struct {
	Bookings        *application.BookingService
	Vehicles        *application.VehicleService
	Queries         *application.QueryService
	CleanupProducer func()
}

// setupContainers starts PostgreSQL and Kafka testcontainers and returns a connected GORM DB.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_rental",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test_rental sslmode=disable", pgHost, pgPort.Port())

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			return false
		}
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, db.AutoMigrate(
		&repository.VehicleModel{},
		&repository.BookingModel{},
		&repository.PaymentAttemptModel{},
	))

	// Start Kafka container using confluent-local (supports KRaft natively).
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	createTopics(t, kafkaBrokers, "booking.events", "payment.events")

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}

	return &testInfra{
		DB:           db,
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

// setupRentalStack wires up the rental services against real Postgres and
// Kafka. The payment authorizer is the in-process simulator with the given
// success rate.
func setupRentalStack(t *testing.T, db *gorm.DB, brokers []string, successRate float64) *rentalStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	bookingRepo := repository.NewGormBookingRepository(db)
	vehicleRepo := repository.NewGormVehicleRepository(db)
	attemptRepo := repository.NewGormPaymentAttemptRepository(db)
	producer := kafka.NewProducer(brokers, logger)

	authorizer := payment.NewSimulatedAuthorizer(successRate, 0, 42)

	bookingSvc := application.NewBookingService(
		bookingRepo,
		vehicleRepo,
		attemptRepo,
		authorizer,
		bookingDomain.NewStandardPricingStrategy(),
		bookingDomain.NewSystemClock(),
		application.BookingPolicy{
			MinDuration:    time.Hour,
			MaxDuration:    60 * 24 * time.Hour,
			PaymentTimeout: 5 * time.Second,
		},
		producer,
		logger,
	)
	vehicleSvc := application.NewVehicleService(vehicleRepo, bookingRepo, logger)
	querySvc := application.NewQueryService(bookingRepo, vehicleRepo, logger)

	return &rentalStack{
		Bookings:        bookingSvc,
		Vehicles:        vehicleSvc,
		Queries:         querySvc,
		CleanupProducer: func() { _ = producer.Close() },
	}
}

// seedVehicle inserts an available vehicle owned by ownerID.
func seedVehicle(t *testing.T, db *gorm.DB, ownerID uuid.UUID, dailyRateCents int64) uuid.UUID {
	t.Helper()
	now := time.Now().UTC()
	vehicleID := uuid.New()
	model := repository.VehicleModel{
		ID:             vehicleID,
		OwnerID:        ownerID,
		Make:           "Toyota",
		Model:          "RAV4",
		Year:           2023,
		LicensePlate:   fmt.Sprintf("INT-%s", uuid.New().String()[:8]),
		VehicleType:    "suv",
		DailyRateCents: dailyRateCents,
		Currency:       "USD",
		Status:         "available",
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	require.NoError(t, db.Create(&model).Error, "failed to seed vehicle")
	return vehicleID
}

// seedPendingBooking inserts a pending, unpaid booking row directly.
func seedPendingBooking(t *testing.T, db *gorm.DB, vehicleID, requesterID uuid.UUID, start, end time.Time, depositCents int64) uuid.UUID {
	t.Helper()
	now := time.Now().UTC()
	bookingID := uuid.New()
	model := repository.BookingModel{
		ID:               bookingID,
		BookingNumber:    fmt.Sprintf("BK-I%s", uuid.New().String()[:5]),
		VehicleID:        vehicleID,
		RequesterID:      requesterID,
		StartTime:        start,
		EndTime:          end,
		Status:           "pending",
		PaymentStatus:    "unpaid",
		DailyRateCents:   10000,
		TotalAmountCents: 20000,
		DepositCents:     depositCents,
		Currency:         "USD",
		Version:          1,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	require.NoError(t, db.Create(&model).Error, "failed to seed booking")
	return bookingID
}

// waitForBookingStatus polls the bookings table until the status matches.
func waitForBookingStatus(t *testing.T, db *gorm.DB, bookingID uuid.UUID, expectedStatus string, timeout time.Duration) repository.BookingModel {
	t.Helper()
	var result repository.BookingModel
	require.Eventually(t, func() bool {
		var model repository.BookingModel
		err := db.Where("id = ?", bookingID).First(&model).Error
		if err != nil {
			return false
		}
		if model.Status == expectedStatus {
			result = model
			return true
		}
		return false
	}, timeout, 200*time.Millisecond, "booking did not reach status %s", expectedStatus)
	return result
}

// consumeOneEvent reads from a Kafka topic until it finds an event of the expected type.
func consumeOneEvent(t *testing.T, brokers []string, topic, expectedType string, timeout time.Duration) kafka.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting for event type %q on topic %q", expectedType, topic)
			}
			continue
		}
		ce, err := kafka.ParseCloudEvent(msg.Value)
		if err != nil {
			continue
		}
		if ce.Type == expectedType {
			return ce
		}
	}
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	err = controllerConn.CreateTopics(topicConfigs...)
	require.NoError(t, err, "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(1 * time.Second)
}
