//go:build integration

package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel/config"
	"hotel/helper"
	"hotel/infras/kafka"
	"hotel/infras/otel/mocks"
	"hotel/infras/postgres"
	"hotel/internal/domains/booking/model/dto"
	bookingRepo "hotel/internal/domains/booking/repository"
	"hotel/internal/domains/booking/service"
	roomRepo "hotel/internal/domains/room/repository"
	cacheMocks "hotel/shared/cache/mocks"
)

// newIntegrationService runs the migrations against the database configured through
// DB_POSTGRES_* and returns a booking service on top of it with rooms reset to available.
func newIntegrationService(t *testing.T, guarded bool) (service.Booking, *postgres.Connection) {
	t.Helper()

	cfg := *config.Get()
	if cfg.DB.Postgres.Write.Host == "" {
		t.Skip("DB_POSTGRES_WRITE_HOST not set")
	}

	cfg.DB.Postgres.MigrationPath = "file://../../../../migrations/postgres"
	cfg.App.Booking.GuardedAvailability = guarded
	cfg.Kafka.Enable = false

	require.NoError(t, helper.Up(&cfg))

	db := postgres.New(&cfg)
	t.Cleanup(db.Close)

	_, err := db.Write.Exec("TRUNCATE bookings RESTART IDENTITY")
	require.NoError(t, err)

	_, err = db.Write.Exec("UPDATE rooms SET is_available = true")
	require.NoError(t, err)

	otel := mocks.NewOtel()

	svc := service.New(
		bookingRepo.New(db, otel),
		roomRepo.New(db, otel),
		db,
		&cfg,
		cacheMocks.NewMemoryCache(),
		kafka.New(&cfg),
		otel,
	)

	return svc, db
}

func roomAvailable(t *testing.T, db *postgres.Connection, roomID int64) bool {
	t.Helper()

	var available bool
	require.NoError(t, db.Read.Get(&available, "SELECT is_available FROM rooms WHERE room_id = $1", roomID))

	return available
}

func countBookings(t *testing.T, db *postgres.Connection) int {
	t.Helper()

	var count int
	require.NoError(t, db.Read.Get(&count, "SELECT COUNT(*) FROM bookings"))

	return count
}

func TestBookingLifecycle(t *testing.T) {
	for _, guarded := range []bool{true, false} {
		name := "legacy"
		if guarded {
			name = "guarded"
		}

		t.Run(name, func(t *testing.T) {
			svc, db := newIntegrationService(t, guarded)
			ctx := context.Background()

			booked := svc.Book(ctx, dto.CreateBookingRequest{Name: "Alice", RoomID: 101, CheckIn: "2024-01-01", CheckOut: "2024-01-03"})
			require.True(t, booked.OK, booked.Message)
			require.NotNil(t, booked.BookingID)
			assert.False(t, roomAvailable(t, db, 101))

			again := svc.Book(ctx, dto.CreateBookingRequest{Name: "Alice", RoomID: 101, CheckIn: "2024-01-01", CheckOut: "2024-01-03"})
			assert.False(t, again.OK)
			assert.Equal(t, service.MsgRoomNotAvailable, again.Message)
			assert.Equal(t, 1, countBookings(t, db))

			cancelled := svc.Cancel(ctx, *booked.BookingID)
			require.True(t, cancelled.OK, cancelled.Message)
			assert.True(t, roomAvailable(t, db, 101))

			var status string
			require.NoError(t, db.Read.Get(&status, "SELECT status FROM bookings WHERE booking_id = $1", *booked.BookingID))
			assert.Equal(t, "cancelled", status)

			twice := svc.Cancel(ctx, *booked.BookingID)
			assert.False(t, twice.OK)
			assert.Equal(t, service.MsgBookingCancelled, twice.Message)
			assert.True(t, roomAvailable(t, db, 101))

			missing := svc.Book(ctx, dto.CreateBookingRequest{Name: "Bob", RoomID: 9999})
			assert.False(t, missing.OK)
			assert.Equal(t, service.MsgRoomNotFound, missing.Message)
			assert.Equal(t, 1, countBookings(t, db))
		})
	}
}

func TestConcurrentBookingsOfOneRoom(t *testing.T) {
	svc, db := newIntegrationService(t, true)

	const attempts = 8

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners int
	)

	for range attempts {
		wg.Add(1)

		go func() {
			defer wg.Done()

			res := svc.Book(context.Background(), dto.CreateBookingRequest{Name: "Carol", RoomID: 102})
			if res.OK {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, 1, winners)
	assert.Equal(t, 1, countBookings(t, db))
	assert.False(t, roomAvailable(t, db, 102))
}
