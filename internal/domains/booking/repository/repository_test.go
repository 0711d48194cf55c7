package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"hotel/infras/otel/mocks"
	"hotel/infras/postgres"
	"hotel/internal/domains/booking/model"
	"hotel/internal/domains/booking/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

var bookingColumns = []string{
	"booking_id", "customer_name", "phone", "room_id", "check_in", "check_out", "status", "created_at", "modified_at",
}

func newRepository(t *testing.T) (repository.Booking, *postgres.Connection, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })

	sqlxDB := sqlx.NewDb(db, "postgres")
	conn := &postgres.Connection{Read: sqlxDB, Write: sqlxDB}

	return repository.New(conn, mocks.NewOtel()), conn, mock
}

func TestBookingRepository_GetByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo, conn, mock := newRepository(t)

		mock.ExpectQuery(`SELECT "booking_id", "customer_name", .* FROM "bookings" WHERE \("booking_id" = \$1\)$`).
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows(bookingColumns).
				AddRow(int64(7), "Alice", "", int64(101), "2024-01-01", "2024-01-03", "active", now, now))

		got, err := repo.GetByID(context.Background(), conn.Read, 7, false)
		assert.NoError(t, err)
		assert.Equal(t, int64(7), got.BookingID)
		assert.Equal(t, "Alice", got.CustomerName)
		assert.Equal(t, int64(101), got.RoomID)
		assert.Equal(t, model.StatusActive, got.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing booking is zero value", func(t *testing.T) {
		repo, conn, mock := newRepository(t)

		mock.ExpectQuery(`FROM "bookings"`).WithArgs(int64(99)).WillReturnRows(sqlmock.NewRows(bookingColumns))

		got, err := repo.GetByID(context.Background(), conn.Read, 99, false)
		assert.NoError(t, err)
		assert.False(t, got.Found())
	})

	t.Run("locks row inside transaction", func(t *testing.T) {
		repo, conn, mock := newRepository(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`FROM "bookings" WHERE \("booking_id" = \$1\) FOR UPDATE`).
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows(bookingColumns).
				AddRow(int64(7), "Alice", "", int64(101), "", "", "cancelled", now, now))
		mock.ExpectRollback()

		tx, err := conn.Write.Beginx()
		require.NoError(t, err)

		got, err := repo.GetByID(context.Background(), tx, 7, true)
		require.NoError(t, tx.Rollback())

		assert.NoError(t, err)
		assert.True(t, got.Cancelled())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("store error", func(t *testing.T) {
		repo, conn, mock := newRepository(t)

		mock.ExpectQuery(`FROM "bookings"`).WillReturnError(errors.New("connection reset"))

		_, err := repo.GetByID(context.Background(), conn.Read, 7, false)
		assert.Error(t, err)
	})
}

func TestBookingRepository_InsertTx(t *testing.T) {
	booking := model.Booking{
		CustomerName: "Alice",
		RoomID:       101,
		CheckIn:      "2024-01-01",
		CheckOut:     "2024-01-03",
		Status:       model.StatusActive,
	}

	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		wantID    int64
		wantErr   bool
	}{
		{
			name: "returns store assigned id",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO "bookings" \("check_in", "check_out", "created_at", "customer_name", "modified_at", "phone", "room_id", "status"\) VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, \$7, \$8\) RETURNING "booking_id"`).
					WithArgs("2024-01-01", "2024-01-03", sqlmock.AnyArg(), "Alice", sqlmock.AnyArg(), "", int64(101), "active").
					WillReturnRows(sqlmock.NewRows([]string{"booking_id"}).AddRow(int64(12)))
			},
			wantID: 12,
		},
		{
			name: "store error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO "bookings"`).WillReturnError(errors.New("disk full"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, conn, mock := newRepository(t)

			mock.ExpectBegin()
			tt.setupMock(mock)
			mock.ExpectRollback()

			tx, err := conn.Write.Beginx()
			require.NoError(t, err)

			id, err := repo.InsertTx(context.Background(), tx, booking)
			require.NoError(t, tx.Rollback())

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantID, id)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestBookingRepository_CancelTx(t *testing.T) {
	tests := []struct {
		name        string
		conditional bool
		setupMock   func(mock sqlmock.Sqlmock)
		want        int64
	}{
		{
			name:        "conditional cancel of active booking",
			conditional: true,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE bookings SET modified_at = \$1, status = \$2\s+WHERE \(booking_id = \$3 AND status = \$4\)`).
					WithArgs(sqlmock.AnyArg(), "cancelled", int64(7), "active").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			want: 1,
		},
		{
			name:        "conditional cancel of cancelled booking",
			conditional: true,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE bookings`).
					WithArgs(sqlmock.AnyArg(), "cancelled", int64(7), "active").
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			want: 0,
		},
		{
			name: "unconditional cancel",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE bookings SET modified_at = \$1, status = \$2\s+WHERE \(booking_id = \$3\)`).
					WithArgs(sqlmock.AnyArg(), "cancelled", int64(7)).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, conn, mock := newRepository(t)

			mock.ExpectBegin()
			tt.setupMock(mock)
			mock.ExpectRollback()

			tx, err := conn.Write.Beginx()
			require.NoError(t, err)

			got, err := repo.CancelTx(context.Background(), tx, 7, tt.conditional)
			require.NoError(t, tx.Rollback())

			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
