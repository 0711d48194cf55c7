package repository_test

import (
	"context"
	"errors"
	"testing"

	"hotel/infras/otel/mocks"
	"hotel/infras/postgres"
	"hotel/internal/domains/room/model"
	"hotel/internal/domains/room/repository"
	gDto "hotel/shared/dto"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepository(t *testing.T) (repository.Room, *postgres.Connection, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })

	sqlxDB := sqlx.NewDb(db, "postgres")
	conn := &postgres.Connection{Read: sqlxDB, Write: sqlxDB}

	return repository.New(conn, mocks.NewOtel()), conn, mock
}

func TestRoomRepository_Availability(t *testing.T) {
	tests := []struct {
		name      string
		lock      bool
		setupMock func(mock sqlmock.Sqlmock)
		want      model.Availability
		wantErr   bool
	}{
		{
			name: "available",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT "is_available" FROM "rooms" WHERE \("room_id" = \$1\)$`).
					WithArgs(int64(101)).
					WillReturnRows(sqlmock.NewRows([]string{"is_available"}).AddRow(true))
			},
			want: model.AvailabilityAvailable,
		},
		{
			name: "unavailable under lock",
			lock: true,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT "is_available" FROM "rooms" WHERE \("room_id" = \$1\) FOR UPDATE`).
					WithArgs(int64(101)).
					WillReturnRows(sqlmock.NewRows([]string{"is_available"}).AddRow(false))
			},
			want: model.AvailabilityUnavailable,
		},
		{
			name: "missing row",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT "is_available" FROM "rooms"`).
					WithArgs(int64(101)).
					WillReturnRows(sqlmock.NewRows([]string{"is_available"}))
			},
			want: model.AvailabilityNotFound,
		},
		{
			name: "store error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT "is_available" FROM "rooms"`).
					WithArgs(int64(101)).
					WillReturnError(errors.New("connection reset"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, conn, mock := newRepository(t)
			tt.setupMock(mock)

			got, err := repo.Availability(context.Background(), conn.Read, 101, tt.lock)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRoomRepository_SetAvailabilityTx(t *testing.T) {
	tests := []struct {
		name        string
		available   bool
		conditional bool
		setupMock   func(mock sqlmock.Sqlmock)
		want        int64
		wantErr     bool
	}{
		{
			name:        "conditional flip to booked",
			available:   false,
			conditional: true,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE rooms SET is_available = \$1\s+WHERE \(room_id = \$2 AND is_available = \$3\)`).
					WithArgs(false, int64(102), true).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			want: 1,
		},
		{
			name:        "conditional flip loses the race",
			available:   false,
			conditional: true,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE rooms SET is_available`).
					WithArgs(false, int64(102), true).
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			want: 0,
		},
		{
			name:      "unconditional reopen",
			available: true,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE rooms SET is_available = \$1\s+WHERE \(room_id = \$2\)`).
					WithArgs(true, int64(102)).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			want: 1,
		},
		{
			name:      "store error",
			available: true,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE rooms`).WillReturnError(errors.New("deadlock detected"))
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

			got, err := repo.SetAvailabilityTx(context.Background(), tx, 102, tt.available, tt.conditional)
			require.NoError(t, tx.Rollback())

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRoomRepository_Audit(t *testing.T) {
	t.Run("returns violations", func(t *testing.T) {
		repo, _, mock := newRepository(t)

		mock.ExpectQuery(`SELECT .* FROM "rooms" AS "r" LEFT JOIN "bookings" AS "b"`).
			WillReturnRows(sqlmock.NewRows([]string{"room_id", "is_available", "active_bookings"}).
				AddRow(int64(103), true, int64(1)).
				AddRow(int64(104), false, int64(0)))

		got, err := repo.Audit(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, []model.AuditEntry{
			{RoomID: 103, IsAvailable: true, ActiveBookings: 1},
			{RoomID: 104, IsAvailable: false, ActiveBookings: 0},
		}, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("consistent store", func(t *testing.T) {
		repo, _, mock := newRepository(t)

		mock.ExpectQuery(`SELECT .* FROM "rooms"`).
			WillReturnRows(sqlmock.NewRows([]string{"room_id", "is_available", "active_bookings"}))

		got, err := repo.Audit(context.Background())
		assert.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("store error", func(t *testing.T) {
		repo, _, mock := newRepository(t)

		mock.ExpectQuery(`SELECT .* FROM "rooms"`).WillReturnError(errors.New("connection refused"))

		_, err := repo.Audit(context.Background())
		assert.Error(t, err)
	})
}

func TestRoomRepository_GetAll(t *testing.T) {
	repo, _, mock := newRepository(t)

	mock.ExpectPrepare(`SELECT rooms.room_id, rooms.type, rooms.price, rooms.is_available FROM rooms\s+ORDER BY rooms.room_id ASC`).
		ExpectQuery().
		WillReturnRows(sqlmock.NewRows([]string{"room_id", "type", "price", "is_available"}).
			AddRow(int64(101), "Deluxe Single", int64(8000), true).
			AddRow(int64(102), "Standard Double", int64(6000), false))

	got, err := repo.GetAll(context.Background(), gDto.QueryParams{SortBy: model.FieldRoomID, SortDir: gDto.SortDirAsc}, gDto.FilterGroup{})
	assert.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, int64(101), got[0].RoomID)
	assert.False(t, got[1].IsAvailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepository_GetAllPaged(t *testing.T) {
	repo, _, mock := newRepository(t)

	mock.ExpectPrepare(`FROM rooms\s+ORDER BY rooms.price DESC LIMIT \$1 OFFSET \$2$`).
		ExpectQuery().
		WithArgs(int64(2), int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"room_id", "type", "price", "is_available"}).
			AddRow(int64(105), "Suite", int64(20000), true))

	params := gDto.QueryParams{Page: 3, Limit: 2, SortBy: "price", SortDir: gDto.SortDirDesc}

	got, err := repo.GetAll(context.Background(), params, gDto.FilterGroup{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(105), got[0].RoomID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
