package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"hotel/infras/otel"
	"hotel/infras/postgres"
	"hotel/internal/domains/booking/model"
	"hotel/shared/constant"
	gDto "hotel/shared/dto"
	"hotel/shared/logger"
	gRepo "hotel/shared/repository"
	"hotel/shared/timezone"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"
)

const argCurrentStatus = "current_status"

type Booking interface {
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Booking, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Booking, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	GetByID(ctx context.Context, q sqlx.QueryerContext, bookingID int64, lock bool) (model.Booking, error)
	InsertTx(ctx context.Context, tx *sqlx.Tx, booking model.Booking) (int64, error)
	CancelTx(ctx context.Context, tx *sqlx.Tx, bookingID int64, conditional bool) (int64, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Booking]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Booking {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Booking](model.EntityName, model.TableName, model.FieldBookingID, db, otel),
		db:         db,
		otel:       otel,
	}
}

// GetByID reads one booking through q. A missing booking is returned as the zero value.
// With lock set the row is held FOR UPDATE until q's transaction ends.
func (r *repositoryImpl) GetByID(ctx context.Context, q sqlx.QueryerContext, bookingID int64, lock bool) (res model.Booking, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.GetByID")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	stmt := gRepo.Builder.
		From(model.TableName).
		Select(
			model.FieldBookingID,
			model.FieldCustomerName,
			model.FieldPhone,
			model.FieldRoomID,
			model.FieldCheckIn,
			model.FieldCheckOut,
			model.FieldStatus,
			constant.FieldCreatedAt,
			constant.FieldModifiedAt,
		).
		Where(goqu.C(model.FieldBookingID).Eq(bookingID)).
		Prepared(true)

	if lock {
		stmt = stmt.ForUpdate(goqu.Wait)
	}

	query, args, err := stmt.ToSQL()
	if err != nil {
		return res, fmt.Errorf("failed to build booking query: %w", err)
	}

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	err = sqlx.GetContext(ctx, q, &res, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Booking{}, nil
	}

	if err != nil {
		logger.ErrorWithStack(err)

		return model.Booking{}, fmt.Errorf("failed to get booking: %w", err)
	}

	return res, nil
}

// InsertTx stores booking inside tx and returns the id assigned by the store.
func (r *repositoryImpl) InsertTx(ctx context.Context, tx *sqlx.Tx, booking model.Booking) (id int64, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.InsertTx")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	now := timezone.Now()

	query, args, err := gRepo.Builder.
		Insert(model.TableName).
		Rows(goqu.Record{
			model.FieldCustomerName:  booking.CustomerName,
			model.FieldPhone:         booking.Phone,
			model.FieldRoomID:        booking.RoomID,
			model.FieldCheckIn:       booking.CheckIn,
			model.FieldCheckOut:      booking.CheckOut,
			model.FieldStatus:        booking.Status,
			constant.FieldCreatedAt:  now,
			constant.FieldModifiedAt: now,
		}).
		Returning(model.FieldBookingID).
		Prepared(true).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("failed to build booking insert: %w", err)
	}

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	if err = tx.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
		logger.ErrorWithStack(err)

		return 0, fmt.Errorf("failed to insert booking: %w", err)
	}

	scope.SetAttribute("booking.id", id)

	return id, nil
}

// CancelTx marks a booking cancelled inside tx. When conditional is set only an active
// booking is touched, so a zero count means it was already cancelled.
func (r *repositoryImpl) CancelTx(ctx context.Context, tx *sqlx.Tx, bookingID int64, conditional bool) (int64, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.CancelTx")
	defer scope.End()

	filters := []any{
		gDto.Filter{Field: model.FieldBookingID, Value: bookingID, Operator: gDto.FilterOperatorEq},
	}

	if conditional {
		filters = append(filters, gDto.Filter{
			Field:    model.FieldStatus,
			ArgName:  argCurrentStatus,
			Value:    model.StatusActive,
			Operator: gDto.FilterOperatorEq,
		})
	}

	return r.UpdateTx(ctx, tx, map[string]any{
		model.FieldStatus:        model.StatusCancelled,
		constant.FieldModifiedAt: timezone.Now(),
	}, gDto.FilterGroup{
		Filters:  filters,
		Operator: gDto.FilterGroupOperatorAnd,
	})
}
