package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"hotel/infras/otel"
	"hotel/infras/postgres"
	"hotel/internal/domains/room/model"
	"hotel/shared/constant"
	gDto "hotel/shared/dto"
	"hotel/shared/logger"
	gRepo "hotel/shared/repository"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"
)

const (
	bookingsTable       = "bookings"
	bookingStatusActive = "active"
	aliasActiveBookings = "active_bookings"
	argCurrentAvailable = "current_is_available"
)

type Room interface {
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Room, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Room, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Availability(ctx context.Context, q sqlx.QueryerContext, roomID int64, lock bool) (model.Availability, error)
	SetAvailabilityTx(ctx context.Context, tx *sqlx.Tx, roomID int64, available, conditional bool) (int64, error)
	Audit(ctx context.Context) ([]model.AuditEntry, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Room]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Room {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Room](model.EntityName, model.TableName, model.FieldRoomID, db, otel),
		db:         db,
		otel:       otel,
	}
}

// Availability reads the room flag through q, which is the read pool or an open transaction.
// With lock set the row is held FOR UPDATE until q's transaction ends.
func (r *repositoryImpl) Availability(ctx context.Context, q sqlx.QueryerContext, roomID int64, lock bool) (res model.Availability, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".room.Availability")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	stmt := gRepo.Builder.
		From(model.TableName).
		Select(model.FieldIsAvailable).
		Where(goqu.C(model.FieldRoomID).Eq(roomID)).
		Prepared(true)

	if lock {
		stmt = stmt.ForUpdate(goqu.Wait)
	}

	query, args, err := stmt.ToSQL()
	if err != nil {
		return model.AvailabilityNotFound, fmt.Errorf("failed to build availability query: %w", err)
	}

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	var isAvailable bool

	err = sqlx.GetContext(ctx, q, &isAvailable, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return model.AvailabilityNotFound, nil
	}

	if err != nil {
		logger.ErrorWithStack(err)

		return model.AvailabilityNotFound, fmt.Errorf("failed to read room availability: %w", err)
	}

	return model.AvailabilityOf(true, isAvailable), nil
}

// SetAvailabilityTx writes is_available inside tx. When conditional is set the row is only
// touched if it currently holds the opposite value, so a zero count means another writer got there first.
func (r *repositoryImpl) SetAvailabilityTx(ctx context.Context, tx *sqlx.Tx, roomID int64, available, conditional bool) (int64, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".room.SetAvailabilityTx")
	defer scope.End()

	filters := []any{
		gDto.Filter{Field: model.FieldRoomID, Value: roomID, Operator: gDto.FilterOperatorEq},
	}

	if conditional {
		filters = append(filters, gDto.Filter{
			Field:    model.FieldIsAvailable,
			ArgName:  argCurrentAvailable,
			Value:    !available,
			Operator: gDto.FilterOperatorEq,
		})
	}

	scope.SetAttributes(map[string]any{
		"room.id":          roomID,
		"room.available":   available,
		"room.conditional": conditional,
	})

	return r.UpdateTx(ctx, tx, map[string]any{model.FieldIsAvailable: available}, gDto.FilterGroup{
		Filters:  filters,
		Operator: gDto.FilterGroupOperatorAnd,
	})
}

// Audit lists rooms whose flag disagrees with their active bookings, or that hold more than one active booking.
func (r *repositoryImpl) Audit(ctx context.Context) (res []model.AuditEntry, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".room.Audit")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	activeCount := goqu.COUNT(goqu.I("b.booking_id"))
	isAvailable := goqu.I("r." + model.FieldIsAvailable)

	query, args, err := gRepo.Builder.
		From(goqu.T(model.TableName).As("r")).
		LeftJoin(goqu.T(bookingsTable).As("b"), goqu.On(
			goqu.I("b.room_id").Eq(goqu.I("r."+model.FieldRoomID)),
			goqu.I("b.status").Eq(bookingStatusActive),
		)).
		Select(
			goqu.I("r."+model.FieldRoomID).As(model.FieldRoomID),
			isAvailable.As(model.FieldIsAvailable),
			activeCount.As(aliasActiveBookings),
		).
		GroupBy(goqu.I("r."+model.FieldRoomID), isAvailable).
		Having(goqu.Or(
			goqu.And(isAvailable.IsTrue(), activeCount.Gt(0)),
			goqu.And(isAvailable.IsFalse(), activeCount.Eq(0)),
			activeCount.Gt(1),
		)).
		Order(goqu.I("r." + model.FieldRoomID).Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build audit query: %w", err)
	}

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	res = []model.AuditEntry{}

	if err = r.db.Read.SelectContext(ctx, &res, query, args...); err != nil {
		logger.ErrorWithStack(err)

		return nil, fmt.Errorf("failed to audit rooms: %w", err)
	}

	return res, nil
}
