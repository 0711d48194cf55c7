package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks -mock_names=Booking=MockBookingService

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"hotel/config"
	"hotel/infras/kafka"
	"hotel/infras/otel"
	"hotel/infras/postgres"
	"hotel/internal/domains/booking/model"
	"hotel/internal/domains/booking/model/dto"
	"hotel/internal/domains/booking/repository"
	roomModel "hotel/internal/domains/room/model"
	roomRepo "hotel/internal/domains/room/repository"
	roomService "hotel/internal/domains/room/service"
	"hotel/shared"
	"hotel/shared/cache"
	"hotel/shared/constant"
	gDto "hotel/shared/dto"
	"hotel/shared/failure"
	"hotel/shared/timezone"
	"hotel/shared/validator"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const (
	// CachePrefix covers every booking cache entry, the summary included.
	CachePrefix = "booking:"

	cacheGetBooking    = CachePrefix + "get"
	cacheGetAllBooking = CachePrefix + "list"
	cacheCountBooking  = CachePrefix + "count"
	cacheSummary       = CachePrefix + "summary"
)

const (
	MsgMissingFields         = "Missing required fields (name, room_id)."
	MsgDatabaseError         = "Database error"
	MsgRoomNotFound          = "Room not found"
	MsgRoomNotAvailable      = "Room not available"
	MsgInsertBookingFailed   = "Failed to insert booking"
	MsgMarkRoomBookedFailed  = "Failed to mark room booked"
	MsgCommitBookingFailed   = "Failed to commit booking"
	MsgBookingNotFound       = "Booking not found"
	MsgBookingCancelled      = "Booking already cancelled"
	MsgUpdateBookingFailed   = "Failed to update booking"
	MsgMarkRoomAvailFailed   = "Failed to mark room available"
	MsgCommitCancelFailed    = "Failed to commit cancellation"
	MsgCancelledSuccessfully = "Booking cancelled and room marked available"
)

type Booking interface {
	Book(ctx context.Context, req dto.CreateBookingRequest) dto.BookingResult
	Cancel(ctx context.Context, bookingID int64) dto.BookingResult
	Get(ctx context.Context, id int64) (dto.BookingResponse, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter dto.BookingFilter) (dto.GetBookingsResponse, error)
	Summary(ctx context.Context) (dto.SummaryResponse, error)
}

type serviceImpl struct {
	repo     repository.Booking
	roomRepo roomRepo.Room
	db       *postgres.Connection
	cfg      *config.Config
	cache    cache.RedisCache
	kafka    kafka.Client
	otel     otel.Otel
}

func New(
	repo repository.Booking,
	roomRepo roomRepo.Room,
	db *postgres.Connection,
	cfg *config.Config,
	cache cache.RedisCache,
	kafka kafka.Client,
	otel otel.Otel,
) Booking {
	return &serviceImpl{
		repo:     repo,
		roomRepo: roomRepo,
		db:       db,
		cfg:      cfg,
		cache:    cache,
		kafka:    kafka,
		otel:     otel,
	}
}

// Book reserves a room. The booking row and the room flag change in one transaction,
// and every failure comes back as a rejected result rather than an error.
func (s *serviceImpl) Book(ctx context.Context, req dto.CreateBookingRequest) (res dto.BookingResult) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Book")
	defer scope.End()
	defer func() { scope.TraceIfError(res.Err) }()

	if err := validator.ValidateStruct(&req); err != nil {
		return dto.Rejected(validationFailure(&req, err))
	}

	guarded := s.cfg.App.Booking.GuardedAvailability
	booking := req.ToModel()

	scope.SetAttributes(map[string]any{
		"room.id":         booking.RoomID,
		"booking.guarded": guarded,
	})

	if !guarded {
		if err := s.gate(ctx, s.db.Read, booking.RoomID, false); err != nil {
			return dto.Rejected(err)
		}
	}

	err := s.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		if guarded {
			if err := s.gate(ctx, tx, booking.RoomID, true); err != nil {
				return err
			}
		}

		id, err := s.repo.InsertTx(ctx, tx, booking)
		if err != nil {
			if isUniqueViolation(err) {
				log.Warn().Int64("room_id", booking.RoomID).Msg("active booking already exists for room")

				return failure.Conflict(MsgRoomNotAvailable) // nolint:wrapcheck
			}

			log.Error().Err(err).Int64("room_id", booking.RoomID).Msg("failed to insert booking")

			return failure.InternalErrorFromString(MsgInsertBookingFailed) // nolint:wrapcheck
		}

		affected, err := s.roomRepo.SetAvailabilityTx(ctx, tx, booking.RoomID, false, guarded)
		if err != nil {
			log.Error().Err(err).Int64("room_id", booking.RoomID).Msg("failed to mark room booked")

			return failure.InternalErrorFromString(MsgMarkRoomBookedFailed) // nolint:wrapcheck
		}

		if guarded && affected == 0 {
			log.Warn().Int64("room_id", booking.RoomID).Msg("room was booked by a concurrent request")

			return failure.Conflict(MsgRoomNotAvailable) // nolint:wrapcheck
		}

		booking.BookingID = id

		return nil
	})
	if err != nil {
		return dto.Rejected(transactionFailure(err, MsgCommitBookingFailed))
	}

	log.Info().Int64("booking_id", booking.BookingID).Int64("room_id", booking.RoomID).Msg("room booked")

	s.committed(ctx, model.EventBookingCreated, booking)

	return dto.Booked(booking.BookingID)
}

// Cancel moves an active booking to cancelled and reopens its room in one transaction.
func (s *serviceImpl) Cancel(ctx context.Context, bookingID int64) (res dto.BookingResult) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Cancel")
	defer scope.End()
	defer func() { scope.TraceIfError(res.Err) }()

	if bookingID <= 0 {
		return dto.Rejected(failure.NotFound(MsgBookingNotFound))
	}

	guarded := s.cfg.App.Booking.GuardedAvailability

	scope.SetAttributes(map[string]any{
		"booking.id":      bookingID,
		"booking.guarded": guarded,
	})

	var (
		booking model.Booking
		err     error
	)

	if !guarded {
		if booking, err = s.lookup(ctx, s.db.Read, bookingID, false); err != nil {
			return dto.Rejected(err)
		}
	}

	err = s.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		if guarded {
			found, err := s.lookup(ctx, tx, bookingID, true)
			if err != nil {
				return err
			}

			booking = found
		}

		affected, err := s.repo.CancelTx(ctx, tx, bookingID, guarded)
		if err != nil {
			log.Error().Err(err).Int64("booking_id", bookingID).Msg("failed to update booking")

			return failure.InternalErrorFromString(MsgUpdateBookingFailed) // nolint:wrapcheck
		}

		if guarded && affected == 0 {
			return failure.Conflict(MsgBookingCancelled) // nolint:wrapcheck
		}

		affected, err = s.roomRepo.SetAvailabilityTx(ctx, tx, booking.RoomID, true, false)
		if err != nil {
			log.Error().Err(err).Int64("room_id", booking.RoomID).Msg("failed to mark room available")

			return failure.InternalErrorFromString(MsgMarkRoomAvailFailed) // nolint:wrapcheck
		}

		if affected == 0 {
			log.Warn().Int64("booking_id", bookingID).Int64("room_id", booking.RoomID).Msg("cancelled booking references a missing room")
		}

		return nil
	})
	if err != nil {
		return dto.Rejected(transactionFailure(err, MsgCommitCancelFailed))
	}

	log.Info().Int64("booking_id", bookingID).Int64("room_id", booking.RoomID).Msg("booking cancelled")

	booking.Status = model.StatusCancelled
	s.committed(ctx, model.EventBookingCancelled, booking)

	return dto.Accepted(bookingID, MsgCancelledSuccessfully)
}

func (s *serviceImpl) Get(ctx context.Context, id int64) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	generation, cacheable := shared.CacheGeneration(ctx, s.cache, CachePrefix)
	cacheKey := shared.BuildCacheKey(cacheGetBooking, generation, id)

	if cacheable && s.cache.Get(ctx, cacheKey, &res) == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for booking")

		return res, nil
	}

	booking, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldBookingID, model.TableName))
	if err != nil {
		log.Error().Err(err).Int64("booking_id", id).Msg("failed to get booking")

		return res, fmt.Errorf("failed to get booking: %w", err)
	}

	if !booking.Found() {
		return res, failure.NotFound(MsgBookingNotFound) // nolint:wrapcheck
	}

	res.FromModel(booking)

	if cacheable {
		s.save(ctx, cacheKey, res)
	}

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, params gDto.QueryParams, filter dto.BookingFilter) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = validator.ValidateStruct(&filter); err != nil {
		return res, err // nolint:wrapcheck
	}

	group := filter.ToFilterGroup()
	generation, cacheable := shared.CacheGeneration(ctx, s.cache, CachePrefix)
	cacheKey := shared.BuildCacheKeyWithQuery(shared.BuildCacheKey(cacheGetAllBooking, generation), params, group)

	if cacheable && s.cache.Get(ctx, cacheKey, &res) == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for bookings")

		return res, nil
	}

	total, err := s.count(ctx, params, group, generation, cacheable)
	if err != nil {
		return res, err
	}

	models, err := s.repo.GetAll(ctx, params, group)
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings")

		return res, fmt.Errorf("failed to get bookings: %w", err)
	}

	res.FromModels(models, total, params.Limit)

	if cacheable {
		s.save(ctx, cacheKey, res)
	}

	return res, nil
}

// Summary counts free rooms, booked rooms and active bookings.
func (s *serviceImpl) Summary(ctx context.Context) (res dto.SummaryResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Summary")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	generation, cacheable := shared.CacheGeneration(ctx, s.cache, CachePrefix)
	cacheKey := shared.BuildCacheKey(cacheSummary, generation)

	if cacheable && s.cache.Get(ctx, cacheKey, &res) == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for summary")

		return res, nil
	}

	if res.AvailableRooms, err = s.roomRepo.Count(ctx, roomsByAvailability(true)); err != nil {
		log.Error().Err(err).Msg("failed to count available rooms")

		return res, fmt.Errorf("failed to count available rooms: %w", err)
	}

	if res.BookedRooms, err = s.roomRepo.Count(ctx, roomsByAvailability(false)); err != nil {
		log.Error().Err(err).Msg("failed to count booked rooms")

		return res, fmt.Errorf("failed to count booked rooms: %w", err)
	}

	if res.ActiveBookings, err = s.repo.Count(ctx, dto.BookingFilter{Status: model.StatusActive}.ToFilterGroup()); err != nil {
		log.Error().Err(err).Msg("failed to count active bookings")

		return res, fmt.Errorf("failed to count active bookings: %w", err)
	}

	if cacheable {
		s.save(ctx, cacheKey, res)
	}

	return res, nil
}

func (s *serviceImpl) count(
	ctx context.Context,
	params gDto.QueryParams,
	filter gDto.FilterGroup,
	generation string,
	cacheable bool,
) (res int, err error) {
	cacheKey := shared.BuildCacheKeyWithQuery(shared.BuildCacheKey(cacheCountBooking, generation), params, filter)

	if cacheable && s.cache.Get(ctx, cacheKey, &res) == nil {
		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	if cacheable {
		s.save(ctx, cacheKey, res)
	}

	return res, nil
}

// gate fails unless the room exists and is free. q is the read pool, or the open
// transaction when lock is set.
func (s *serviceImpl) gate(ctx context.Context, q sqlx.QueryerContext, roomID int64, lock bool) error {
	availability, err := s.roomRepo.Availability(ctx, q, roomID, lock)
	if err != nil {
		log.Error().Err(err).Int64("room_id", roomID).Msg("failed to check room availability")

		return failure.InternalErrorFromString(MsgDatabaseError) // nolint:wrapcheck
	}

	switch availability {
	case roomModel.AvailabilityAvailable:
		return nil
	case roomModel.AvailabilityUnavailable:
		return failure.Conflict(MsgRoomNotAvailable) // nolint:wrapcheck
	default:
		return failure.NotFound(MsgRoomNotFound) // nolint:wrapcheck
	}
}

// lookup returns the booking when it exists and is still active.
func (s *serviceImpl) lookup(ctx context.Context, q sqlx.QueryerContext, bookingID int64, lock bool) (model.Booking, error) {
	booking, err := s.repo.GetByID(ctx, q, bookingID, lock)
	if err != nil {
		log.Error().Err(err).Int64("booking_id", bookingID).Msg("failed to look up booking")

		return booking, failure.InternalErrorFromString(MsgDatabaseError) // nolint:wrapcheck
	}

	if !booking.Found() {
		return booking, failure.NotFound(MsgBookingNotFound) // nolint:wrapcheck
	}

	if booking.Cancelled() {
		return booking, failure.Conflict(MsgBookingCancelled) // nolint:wrapcheck
	}

	return booking, nil
}

// committed runs once a transition is durable. Neither step can change the outcome.
func (s *serviceImpl) committed(ctx context.Context, eventType string, booking model.Booking) {
	ctx = context.WithoutCancel(ctx)

	shared.InvalidateCaches(ctx, s.cache, roomService.CachePrefix)
	shared.InvalidateCaches(ctx, s.cache, CachePrefix)

	event := model.Event{
		ID:           uuid.NewString(),
		Type:         eventType,
		BookingID:    booking.BookingID,
		RoomID:       booking.RoomID,
		CustomerName: booking.CustomerName,
		OccurredAt:   timezone.Now(),
	}

	err := s.kafka.SendMessages(ctx, s.cfg.Kafka.Topics.Booking, kafka.Message{
		Key:   fmt.Sprint(booking.RoomID),
		Value: event,
	})
	if err != nil {
		log.Error().Err(err).Str("event", eventType).Int64("booking_id", booking.BookingID).Msg("failed to publish booking event")
	}
}

func (s *serviceImpl) save(ctx context.Context, key string, value any) {
	if err := s.cache.Save(context.WithoutCancel(ctx), key, value, s.cfg.Cache.TTL); err != nil {
		log.Error().Err(err).Str("cacheKey", key).Msg("failed to save booking cache")
	}
}

func roomsByAvailability(available bool) gDto.FilterGroup {
	return gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{
				Field:    roomModel.FieldIsAvailable,
				Value:    available,
				Operator: gDto.FilterOperatorEq,
				Table:    roomModel.TableName,
			},
		},
		Operator: gDto.FilterGroupOperatorAnd,
	}
}

// validationFailure collapses a missing name or room into the single message clients expect.
func validationFailure(req *dto.CreateBookingRequest, err error) error {
	fields := validator.FailedFields(req)

	if slices.Contains(fields, "name") || slices.Contains(fields, "room_id") {
		return failure.BadRequestFromString(MsgMissingFields) // nolint:wrapcheck
	}

	return err
}

// transactionFailure keeps failures raised inside the transaction and maps the rest.
func transactionFailure(err error, commitMessage string) error {
	var fail *failure.Failure
	if errors.As(err, &fail) {
		return fail
	}

	log.Error().Err(err).Msg("booking transaction failed")

	if errors.Is(err, postgres.ErrCommitTransaction) {
		return failure.InternalErrorFromString(commitMessage) // nolint:wrapcheck
	}

	return failure.InternalErrorFromString(MsgDatabaseError) // nolint:wrapcheck
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error

	return errors.As(err, &pqErr) && string(pqErr.Code) == constant.PqErrorCodeUniqueViolation
}
