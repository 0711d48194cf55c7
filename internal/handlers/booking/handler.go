package booking

import (
	"net/http"

	"hotel/infras/otel"
	"hotel/internal/domains/booking/model"
	"hotel/internal/domains/booking/model/dto"
	"hotel/internal/domains/booking/service"
	"hotel/shared"
	"hotel/shared/constant"
	gDto "hotel/shared/dto"
	"hotel/shared/failure"
	"hotel/shared/validator"
	"hotel/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Booking
	otel    otel.Otel
}

func New(service service.Booking, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/bookings", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateBooking)
		routerGroup.Get("/", handler.GetBookings)
		routerGroup.Get("/{id}", handler.GetBookingByID)
		routerGroup.Post("/{id}/cancel", handler.CancelBooking)
	})

	router.Get("/summary", handler.GetSummary)
}

// CreateBooking books a room.
// @Summary Book a room
// @Description Inserts an active booking and marks the room booked in one transaction.
// @Tags Booking
// @Accept json
// @Produce json
// @Param request body dto.CreateBookingRequest true "Create Booking Request"
// @Success 201 {object} dto.BookingResult
// @Failure 400 {object} dto.BookingResult
// @Failure 404 {object} dto.BookingResult
// @Failure 409 {object} dto.BookingResult
// @Failure 500 {object} dto.BookingResult
// @Router /v1/bookings [post]
func (handler *Handler) CreateBooking(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateBooking")
	defer scope.End()

	req := dto.CreateBookingRequest{}

	if err := validator.Decode(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Warn().Err(err).Msg("failed to decode booking request")

		response.WithBody(writer, http.StatusBadRequest, dto.Rejected(err))

		return
	}

	res := handler.service.Book(ctx, req)
	if !res.OK {
		scope.TraceError(res.Err)
	}

	response.WithBody(writer, res.Code(http.StatusCreated), res)
}

// CancelBooking cancels an active booking and reopens its room.
// @Summary Cancel a booking
// @Tags Booking
// @Produce json
// @Param id path integer true "Booking ID"
// @Success 200 {object} dto.BookingResult
// @Failure 404 {object} dto.BookingResult
// @Failure 409 {object} dto.BookingResult
// @Failure 500 {object} dto.BookingResult
// @Router /v1/bookings/{id}/cancel [post]
func (handler *Handler) CancelBooking(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CancelBooking")
	defer scope.End()

	id, err := bookingID(request)
	if err != nil {
		response.WithBody(writer, http.StatusBadRequest, dto.Rejected(err))

		return
	}

	res := handler.service.Cancel(ctx, id)
	if !res.OK {
		scope.TraceError(res.Err)
	}

	response.WithBody(writer, res.Code(http.StatusOK), res)
}

// GetBookings lists bookings.
// @Summary Get bookings
// @Tags Booking
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param room_id query integer false "Filter by room"
// @Param status query string false "Filter by status (active, cancelled)"
// @Success 200 {object} response.Data[dto.GetBookingsResponse]
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/bookings [get]
func (handler *Handler) GetBookings(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBookings")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	if queryParams.SortBy == constant.Empty {
		queryParams.SortBy = model.FieldBookingID
		queryParams.SortDir = gDto.SortDirDesc
	}

	filter := dto.BookingFilter{
		Status: r.URL.Query().Get(model.FieldStatus),
	}

	if roomID := r.URL.Query().Get(model.FieldRoomID); roomID != constant.Empty {
		id := shared.ConvertStringToInt(roomID)
		if id == nil {
			response.WithError(w, failure.BadRequestFromString("invalid room id"))

			return
		}

		filter.RoomID = *id
	}

	bookings, err := handler.service.GetAll(ctx, queryParams, filter)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get bookings")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, bookings)
}

// GetBookingByID retrieves a booking by its ID.
// @Summary Get a booking by ID
// @Tags Booking
// @Produce json
// @Param id path integer true "Booking ID"
// @Success 200 {object} response.Data[dto.BookingResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/bookings/{id} [get]
func (handler *Handler) GetBookingByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBookingByID")
	defer scope.End()

	id, err := bookingID(r)
	if err != nil {
		response.WithError(w, err)

		return
	}

	booking, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Int64("booking_id", id).Msg("failed to get booking by ID")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, booking)
}

// GetSummary returns the dashboard counters.
// @Summary Booking summary
// @Tags Booking
// @Produce json
// @Success 200 {object} response.Data[dto.SummaryResponse]
// @Failure 500 {object} response.Error
// @Router /v1/summary [get]
func (handler *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetSummary")
	defer scope.End()

	summary, err := handler.service.Summary(ctx)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get summary")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, summary)
}

func bookingID(r *http.Request) (int64, error) {
	id := shared.ConvertStringToInt(chi.URLParam(r, constant.RequestParamID))
	if id == nil {
		return 0, failure.BadRequestFromString("invalid booking id") // nolint:wrapcheck
	}

	return *id, nil
}
