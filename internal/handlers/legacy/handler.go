// Package legacy serves the form based routes the original front end posts to.
// Responses are plain text for writes and a bare JSON array for the room list.
package legacy

import (
	"mime"
	"net/http"

	"hotel/infras/otel"
	bookingDto "hotel/internal/domains/booking/model/dto"
	bookingService "hotel/internal/domains/booking/service"
	roomService "hotel/internal/domains/room/service"
	"hotel/shared"
	"hotel/shared/constant"
	"hotel/shared/validator"
	"hotel/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const (
	formName      = "name"
	formPhone     = "phone"
	formRoomID    = "room_id"
	formCheckIn   = "check_in"
	formCheckOut  = "check_out"
	formBookingID = "booking_id"

	msgMissingBookingID = "Missing booking_id"
)

type Handler struct {
	room    roomService.Room
	booking bookingService.Booking
	otel    otel.Otel
}

func New(room roomService.Room, booking bookingService.Booking, otel otel.Otel) Handler {
	return Handler{
		room:    room,
		booking: booking,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Get("/rooms", handler.ListRooms)
	router.Post("/book", handler.Book)
	router.Post("/cancel", handler.Cancel)
}

// ListRooms returns every room as a bare JSON array.
// @Summary List rooms (legacy)
// @Tags Legacy
// @Produce json
// @Success 200 {array} object
// @Failure 500 {object} response.Error
// @Router /rooms [get]
func (handler *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".legacy.ListRooms")
	defer scope.End()

	rooms, err := handler.room.GetAll(ctx)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to list rooms")

		response.WithError(w, err)

		return
	}

	response.WithBody(w, http.StatusOK, rooms.Rooms)
}

// Book books a room from a form or JSON body.
// @Summary Book a room (legacy)
// @Tags Legacy
// @Accept x-www-form-urlencoded
// @Produce plain
// @Param name formData string true "Customer name"
// @Param room_id formData integer true "Room ID"
// @Param phone formData string false "Phone"
// @Param check_in formData string false "Check-in date"
// @Param check_out formData string false "Check-out date"
// @Success 200 {string} string
// @Failure 400 {string} string
// @Router /book [post]
func (handler *Handler) Book(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".legacy.Book")
	defer scope.End()

	req := bookingDto.CreateBookingRequest{}

	if isJSON(r) {
		if err := validator.Decode(r.Body, &req); err != nil {
			response.WithText(w, http.StatusBadRequest, err.Error())

			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			response.WithText(w, http.StatusBadRequest, err.Error())

			return
		}

		req.Name = r.PostFormValue(formName)
		req.Phone = r.PostFormValue(formPhone)
		req.CheckIn = r.PostFormValue(formCheckIn)
		req.CheckOut = r.PostFormValue(formCheckOut)

		if id := shared.ConvertStringToInt(r.PostFormValue(formRoomID)); id != nil {
			req.RoomID = *id
		}
	}

	writeResult(w, handler.booking.Book(ctx, req))
}

// Cancel cancels a booking from a form or JSON body.
// @Summary Cancel a booking (legacy)
// @Tags Legacy
// @Accept x-www-form-urlencoded
// @Produce plain
// @Param booking_id formData integer true "Booking ID"
// @Success 200 {string} string
// @Failure 400 {string} string
// @Router /cancel [post]
func (handler *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".legacy.Cancel")
	defer scope.End()

	var bookingID int64

	if isJSON(r) {
		req := bookingDto.CancelBookingRequest{}

		if err := validator.Validate(r.Body, &req); err != nil {
			response.WithText(w, http.StatusBadRequest, msgMissingBookingID)

			return
		}

		bookingID = req.BookingID
	} else {
		if err := r.ParseForm(); err != nil {
			response.WithText(w, http.StatusBadRequest, err.Error())

			return
		}

		if _, ok := r.PostForm[formBookingID]; !ok {
			response.WithText(w, http.StatusBadRequest, msgMissingBookingID)

			return
		}

		if id := shared.ConvertStringToInt(r.PostFormValue(formBookingID)); id != nil {
			bookingID = *id
		}
	}

	writeResult(w, handler.booking.Cancel(ctx, bookingID))
}

func writeResult(w http.ResponseWriter, res bookingDto.BookingResult) {
	if res.OK {
		response.WithText(w, http.StatusOK, res.Message)

		return
	}

	response.WithText(w, http.StatusBadRequest, res.Message)
}

func isJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get(constant.RequestHeaderContentType))

	return err == nil && mediaType == constant.ContentTypeJSON
}
