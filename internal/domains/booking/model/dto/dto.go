package dto

import (
	"fmt"
	"net/http"

	"hotel/internal/domains/booking/model"
	"hotel/shared"
	gDto "hotel/shared/dto"
	"hotel/shared/failure"
)

type CreateBookingRequest struct {
	Name     string `json:"name"      validate:"required,notblank,max=100"`
	Phone    string `json:"phone"     validate:"omitempty,max=20"`
	RoomID   int64  `json:"room_id"   validate:"required,gt=0"`
	CheckIn  string `json:"check_in"  validate:"omitempty,max=32"`
	CheckOut string `json:"check_out" validate:"omitempty,max=32"`
}

// ToModel builds an active booking. The id and timestamps are assigned by the store.
func (c *CreateBookingRequest) ToModel() model.Booking {
	return model.Booking{
		CustomerName: c.Name,
		Phone:        c.Phone,
		RoomID:       c.RoomID,
		CheckIn:      c.CheckIn,
		CheckOut:     c.CheckOut,
		Status:       model.StatusActive,
	}
}

type CancelBookingRequest struct {
	BookingID int64 `json:"booking_id" validate:"required"`
}

// BookingResult is the outcome of Book and Cancel. Err carries the failure behind a
// rejected result and is never serialized.
type BookingResult struct {
	OK        bool   `json:"ok"`
	Message   string `json:"message"`
	BookingID *int64 `json:"booking_id,omitempty"`
	Err       error  `json:"-"`
}

func Accepted(bookingID int64, message string) BookingResult {
	return BookingResult{
		OK:        true,
		Message:   message,
		BookingID: &bookingID,
	}
}

func Booked(bookingID int64) BookingResult {
	return Accepted(bookingID, fmt.Sprintf("Booked successfully. Booking ID: %d", bookingID))
}

// Rejected wraps err, which should be a failure.Failure so the status code survives.
func Rejected(err error) BookingResult {
	return BookingResult{
		Message: err.Error(),
		Err:     err,
	}
}

// Code maps the result onto an HTTP status. successCode is used for accepted results.
func (r BookingResult) Code(successCode int) int {
	if r.OK {
		return successCode
	}

	if r.Err == nil {
		return http.StatusInternalServerError
	}

	return failure.GetCode(r.Err)
}

type BookingResponse struct {
	BookingID    int64  `json:"booking_id"`
	CustomerName string `json:"customer_name"`
	Phone        string `json:"phone"`
	RoomID       int64  `json:"room_id"`
	CheckIn      string `json:"check_in"`
	CheckOut     string `json:"check_out"`
	Status       string `json:"status"`
	gDto.Metadata
}

func (r *BookingResponse) FromModel(model model.Booking) {
	r.BookingID = model.BookingID
	r.CustomerName = model.CustomerName
	r.Phone = model.Phone
	r.RoomID = model.RoomID
	r.CheckIn = model.CheckIn
	r.CheckOut = model.CheckOut
	r.Status = model.Status
	r.Metadata.FromModel(model.Metadata)
}

type GetBookingsResponse struct {
	Bookings  []BookingResponse `json:"bookings"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetBookingsResponse) FromModels(models []model.Booking, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Bookings = make([]BookingResponse, len(models))
	for i, mod := range models {
		r.Bookings[i].FromModel(mod)
	}
}

// BookingFilter narrows a booking listing. Zero values are ignored.
type BookingFilter struct {
	RoomID int64  `json:"room_id" validate:"gte=0"`
	Status string `json:"status"  validate:"omitempty,oneof=active cancelled"`
}

func (f BookingFilter) ToFilterGroup() gDto.FilterGroup {
	filters := []any{}

	if f.RoomID > 0 {
		filters = append(filters, gDto.Filter{
			Field:    model.FieldRoomID,
			Value:    f.RoomID,
			Operator: gDto.FilterOperatorEq,
			Table:    model.TableName,
		})
	}

	if f.Status != "" {
		filters = append(filters, gDto.Filter{
			Field:    model.FieldStatus,
			Value:    f.Status,
			Operator: gDto.FilterOperatorEq,
			Table:    model.TableName,
		})
	}

	return gDto.FilterGroup{
		Filters:  filters,
		Operator: gDto.FilterGroupOperatorAnd,
	}
}

type SummaryResponse struct {
	AvailableRooms int `json:"available_rooms"`
	BookedRooms    int `json:"booked_rooms"`
	ActiveBookings int `json:"active_bookings"`
}
