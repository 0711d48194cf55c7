package model

import (
	"hotel/shared/model"
)

const (
	TableName  = "bookings"
	EntityName = "booking"

	FieldBookingID    = "booking_id"
	FieldCustomerName = "customer_name"
	FieldPhone        = "phone"
	FieldRoomID       = "room_id"
	FieldCheckIn      = "check_in"
	FieldCheckOut     = "check_out"
	FieldStatus       = "status"
)

const (
	StatusActive    = "active"
	StatusCancelled = "cancelled"
)

type Booking struct {
	BookingID    int64  `db:"booking_id"`
	CustomerName string `db:"customer_name"`
	Phone        string `db:"phone"`
	RoomID       int64  `db:"room_id"`
	CheckIn      string `db:"check_in"`
	CheckOut     string `db:"check_out"`
	Status       string `db:"status"`
	model.Metadata
}

func (b Booking) Found() bool {
	return b.BookingID > 0
}

func (b Booking) Cancelled() bool {
	return b.Status == StatusCancelled
}
