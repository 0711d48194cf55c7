package model

import (
	"time"
)

const (
	EventBookingCreated   = "booking.created"
	EventBookingCancelled = "booking.cancelled"
)

// Event is published on the booking topic once a booking transition has committed.
type Event struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	BookingID    int64     `json:"booking_id"`
	RoomID       int64     `json:"room_id"`
	CustomerName string    `json:"customer_name,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}
