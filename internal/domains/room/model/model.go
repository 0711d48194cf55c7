package model

const (
	TableName  = "rooms"
	EntityName = "room"

	FieldRoomID      = "room_id"
	FieldType        = "type"
	FieldPrice       = "price"
	FieldIsAvailable = "is_available"
)

type Room struct {
	RoomID      int64  `db:"room_id"`
	Type        string `db:"type"`
	Price       int64  `db:"price"`
	IsAvailable bool   `db:"is_available"`
}

// Availability is the outcome of the availability gate.
type Availability int

const (
	AvailabilityNotFound Availability = iota
	AvailabilityUnavailable
	AvailabilityAvailable
)

func (a Availability) String() string {
	switch a {
	case AvailabilityAvailable:
		return "available"
	case AvailabilityUnavailable:
		return "unavailable"
	default:
		return "not_found"
	}
}

// AvailabilityOf maps a looked up flag onto the gate outcome.
func AvailabilityOf(found, isAvailable bool) Availability {
	switch {
	case !found:
		return AvailabilityNotFound
	case isAvailable:
		return AvailabilityAvailable
	default:
		return AvailabilityUnavailable
	}
}

// AuditEntry is a room whose flag disagrees with its active bookings.
type AuditEntry struct {
	RoomID         int64 `db:"room_id"`
	IsAvailable    bool  `db:"is_available"`
	ActiveBookings int64 `db:"active_bookings"`
}
