package dto

import (
	"hotel/internal/domains/room/model"
)

type RoomResponse struct {
	RoomID      int64  `json:"room_id"`
	Type        string `json:"type"`
	Price       int64  `json:"price"`
	IsAvailable bool   `json:"is_available"`
}

func (r *RoomResponse) FromModel(model model.Room) {
	r.RoomID = model.RoomID
	r.Type = model.Type
	r.Price = model.Price
	r.IsAvailable = model.IsAvailable
}

type GetRoomsResponse struct {
	Rooms     []RoomResponse `json:"rooms"`
	TotalData int            `json:"total_data"`
}

func (r *GetRoomsResponse) FromModels(models []model.Room) {
	r.TotalData = len(models)

	r.Rooms = make([]RoomResponse, len(models))
	for i, mod := range models {
		r.Rooms[i].FromModel(mod)
	}
}

type AvailabilityResponse struct {
	RoomID       int64  `json:"room_id"`
	Availability string `json:"availability"`
}

func (a *AvailabilityResponse) FromModel(roomID int64, availability model.Availability) {
	a.RoomID = roomID
	a.Availability = availability.String()
}

type AuditEntryResponse struct {
	RoomID         int64 `json:"room_id"`
	IsAvailable    bool  `json:"is_available"`
	ActiveBookings int64 `json:"active_bookings"`
}

type AuditResponse struct {
	Consistent bool                 `json:"consistent"`
	Violations []AuditEntryResponse `json:"violations"`
}

func (a *AuditResponse) FromModels(models []model.AuditEntry) {
	a.Consistent = len(models) == 0

	a.Violations = make([]AuditEntryResponse, len(models))
	for i, mod := range models {
		a.Violations[i] = AuditEntryResponse{
			RoomID:         mod.RoomID,
			IsAvailable:    mod.IsAvailable,
			ActiveBookings: mod.ActiveBookings,
		}
	}
}
