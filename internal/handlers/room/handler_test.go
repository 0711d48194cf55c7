package room_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"hotel/infras/otel/mocks"
	roomMocks "hotel/internal/domains/room/mocks"
	"hotel/internal/domains/room/model/dto"
	"hotel/internal/handlers/room"
	"hotel/shared/failure"
)

func newRouter(t *testing.T) (http.Handler, *roomMocks.MockRoomService) {
	t.Helper()

	ctrl := gomock.NewController(t)
	svc := roomMocks.NewMockRoomService(ctrl)

	handler := room.New(svc, mocks.NewOtel())
	router := chi.NewRouter()
	handler.Router(router)

	return router, svc
}

func serve(router http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	return rec
}

func TestHandler_GetRooms(t *testing.T) {
	router, svc := newRouter(t)

	svc.EXPECT().GetAll(gomock.Any()).Return(dto.GetRoomsResponse{
		Rooms:     []dto.RoomResponse{{RoomID: 101, Type: "Deluxe Single", Price: 8000, IsAvailable: true}},
		TotalData: 1,
	}, nil)

	rec := serve(router, "/rooms")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"rooms":[{"room_id":101,"type":"Deluxe Single","price":8000,"is_available":true}],"total_data":1}}`, rec.Body.String())

	svc.EXPECT().GetAll(gomock.Any()).Return(dto.GetRoomsResponse{}, errors.New("database error"))

	rec = serve(router, "/rooms")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandler_GetRoomByID(t *testing.T) {
	router, svc := newRouter(t)

	svc.EXPECT().Get(gomock.Any(), int64(103)).Return(dto.RoomResponse{RoomID: 103, Type: "Deluxe Suite", Price: 14000}, nil)

	rec := serve(router, "/rooms/103")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"room_id":103,"type":"Deluxe Suite","price":14000,"is_available":false}}`, rec.Body.String())

	svc.EXPECT().Get(gomock.Any(), int64(999)).Return(dto.RoomResponse{}, failure.NotFound("Room not found"))

	rec = serve(router, "/rooms/999")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Room not found"}`, rec.Body.String())

	rec = serve(router, "/rooms/abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_CheckAvailability(t *testing.T) {
	tests := []struct {
		name         string
		availability string
		wantCode     int
	}{
		{name: "available", availability: "available", wantCode: http.StatusOK},
		{name: "unavailable", availability: "unavailable", wantCode: http.StatusOK},
		{name: "not found", availability: "not_found", wantCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, svc := newRouter(t)

			svc.EXPECT().CheckAvailability(gomock.Any(), int64(104)).
				Return(dto.AvailabilityResponse{RoomID: 104, Availability: tt.availability}, nil)

			rec := serve(router, "/rooms/104/availability")
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.JSONEq(t, `{"data":{"room_id":104,"availability":"`+tt.availability+`"}}`, rec.Body.String())
		})
	}
}

func TestHandler_AuditRooms(t *testing.T) {
	router, svc := newRouter(t)

	svc.EXPECT().Audit(gomock.Any()).Return(dto.AuditResponse{Consistent: true, Violations: []dto.AuditEntryResponse{}}, nil)

	rec := serve(router, "/rooms/audit")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"consistent":true,"violations":[]}}`, rec.Body.String())
}
