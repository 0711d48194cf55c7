package response_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"hotel/shared/failure"
	"hotel/transport/http/response"

	"github.com/stretchr/testify/assert"
)

func TestWithJSON(t *testing.T) {
	rec := httptest.NewRecorder()

	response.WithJSON(rec, http.StatusOK, map[string]int{"available_rooms": 6})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"data":{"available_rooms":6}}`, rec.Body.String())
}

func TestWithBody(t *testing.T) {
	rec := httptest.NewRecorder()

	response.WithBody(rec, http.StatusCreated, map[string]any{"ok": true, "message": "Booked successfully. Booking ID: 1"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"ok":true,"message":"Booked successfully. Booking ID: 1"}`, rec.Body.String())
}

func TestWithText(t *testing.T) {
	rec := httptest.NewRecorder()

	response.WithText(rec, http.StatusBadRequest, "Room not available")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "Room not available", rec.Body.String())
}

func TestWithError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{
			name:     "failure keeps its code",
			err:      failure.NotFound("Booking not found"),
			wantCode: http.StatusNotFound,
			wantBody: `{"error":"Booking not found"}`,
		},
		{
			name:     "plain error is internal",
			err:      errors.New("connection reset"),
			wantCode: http.StatusInternalServerError,
			wantBody: `{"error":"connection reset"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()

			response.WithError(rec, tt.err)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestWithPreparingShutdown(t *testing.T) {
	rec := httptest.NewRecorder()

	response.WithPreparingShutdown(rec)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"message":"SERVER PREPARING TO SHUT DOWN"}`, rec.Body.String())
}
