package model_test

import (
	"testing"

	"hotel/internal/domains/booking/model"

	"github.com/stretchr/testify/assert"
)

func TestBooking_Found(t *testing.T) {
	assert.False(t, model.Booking{}.Found())
	assert.True(t, model.Booking{BookingID: 1}.Found())
}

func TestBooking_Cancelled(t *testing.T) {
	assert.False(t, model.Booking{Status: model.StatusActive}.Cancelled())
	assert.True(t, model.Booking{Status: model.StatusCancelled}.Cancelled())
}
