package model_test

import (
	"testing"

	"hotel/internal/domains/room/model"

	"github.com/stretchr/testify/assert"
)

func TestAvailabilityOf(t *testing.T) {
	assert.Equal(t, model.AvailabilityNotFound, model.AvailabilityOf(false, true))
	assert.Equal(t, model.AvailabilityNotFound, model.AvailabilityOf(false, false))
	assert.Equal(t, model.AvailabilityAvailable, model.AvailabilityOf(true, true))
	assert.Equal(t, model.AvailabilityUnavailable, model.AvailabilityOf(true, false))
}

func TestAvailability_String(t *testing.T) {
	assert.Equal(t, "available", model.AvailabilityAvailable.String())
	assert.Equal(t, "unavailable", model.AvailabilityUnavailable.String())
	assert.Equal(t, "not_found", model.AvailabilityNotFound.String())
}
