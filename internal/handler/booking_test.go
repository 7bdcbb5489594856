package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eventra/eventra-backend/internal/model"
)

func TestCanRead(t *testing.T) {
	venue := uint64(3)
	b := model.Booking{
		UserID:  7,
		VenueID: &venue,
		Services: []model.BookingService{
			{ProviderID: 9, ServiceType: model.ServiceCatering},
		},
	}

	assert.True(t, canRead(model.Actor{Kind: model.KindUser, ID: 7}, b))
	assert.False(t, canRead(model.Actor{Kind: model.KindUser, ID: 8}, b))
	assert.True(t, canRead(model.Actor{Kind: model.KindHost, ID: 3}, b))
	assert.True(t, canRead(model.Actor{Kind: model.KindHost, ID: 9}, b))
	assert.False(t, canRead(model.Actor{Kind: model.KindHost, ID: 4}, b))
	assert.True(t, canRead(model.Actor{Kind: model.KindAdmin, ID: 1}, b))
	assert.False(t, canRead(model.Actor{}, b))
}
