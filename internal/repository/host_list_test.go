package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eventra/eventra-backend/internal/model"
)

func TestBuildHostListWhere_Defaults(t *testing.T) {
	cond, args := buildHostListWhere(HostListQuery{})

	assert.Equal(t, "is_active=1 AND is_verified=1", cond)
	assert.Empty(t, args)
}

func TestBuildHostListWhere_TypeScope(t *testing.T) {
	cond, args := buildHostListWhere(HostListQuery{
		Types: []model.HostType{model.HostCaterer, model.HostDecorator, model.HostOrganizer},
	})

	assert.Contains(t, cond, "host_type IN (?,?,?)")
	assert.Equal(t, []any{"caterer", "decorator", "organizer"}, args)
}

func TestBuildHostListWhere_ExactTypeWinsOverScope(t *testing.T) {
	cond, args := buildHostListWhere(HostListQuery{
		Types:     []model.HostType{model.HostCaterer, model.HostDecorator},
		ExactType: model.HostCaterer,
	})

	assert.Contains(t, cond, "host_type=?")
	assert.NotContains(t, cond, "host_type IN")
	assert.Equal(t, []any{"caterer"}, args)
}

func TestBuildHostListWhere_AllFilters(t *testing.T) {
	cond, args := buildHostListWhere(HostListQuery{
		ExactType:    model.HostVenue,
		City:         "Pune",
		ServiceTypes: []string{"Catering", " decoration "},
		MinCapacity:  200,
	})

	assert.Contains(t, cond, "LOWER(city) LIKE ?")
	assert.Contains(t, cond, "JSON_CONTAINS(services_offered, JSON_QUOTE(?))")
	assert.Contains(t, cond, "capacity >= ?")
	assert.Equal(t, []any{"venue", "%pune%", "catering", "decoration", uint32(200)}, args)
}
