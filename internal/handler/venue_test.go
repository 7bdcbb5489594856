package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventra/eventra-backend/internal/config"
)

func TestListVenues_MinCapacityParsing(t *testing.T) {
	hosts := &fakeHosts{}
	h := NewVenueHandler(config.Config{}, hosts)

	cases := []struct {
		raw  string
		want uint32
	}{
		{"200", 200},
		{"4294967295", 4294967295},
		{"4294967296", 0}, // out of uint32 range: filter dropped, never wrapped
		{"12abc", 0},
		{"-5", 0},
		{"", 0},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/v1/venues?minCapacity="+tc.raw, nil)
		rec := httptest.NewRecorder()
		c := echo.New().NewContext(req, rec)

		require.NoError(t, h.ListVenues(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, tc.want, hosts.lastList.MinCapacity, "minCapacity=%q", tc.raw)
	}
}
