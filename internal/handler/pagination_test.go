package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPageInfo(t *testing.T) {
	// 15 matches, second page of 10: five rows, a prev page, no next.
	info := buildPageInfo(15, 2, 10)
	assert.Equal(t, int64(15), info.Total)
	require.NotNil(t, info.Prev)
	assert.Equal(t, PageRef{Page: 1, Limit: 10}, *info.Prev)
	assert.Nil(t, info.Next)

	info = buildPageInfo(15, 1, 10)
	assert.Nil(t, info.Prev)
	require.NotNil(t, info.Next)
	assert.Equal(t, PageRef{Page: 2, Limit: 10}, *info.Next)

	// Exact fit leaves no next page.
	info = buildPageInfo(20, 2, 10)
	assert.Nil(t, info.Next)

	info = buildPageInfo(0, 1, 10)
	assert.Nil(t, info.Prev)
	assert.Nil(t, info.Next)
}

func pageCtx(t *testing.T, query string) echo.Context {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/v1/venues?"+query, nil)
	return echo.New().NewContext(req, httptest.NewRecorder())
}

func TestPageParams(t *testing.T) {
	page, limit := pageParams(pageCtx(t, ""))
	assert.Equal(t, 1, page)
	assert.Equal(t, defaultPageLimit, limit)

	page, limit = pageParams(pageCtx(t, "page=3&limit=25"))
	assert.Equal(t, 3, page)
	assert.Equal(t, 25, limit)

	page, limit = pageParams(pageCtx(t, "page=-2&limit=5000"))
	assert.Equal(t, 1, page)
	assert.Equal(t, maxPageLimit, limit)

	page, limit = pageParams(pageCtx(t, "page=abc&limit=xyz"))
	assert.Equal(t, 1, page)
	assert.Equal(t, defaultPageLimit, limit)
}
