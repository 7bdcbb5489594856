package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// PageRef points at an adjacent page of the same query.
type PageRef struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// PageInfo describes one page of a listing: the total match count and
// next/prev descriptors when those pages exist.
type PageInfo struct {
	Total int64    `json:"total"`
	Page  int      `json:"page"`
	Limit int      `json:"limit"`
	Next  *PageRef `json:"next,omitempty"`
	Prev  *PageRef `json:"prev,omitempty"`
}

// buildPageInfo derives the pagination descriptor for a page over total
// matches. Prev exists for any page past the first; next exists while more
// rows remain beyond this page.
func buildPageInfo(total int64, page, limit int) PageInfo {
	info := PageInfo{Total: total, Page: page, Limit: limit}
	if page > 1 {
		info.Prev = &PageRef{Page: page - 1, Limit: limit}
	}
	if int64(page*limit) < total {
		info.Next = &PageRef{Page: page + 1, Limit: limit}
	}
	return info
}

// pageParams reads page/limit query parameters with sane defaults and caps.
func pageParams(c echo.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}
