package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// DefaultPageLimit is used when the client does not send page_limit.
const DefaultPageLimit = 10

// Page describes the window requested through the page and page_limit query
// parameters.
type Page struct {
	Number int
	Limit  int
}

// Offset returns the row offset for the page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

// ParsePage reads page and page_limit from the query string, falling back to
// page 1 and the default limit on missing or malformed values.
func ParsePage(ctx *gin.Context) Page {
	page := 1
	if v, err := strconv.Atoi(ctx.Query("page")); err == nil && v > 0 {
		page = v
	}
	limit := DefaultPageLimit
	if v, err := strconv.Atoi(ctx.Query("page_limit")); err == nil && v > 0 {
		limit = v
	}
	return Page{Number: page, Limit: limit}
}

// PagedResponse is the envelope returned by every list endpoint.
type PagedResponse struct {
	Count    int64       `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  interface{} `json:"results"`
}

// NewPagedResponse wraps results with count and next/previous links derived
// from the request URL.
func NewPagedResponse(ctx *gin.Context, page Page, count int64, results interface{}) PagedResponse {
	resp := PagedResponse{Count: count, Results: results}
	if int64(page.Number*page.Limit) < count {
		resp.Next = pageLink(ctx, page, page.Number+1)
	}
	if page.Number > 1 {
		resp.Previous = pageLink(ctx, page, page.Number-1)
	}
	return resp
}

func pageLink(ctx *gin.Context, page Page, number int) *string {
	u := *ctx.Request.URL
	q := u.Query()
	q.Set("page", strconv.Itoa(number))
	q.Set("page_limit", strconv.Itoa(page.Limit))
	u.RawQuery = q.Encode()
	link := u.String()
	return &link
}
