package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pageCtx(t *testing.T, target string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
	ctx.Request = httptest.NewRequest("GET", target, nil)
	return ctx
}

func TestParsePage(t *testing.T) {
	page := ParsePage(pageCtx(t, "/api/meetups"))
	assert.Equal(t, 1, page.Number)
	assert.Equal(t, DefaultPageLimit, page.Limit)
	assert.Equal(t, 0, page.Offset())

	page = ParsePage(pageCtx(t, "/api/meetups?page=3&page_limit=5"))
	assert.Equal(t, 3, page.Number)
	assert.Equal(t, 5, page.Limit)
	assert.Equal(t, 10, page.Offset())

	// malformed values fall back to defaults
	page = ParsePage(pageCtx(t, "/api/meetups?page=abc&page_limit=-2"))
	assert.Equal(t, 1, page.Number)
	assert.Equal(t, DefaultPageLimit, page.Limit)
}

func TestNewPagedResponse(t *testing.T) {
	ctx := pageCtx(t, "/api/meetups?page=2&page_limit=5")
	page := ParsePage(ctx)

	resp := NewPagedResponse(ctx, page, 12, []string{"a", "b"})
	assert.EqualValues(t, 12, resp.Count)
	require.NotNil(t, resp.Next)
	require.NotNil(t, resp.Previous)
	assert.Contains(t, *resp.Next, "page=3")
	assert.Contains(t, *resp.Previous, "page=1")

	// last page has no next
	resp = NewPagedResponse(ctx, Page{Number: 3, Limit: 5}, 12, nil)
	assert.Nil(t, resp.Next)
	require.NotNil(t, resp.Previous)
}
