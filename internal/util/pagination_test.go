package util

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pageContext(t *testing.T, target string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", target, nil)
	return c, w
}

func TestParsePage(t *testing.T) {
	c, _ := pageContext(t, "/api/courses/1/modules?page=3&per_page=20")
	p := ParsePage(c)
	assert.Equal(t, 3, p.Number)
	assert.Equal(t, 20, p.PerPage)
	assert.Equal(t, 40, p.Offset())

	// 非法值回落到默认
	c, _ = pageContext(t, "/api/courses/1/modules?page=-1&per_page=1000")
	p = ParsePage(c)
	assert.Equal(t, 1, p.Number)
	assert.Equal(t, DefaultPerPage, p.PerPage)
}

func TestSlice(t *testing.T) {
	list := []int{1, 2, 3, 4, 5}

	assert.Equal(t, []int{1, 2, 3}, Slice(list, Page{Number: 1, PerPage: 3}))
	assert.Equal(t, []int{4, 5}, Slice(list, Page{Number: 2, PerPage: 3}))
	assert.Empty(t, Slice(list, Page{Number: 3, PerPage: 3}))
}

func TestSetLinkHeader(t *testing.T) {
	c, w := pageContext(t, "/api/courses/1/modules?page=2&per_page=2")
	SetLinkHeader(c, Page{Number: 2, PerPage: 2}, 5)

	link := w.Header().Get("Link")
	require.NotEmpty(t, link)
	assert.Contains(t, link, `rel="current"`)
	assert.Contains(t, link, `<`+c.Request.URL.Path+`?page=1&per_page=2>; rel="first"`)
	assert.Contains(t, link, `<`+c.Request.URL.Path+`?page=3&per_page=2>; rel="last"`)
	assert.Contains(t, link, `rel="next"`)
	assert.Contains(t, link, `rel="prev"`)

	// 第一页没有 prev，最后一页没有 next
	c, w = pageContext(t, "/api/courses/1/modules")
	SetLinkHeader(c, Page{Number: 1, PerPage: 10}, 5)
	link = w.Header().Get("Link")
	assert.NotContains(t, link, `rel="prev"`)
	assert.NotContains(t, link, `rel="next"`)
}
