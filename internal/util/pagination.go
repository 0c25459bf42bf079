package util

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// Page 分页参数，从 query 解析；page 从 1 开始
type Page struct {
	Number  int
	PerPage int
}

func ParsePage(c *gin.Context) Page {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", strconv.Itoa(DefaultPerPage)))
	if perPage < 1 || perPage > 100 {
		perPage = DefaultPerPage
	}
	return Page{Number: page, PerPage: perPage}
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.PerPage
}

// Slice 对已加载的有序列表应用分页窗口
func Slice[T any](list []T, p Page) []T {
	start := p.Offset()
	if start >= len(list) {
		return []T{}
	}
	end := start + p.PerPage
	if end > len(list) {
		end = len(list)
	}
	return list[start:end]
}

// SetLinkHeader 写 RFC5988 Link 分页响应头（current/next/prev/first/last）
func SetLinkHeader(c *gin.Context, p Page, total int) {
	lastPage := (total + p.PerPage - 1) / p.PerPage
	if lastPage < 1 {
		lastPage = 1
	}

	base := c.Request.URL.Path
	link := func(page int, rel string) string {
		return fmt.Sprintf(`<%s?page=%d&per_page=%d>; rel="%s"`, base, page, p.PerPage, rel)
	}

	links := []string{
		link(p.Number, "current"),
		link(1, "first"),
		link(lastPage, "last"),
	}
	if p.Number < lastPage {
		links = append(links, link(p.Number+1, "next"))
	}
	if p.Number > 1 {
		links = append(links, link(p.Number-1, "prev"))
	}

	c.Header("Link", strings.Join(links, ","))
}
