// Package pagination reads the page and limit query parameters shared by
// every list endpoint.
package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	// MaxLimit caps one page of a JSON listing.
	MaxLimit = 100
	// MaxExportRows caps a spreadsheet export, which is not paged.
	MaxExportRows = 10000
)

type Params struct {
	Page  int
	Limit int
}

// Offset is the number of rows before the page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Parse reads page and limit from the query string.
func Parse(c *gin.Context) Params {
	return FromValues(c.Query("page"), c.Query("limit"))
}

// FromValues falls back to the defaults for missing, malformed or
// non-positive values and clamps limit to MaxLimit.
func FromValues(page, limit string) Params {
	p := Params{Page: DefaultPage, Limit: DefaultLimit}
	if n, err := strconv.Atoi(page); err == nil && n > 0 {
		p.Page = n
	}
	if n, err := strconv.Atoi(limit); err == nil && n > 0 {
		p.Limit = min(n, MaxLimit)
	}
	return p
}
