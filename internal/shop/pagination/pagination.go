// Package pagination implements offset pagination shared by the product,
// index and comment listings.
package pagination

import (
	"math"
	"strconv"
)

const DefaultPageSize = 20

// maxPage caps parsed page numbers so the offset arithmetic cannot overflow
// into a negative OFFSET. Any page this large is past the end of every real
// listing and yields an empty slice like any other out-of-range page.
const maxPage = math.MaxInt32

// ParsePage returns the 1-based page number encoded in raw, or 1 when raw is
// missing or not a positive integer. Pages past the last page are legal and
// simply yield an empty slice.
func ParsePage(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	if page > maxPage {
		return maxPage
	}
	return page
}

type Pager struct {
	size int
}

func NewPager(size int) Pager {
	if size < 1 {
		size = DefaultPageSize
	}
	return Pager{size: size}
}

func (p Pager) Size() int {
	return p.size
}

func (p Pager) Offset(page int) int {
	return (page - 1) * p.size
}

type Meta struct {
	TotalItems      int64 `json:"total_items" example:"45"`
	CurrentPage     int   `json:"current_page" example:"1"`
	HasNextPage     bool  `json:"has_next_page"`
	HasPreviousPage bool  `json:"has_previous_page"`
	NextPage        int   `json:"next_page"`
	PreviousPage    int   `json:"previous_page"`
	LastPage        int   `json:"last_page" example:"3"`
}

// Meta computes navigation metadata for the given page. All fields are pure
// functions of (page, total, size).
func (p Pager) Meta(page int, total int64) Meta {
	return Meta{
		TotalItems:      total,
		CurrentPage:     page,
		HasNextPage:     int64(page)*int64(p.size) < total,
		HasPreviousPage: page > 1,
		NextPage:        page + 1,
		PreviousPage:    page - 1,
		LastPage:        int((total + int64(p.size) - 1) / int64(p.size)),
	}
}
