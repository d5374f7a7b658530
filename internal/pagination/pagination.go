// Package pagination pages list lookups such as clients-by-advisor.
package pagination

import (
	"math"

	"gorm.io/gorm"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageRequest selects one page of an ordered list. The zero value asks for
// the first page at the default size.
type PageRequest struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// Normalize returns a copy with defaults applied and the size clamped to
// MaxPageSize.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	switch {
	case p.PageSize < 1:
		p.PageSize = DefaultPageSize
	case p.PageSize > MaxPageSize:
		p.PageSize = MaxPageSize
	}
	return p
}

// Offset returns the SQL OFFSET for the current page.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Page is one page of records plus totals for the whole list.
type Page[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// NewPage builds a Page for a normalized request.
func NewPage[T any](items []T, req PageRequest, totalItems int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := 0
	if req.PageSize > 0 {
		totalPages = int(math.Ceil(float64(totalItems) / float64(req.PageSize)))
	}
	return Page[T]{
		Items:      items,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}
}

// Paginate returns a GORM scope that applies OFFSET and LIMIT for req.
func Paginate(req PageRequest) func(db *gorm.DB) *gorm.DB {
	req = req.Normalize()
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(req.Offset()).Limit(req.PageSize)
	}
}
