package models

import (
	"fmt"

	e "github.com/gartstein/jobportal/internal/jobportal/errors"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageRequest selects a 0-based page of a listing.
type PageRequest struct {
	Page int
	Size int
}

// Normalize applies the default size and rejects out-of-range values.
func (p PageRequest) Normalize() (PageRequest, error) {
	if p.Page < 0 {
		return p, fmt.Errorf("%w: page must not be negative", e.ErrValidation)
	}
	if p.Size == 0 {
		p.Size = DefaultPageSize
	}
	if p.Size < 0 || p.Size > MaxPageSize {
		return p, fmt.Errorf("%w: page size must be between 1 and %d", e.ErrValidation, MaxPageSize)
	}
	return p, nil
}

// Offset is the number of rows preceding the page.
func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

// Page is one page of a listing. Iterating pages until Last is true yields
// the complete listing.
type Page[T any] struct {
	Items         []T   `json:"items"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"total_elements"`
	TotalPages    int   `json:"total_pages"`
	Last          bool  `json:"last"`
}

// NewPage assembles a page from its items and the total element count.
func NewPage[T any](items []T, req PageRequest, total int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if req.Size > 0 {
		pages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}
	return Page[T]{
		Items:         items,
		Page:          req.Page,
		Size:          req.Size,
		TotalElements: total,
		TotalPages:    pages,
		Last:          req.Page >= pages-1,
	}
}
