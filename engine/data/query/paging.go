package query

import "github.com/compozy/modhost/engine/core"

// Sort is a caller-supplied sort key on a primary entity column. Paging
// sorts take precedence over sort keys added on the builder.
type Sort struct {
	Column string
	Desc   bool
}

// Paging requests one page. Page is 1-based; values below 1 mean 1.
type Paging struct {
	Page int
	Size int
	Sort []Sort
}

// Page is one page of results. Items is never nil.
type Page[T any] struct {
	Items      []T
	TotalCount uint64
	Page       int
	Size       int
}

func (p Paging) normalize() (int, int, error) {
	if p.Size <= 0 {
		return 0, 0, core.NewError(nil, core.CodeInvalidPaging, map[string]any{"size": p.Size})
	}
	page := p.Page
	if page < 1 {
		page = 1
	}
	return page, p.Size, nil
}

// Pages returns the number of pages needed for TotalCount.
func (p Page[T]) Pages() uint64 {
	if p.Size <= 0 {
		return 0
	}
	size := uint64(p.Size)
	return (p.TotalCount + size - 1) / size
}
