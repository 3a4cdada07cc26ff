package helpers

import (
	"github.com/yigit/admission/internal/app/models/dto"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page is a 1-based page request with its size clamped to [1, MaxPageSize]
type Page struct {
	Number int
	Size   int
}

// NormalizePage fixes out of range page numbers and sizes
func NormalizePage(number, size int) Page {
	if size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}
	if number < 1 {
		number = 1
	}
	return Page{Number: number, Size: size}
}

// Offset is the number of rows skipped before this page
func (p Page) Offset() uint64 {
	return uint64((p.Number - 1) * p.Size)
}

// Info describes this page of a listing holding total rows.
// An empty listing still has one page; the current page never exceeds the last.
func (p Page) Info(total int64) dto.PaginationInfo {
	pages := 1
	if total > 0 {
		pages = int((total + int64(p.Size) - 1) / int64(p.Size))
	}

	current := p.Number
	if current > pages {
		current = pages
	}

	return dto.PaginationInfo{
		CurrentPage: current,
		TotalPages:  pages,
		PageSize:    p.Size,
		TotalItems:  total,
	}
}
