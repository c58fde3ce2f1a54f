// Package pagination provides pure page-window arithmetic for list
// endpoints. It performs no storage or network access.
package pagination

// Paginator describes one window over a list of Total items.
type Paginator struct {
	Total   int `json:"total"`
	Page    int `json:"page"`
	PerPage int `json:"perPage"`
	Pages   int `json:"pages"`
}

// New builds a paginator for the given total. Pages that fall outside
// the valid range are clamped to page 1; an empty list still has one
// (empty) page.
func New(total, page, perPage int) *Paginator {
	if page < 1 {
		page = 1
	}

	return &Paginator{
		Total:   total,
		Page:    page,
		PerPage: perPage,
		Pages:   pageCount(total, perPage),
	}
}

// Offset returns the number of items to skip for the current page.
func Offset(page, perPage int) int {
	if page < 1 {
		page = 1
	}
	return perPage * (page - 1)
}

// Offset returns the number of items to skip for this window.
func (p *Paginator) Offset() int {
	return Offset(p.Page, p.PerPage)
}

// HasNext reports whether a later page exists.
func (p *Paginator) HasNext() bool {
	return p.Page < p.Pages
}

// HasPrevious reports whether an earlier page exists.
func (p *Paginator) HasPrevious() bool {
	return p.Page > 1
}

// PageRange returns up to nine page numbers centered on the current
// page, for rendering pager controls.
func (p *Paginator) PageRange() []int {
	low := max(1, p.Page-4)
	high := min(p.Pages, p.Page+4)

	pages := make([]int, 0, high-low+1)
	for i := low; i <= high; i++ {
		pages = append(pages, i)
	}

	return pages
}

func pageCount(total, perPage int) int {
	if total <= 0 {
		return 1
	}
	return (total-1)/perPage + 1
}
