package app

// Pagination is the listing view's page-window model: the visible page
// numbers are centered on the current page and clamped to [1, TotalPages].
type Pagination struct {
	Page       int
	TotalPages int
	Count      int
	Pages      []int
	HasPrev    bool
	HasNext    bool
}

// PrevPage and NextPage are the link targets for the boundary buttons.
func (p Pagination) PrevPage() int {
	if p.Page <= 1 {
		return 1
	}
	return p.Page - 1
}

func (p Pagination) NextPage() int {
	if p.Page >= p.TotalPages {
		return p.TotalPages
	}
	return p.Page + 1
}

// NewPagination computes the window for a result set of count items at
// pageSize items per page, showing at most maxVisible page buttons.
func NewPagination(page, count, pageSize, maxVisible int) Pagination {
	if pageSize <= 0 {
		pageSize = 1
	}
	if maxVisible <= 0 {
		maxVisible = 1
	}
	if page < 1 {
		page = 1
	}
	total := (count + pageSize - 1) / pageSize

	p := Pagination{Page: page, TotalPages: total, Count: count}
	if total == 0 {
		return p
	}

	start := page - maxVisible/2
	if start < 1 {
		start = 1
	}
	end := start + maxVisible - 1
	if end > total {
		end = total
	}
	for i := start; i <= end; i++ {
		p.Pages = append(p.Pages, i)
	}
	p.HasPrev = page > 1
	p.HasNext = page < total
	return p
}
