package stats

import "strconv"

// Default page sizes per report family.
const (
	DefaultPageSize    = 20
	CredentialPageSize = 50
	TopCredentialLimit = 20
)

// PageParams is the coerced pagination input: page >= 1, limit >= 1.
type PageParams struct {
	Page  int
	Limit int
}

// ParsePageParams coerces raw query values, falling back to page 1 and
// defaultLimit when a value is missing, non-numeric or out of range.
func ParsePageParams(page, limit string, defaultLimit int) PageParams {
	p := PageParams{Page: 1, Limit: defaultLimit}
	if n, err := strconv.Atoi(page); err == nil && n >= 1 {
		p.Page = n
	}
	if n, err := strconv.Atoi(limit); err == nil && n >= 1 {
		p.Limit = n
	}
	return p
}

// Offset returns the number of grouped rows to skip.
func (p PageParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Pagination is the envelope metadata returned next to paginated data.
// Total counts distinct groups, not raw events, since pages walk
// grouped rows.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

// NewPagination computes the envelope for total matching groups.
func NewPagination(p PageParams, total int64) Pagination {
	pages := (total + int64(p.Limit) - 1) / int64(p.Limit)
	return Pagination{Page: p.Page, Limit: p.Limit, Total: total, TotalPages: pages}
}

// pageSlice returns the requested page of rows, empty (never nil) when
// the page is past the end.
func pageSlice[T any](rows []T, p PageParams) []T {
	start := p.Offset()
	if start >= len(rows) {
		return []T{}
	}
	end := start + p.Limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}
