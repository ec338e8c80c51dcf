package model

// Pagination bounds.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Page is one page of a listing.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// ClampPage forces page >= 1 and 1 <= limit <= MaxLimit. A zero limit means
// "not given" and becomes DefaultLimit.
func ClampPage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	switch {
	case limit == 0:
		limit = DefaultLimit
	case limit < 1:
		limit = 1
	case limit > MaxLimit:
		limit = MaxLimit
	}
	return page, limit
}

// Offset returns the row offset of the given page.
func Offset(page, limit int) int {
	return (page - 1) * limit
}
