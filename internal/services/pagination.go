package services

// Page is the envelope returned by list operations.
type Page[T any] struct {
	Items       []T  `json:"items"`
	Total       int  `json:"total"`
	Page        int  `json:"page"`
	PageSize    int  `json:"page_size"`
	HasNextPage bool `json:"has_next_page"`
}

// Window slices one page out of an already-sorted candidate set. A window
// starting past the end is empty, not an error.
func Window[T any](items []T, page, pageSize int) []T {
	skip := (page - 1) * pageSize
	if skip >= len(items) {
		return []T{}
	}
	end := skip + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[skip:end]
}

// NewPage windows items and fills in the envelope. Sorting must have happened
// before the call; this does no I/O.
func NewPage[T any](items []T, page, pageSize int) Page[T] {
	return Page[T]{
		Items:       Window(items, page, pageSize),
		Total:       len(items),
		Page:        page,
		PageSize:    pageSize,
		HasNextPage: page*pageSize < len(items),
	}
}
