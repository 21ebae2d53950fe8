package dto

// Pagination is the standard listing metadata.
type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	PageSize    int   `json:"pageSize"`
	TotalItems  int64 `json:"totalItems"`
}

// Page wraps a list of items with pagination metadata.
type Page[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// NewPage builds the listing envelope from a result page.
func NewPage[T any](items []T, total int64, pageSize, offset int) Page[T] {
	if pageSize <= 0 {
		pageSize = 20
	}
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	if totalPages == 0 {
		totalPages = 1
	}
	currentPage := offset/pageSize + 1
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items: items,
		Pagination: Pagination{
			CurrentPage: currentPage,
			TotalPages:  totalPages,
			PageSize:    pageSize,
			TotalItems:  total,
		},
	}
}
