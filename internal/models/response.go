package models

// Response is the envelope of every successful JSON response. Optional
// fields are omitted when empty.
type Response struct {
	Message      string      `json:"message"`
	Token        string      `json:"token,omitempty"`
	RefreshToken string      `json:"refreshToken,omitempty"`
	Body         interface{} `json:"body,omitempty"`
	Pagination   *Pagination `json:"pagination,omitempty"`
}

type Pagination struct {
	TotalPage   int64 `json:"totalPage"`
	CurrentPage int64 `json:"currentPage"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

// NewPagination derives page flags from a total item count.
func NewPagination(total, page, limit int64) *Pagination {
	pages := (total + limit - 1) / limit
	return &Pagination{
		TotalPage:   pages,
		CurrentPage: page,
		HasNextPage: page < pages,
		HasPrevPage: page > 1,
	}
}

// UpdateResult reports how many documents an update touched.
type UpdateResult struct {
	Matched  int64 `json:"matchedCount"`
	Modified int64 `json:"modifiedCount"`
}
