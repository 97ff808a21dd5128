package models

// Pagination describes one page of a list response.
type Pagination struct {
	Total       int64 `json:"total"`
	Pages       int64 `json:"pages"`
	CurrentPage int   `json:"currentPage"`
	Limit       int   `json:"limit"`
}

// PickupPage is the envelope returned by every list endpoint.
type PickupPage struct {
	Data       []Pickup   `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// NewPickupPage builds the envelope. data is never encoded as null.
func NewPickupPage(data []Pickup, total int64, page, limit int) PickupPage {
	if data == nil {
		data = []Pickup{}
	}
	return PickupPage{
		Data: data,
		Pagination: Pagination{
			Total:       total,
			Pages:       TotalPages(total, limit),
			CurrentPage: page,
			Limit:       limit,
		},
	}
}

// TotalPages is ceil(total / limit).
func TotalPages(total int64, limit int) int64 {
	if limit < 1 || total <= 0 {
		return 0
	}
	l := int64(limit)
	return (total + l - 1) / l
}
