package models

// Pagination - paging info attached to list responses
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// NewPagination - computes total pages for the given page size
func NewPagination(page, limit int, total int64) Pagination {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
}

// PostList - list of posts with paging info
type PostList struct {
	Data       []Post     `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// InquiryList - list of inquiries with paging info
type InquiryList struct {
	Data       []Inquiry  `json:"data"`
	Pagination Pagination `json:"pagination"`
}
