package models

// Tag - represents a tag
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
	// PostCount - number of posts carrying this tag; filled only by the
	// withCount listing
	PostCount int64 `json:"postCount,omitempty"`
}

// CreateTagRequest - represents tag creation HTTP request
type CreateTagRequest struct {
	Name string `json:"name"`
}
