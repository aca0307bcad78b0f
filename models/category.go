package models

// Category - represents a blog category. Categories are maintained out of
// band and are read-only from the API's perspective
type Category struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Description NullString `json:"description"`
	OrderIndex  int        `json:"order_index"`
}
