package postService

// UpdateRequest - represents an update request model
// Only non-nil fields are written; Tags, when present, fully replaces the
// post's tag set
type UpdateRequest struct {
	ID           string
	Title        *string
	Slug         *string
	Content      *string
	ContentHTML  *string
	HTMLFile     *string
	Summary      *string
	ThumbnailURL *string
	CategoryID   *string
	Status       *string
	Tags         *[]string
}
