package postService

import "github.com/modo-agency/web/models"

// SaveRequest - represents a save request model
type SaveRequest struct {
	Title        string
	Slug         string
	Content      string
	ContentHTML  string
	HTMLFile     string
	Summary      string
	ThumbnailURL string
	CategoryID   string
	AuthorID     string
	Status       models.PostStatus
	Tags         []string
}
