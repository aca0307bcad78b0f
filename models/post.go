package models

import "time"

// PostStatus - represents post publication status
type PostStatus string

const (
	// StatusDraft - post is visible to admins only
	StatusDraft PostStatus = "draft"
	// StatusPublished - post is visible to everyone
	StatusPublished PostStatus = "published"
)

// Post - represents blog post
// @Content - structured editor document
// @ContentHTML - rendered markup of Content
// @HTMLFile - storage key of an externally-hosted HTML document; when set it
// takes rendering precedence over ContentHTML
// @PublishedAt - set once on the first transition to published, never cleared
type Post struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Slug         string     `json:"slug"`
	Content      string     `json:"content"`
	ContentHTML  string     `json:"content_html"`
	HTMLFile     NullString `json:"html_file"`
	Summary      NullString `json:"summary"`
	ThumbnailURL NullString `json:"thumbnail_url"`
	CategoryID   NullString `json:"category_id"`
	AuthorID     string     `json:"author_id"`
	Status       PostStatus `json:"status"`
	PublishedAt  NullTime   `json:"published_at"`
	ViewCount    int64      `json:"view_count"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	Category *Category     `json:"category,omitempty"`
	Tags     []Tag         `json:"tags,omitempty"`
	PrevPost *PostNeighbor `json:"prevPost,omitempty"`
	NextPost *PostNeighbor `json:"nextPost,omitempty"`
}

// PostNeighbor - short form of the nearest previous/next published post
type PostNeighbor struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Slug         string     `json:"slug"`
	ThumbnailURL NullString `json:"thumbnail_url"`
}

// CreatePostRequest - represents post creation request
type CreatePostRequest struct {
	Title        string   `json:"title"`
	Slug         string   `json:"slug"`
	Content      string   `json:"content"`
	ContentHTML  string   `json:"content_html"`
	HTMLFile     string   `json:"html_file"`
	Summary      string   `json:"summary"`
	ThumbnailURL string   `json:"thumbnail_url"`
	CategoryID   string   `json:"category_id"`
	Status       string   `json:"status"`
	Tags         []string `json:"tags"`
}

// UpdatePostRequest - represents post update request
// Only non-nil fields are applied
type UpdatePostRequest struct {
	Title        *string   `json:"title"`
	Slug         *string   `json:"slug"`
	Content      *string   `json:"content"`
	ContentHTML  *string   `json:"content_html"`
	HTMLFile     *string   `json:"html_file"`
	Summary      *string   `json:"summary"`
	ThumbnailURL *string   `json:"thumbnail_url"`
	CategoryID   *string   `json:"category_id"`
	Status       *string   `json:"status"`
	Tags         *[]string `json:"tags"`
}
