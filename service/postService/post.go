package postService

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	pg "github.com/lib/pq"
	"github.com/modo-agency/web/models"
	"github.com/modo-agency/web/service/categoryService"
	"github.com/modo-agency/web/service/tagService"
)

const (
	// postsInsertFields - fields that should be filled while inserting a new entity
	postsInsertFields = "title, slug, content, content_html, html_file, summary, thumbnail_url, category_id, author_id, status, published_at"
	// postsAllFields - all entity fields
	postsAllFields = "id, title, slug, content, content_html, html_file, summary, thumbnail_url, category_id, author_id, status, published_at, view_count, created_at, updated_at"
	// neighborFields - fields returned for prev/next posts
	neighborFields = "id, title, slug, thumbnail_url"
)

// Filter - describes a posts listing request
// Page is 1-based. Status is forced to published for unprivileged callers by
// the handler layer
type Filter struct {
	Status   string
	Category string
	Tag      string
	Search   string
	Sort     string
	Page     int
	Limit    int
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPost(row rowScanner, post *models.Post) error {
	return row.Scan(&post.ID, &post.Title, &post.Slug, &post.Content, &post.ContentHTML,
		&post.HTMLFile, &post.Summary, &post.ThumbnailURL, &post.CategoryID, &post.AuthorID,
		&post.Status, &post.PublishedAt, &post.ViewCount, &post.CreatedAt, &post.UpdatedAt)
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// Save - saves a new post together with its tag assignments in one transaction
// Derives a slug when the request doesn't carry one, assigns a placeholder
// thumbnail when none is given and stamps published_at when the post is
// created as published
func Save(db *sql.DB, request *SaveRequest) (*models.Post, error) {
	slug := request.Slug
	if slug == "" {
		slug = GenerateSlug(request.Title)
	}

	thumbnail := request.ThumbnailURL
	if thumbnail == "" {
		thumbnail = RandomThumbnail()
	}

	var publishedAt interface{}
	if request.Status == models.StatusPublished {
		publishedAt = time.Now()
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, err
	}

	createdPost := &models.Post{}
	row := tx.QueryRow("insert into blog_posts ("+postsInsertFields+") "+
		"values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) returning "+postsAllFields,
		request.Title, slug, request.Content, request.ContentHTML, nullable(request.HTMLFile),
		nullable(request.Summary), thumbnail, nullable(request.CategoryID), request.AuthorID,
		request.Status, publishedAt)
	if err = scanPost(row, createdPost); err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	if err = tagService.ReplacePostTags(tx, createdPost.ID, request.Tags); err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	if tags, err := tagService.GetAllByPostID(db, createdPost.ID); err == nil {
		createdPost.Tags = tags
	}

	return createdPost, nil
}

// Update - applies a partial update to the post
// The first transition into published stamps published_at; later transitions
// leave it untouched so unpublishing and re-publishing keeps the original
// date. A tag list, when supplied, replaces the assignment set wholesale
// inside the same transaction
func Update(db *sql.DB, request *UpdateRequest) (*models.Post, error) {
	tx, err := db.Begin()
	if err != nil {
		return nil, err
	}

	var currentPublishedAt models.NullTime
	row := tx.QueryRow("select published_at from blog_posts where id = $1", request.ID)
	if err = row.Scan(&currentPublishedAt); err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	assignments := []string{"updated_at = now()"}
	args := make([]interface{}, 0)

	addAssignment := func(column string, value interface{}) {
		args = append(args, value)
		assignments = append(assignments, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if request.Title != nil {
		addAssignment("title", *request.Title)
	}
	if request.Slug != nil {
		addAssignment("slug", *request.Slug)
	}
	if request.Content != nil {
		addAssignment("content", *request.Content)
	}
	if request.ContentHTML != nil {
		addAssignment("content_html", *request.ContentHTML)
	}
	if request.HTMLFile != nil {
		addAssignment("html_file", nullable(*request.HTMLFile))
	}
	if request.Summary != nil {
		addAssignment("summary", nullable(*request.Summary))
	}
	if request.ThumbnailURL != nil {
		thumbnail := *request.ThumbnailURL
		if thumbnail == "" {
			thumbnail = RandomThumbnail()
		}
		addAssignment("thumbnail_url", thumbnail)
	}
	if request.CategoryID != nil {
		addAssignment("category_id", nullable(*request.CategoryID))
	}
	if request.Status != nil {
		addAssignment("status", *request.Status)
		if models.PostStatus(*request.Status) == models.StatusPublished && !currentPublishedAt.Valid {
			addAssignment("published_at", time.Now())
		}
	}

	args = append(args, request.ID)
	query := fmt.Sprintf("update blog_posts set %s where id = $%d returning %s",
		strings.Join(assignments, ", "), len(args), postsAllFields)

	updatedPost := &models.Post{}
	if err = scanPost(tx.QueryRow(query, args...), updatedPost); err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	if request.Tags != nil {
		if err = tagService.ReplacePostTags(tx, request.ID, *request.Tags); err != nil {
			_ = tx.Rollback()
			return nil, err
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	if tags, err := tagService.GetAllByPostID(db, updatedPost.ID); err == nil {
		updatedPost.Tags = tags
	}

	return updatedPost, nil
}

// DeleteByID - deletes post from database together with its tag assignments
func DeleteByID(db *sql.DB, postID string) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}

	if _, err = tx.Exec("delete from blog_post_tags where post_id = $1", postID); err != nil {
		_ = tx.Rollback()
		return err
	}

	res, err := tx.Exec("delete from blog_posts where id = $1", postID)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		_ = tx.Rollback()
		return sql.ErrNoRows
	}

	return tx.Commit()
}

// GetByIDOrSlug - retrieves one post by ID-looking strings against the id
// column, anything else against slug. The result carries denormalized
// category, tags and the nearest previous/next published posts
func GetByIDOrSlug(db *sql.DB, idOrSlug string) (*models.Post, error) {
	column := "slug"
	if IsPostID(idOrSlug) {
		column = "id"
	}

	post := &models.Post{}
	row := db.QueryRow("select "+postsAllFields+" from blog_posts where "+column+" = $1", idOrSlug)
	if err := scanPost(row, post); err != nil {
		return nil, err
	}

	if post.CategoryID.Valid {
		if category, err := categoryService.GetByID(db, post.CategoryID.String); err == nil {
			post.Category = category
		}
	}

	tags, err := tagService.GetAllByPostID(db, post.ID)
	if err != nil {
		return nil, err
	}
	post.Tags = tags

	if post.PublishedAt.Valid {
		post.PrevPost = neighbor(db, "published_at < $1", "desc", post)
		post.NextPost = neighbor(db, "published_at > $1", "asc", post)
	}

	return post, nil
}

func neighbor(db *sql.DB, condition, direction string, post *models.Post) *models.PostNeighbor {
	n := &models.PostNeighbor{}
	row := db.QueryRow("select "+neighborFields+" from blog_posts "+
		"where status = 'published' and id <> $2 and "+condition+
		" order by published_at "+direction+" limit 1", post.PublishedAt.Time, post.ID)
	if err := row.Scan(&n.ID, &n.Title, &n.Slug, &n.ThumbnailURL); err != nil {
		return nil
	}
	return n
}

// GetPostsInRange - retrieves posts matching the filter plus the total count
// before paging. Tag filtering intersects the already fetched page with the
// tag's assignments, so a tag-filtered page can come back shorter than Limit
// even when more matches exist on later pages
func GetPostsInRange(db *sql.DB, filter *Filter) ([]models.Post, int64, error) {
	conditions := make([]string, 0)
	args := make([]interface{}, 0)

	if filter.Status != "" && filter.Status != "all" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		conditions = append(conditions, fmt.Sprintf("category_id = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conditions = append(conditions, fmt.Sprintf("(title ilike $%d or summary ilike $%d)", len(args), len(args)))
	}

	where := ""
	if len(conditions) != 0 {
		where = " where " + strings.Join(conditions, " and ")
	}

	var total int64
	if err := db.QueryRow("select count(*) from blog_posts"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	var order string
	switch filter.Sort {
	case "oldest":
		order = " order by published_at asc nulls last"
	case "views":
		order = " order by view_count desc"
	default:
		order = " order by published_at desc nulls last"
	}

	args = append(args, (filter.Page-1)*filter.Limit, filter.Limit)
	query := "select " + postsAllFields + " from blog_posts" + where + order +
		fmt.Sprintf(" offset $%d limit $%d", len(args)-1, len(args))

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		var currentPost models.Post
		if err = scanPost(rows, &currentPost); err != nil {
			return nil, 0, err
		}
		posts = append(posts, currentPost)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, err
	}

	posts, err = fillTags(db, posts)
	if err != nil {
		return nil, 0, err
	}

	if filter.Tag != "" {
		posts, err = intersectByTag(db, posts, filter.Tag)
		if err != nil {
			return nil, 0, err
		}
	}

	return posts, total, nil
}

func fillTags(db *sql.DB, posts []models.Post) ([]models.Post, error) {
	if len(posts) == 0 {
		return posts, nil
	}

	postIDs := make([]string, 0, len(posts))
	for _, post := range posts {
		postIDs = append(postIDs, post.ID)
	}
	postTags, err := tagService.GetAllInRangeOfPosts(db, postIDs)
	if err != nil {
		return nil, err
	}

	for postIndex, post := range posts {
		posts[postIndex].Tags = postTags[post.ID]
	}

	return posts, nil
}

func intersectByTag(db *sql.DB, posts []models.Post, tagID string) ([]models.Post, error) {
	if len(posts) == 0 {
		return posts, nil
	}

	postIDs := make([]string, 0, len(posts))
	for _, post := range posts {
		postIDs = append(postIDs, post.ID)
	}

	rows, err := db.Query("select post_id from blog_post_tags where tag_id = $1 and post_id = any($2)",
		tagID, pg.Array(postIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tagged := make(map[string]bool)
	for rows.Next() {
		var postID string
		if err = rows.Scan(&postID); err != nil {
			return nil, err
		}
		tagged[postID] = true
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	filtered := make([]models.Post, 0, len(posts))
	for _, post := range posts {
		if tagged[post.ID] {
			filtered = append(filtered, post)
		}
	}
	return filtered, nil
}

// IncrementViews - bumps the post's view counter by one in a single atomic
// statement. Returns sql.ErrNoRows when no post matches
func IncrementViews(db *sql.DB, idOrSlug string) error {
	column := "slug"
	if IsPostID(idOrSlug) {
		column = "id"
	}

	var id string
	return db.QueryRow("update blog_posts set view_count = view_count + 1 where "+column+" = $1 returning id",
		idOrSlug).Scan(&id)
}
