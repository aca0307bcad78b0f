package tagService

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	pg "github.com/lib/pq"
	"github.com/modo-agency/web/models"
)

// ErrTagInUse - returned by DeleteByID while at least one post still carries the tag
var ErrTagInUse = errors.New("tag is referenced by at least one post")

const (
	postTagsInsertFields = "post_id, tag_id"
	tagsAllFields        = "id, name, slug"
)

var (
	slugStripPattern = regexp.MustCompile(`[^\w가-힣\s-]`)
	slugSpacePattern = regexp.MustCompile(`\s+`)
	slugDashPattern  = regexp.MustCompile(`-+`)
)

// Slugify - lowercases the name and keeps only word characters, Hangul and
// hyphens. Falls back to the raw name when nothing survives
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugStripPattern.ReplaceAllString(slug, "")
	slug = slugSpacePattern.ReplaceAllString(slug, "-")
	slug = slugDashPattern.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return name
	}
	return slug
}

// GetAll - returns all tags sorted by name
func GetAll(db *sql.DB) ([]models.Tag, error) {
	var tags []models.Tag

	rows, err := db.Query("select " + tagsAllFields + " from blog_tags order by name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var tag models.Tag
		if err = rows.Scan(&tag.ID, &tag.Name, &tag.Slug); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}

	return tags, rows.Err()
}

// GetAllWithCount - returns all tags with the number of posts carrying each,
// most used first
func GetAllWithCount(db *sql.DB) ([]models.Tag, error) {
	var tags []models.Tag

	rows, err := db.Query("select t.id, t.name, t.slug, count(pt.post_id) " +
		"from blog_tags t left join blog_post_tags pt on pt.tag_id = t.id " +
		"group by t.id, t.name, t.slug order by count(pt.post_id) desc, t.name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var tag models.Tag
		if err = rows.Scan(&tag.ID, &tag.Name, &tag.Slug, &tag.PostCount); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}

	return tags, rows.Err()
}

// Save - saves a new tag. Creation is idempotent: when a tag with the same
// name already exists the existing row is returned and 'existed' is true.
// Name uniqueness itself is delegated to the database
func Save(db *sql.DB, name string) (savedTag models.Tag, existed bool, err error) {
	row := db.QueryRow("insert into blog_tags (name, slug) values ($1, $2) returning "+tagsAllFields,
		name, Slugify(name))
	err = row.Scan(&savedTag.ID, &savedTag.Name, &savedTag.Slug)
	if err == nil {
		return savedTag, false, nil
	}

	var pgErr *pg.Error
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		row = db.QueryRow("select "+tagsAllFields+" from blog_tags where name = $1", name)
		if err = row.Scan(&savedTag.ID, &savedTag.Name, &savedTag.Slug); err != nil {
			return savedTag, false, err
		}
		return savedTag, true, nil
	}

	return savedTag, false, err
}

// DeleteByID - deletes a tag by its ID
// Deletion is blocked with ErrTagInUse while any post references the tag
func DeleteByID(db *sql.DB, tagID string) error {
	var inUse bool
	err := db.QueryRow("select exists(select 1 from blog_post_tags where tag_id = $1)", tagID).Scan(&inUse)
	if err != nil {
		return err
	}
	if inUse {
		return ErrTagInUse
	}

	res, err := db.Exec("delete from blog_tags where id = $1", tagID)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// GetAllByPostID - returns all tags of the given post
func GetAllByPostID(db *sql.DB, postID string) ([]models.Tag, error) {
	var tags []models.Tag

	rows, err := db.Query("select t.id, t.name, t.slug from blog_tags t "+
		"inner join blog_post_tags pt on t.id = pt.tag_id where pt.post_id = $1 order by t.name", postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var tag models.Tag
		if err = rows.Scan(&tag.ID, &tag.Name, &tag.Slug); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}

	return tags, rows.Err()
}

// GetAllInRangeOfPosts - retrieves all tags of the range of posts
// returns a map where key is a post ID and value is a slice of tags related to this post
func GetAllInRangeOfPosts(db *sql.DB, postIDs []string) (map[string][]models.Tag, error) {
	rows, err := db.Query("select pt.post_id, t.id, t.name, t.slug from blog_post_tags pt "+
		"inner join blog_tags t on t.id = pt.tag_id where pt.post_id = any($1)", pg.Array(postIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	postTags := make(map[string][]models.Tag)
	for rows.Next() {
		var postID string
		var tag models.Tag
		if err = rows.Scan(&postID, &tag.ID, &tag.Name, &tag.Slug); err != nil {
			return nil, err
		}
		postTags[postID] = append(postTags[postID], tag)
	}

	return postTags, rows.Err()
}

// ReplacePostTags - replaces the post's tag set with the given tag IDs
// after executing of this function post will have exactly the given tags.
// Runs inside the caller's transaction so a post is never left half-tagged
func ReplacePostTags(tx *sql.Tx, postID string, tagIDs []string) error {
	_, err := tx.Exec("delete from blog_post_tags where post_id = $1", postID)
	if err != nil {
		return err
	}

	if len(tagIDs) == 0 {
		return nil
	}

	query := "insert into blog_post_tags (" + postTagsInsertFields + ") values "
	args := make([]interface{}, 0, len(tagIDs)*2)

	iter := 1
	for _, tagID := range tagIDs {
		query += fmt.Sprintf("($%d, $%d),", iter, iter+1)
		args = append(args, postID, tagID)
		iter = iter + 2
	}
	query = strings.TrimSuffix(query, ",")

	_, err = tx.Exec(query, args...)
	return err
}
