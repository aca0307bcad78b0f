package postService

import (
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	slugStripPattern = regexp.MustCompile(`[^\w가-힣\s-]`)
	slugSpacePattern = regexp.MustCompile(`\s+`)
	slugDashPattern  = regexp.MustCompile(`-+`)

	postIDPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
)

// placeholderThumbnails - fixed set assigned pseudo-randomly when a post is
// created without a thumbnail
var placeholderThumbnails = []string{
	"/images/character1.jpg",
	"/images/character2.jpg",
	"/images/character3.jpg",
	"/images/character4.jpg",
	"/images/character5.jpg",
	"/images/character6.jpg",
	"/images/character7.jpg",
	"/images/character8.jpg",
	"/images/character9.jpg",
}

// GenerateSlug - derives a URL-safe slug from the title: lowercased, word
// characters and Hangul kept, whitespace collapsed to hyphens, plus a base-36
// time suffix so two posts with the same title still get distinct slugs
func GenerateSlug(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = slugStripPattern.ReplaceAllString(slug, "")
	slug = slugSpacePattern.ReplaceAllString(slug, "-")
	slug = slugDashPattern.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")

	suffix := strconv.FormatInt(time.Now().UnixMilli(), 36)
	if slug == "" {
		return suffix
	}
	return slug + "-" + suffix
}

// IsPostID - reports whether s looks like a post ID rather than a slug
func IsPostID(s string) bool {
	return postIDPattern.MatchString(strings.ToLower(s))
}

// RandomThumbnail - picks one of the placeholder thumbnails
func RandomThumbnail() string {
	return placeholderThumbnails[rand.Intn(len(placeholderThumbnails))]
}
