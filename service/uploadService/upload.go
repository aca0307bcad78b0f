package uploadService

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var fileNameSanitizePattern = regexp.MustCompile(`[^a-zA-Z0-9가-힣._-]`)

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// NewImageKey - builds a collision-resistant storage key for an uploaded
// image: upload time, random suffix and the original extension
func NewImageKey(originalName string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(originalName), "."))
	if ext == "" {
		ext = "jpg"
	}
	return fmt.Sprintf("%d_%s.%s", time.Now().UnixMilli(), randomSuffix(), ext)
}

// NewDocumentKey - builds a storage key for an uploaded HTML document keeping
// a sanitized version of the original name. A fresh key is generated on every
// upload, replacement included, so cached copies of the old document are
// never served under the new content's name
func NewDocumentKey(originalName string) string {
	name := fileNameSanitizePattern.ReplaceAllString(originalName, "_")
	if strings.Trim(name, "_.") == "" {
		name = "document.html"
	}
	return fmt.Sprintf("%d_%s", time.Now().UnixMilli(), name)
}

// DateTitle - localized long-form date used as the title of auto-created posts
func DateTitle(t time.Time) string {
	return fmt.Sprintf("%d년 %02d월 %02d일", t.Year(), int(t.Month()), t.Day())
}

// DocumentSlug - time-derived slug for auto-created posts
func DocumentSlug(t time.Time) string {
	return fmt.Sprintf("blog-%d", t.UnixMilli())
}
