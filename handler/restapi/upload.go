package restapi

import (
	"database/sql"
	"errors"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/modo-agency/web/models"
	"github.com/modo-agency/web/service/postService"
	"github.com/modo-agency/web/service/uploadService"
	"github.com/modo-agency/web/storage"
)

// UploadAPIHandler - used for dependency injection
type UploadAPIHandler struct {
	db       *sql.DB
	storage  storage.Backend
	logInfo  *log.Logger
	logError *log.Logger
}

func NewUploadAPIHandler(db *sql.DB, backend storage.Backend, logInfo, logError *log.Logger) *UploadAPIHandler {
	return &UploadAPIHandler{
		db:       db,
		storage:  backend,
		logInfo:  logInfo,
		logError: logError,
	}
}

// error codes for this API
var (
	// NoFileProvided - multipart body carries no file part
	NoFileProvided = models.NewRequestErrorCode("NO_FILE")
	// FileTooLarge - file exceeds the per-kind size limit
	FileTooLarge = models.NewRequestErrorCode("FILE_TOO_LARGE")
	// UnsupportedFileType - file is not of an accepted content type
	UnsupportedFileType = models.NewRequestErrorCode("UNSUPPORTED_FILE_TYPE")
)

const (
	// MaxImageSize - maximum accepted image upload size
	MaxImageSize int64 = 5 << 20
	// MaxDocumentSize - maximum accepted HTML document upload size
	MaxDocumentSize int64 = 10 << 20
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// UploadedImage - response body of an image upload
type UploadedImage struct {
	URL      string `json:"url"`
	FileName string `json:"fileName"`
}

// UploadedDocument - response body of an HTML document upload
type UploadedDocument struct {
	Post     *models.Post `json:"post"`
	FileName string       `json:"fileName"`
}

// readUploadedFile - pulls the file part out of a multipart body enforcing the
// size limit. A body over the limit maps to FileTooLarge, a body that cannot
// be parsed as multipart to BadRequestBody
func readUploadedFile(w http.ResponseWriter, r *http.Request, maxSize int64) ([]byte, *multipart.FileHeader, models.RequestErrorCode) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)
	if err := r.ParseMultipartForm(maxSize); err != nil {
		var maxBytesError *http.MaxBytesError
		if errors.As(err, &maxBytesError) {
			return nil, nil, FileTooLarge
		}
		return nil, nil, BadRequestBody
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, nil, NoFileProvided
	}
	defer file.Close()

	if header.Size > maxSize {
		return nil, nil, FileTooLarge
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, nil, BadRequestBody
	}

	return data, header, nil
}

func isHTMLUpload(header *multipart.FileHeader) bool {
	contentType := header.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "text/html") || strings.HasPrefix(contentType, "application/xhtml+xml") {
		return true
	}
	return strings.HasSuffix(strings.ToLower(header.Filename), ".html")
}

// UploadImageHandler - this handler serves image uploads for post content and
// thumbnails. Responds with the public URL of the stored image
func (api *UploadAPIHandler) UploadImageHandler() http.Handler {
	logInfo := api.logInfo
	logError := api.logError
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, header, validateError := readUploadedFile(w, r, MaxImageSize)
		if validateError != nil {
			RespondWithError(w, http.StatusBadRequest, validateError)
			return
		}

		contentType := header.Header.Get("Content-Type")
		if !allowedImageTypes[contentType] {
			RespondWithError(w, http.StatusBadRequest, UnsupportedFileType)
			return
		}

		key := uploadService.NewImageKey(header.Filename)
		if err := api.storage.Save(r.Context(), key, data, contentType); err != nil {
			logError.Printf("Error saving uploaded image. Key: %s. Error: %s", key, err)
			RespondWithError(w, http.StatusInternalServerError, TechnicalError)
			return
		}

		logInfo.Printf("Image uploaded. Key: %s, size: %d", key, len(data))
		RespondWithBody(w, http.StatusCreated, UploadedImage{
			URL:      api.storage.URL(key),
			FileName: key,
		})
	})
}

// UploadHTMLHandler - this handler accepts a standalone HTML document, runs it
// through the rewrite pipeline, stores it and auto-creates a published post
// embedding it. The post's title is the upload date
func (api *UploadAPIHandler) UploadHTMLHandler() http.Handler {
	logInfo := api.logInfo
	logError := api.logError
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal := PrincipalFromContext(r.Context())

		data, header, validateError := readUploadedFile(w, r, MaxDocumentSize)
		if validateError != nil {
			RespondWithError(w, http.StatusBadRequest, validateError)
			return
		}
		if !isHTMLUpload(header) {
			RespondWithError(w, http.StatusBadRequest, UnsupportedFileType)
			return
		}

		rewritten := uploadService.Rewrite(data)

		key := uploadService.NewDocumentKey(header.Filename)
		if err := api.storage.Save(r.Context(), key, rewritten, "text/html; charset=utf-8"); err != nil {
			logError.Printf("Error saving uploaded document. Key: %s. Error: %s", key, err)
			RespondWithError(w, http.StatusInternalServerError, TechnicalError)
			return
		}

		now := time.Now()
		createdPost, err := postService.Save(api.db, &postService.SaveRequest{
			Title:    uploadService.DateTitle(now),
			Slug:     uploadService.DocumentSlug(now),
			HTMLFile: api.storage.URL(key),
			AuthorID: principal.ID,
			Status:   models.StatusPublished,
		})
		if err != nil {
			logError.Printf("Error saving post for uploaded document. Key: %s. Error: %s", key, err)
			RespondWithError(w, http.StatusInternalServerError, TechnicalError)
			return
		}

		logInfo.Printf("Document uploaded. Key: %s, post ID: %s", key, createdPost.ID)
		RespondWithBody(w, http.StatusCreated, UploadedDocument{
			Post:     createdPost,
			FileName: key,
		})
	})
}

// ReplaceHTMLHandler - this handler swaps the HTML document behind an existing
// post. The replacement is stored under a fresh key so stale cached copies are
// never served under the new content's name
func (api *UploadAPIHandler) ReplaceHTMLHandler() http.Handler {
	logInfo := api.logInfo
	logError := api.logError
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, header, validateError := readUploadedFile(w, r, MaxDocumentSize)
		if validateError != nil {
			RespondWithError(w, http.StatusBadRequest, validateError)
			return
		}
		if !isHTMLUpload(header) {
			RespondWithError(w, http.StatusBadRequest, UnsupportedFileType)
			return
		}

		postID := r.FormValue("post_id")
		if !postService.IsPostID(postID) {
			RespondWithError(w, http.StatusBadRequest, InvalidRequest)
			return
		}

		rewritten := uploadService.Rewrite(data)

		key := uploadService.NewDocumentKey(header.Filename)
		if err := api.storage.Save(r.Context(), key, rewritten, "text/html; charset=utf-8"); err != nil {
			logError.Printf("Error saving replacement document. Key: %s. Error: %s", key, err)
			RespondWithError(w, http.StatusInternalServerError, TechnicalError)
			return
		}

		fileURL := api.storage.URL(key)
		updatedPost, err := postService.Update(api.db, &postService.UpdateRequest{
			ID:       postID,
			HTMLFile: &fileURL,
		})
		if err != nil {
			if err == sql.ErrNoRows {
				RespondWithError(w, http.StatusNotFound, NoSuchPost)
				return
			}
			logError.Printf("Error updating post with replacement document. Post ID: %s. Error: %s", postID, err)
			RespondWithError(w, http.StatusInternalServerError, TechnicalError)
			return
		}

		logInfo.Printf("Document replaced. Key: %s, post ID: %s", key, postID)
		RespondWithBody(w, http.StatusOK, UploadedDocument{
			Post:     updatedPost,
			FileName: key,
		})
	})
}
