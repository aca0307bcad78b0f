package restapi

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/modo-agency/web/models"
	"github.com/modo-agency/web/service/postService"
)

// PostAPIHandler - used for dependency injection
type PostAPIHandler struct {
	db       *sql.DB
	auth     *AuthAPIHandler
	logInfo  *log.Logger
	logError *log.Logger
}

func NewPostAPIHandler(db *sql.DB, auth *AuthAPIHandler, logInfo, logError *log.Logger) *PostAPIHandler {
	return &PostAPIHandler{
		db:       db,
		auth:     auth,
		logInfo:  logInfo,
		logError: logError,
	}
}

// error codes for this API
var (
	// InvalidPostTitle - invalid post title
	InvalidPostTitle = models.NewRequestErrorCode("INVALID_TITLE")
	// InvalidPostContent - invalid post content
	InvalidPostContent = models.NewRequestErrorCode("INVALID_CONTENT")
	// InvalidPostSummary - summary exceeds the allowed length
	InvalidPostSummary = models.NewRequestErrorCode("INVALID_SUMMARY")
	// InvalidPostStatus - status is not draft or published
	InvalidPostStatus = models.NewRequestErrorCode("INVALID_STATUS")
	// NoSuchPost - post does not exist
	NoSuchPost = models.NewRequestErrorCode("NO_SUCH_POST")
	// InvalidPostsRange - invalid paging params
	InvalidPostsRange = models.NewRequestErrorCode("INVALID_POSTS_RANGE")
)

// constants for use in validator methods
const (
	// MaxPostTitleLen - maximum post title length
	MaxPostTitleLen int = 200
	// MaxPostSummaryLen - maximum post summary length
	MaxPostSummaryLen int = 150

	// MaxPostsPerPage - maximum posts that can be requested per page
	MaxPostsPerPage int = 50
	// DefaultPostsPerPage - page size when the request doesn't carry one
	DefaultPostsPerPage int = 10
)

func validatePostStatus(status string) models.RequestErrorCode {
	if status != string(models.StatusDraft) && status != string(models.StatusPublished) {
		return InvalidPostStatus
	}
	return nil
}

func validateCreatePostRequest(request *models.CreatePostRequest) models.RequestErrorCode {
	titleLen := len([]rune(strings.TrimSpace(request.Title)))
	if titleLen == 0 || titleLen > MaxPostTitleLen {
		return InvalidPostTitle
	}
	// an inline document or an externally-hosted one must be present
	if len(request.ContentHTML) == 0 && len(request.HTMLFile) == 0 {
		return InvalidPostContent
	}
	if len([]rune(request.Summary)) > MaxPostSummaryLen {
		return InvalidPostSummary
	}
	if request.Status != "" {
		if err := validatePostStatus(request.Status); err != nil {
			return err
		}
	}
	return nil
}

func validateUpdatePostRequest(request *models.UpdatePostRequest) models.RequestErrorCode {
	if request.Title != nil {
		titleLen := len([]rune(strings.TrimSpace(*request.Title)))
		if titleLen == 0 || titleLen > MaxPostTitleLen {
			return InvalidPostTitle
		}
	}
	if request.Summary != nil && len([]rune(*request.Summary)) > MaxPostSummaryLen {
		return InvalidPostSummary
	}
	if request.Status != nil {
		if err := validatePostStatus(*request.Status); err != nil {
			return err
		}
	}
	return nil
}

func parsePageParams(r *http.Request) (page, limit int, validateError models.RequestErrorCode) {
	page = 1
	limit = DefaultPostsPerPage

	if pageAsString := r.FormValue("page"); pageAsString != "" {
		pageAsInt, err := strconv.Atoi(pageAsString)
		if err != nil || pageAsInt < 1 {
			return 0, 0, InvalidPostsRange
		}
		page = pageAsInt
	}
	if limitAsString := r.FormValue("limit"); limitAsString != "" {
		limitAsInt, err := strconv.Atoi(limitAsString)
		if err != nil || limitAsInt < 1 || limitAsInt > MaxPostsPerPage {
			return 0, 0, InvalidPostsRange
		}
		limit = limitAsInt
	}

	return page, limit, nil
}

// GetPostsHandler - this handler serves GET requests for a range of posts
// Public callers are always constrained to published posts; any other status
// filter requires an admin session
func (api *PostAPIHandler) GetPostsHandler() http.Handler {
	logError := api.logError
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, limit, validateError := parsePageParams(r)
		if validateError != nil {
			RespondWithError(w, http.StatusBadRequest, validateError)
			return
		}

		filter := &postService.Filter{
			Status:   r.FormValue("status"),
			Category: r.FormValue("category"),
			Tag:      r.FormValue("tag"),
			Search:   r.FormValue("search"),
			Sort:     r.FormValue("sort"),
			Page:     page,
			Limit:    limit,
		}

		if filter.Status == "" {
			filter.Status = string(models.StatusPublished)
		}
		if filter.Status != string(models.StatusPublished) {
			principal := api.auth.currentPrincipal(r)
			if principal == nil || principal.Role != models.RoleAdmin {
				filter.Status = string(models.StatusPublished)
			}
		}

		posts, total, err := postService.GetPostsInRange(api.db, filter)
		if err != nil {
			logError.Printf("Error retrieving range of posts from database: %s", err)
			RespondWithError(w, http.StatusInternalServerError, TechnicalError)
			return
		}

		RespondWithBody(w, http.StatusOK, models.PostList{
			Data:       posts,
			Pagination: models.NewPagination(page, limit, total),
		})
	})
}

// GetCertainPostHandler - this handler serves GET requests for a single post
// Resolves ID-looking path params against id, anything else against slug
func (api *PostAPIHandler) GetCertainPostHandler() http.Handler {
	logError := api.logError
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		idOrSlug := mux.Vars(r)["id"]

		post, err := postService.GetByIDOrSlug(api.db, idOrSlug)
		if err != nil {
			if err == sql.ErrNoRows {
				RespondWithError(w, http.StatusNotFound, NoSuchPost)
				return
			}
			logError.Printf("Error retrieving post from database. Post: %s. Error: %s", idOrSlug, err)
			RespondWithError(w, http.StatusInternalServerError, TechnicalError)
			return
		}

		RespondWithBody(w, http.StatusOK, post)
	})
}

// CreatePostHandler - this handler serves post creation requests
func (api *PostAPIHandler) CreatePostHandler() http.Handler {
	logInfo := api.logInfo
	logError := api.logError
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal := PrincipalFromContext(r.Context())

		request := models.CreatePostRequest{}
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			RespondWithError(w, http.StatusBadRequest, BadRequestBody)
			return
		}

		logInfo.Printf("Got new post creation request. Title: %s", request.Title)

		if validateError := validateCreatePostRequest(&request); validateError != nil {
			logInfo.Printf("Can't create post: invalid request. Error: %s", *validateError)
			RespondWithError(w, http.StatusBadRequest, validateError)
			return
		}

		status := models.PostStatus(request.Status)
		if request.Status == "" {
			status = models.StatusDraft
		}

		saveRequest := &postService.SaveRequest{
			Title:        strings.TrimSpace(request.Title),
			Slug:         request.Slug,
			Content:      request.Content,
			ContentHTML:  request.ContentHTML,
			HTMLFile:     request.HTMLFile,
			Summary:      request.Summary,
			ThumbnailURL: request.ThumbnailURL,
			CategoryID:   request.CategoryID,
			AuthorID:     principal.ID,
			Status:       status,
			Tags:         request.Tags,
		}
		createdPost, err := postService.Save(api.db, saveRequest)
		if err != nil {
			logError.Printf("Error saving post in database: %s", err)
			RespondWithError(w, http.StatusInternalServerError, TechnicalError)
			return
		}

		logInfo.Printf("Post saved. Post ID: %s, slug: %s", createdPost.ID, createdPost.Slug)
		RespondWithBody(w, http.StatusCreated, createdPost)
	})
}

// UpdatePostHandler - this handler serves post update requests
// Partial semantics: only keys present in the body are changed
func (api *PostAPIHandler) UpdatePostHandler() http.Handler {
	logInfo := api.logInfo
	logError := api.logError
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		postID := mux.Vars(r)["id"]
		if !postService.IsPostID(postID) {
			RespondWithError(w, http.StatusBadRequest, InvalidRequest)
			return
		}

		request := models.UpdatePostRequest{}
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			RespondWithError(w, http.StatusBadRequest, BadRequestBody)
			return
		}

		logInfo.Printf("Got new post update request. Post ID: %s", postID)

		if validateError := validateUpdatePostRequest(&request); validateError != nil {
			logInfo.Printf("Can't update post: invalid request. Post ID: %s. Error: %s", postID, *validateError)
			RespondWithError(w, http.StatusBadRequest, validateError)
			return
		}

		updateRequest := &postService.UpdateRequest{
			ID:           postID,
			Title:        request.Title,
			Slug:         request.Slug,
			Content:      request.Content,
			ContentHTML:  request.ContentHTML,
			HTMLFile:     request.HTMLFile,
			Summary:      request.Summary,
			ThumbnailURL: request.ThumbnailURL,
			CategoryID:   request.CategoryID,
			Status:       request.Status,
			Tags:         request.Tags,
		}
		updatedPost, err := postService.Update(api.db, updateRequest)
		if err != nil {
			if err == sql.ErrNoRows {
				RespondWithError(w, http.StatusNotFound, NoSuchPost)
				return
			}
			logError.Printf("Error updating post in database. Post ID: %s. Error: %s", postID, err)
			RespondWithError(w, http.StatusInternalServerError, TechnicalError)
			return
		}

		logInfo.Printf("Post updated. Post ID: %s", postID)
		RespondWithBody(w, http.StatusOK, updatedPost)
	})
}

// DeletePostHandler - this handler serves post deletion requests
// Tag assignments are deleted in the same transaction
func (api *PostAPIHandler) DeletePostHandler() http.Handler {
	logInfo := api.logInfo
	logError := api.logError
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		postID := mux.Vars(r)["id"]
		if !postService.IsPostID(postID) {
			RespondWithError(w, http.StatusBadRequest, InvalidRequest)
			return
		}

		logInfo.Printf("Got new post deletion request. Post ID: %s", postID)

		if err := postService.DeleteByID(api.db, postID); err != nil {
			if err == sql.ErrNoRows {
				RespondWithError(w, http.StatusNotFound, NoSuchPost)
				return
			}
			logError.Printf("Error deleting a post. Post ID: %s. Error: %s", postID, err)
			RespondWithError(w, http.StatusInternalServerError, TechnicalError)
			return
		}

		logInfo.Printf("Post deleted. Post ID: %s", postID)
		Respond(w, http.StatusOK)
	})
}

// IncrementViewHandler - this handler serves view counter increments
// Unauthenticated and best-effort: every call increments by one
func (api *PostAPIHandler) IncrementViewHandler() http.Handler {
	logError := api.logError
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		idOrSlug := mux.Vars(r)["id"]

		if err := postService.IncrementViews(api.db, idOrSlug); err != nil {
			if err == sql.ErrNoRows {
				RespondWithError(w, http.StatusNotFound, NoSuchPost)
				return
			}
			logError.Printf("Error incrementing view count. Post: %s. Error: %s", idOrSlug, err)
			RespondWithError(w, http.StatusInternalServerError, TechnicalError)
			return
		}

		Respond(w, http.StatusOK)
	})
}
