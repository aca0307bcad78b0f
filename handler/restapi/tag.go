package restapi

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/modo-agency/web/models"
	"github.com/modo-agency/web/service/tagService"
)

// TagAPIHandler - used for dependency injection
type TagAPIHandler struct {
	db       *sql.DB
	logInfo  *log.Logger
	logError *log.Logger
}

func NewTagAPIHandler(db *sql.DB, logInfo, logError *log.Logger) *TagAPIHandler {
	return &TagAPIHandler{
		db:       db,
		logInfo:  logInfo,
		logError: logError,
	}
}

// error codes for this API
var (
	// InvalidTagName - invalid tag name
	InvalidTagName = models.NewRequestErrorCode("INVALID_TAG_NAME")
	// NoSuchTag - tag does not exist
	NoSuchTag = models.NewRequestErrorCode("NO_SUCH_TAG")
	// TagInUse - tag can't be deleted while posts still carry it
	TagInUse = models.NewRequestErrorCode("TAG_IN_USE")
)

// MaxTagNameLen - maximum tag name length
const MaxTagNameLen int = 50

func validateTagName(name string) models.RequestErrorCode {
	nameLen := len([]rune(name))
	if nameLen == 0 || nameLen > MaxTagNameLen {
		return InvalidTagName
	}
	return nil
}

// GetTagsHandler - this handler serves GET requests for all tags
// ?withCount=true attaches per-tag post counts and sorts by usage
func (api *TagAPIHandler) GetTagsHandler() http.Handler {
	logError := api.logError
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var tags []models.Tag
		var err error
		if r.FormValue("withCount") == "true" {
			tags, err = tagService.GetAllWithCount(api.db)
		} else {
			tags, err = tagService.GetAll(api.db)
		}
		if err != nil {
			logError.Printf("Error retrieving tags from database: %s", err)
			RespondWithError(w, http.StatusInternalServerError, TechnicalError)
			return
		}

		RespondWithBody(w, http.StatusOK, tags)
	})
}

// CreateTagHandler - this handler serves tag creation requests
// Creation is idempotent: posting an existing name responds 200 with the
// existing tag instead of 201
func (api *TagAPIHandler) CreateTagHandler() http.Handler {
	logInfo := api.logInfo
	logError := api.logError
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		request := models.CreateTagRequest{}
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			RespondWithError(w, http.StatusBadRequest, BadRequestBody)
			return
		}

		request.Name = strings.TrimSpace(request.Name)
		if validateError := validateTagName(request.Name); validateError != nil {
			RespondWithError(w, http.StatusBadRequest, validateError)
			return
		}

		savedTag, existed, err := tagService.Save(api.db, request.Name)
		if err != nil {
			logError.Printf("Error saving tag in database. Tag: %s. Error: %s", request.Name, err)
			RespondWithError(w, http.StatusInternalServerError, TechnicalError)
			return
		}

		if existed {
			RespondWithBody(w, http.StatusOK, savedTag)
			return
		}

		logInfo.Printf("Tag saved. Tag ID: %s, name: %s", savedTag.ID, savedTag.Name)
		RespondWithBody(w, http.StatusCreated, savedTag)
	})
}

// DeleteTagHandler - this handler serves tag deletion requests
func (api *TagAPIHandler) DeleteTagHandler() http.Handler {
	logInfo := api.logInfo
	logError := api.logError
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tagID := mux.Vars(r)["id"]

		if err := tagService.DeleteByID(api.db, tagID); err != nil {
			switch err {
			case tagService.ErrTagInUse:
				RespondWithError(w, http.StatusConflict, TagInUse)
			case sql.ErrNoRows:
				RespondWithError(w, http.StatusNotFound, NoSuchTag)
			default:
				logError.Printf("Error deleting tag. Tag ID: %s. Error: %s", tagID, err)
				RespondWithError(w, http.StatusInternalServerError, TechnicalError)
			}
			return
		}

		logInfo.Printf("Tag deleted. Tag ID: %s", tagID)
		Respond(w, http.StatusOK)
	})
}
