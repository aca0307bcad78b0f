package restapi

import (
	"database/sql"
	"log"
	"net/http"

	"github.com/modo-agency/web/service/categoryService"
)

// CategoryAPIHandler - used for dependency injection
type CategoryAPIHandler struct {
	db       *sql.DB
	logError *log.Logger
}

func NewCategoryAPIHandler(db *sql.DB, logError *log.Logger) *CategoryAPIHandler {
	return &CategoryAPIHandler{db: db, logError: logError}
}

// GetCategoriesHandler - this handler serves GET requests for all categories
func (api *CategoryAPIHandler) GetCategoriesHandler() http.Handler {
	logError := api.logError
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		categories, err := categoryService.GetAll(api.db)
		if err != nil {
			logError.Printf("Error retrieving categories from database: %s", err)
			RespondWithError(w, http.StatusInternalServerError, TechnicalError)
			return
		}

		RespondWithBody(w, http.StatusOK, categories)
	})
}
