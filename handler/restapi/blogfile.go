package restapi

import (
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/modo-agency/web/storage"
)

// BlogFileHandler - serves stored HTML documents for iframe embedding
type BlogFileHandler struct {
	storage  storage.Backend
	logError *log.Logger
}

func NewBlogFileHandler(backend storage.Backend, logError *log.Logger) *BlogFileHandler {
	return &BlogFileHandler{storage: backend, logError: logError}
}

// GetFileHandler - this handler serves GET requests for stored documents
// The CSP deliberately allows inline scripts and styles: uploaded documents
// are self-contained pages carrying their own
func (api *BlogFileHandler) GetFileHandler() http.Handler {
	logError := api.logError
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		filename := mux.Vars(r)["filename"]
		if filename == "" || strings.Contains(filename, "..") || strings.Contains(filename, "/") {
			RespondWithError(w, http.StatusBadRequest, InvalidRequest)
			return
		}

		data, err := api.storage.Read(r.Context(), filename)
		if err != nil {
			if err == storage.ErrNotFound {
				Respond(w, http.StatusNotFound)
				return
			}
			logError.Printf("Error reading stored file. Key: %s. Error: %s", filename, err)
			RespondWithError(w, http.StatusInternalServerError, TechnicalError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Content-Security-Policy",
			"default-src 'self' data: https:; script-src 'unsafe-inline' 'self'; style-src 'unsafe-inline' 'self' https:; img-src * data:")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	})
}
