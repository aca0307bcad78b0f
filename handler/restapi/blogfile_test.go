package restapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/modo-agency/web/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFileRouter(t *testing.T) (*mux.Router, storage.Backend) {
	backend, err := storage.NewFS(t.TempDir(), "http://localhost:8080")
	require.NoError(t, err)

	api := NewBlogFileHandler(backend, discardLogger())
	router := mux.NewRouter()
	router.Handle("/blog/{filename}", api.GetFileHandler()).Methods("GET")
	return router, backend
}

func TestGetFileServesStoredDocument(t *testing.T) {
	router, backend := newFileRouter(t)
	require.NoError(t, backend.Save(context.Background(), "doc.html", []byte("<html>hi</html>"),
		"text/html; charset=utf-8"))

	r := httptest.NewRequest("GET", "/blog/doc.html", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<html>hi</html>", w.Body.String())
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "public, max-age=3600", w.Header().Get("Cache-Control"))
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "'unsafe-inline'")
}

func TestGetFileOfMissingDocument(t *testing.T) {
	router, _ := newFileRouter(t)

	r := httptest.NewRequest("GET", "/blog/nope.html", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetFileRejectsTraversal(t *testing.T) {
	router, _ := newFileRouter(t)

	r := httptest.NewRequest("GET", "/blog/..%2F..%2Fetc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.NotEqual(t, http.StatusOK, w.Code)
}
