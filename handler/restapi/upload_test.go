package restapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/modo-agency/web/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUploadHandler(t *testing.T) *UploadAPIHandler {
	db, _ := newMockDb(t)
	backend, err := storage.NewFS(t.TempDir(), "http://localhost:8080")
	require.NoError(t, err)
	return NewUploadAPIHandler(db, backend, discardLogger(), discardLogger())
}

func newUploadRequest(t *testing.T, target, filename, contentType string, data []byte) *http.Request {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	r := httptest.NewRequest("POST", target, &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	return r
}

func TestUploadImageStoresFileAndReturnsURL(t *testing.T) {
	api := newTestUploadHandler(t)

	r := newUploadRequest(t, "/api/upload", "photo.jpg", "image/jpeg", []byte("jpeg bytes"))
	w := httptest.NewRecorder()
	api.UploadImageHandler().ServeHTTP(w, r)

	require.Equal(t, http.StatusCreated, w.Code)
	var response struct {
		Body struct {
			URL      string `json:"url"`
			FileName string `json:"fileName"`
		} `json:"body"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Contains(t, response.Body.URL, "/files/")
	assert.True(t, strings.HasSuffix(response.Body.FileName, ".jpg"))
}

func TestUploadImageRejectsUnsupportedType(t *testing.T) {
	api := newTestUploadHandler(t)

	r := newUploadRequest(t, "/api/upload", "notes.txt", "text/plain", []byte("plain text"))
	w := httptest.NewRecorder()
	api.UploadImageHandler().ServeHTTP(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, *UnsupportedFileType, decodeErrorCode(t, w.Body.String()))
}

func TestUploadImageRejectsOversizedFile(t *testing.T) {
	api := newTestUploadHandler(t)

	oversized := bytes.Repeat([]byte("a"), int(MaxImageSize)+1)
	r := newUploadRequest(t, "/api/upload", "big.jpg", "image/jpeg", oversized)
	w := httptest.NewRecorder()
	api.UploadImageHandler().ServeHTTP(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, *FileTooLarge, decodeErrorCode(t, w.Body.String()))
}

func TestUploadImageRejectsMalformedBody(t *testing.T) {
	api := newTestUploadHandler(t)

	r := httptest.NewRequest("POST", "/api/upload", strings.NewReader("this is not a multipart body"))
	r.Header.Set("Content-Type", "multipart/form-data; boundary=xxx")
	w := httptest.NewRecorder()
	api.UploadImageHandler().ServeHTTP(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, *BadRequestBody, decodeErrorCode(t, w.Body.String()))
}

func TestUploadImageRequiresFilePart(t *testing.T) {
	api := newTestUploadHandler(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("note", "no file here"))
	require.NoError(t, mw.Close())
	r := httptest.NewRequest("POST", "/api/upload", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	api.UploadImageHandler().ServeHTTP(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, *NoFileProvided, decodeErrorCode(t, w.Body.String()))
}

func TestUploadHTMLRejectsNonHTMLUpload(t *testing.T) {
	api := newTestUploadHandler(t)

	r := newUploadRequest(t, "/api/upload-html", "photo.jpg", "image/jpeg", []byte("jpeg bytes"))
	w := httptest.NewRecorder()
	api.UploadHTMLHandler().ServeHTTP(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, *UnsupportedFileType, decodeErrorCode(t, w.Body.String()))
}

func TestUploadHTMLRejectsOversizedDocument(t *testing.T) {
	api := newTestUploadHandler(t)

	oversized := bytes.Repeat([]byte("a"), int(MaxDocumentSize)+1)
	r := newUploadRequest(t, "/api/upload-html", "doc.html", "text/html", oversized)
	w := httptest.NewRecorder()
	api.UploadHTMLHandler().ServeHTTP(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, *FileTooLarge, decodeErrorCode(t, w.Body.String()))
}

func TestReplaceHTMLRequiresPostID(t *testing.T) {
	api := newTestUploadHandler(t)

	r := newUploadRequest(t, "/api/upload-html", "doc.html", "text/html", []byte("<html></html>"))
	r.Method = "PUT"
	w := httptest.NewRecorder()
	api.ReplaceHTMLHandler().ServeHTTP(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, *InvalidRequest, decodeErrorCode(t, w.Body.String()))
}
