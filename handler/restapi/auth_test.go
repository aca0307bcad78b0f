package restapi

import (
	"database/sql"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/modo-agency/web/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testSigningKey = []byte("test-signing-key")

func newMockDb(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func newTestAuthHandler(db *sql.DB) *AuthAPIHandler {
	return NewAuthAPIHandler(db, testSigningKey, false, discardLogger(), discardLogger())
}

func testAdmin() *models.Admin {
	return &models.Admin{
		ID:    "123e4567-e89b-12d3-a456-426614174000",
		Email: "admin@example.com",
		Name:  "Admin",
		Role:  models.RoleAdmin,
	}
}

func TestSessionTokenRoundTrip(t *testing.T) {
	admin := testAdmin()

	token, err := MintSessionToken(admin, testSigningKey, time.Hour)
	require.NoError(t, err)

	claims, err := ParseSessionToken(token, testSigningKey)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, claims.UserID)
	assert.Equal(t, admin.Email, claims.Email)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestParseSessionTokenRejectsExpiredToken(t *testing.T) {
	token, err := MintSessionToken(testAdmin(), testSigningKey, -time.Hour)
	require.NoError(t, err)

	_, err = ParseSessionToken(token, testSigningKey)
	assert.Error(t, err)
}

func TestParseSessionTokenRejectsWrongKey(t *testing.T) {
	token, err := MintSessionToken(testAdmin(), testSigningKey, time.Hour)
	require.NoError(t, err)

	_, err = ParseSessionToken(token, []byte("another-key"))
	assert.Error(t, err)
}

func TestParseSessionTokenRejectsGarbage(t *testing.T) {
	_, err := ParseSessionToken("not-a-token", testSigningKey)
	assert.Error(t, err)
}

func expectGetByEmail(mock sqlmock.Sqlmock, email, passwordHash string) {
	admin := testAdmin()
	mock.ExpectQuery("select id, email, name, role, password_hash from blog_admins where email = $1").
		WithArgs(email).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "role", "password_hash"}).
			AddRow(admin.ID, email, admin.Name, string(admin.Role), passwordHash))
}

func TestLoginSetsSessionCookie(t *testing.T) {
	db, mock := newMockDb(t)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)
	expectGetByEmail(mock, "admin@example.com", string(passwordHash))

	api := newTestAuthHandler(db)
	r := httptest.NewRequest("POST", "/api/auth/login",
		strings.NewReader(`{"email":"admin@example.com","password":"correct horse"}`))
	w := httptest.NewRecorder()
	api.LoginHandler().ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	claims, err := ParseSessionToken(cookies[0].Value, testSigningKey)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", claims.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginWithWrongPassword(t *testing.T) {
	db, mock := newMockDb(t)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)
	expectGetByEmail(mock, "admin@example.com", string(passwordHash))

	api := newTestAuthHandler(db)
	r := httptest.NewRequest("POST", "/api/auth/login",
		strings.NewReader(`{"email":"admin@example.com","password":"wrong"}`))
	w := httptest.NewRecorder()
	api.LoginHandler().ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, w.Result().Cookies())
}

func TestLoginWithUnknownEmail(t *testing.T) {
	db, mock := newMockDb(t)
	mock.ExpectQuery("select id, email, name, role, password_hash from blog_admins where email = $1").
		WithArgs("nobody@example.com").
		WillReturnError(sql.ErrNoRows)

	api := newTestAuthHandler(db)
	r := httptest.NewRequest("POST", "/api/auth/login",
		strings.NewReader(`{"email":"nobody@example.com","password":"whatever"}`))
	w := httptest.NewRecorder()
	api.LoginHandler().ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginWithIncompleteCredentials(t *testing.T) {
	db, _ := newMockDb(t)

	api := newTestAuthHandler(db)
	r := httptest.NewRequest("POST", "/api/auth/login", strings.NewReader(`{"email":"admin@example.com"}`))
	w := httptest.NewRecorder()
	api.LoginHandler().ServeHTTP(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionAuthenticationWithoutToken(t *testing.T) {
	db, _ := newMockDb(t)

	api := newTestAuthHandler(db)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not be reached")
	})
	r := httptest.NewRequest("POST", "/api/posts", nil)
	w := httptest.NewRecorder()
	api.SessionAuthentication(next).ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSessionAuthenticationPassesPrincipal(t *testing.T) {
	db, mock := newMockDb(t)
	admin := testAdmin()
	mock.ExpectQuery("select id, email, name, role, password_hash from blog_admins where id = $1").
		WithArgs(admin.ID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "role", "password_hash"}).
			AddRow(admin.ID, admin.Email, admin.Name, string(admin.Role), "hash"))

	token, err := MintSessionToken(admin, testSigningKey, time.Hour)
	require.NoError(t, err)

	api := newTestAuthHandler(db)
	var principal *models.Admin
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	r := httptest.NewRequest("POST", "/api/posts", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	w := httptest.NewRecorder()
	api.SessionAuthentication(next).ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, principal)
	assert.Equal(t, admin.ID, principal.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionAuthenticationAcceptsHeaderToken(t *testing.T) {
	db, mock := newMockDb(t)
	admin := testAdmin()
	mock.ExpectQuery("select id, email, name, role, password_hash from blog_admins where id = $1").
		WithArgs(admin.ID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "role", "password_hash"}).
			AddRow(admin.ID, admin.Email, admin.Name, string(admin.Role), "hash"))

	token, err := MintSessionToken(admin, testSigningKey, time.Hour)
	require.NoError(t, err)

	api := newTestAuthHandler(db)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r := httptest.NewRequest("POST", "/api/posts", nil)
	r.Header.Set(SessionHeaderName, token)
	w := httptest.NewRecorder()
	api.SessionAuthentication(next).ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogoutClearsCookie(t *testing.T) {
	db, _ := newMockDb(t)

	api := newTestAuthHandler(db)
	r := httptest.NewRequest("POST", "/api/auth/logout", nil)
	w := httptest.NewRecorder()
	api.LogoutHandler().ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookieName, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.True(t, cookies[0].MaxAge < 0)
}

func TestSessionHandlerWithoutSession(t *testing.T) {
	db, _ := newMockDb(t)

	api := newTestAuthHandler(db)
	r := httptest.NewRequest("GET", "/api/auth/session", nil)
	w := httptest.NewRecorder()
	api.SessionHandler().ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":false`)
}
