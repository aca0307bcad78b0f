package restapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/modo-agency/web/models"
	"github.com/modo-agency/web/service/userService"
	"golang.org/x/crypto/bcrypt"
)

// ctxPrincipalKey - context key type for the authenticated principal
type ctxPrincipalKey string

// CtxPrincipalKey - context key under which the middleware stores the principal
const CtxPrincipalKey = ctxPrincipalKey("principal")

const (
	// SessionCookieName - HTTP-only cookie carrying the session token
	SessionCookieName = "admin_session"
	// SessionHeaderName - alternate transport for the same signed token, used
	// by cross-context scripts that cannot rely on the cookie
	SessionHeaderName = "x-admin-session"

	// SessionTTL - session token validity
	SessionTTL = 7 * 24 * time.Hour
)

// error codes for this API
var (
	// WrongCredentials - admin inputs wrong email or password while logging in
	WrongCredentials = models.NewRequestErrorCode("WRONG_CREDENTIALS")
	// IncompleteCredentials - admin does not input both email and password
	IncompleteCredentials = models.NewRequestErrorCode("INCOMPLETE_CREDENTIALS")
)

// AuthAPIHandler - used for dependency injection
type AuthAPIHandler struct {
	db            *sql.DB
	signingKey    []byte
	secureCookies bool
	logInfo       *log.Logger
	logError      *log.Logger
}

func NewAuthAPIHandler(db *sql.DB, signingKey []byte, secureCookies bool, logInfo, logError *log.Logger) *AuthAPIHandler {
	return &AuthAPIHandler{
		db:            db,
		signingKey:    signingKey,
		secureCookies: secureCookies,
		logInfo:       logInfo,
		logError:      logError,
	}
}

// MintSessionToken - issues a signed session token for the admin
// Claims carry the principal's id, email and role; the signature is what
// makes the token trustworthy when it comes back via cookie or header
func MintSessionToken(admin *models.Admin, signingKey []byte, ttl time.Duration) (string, error) {
	claims := &models.SessionClaims{
		UserID: admin.ID,
		Email:  admin.Email,
		Role:   admin.Role,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(ttl).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
}

// ParseSessionToken - validates signature and expiry and returns the claims
// An expired or malformed token is indistinguishable from an absent one for
// callers: both yield an error
func ParseSessionToken(tokenString string, signingKey []byte) (*models.SessionClaims, error) {
	claims := &models.SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return signingKey, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.NewValidationError("invalid session token", jwt.ValidationErrorClaimsInvalid)
	}
	return claims, nil
}

// currentPrincipal - resolves the admin behind the request, or nil
// The token is read from the session cookie first, then from the session
// header. The principal's current role is re-read from the database so a
// deleted or demoted admin loses access even with a live token
func (api *AuthAPIHandler) currentPrincipal(r *http.Request) *models.Admin {
	var tokenString string
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		tokenString = cookie.Value
	} else if header := r.Header.Get(SessionHeaderName); header != "" {
		tokenString = header
	}
	if tokenString == "" {
		return nil
	}

	claims, err := ParseSessionToken(tokenString, api.signingKey)
	if err != nil {
		return nil
	}

	admin, err := userService.GetByID(api.db, claims.UserID)
	if err != nil {
		return nil
	}
	return admin
}

// SessionAuthentication - middleware guarding privileged routes
// Responds 401 without a valid session and 403 for non-admin roles;
// otherwise stores the principal in the request context
func (api *AuthAPIHandler) SessionAuthentication(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal := api.currentPrincipal(r)
		if principal == nil {
			api.logInfo.Printf("Rejecting %s %s: no valid session", r.Method, r.URL.Path)
			RespondWithError(w, http.StatusUnauthorized, NotAuthorized)
			return
		}
		if principal.Role != models.RoleAdmin {
			api.logInfo.Printf("Rejecting %s %s: principal %s has role %s", r.Method, r.URL.Path,
				principal.ID, principal.Role)
			RespondWithError(w, http.StatusForbidden, NoPermissions)
			return
		}

		ctx := context.WithValue(r.Context(), CtxPrincipalKey, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// PrincipalFromContext - returns the principal stored by SessionAuthentication
func PrincipalFromContext(ctx context.Context) *models.Admin {
	principal, _ := ctx.Value(CtxPrincipalKey).(*models.Admin)
	return principal
}

func (api *AuthAPIHandler) setSessionCookie(w http.ResponseWriter, token string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   api.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// LoginHandler - this handler serves admin login requests
func (api *AuthAPIHandler) LoginHandler() http.Handler {
	logInfo := api.logInfo
	logError := api.logError
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		request := models.LoginRequest{}
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			RespondWithError(w, http.StatusBadRequest, BadRequestBody)
			return
		}

		if len(request.Email) == 0 || len(request.Password) == 0 {
			RespondWithError(w, http.StatusBadRequest, IncompleteCredentials)
			return
		}

		admin, err := userService.GetByEmail(api.db, request.Email)
		if err != nil {
			if err == sql.ErrNoRows {
				logInfo.Printf("Login failed: no admin with email %s", request.Email)
				RespondWithError(w, http.StatusUnauthorized, WrongCredentials)
				return
			}
			logError.Printf("Error retrieving admin from database: %s", err)
			RespondWithError(w, http.StatusInternalServerError, TechnicalError)
			return
		}

		if err = bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(request.Password)); err != nil {
			logInfo.Printf("Login failed: wrong password for %s", request.Email)
			RespondWithError(w, http.StatusUnauthorized, WrongCredentials)
			return
		}

		token, err := MintSessionToken(admin, api.signingKey, SessionTTL)
		if err != nil {
			logError.Printf("Error minting session token: %s", err)
			RespondWithError(w, http.StatusInternalServerError, TechnicalError)
			return
		}

		api.setSessionCookie(w, token, int(SessionTTL.Seconds()))

		logInfo.Printf("Admin %s logged in", admin.Email)
		RespondWithBody(w, http.StatusOK, admin)
	})
}

// LogoutHandler - this handler clears the session cookie. Idempotent:
// logging out without a session is still a success
func (api *AuthAPIHandler) LogoutHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		api.setSessionCookie(w, "", -1)
		Respond(w, http.StatusOK)
	})
}

// SessionHandler - this handler serves session introspection requests
// Always responds 200; an invalid or missing session yields authenticated=false
func (api *AuthAPIHandler) SessionHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal := api.currentPrincipal(r)
		RespondWithBody(w, http.StatusOK, models.SessionInfo{
			User:          principal,
			Authenticated: principal != nil,
		})
	})
}
