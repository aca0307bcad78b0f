package restapi

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"regexp"
	"strings"

	"github.com/gorilla/mux"
	"github.com/modo-agency/web/models"
	"github.com/modo-agency/web/service/inquiryService"
)

// ContactAPIHandler - used for dependency injection
type ContactAPIHandler struct {
	db       *sql.DB
	logInfo  *log.Logger
	logError *log.Logger
}

func NewContactAPIHandler(db *sql.DB, logInfo, logError *log.Logger) *ContactAPIHandler {
	return &ContactAPIHandler{
		db:       db,
		logInfo:  logInfo,
		logError: logError,
	}
}

// error codes for this API
var (
	// IncompleteInquiry - required inquiry fields are missing
	IncompleteInquiry = models.NewRequestErrorCode("INCOMPLETE_INQUIRY")
	// InvalidInquiryEmail - email doesn't look like an email
	InvalidInquiryEmail = models.NewRequestErrorCode("INVALID_EMAIL")
	// MissingCompany - partnership inquiries must carry a company name
	MissingCompany = models.NewRequestErrorCode("MISSING_COMPANY")
	// InvalidInquiryStatus - status is not a known triage status
	InvalidInquiryStatus = models.NewRequestErrorCode("INVALID_INQUIRY_STATUS")
	// NoSuchInquiry - inquiry does not exist
	NoSuchInquiry = models.NewRequestErrorCode("NO_SUCH_INQUIRY")
)

// DefaultInquiriesPerPage - page size when the listing request doesn't carry one
const DefaultInquiriesPerPage int = 20

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func validateSubmitInquiryRequest(request *models.SubmitInquiryRequest) models.RequestErrorCode {
	if request.Name == "" || request.Email == "" || request.Subject == "" || request.Message == "" {
		return IncompleteInquiry
	}
	if !emailPattern.MatchString(request.Email) {
		return InvalidInquiryEmail
	}
	if models.InquiryType(request.Type) == models.InquiryPartnership && strings.TrimSpace(request.Company) == "" {
		return MissingCompany
	}
	return nil
}

// SubmitInquiryHandler - this handler serves unauthenticated inquiry submissions
func (api *ContactAPIHandler) SubmitInquiryHandler() http.Handler {
	logInfo := api.logInfo
	logError := api.logError
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		request := models.SubmitInquiryRequest{}
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			RespondWithError(w, http.StatusBadRequest, BadRequestBody)
			return
		}

		if validateError := validateSubmitInquiryRequest(&request); validateError != nil {
			logInfo.Printf("Can't submit inquiry: invalid request. Error: %s", *validateError)
			RespondWithError(w, http.StatusBadRequest, validateError)
			return
		}

		inquiryType := models.InquiryType(request.Type)
		if request.Type == "" {
			inquiryType = models.InquiryGeneral
		}

		savedInquiry, err := inquiryService.Save(api.db, &inquiryService.SaveRequest{
			Type:    inquiryType,
			Name:    request.Name,
			Email:   request.Email,
			Company: request.Company,
			Phone:   request.Phone,
			Subject: request.Subject,
			Message: request.Message,
		})
		if err != nil {
			logError.Printf("Error saving inquiry in database: %s", err)
			RespondWithError(w, http.StatusInternalServerError, TechnicalError)
			return
		}

		logInfo.Printf("Inquiry saved. Inquiry ID: %s, type: %s", savedInquiry.ID, savedInquiry.Type)
		RespondWithBody(w, http.StatusCreated, savedInquiry)
	})
}

// GetInquiriesHandler - this handler serves admin inquiry listing requests
func (api *ContactAPIHandler) GetInquiriesHandler() http.Handler {
	logError := api.logError
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, limit, validateError := parsePageParams(r)
		if validateError != nil {
			RespondWithError(w, http.StatusBadRequest, validateError)
			return
		}
		if r.FormValue("limit") == "" {
			limit = DefaultInquiriesPerPage
		}

		inquiries, total, err := inquiryService.GetInRange(api.db, &inquiryService.Filter{
			Status: r.FormValue("status"),
			Type:   r.FormValue("type"),
			Page:   page,
			Limit:  limit,
		})
		if err != nil {
			logError.Printf("Error retrieving inquiries from database: %s", err)
			RespondWithError(w, http.StatusInternalServerError, TechnicalError)
			return
		}

		RespondWithBody(w, http.StatusOK, models.InquiryList{
			Data:       inquiries,
			Pagination: models.NewPagination(page, limit, total),
		})
	})
}

// GetInquiryHandler - this handler serves admin GET requests for one inquiry
func (api *ContactAPIHandler) GetInquiryHandler() http.Handler {
	logError := api.logError
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inquiryID := mux.Vars(r)["id"]

		inquiry, err := inquiryService.GetByID(api.db, inquiryID)
		if err != nil {
			if err == sql.ErrNoRows {
				RespondWithError(w, http.StatusNotFound, NoSuchInquiry)
				return
			}
			logError.Printf("Error retrieving inquiry from database. Inquiry ID: %s. Error: %s", inquiryID, err)
			RespondWithError(w, http.StatusInternalServerError, TechnicalError)
			return
		}

		RespondWithBody(w, http.StatusOK, inquiry)
	})
}

// UpdateInquiryHandler - this handler serves admin triage requests
// Only keys present in the body are changed
func (api *ContactAPIHandler) UpdateInquiryHandler() http.Handler {
	logInfo := api.logInfo
	logError := api.logError
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inquiryID := mux.Vars(r)["id"]

		request := models.UpdateInquiryRequest{}
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			RespondWithError(w, http.StatusBadRequest, BadRequestBody)
			return
		}

		if request.Status != nil && !models.ValidInquiryStatus(*request.Status) {
			RespondWithError(w, http.StatusBadRequest, InvalidInquiryStatus)
			return
		}

		updatedInquiry, err := inquiryService.UpdateByID(api.db, inquiryID, request.Status, request.AdminNote)
		if err != nil {
			if err == sql.ErrNoRows {
				RespondWithError(w, http.StatusNotFound, NoSuchInquiry)
				return
			}
			logError.Printf("Error updating inquiry in database. Inquiry ID: %s. Error: %s", inquiryID, err)
			RespondWithError(w, http.StatusInternalServerError, TechnicalError)
			return
		}

		logInfo.Printf("Inquiry updated. Inquiry ID: %s", inquiryID)
		RespondWithBody(w, http.StatusOK, updatedInquiry)
	})
}

// DeleteInquiryHandler - this handler serves admin inquiry deletion requests
func (api *ContactAPIHandler) DeleteInquiryHandler() http.Handler {
	logInfo := api.logInfo
	logError := api.logError
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inquiryID := mux.Vars(r)["id"]

		if err := inquiryService.DeleteByID(api.db, inquiryID); err != nil {
			if err == sql.ErrNoRows {
				RespondWithError(w, http.StatusNotFound, NoSuchInquiry)
				return
			}
			logError.Printf("Error deleting inquiry. Inquiry ID: %s. Error: %s", inquiryID, err)
			RespondWithError(w, http.StatusInternalServerError, TechnicalError)
			return
		}

		logInfo.Printf("Inquiry deleted. Inquiry ID: %s", inquiryID)
		Respond(w, http.StatusOK)
	})
}
