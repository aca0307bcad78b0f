package restapi

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/modo-agency/web/models"
	"github.com/modo-agency/web/service/reservationService"
)

// ReservationAPIHandler - used for dependency injection
type ReservationAPIHandler struct {
	db       *sql.DB
	logInfo  *log.Logger
	logError *log.Logger
}

func NewReservationAPIHandler(db *sql.DB, logInfo, logError *log.Logger) *ReservationAPIHandler {
	return &ReservationAPIHandler{
		db:       db,
		logInfo:  logInfo,
		logError: logError,
	}
}

// error codes for this API
var (
	// IncompleteReservation - name or phone is missing
	IncompleteReservation = models.NewRequestErrorCode("INCOMPLETE_RESERVATION")
	// InvalidReservationType - type is not client, agency or freelancer
	InvalidReservationType = models.NewRequestErrorCode("INVALID_RESERVATION_TYPE")
)

const (
	// DefaultReservationsLimit - listing size when the request doesn't carry one
	DefaultReservationsLimit int = 50
	// MaxReservationsLimit - maximum reservations that can be requested at once
	MaxReservationsLimit int = 200
)

// SubmitReservationHandler - this handler serves unauthenticated pre-reservation
// submissions
func (api *ReservationAPIHandler) SubmitReservationHandler() http.Handler {
	logInfo := api.logInfo
	logError := api.logError
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		request := models.SubmitReservationRequest{}
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			RespondWithError(w, http.StatusBadRequest, BadRequestBody)
			return
		}

		if request.Name == "" || request.Phone == "" {
			RespondWithError(w, http.StatusBadRequest, IncompleteReservation)
			return
		}
		if !models.ValidReservationType(request.Type) {
			RespondWithError(w, http.StatusBadRequest, InvalidReservationType)
			return
		}

		savedReservation, err := reservationService.Save(api.db, request.Name, request.Phone,
			models.ReservationType(request.Type))
		if err != nil {
			logError.Printf("Error saving reservation in database: %s", err)
			RespondWithError(w, http.StatusInternalServerError, TechnicalError)
			return
		}

		logInfo.Printf("Reservation saved. Reservation ID: %s, type: %s",
			savedReservation.ID, savedReservation.Type)
		RespondWithBody(w, http.StatusCreated, savedReservation)
	})
}

// GetReservationsHandler - this handler serves admin reservation listing requests
func (api *ReservationAPIHandler) GetReservationsHandler() http.Handler {
	logError := api.logError
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limit := DefaultReservationsLimit
		if limitAsString := r.FormValue("limit"); limitAsString != "" {
			limitAsInt, err := strconv.Atoi(limitAsString)
			if err != nil || limitAsInt < 1 || limitAsInt > MaxReservationsLimit {
				RespondWithError(w, http.StatusBadRequest, InvalidRequest)
				return
			}
			limit = limitAsInt
		}

		reservations, err := reservationService.GetAll(api.db, r.FormValue("type"), r.FormValue("sort"), limit)
		if err != nil {
			logError.Printf("Error retrieving reservations from database: %s", err)
			RespondWithError(w, http.StatusInternalServerError, TechnicalError)
			return
		}

		RespondWithBody(w, http.StatusOK, reservations)
	})
}
