package reservationService

import (
	"database/sql"

	"github.com/modo-agency/web/models"
)

const reservationsAllFields = "id, name, phone, type, created_at"

// Save - stores a new pre-reservation
func Save(db *sql.DB, name, phone string, reservationType models.ReservationType) (*models.Reservation, error) {
	savedReservation := &models.Reservation{}
	row := db.QueryRow("insert into pre_reservations (name, phone, type) values ($1, $2, $3) "+
		"returning "+reservationsAllFields, name, phone, reservationType)
	if err := row.Scan(&savedReservation.ID, &savedReservation.Name, &savedReservation.Phone,
		&savedReservation.Type, &savedReservation.CreatedAt); err != nil {
		return nil, err
	}
	return savedReservation, nil
}

// GetAll - retrieves reservations, optionally filtered by type
// sort is one of latest (default), oldest, name
func GetAll(db *sql.DB, reservationType, sort string, limit int) ([]models.Reservation, error) {
	query := "select " + reservationsAllFields + " from pre_reservations"
	args := make([]interface{}, 0, 2)

	if reservationType != "" && reservationType != "all" {
		args = append(args, reservationType)
		query += " where type = $1"
	}

	switch sort {
	case "oldest":
		query += " order by created_at asc"
	case "name":
		query += " order by name asc"
	default:
		query += " order by created_at desc"
	}

	args = append(args, limit)
	if len(args) == 1 {
		query += " limit $1"
	} else {
		query += " limit $2"
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reservations []models.Reservation
	for rows.Next() {
		var currentReservation models.Reservation
		if err = rows.Scan(&currentReservation.ID, &currentReservation.Name, &currentReservation.Phone,
			&currentReservation.Type, &currentReservation.CreatedAt); err != nil {
			return nil, err
		}
		reservations = append(reservations, currentReservation)
	}

	return reservations, rows.Err()
}
