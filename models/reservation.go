package models

import "time"

// ReservationType - represents who is pre-reserving
type ReservationType string

const (
	ReservationClient     ReservationType = "client"
	ReservationAgency     ReservationType = "agency"
	ReservationFreelancer ReservationType = "freelancer"
)

// ValidReservationType - reports whether t is one of the known types
func ValidReservationType(t string) bool {
	switch ReservationType(t) {
	case ReservationClient, ReservationAgency, ReservationFreelancer:
		return true
	}
	return false
}

// Reservation - represents a pre-reservation. Write-once, admin-read-only
type Reservation struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Phone     string          `json:"phone"`
	Type      ReservationType `json:"type"`
	CreatedAt time.Time       `json:"created_at"`
}

// SubmitReservationRequest - represents unauthenticated pre-reservation submission
type SubmitReservationRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Type  string `json:"type"`
}
