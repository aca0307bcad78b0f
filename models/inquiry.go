package models

import "time"

// InquiryType - represents contact inquiry type
type InquiryType string

const (
	// InquiryGeneral - general question
	InquiryGeneral InquiryType = "general"
	// InquiryPartnership - partnership request, requires a company name
	InquiryPartnership InquiryType = "partnership"
)

// InquiryStatus - represents inquiry triage status
// Transitions are unguarded: an admin may set any status from any status
type InquiryStatus string

const (
	InquiryPending InquiryStatus = "pending"
	InquiryRead    InquiryStatus = "read"
	InquiryReplied InquiryStatus = "replied"
	InquiryClosed  InquiryStatus = "closed"
)

// ValidInquiryStatus - reports whether s is one of the known statuses
func ValidInquiryStatus(s string) bool {
	switch InquiryStatus(s) {
	case InquiryPending, InquiryRead, InquiryReplied, InquiryClosed:
		return true
	}
	return false
}

// Inquiry - represents a contact inquiry
type Inquiry struct {
	ID        string        `json:"id"`
	Type      InquiryType   `json:"type"`
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	Company   NullString    `json:"company"`
	Phone     NullString    `json:"phone"`
	Subject   string        `json:"subject"`
	Message   string        `json:"message"`
	Status    InquiryStatus `json:"status"`
	AdminNote NullString    `json:"admin_note"`
	CreatedAt time.Time     `json:"created_at"`
}

// SubmitInquiryRequest - represents unauthenticated inquiry submission
type SubmitInquiryRequest struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// UpdateInquiryRequest - represents admin triage request
type UpdateInquiryRequest struct {
	Status    *string `json:"status"`
	AdminNote *string `json:"admin_note"`
}
