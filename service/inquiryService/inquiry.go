package inquiryService

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/modo-agency/web/models"
)

const (
	// inquiriesInsertFields - fields that should be filled while inserting a new entity
	inquiriesInsertFields = "type, name, email, company, phone, subject, message, status"
	// inquiriesAllFields - all entity fields
	inquiriesAllFields = "id, type, name, email, company, phone, subject, message, status, admin_note, created_at"
)

// SaveRequest - represents an inquiry submission
type SaveRequest struct {
	Type    models.InquiryType
	Name    string
	Email   string
	Company string
	Phone   string
	Subject string
	Message string
}

// Filter - describes an inquiry listing request. Page is 1-based
type Filter struct {
	Status string
	Type   string
	Page   int
	Limit  int
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanInquiry(row rowScanner, inquiry *models.Inquiry) error {
	return row.Scan(&inquiry.ID, &inquiry.Type, &inquiry.Name, &inquiry.Email, &inquiry.Company,
		&inquiry.Phone, &inquiry.Subject, &inquiry.Message, &inquiry.Status, &inquiry.AdminNote,
		&inquiry.CreatedAt)
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// Save - stores a new inquiry with status pending
func Save(db *sql.DB, request *SaveRequest) (*models.Inquiry, error) {
	savedInquiry := &models.Inquiry{}
	row := db.QueryRow("insert into contact_inquiries ("+inquiriesInsertFields+") "+
		"values ($1, $2, $3, $4, $5, $6, $7, 'pending') returning "+inquiriesAllFields,
		request.Type, request.Name, request.Email, nullable(request.Company),
		nullable(request.Phone), request.Subject, request.Message)
	if err := scanInquiry(row, savedInquiry); err != nil {
		return nil, err
	}
	return savedInquiry, nil
}

// GetInRange - retrieves inquiries matching the filter, newest first, plus
// the total count before paging
func GetInRange(db *sql.DB, filter *Filter) ([]models.Inquiry, int64, error) {
	conditions := make([]string, 0)
	args := make([]interface{}, 0)

	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		conditions = append(conditions, fmt.Sprintf("type = $%d", len(args)))
	}

	where := ""
	if len(conditions) != 0 {
		where = " where " + strings.Join(conditions, " and ")
	}

	var total int64
	if err := db.QueryRow("select count(*) from contact_inquiries"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, (filter.Page-1)*filter.Limit, filter.Limit)
	query := "select " + inquiriesAllFields + " from contact_inquiries" + where +
		fmt.Sprintf(" order by created_at desc offset $%d limit $%d", len(args)-1, len(args))

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var inquiries []models.Inquiry
	for rows.Next() {
		var currentInquiry models.Inquiry
		if err = scanInquiry(rows, &currentInquiry); err != nil {
			return nil, 0, err
		}
		inquiries = append(inquiries, currentInquiry)
	}

	return inquiries, total, rows.Err()
}

// GetByID - retrieves one inquiry
func GetByID(db *sql.DB, inquiryID string) (*models.Inquiry, error) {
	inquiry := &models.Inquiry{}
	row := db.QueryRow("select "+inquiriesAllFields+" from contact_inquiries where id = $1", inquiryID)
	if err := scanInquiry(row, inquiry); err != nil {
		return nil, err
	}
	return inquiry, nil
}

// UpdateByID - sets status and/or admin note. Transitions are deliberately
// unguarded: any status can be set from any status by explicit admin action
func UpdateByID(db *sql.DB, inquiryID string, status, adminNote *string) (*models.Inquiry, error) {
	if status == nil && adminNote == nil {
		return GetByID(db, inquiryID)
	}

	assignments := make([]string, 0, 2)
	args := make([]interface{}, 0, 3)

	if status != nil {
		args = append(args, *status)
		assignments = append(assignments, fmt.Sprintf("status = $%d", len(args)))
	}
	if adminNote != nil {
		args = append(args, nullable(*adminNote))
		assignments = append(assignments, fmt.Sprintf("admin_note = $%d", len(args)))
	}

	args = append(args, inquiryID)
	query := fmt.Sprintf("update contact_inquiries set %s where id = $%d returning %s",
		strings.Join(assignments, ", "), len(args), inquiriesAllFields)

	updatedInquiry := &models.Inquiry{}
	if err := scanInquiry(db.QueryRow(query, args...), updatedInquiry); err != nil {
		return nil, err
	}
	return updatedInquiry, nil
}

// DeleteByID - deletes an inquiry
func DeleteByID(db *sql.DB, inquiryID string) error {
	res, err := db.Exec("delete from contact_inquiries where id = $1", inquiryID)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
