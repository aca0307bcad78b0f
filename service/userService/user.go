package userService

import (
	"database/sql"

	"github.com/modo-agency/web/models"
)

const adminsAllFields = "id, email, name, role, password_hash"

func scanAdmin(row *sql.Row) (*models.Admin, error) {
	admin := &models.Admin{}
	if err := row.Scan(&admin.ID, &admin.Email, &admin.Name, &admin.Role, &admin.PasswordHash); err != nil {
		return nil, err
	}
	return admin, nil
}

// GetByEmail - retrieves an admin account by email, password hash included
func GetByEmail(db *sql.DB, email string) (*models.Admin, error) {
	return scanAdmin(db.QueryRow("select "+adminsAllFields+" from blog_admins where email = $1", email))
}

// GetByID - retrieves an admin account by ID
// Session validation calls this on every authenticated request so a deleted
// account loses access even while its token is still live
func GetByID(db *sql.DB, id string) (*models.Admin, error) {
	return scanAdmin(db.QueryRow("select "+adminsAllFields+" from blog_admins where id = $1", id))
}

// Save - creates an admin account, or resets name and password hash when the
// email is already registered
func Save(db *sql.DB, email, name, passwordHash string) (*models.Admin, error) {
	return scanAdmin(db.QueryRow("insert into blog_admins (email, name, role, password_hash) "+
		"values ($1, $2, 'admin', $3) "+
		"on conflict (email) do update set name = excluded.name, password_hash = excluded.password_hash "+
		"returning "+adminsAllFields, email, name, passwordHash))
}
