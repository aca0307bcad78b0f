package categoryService

import (
	"database/sql"

	"github.com/modo-agency/web/models"
)

const categoriesAllFields = "id, name, slug, description, order_index"

// GetAll - returns all categories in display order
func GetAll(db *sql.DB) ([]models.Category, error) {
	var categories []models.Category

	rows, err := db.Query("select " + categoriesAllFields + " from blog_categories order by order_index")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var category models.Category
		if err = rows.Scan(&category.ID, &category.Name, &category.Slug,
			&category.Description, &category.OrderIndex); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}

	return categories, rows.Err()
}

// GetByID - retrieves one category
func GetByID(db *sql.DB, categoryID string) (*models.Category, error) {
	category := &models.Category{}
	row := db.QueryRow("select "+categoriesAllFields+" from blog_categories where id = $1", categoryID)
	if err := row.Scan(&category.ID, &category.Name, &category.Slug,
		&category.Description, &category.OrderIndex); err != nil {
		return nil, err
	}
	return category, nil
}
