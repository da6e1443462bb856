package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"formhook/internal/platform/models"
)

// FormRepository reads forms owned by the host form system. It never writes.
type FormRepository struct {
	db *sql.DB
}

func NewFormRepository(db *sql.DB) *FormRepository {
	return &FormRepository{db: db}
}

// ListAvailable returns published forms ordered by title.
func (r *FormRepository) ListAvailable(ctx context.Context) ([]models.Form, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, title FROM forms WHERE status = 'publish' ORDER BY title ASC`)
	if err != nil {
		return nil, fmt.Errorf("list forms: %w", err)
	}
	defer rows.Close()

	forms := []models.Form{}
	for rows.Next() {
		var f models.Form
		if err := rows.Scan(&f.ID, &f.Title); err != nil {
			return nil, err
		}
		forms = append(forms, f)
	}
	return forms, rows.Err()
}
