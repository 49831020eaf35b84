package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"wishsender/internal/model"
)

type ContactRepository struct {
	db *pgxpool.Pool
}

func NewContactRepository(db *pgxpool.Pool) *ContactRepository {
	return &ContactRepository{db: db}
}

// ListContacts returns the full contact set in one read. The directory is
// small by design; the check run deliberately avoids pagination.
func (r *ContactRepository) ListContacts(ctx context.Context) ([]model.Contact, error) {
	query := `
        SELECT id, name, email, dob, created_at
        FROM contacts
        ORDER BY id
    `

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := []model.Contact{}

	for rows.Next() {
		var c model.Contact
		err := rows.Scan(
			&c.ID,
			&c.Name,
			&c.Email,
			&c.DOB,
			&c.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}

	return contacts, rows.Err()
}
