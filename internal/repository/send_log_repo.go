package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"wishsender/internal/birthday"
	"wishsender/internal/model"
)

const uniqueViolation = "23505"

type SendLogRepository struct {
	db *pgxpool.Pool
}

func NewSendLogRepository(db *pgxpool.Pool) *SendLogRepository {
	return &SendLogRepository{db: db}
}

// AppendLog inserts one dispatch attempt. A unique-index violation on the
// (contact, day) sent constraint surfaces as birthday.ErrDuplicateSend so the
// caller can tell "someone else already recorded this" apart from real failures.
func (r *SendLogRepository) AppendLog(ctx context.Context, entry *model.SendLogEntry) error {
	query := `
        INSERT INTO send_logs (contact_id, contact_name, contact_email, status, sent_at, error_message)
        VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))
        RETURNING id
    `
	err := r.db.QueryRow(ctx, query,
		entry.ContactID,
		entry.ContactName,
		entry.ContactEmail,
		entry.Status,
		entry.SentAt,
		entry.ErrorMessage,
	).Scan(&entry.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return birthday.ErrDuplicateSend
		}
		return err
	}
	return nil
}

// QueryLogs returns entries with sent_at in the half-open interval [from, to),
// newest first.
func (r *SendLogRepository) QueryLogs(ctx context.Context, from, to time.Time) ([]model.SendLogEntry, error) {
	query := `
        SELECT id, contact_id, contact_name, contact_email, status, sent_at, COALESCE(error_message, '')
        FROM send_logs
        WHERE sent_at >= $1 AND sent_at < $2
        ORDER BY sent_at DESC
    `

	rows, err := r.db.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []model.SendLogEntry{}

	for rows.Next() {
		var e model.SendLogEntry
		err := rows.Scan(
			&e.ID,
			&e.ContactID,
			&e.ContactName,
			&e.ContactEmail,
			&e.Status,
			&e.SentAt,
			&e.ErrorMessage,
		)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
