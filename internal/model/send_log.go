package model

import "time"

const (
	StatusSent   = "sent"
	StatusFailed = "failed"
)

// SendLogEntry records one wish dispatch attempt. Entries are append-only:
// the pipeline never updates or deletes them, it only adds one per attempt.
type SendLogEntry struct {
	ID           int64
	ContactID    int64
	ContactName  string
	ContactEmail string
	Status       string
	SentAt       time.Time
	ErrorMessage string
}
