package model

import "time"

// Contact is a row in the contact directory. The birthday pipeline only reads
// contacts; ownership of the table belongs to whatever maintains the directory.
type Contact struct {
	ID        int64
	Name      string
	Email     string
	DOB       string // raw date-of-birth as stored, parsed at match time
	CreatedAt time.Time
}
