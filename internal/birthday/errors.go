package birthday

import (
	"errors"
	"fmt"
)

var (
	// ErrLedgerUnavailable means the send log could not be read or written.
	// It aborts the whole run: continuing would risk duplicate or lost sends.
	ErrLedgerUnavailable = errors.New("send ledger unavailable")

	// ErrDirectoryUnavailable means the contact set could not be fetched.
	ErrDirectoryUnavailable = errors.New("contact directory unavailable")

	// ErrDuplicateSend is returned by a log store whose storage-level dedup
	// constraint rejected a second 'sent' entry for the same contact and day.
	ErrDuplicateSend = errors.New("wish already recorded for this contact today")
)

// MalformedDateError marks a contact whose date of birth cannot be parsed.
// The contact is skipped and tallied; the run continues.
type MalformedDateError struct {
	Value string
}

func (e *MalformedDateError) Error() string {
	return fmt.Sprintf("malformed date of birth %q", e.Value)
}
