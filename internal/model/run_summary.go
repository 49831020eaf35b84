package model

import "time"

// RunSummary aggregates the outcome of one birthday check run. It is returned
// to the trigger for logging and never persisted.
type RunSummary struct {
	CheckedCount         int           `json:"checked_count"`
	MatchedCount         int           `json:"matched_count"`
	MalformedCount       int           `json:"malformed_count"`
	SentCount            int           `json:"sent_count"`
	FailedCount          int           `json:"failed_count"`
	SkippedAlreadySent   int           `json:"skipped_already_sent_count"`
	Duration             time.Duration `json:"-"`
	DurationMilliseconds int64         `json:"duration_ms"`
}
