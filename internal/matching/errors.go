package matching

import "errors"

var (
	// ErrIncompleteRecord means a profile lacks the identity fields needed to score it.
	ErrIncompleteRecord = errors.New("INCOMPLETE_RECORD")
	// ErrInsufficientData means no dimension could be scored for the pair.
	ErrInsufficientData = errors.New("INSUFFICIENT_DATA")
	// ErrRecordNotFound is returned by read-only lookups with no cached record.
	ErrRecordNotFound = errors.New("RECORD_NOT_FOUND")
	// ErrNotFound is returned when a referenced match record does not exist.
	ErrNotFound = errors.New("MATCH_NOT_FOUND")
	// ErrInvalidTransition is returned for status changes the lifecycle forbids.
	ErrInvalidTransition = errors.New("INVALID_STATUS_TRANSITION")
	// ErrDocumentNotFound is returned when a startup or investor profile is missing.
	ErrDocumentNotFound = errors.New("DOCUMENT_NOT_FOUND")
	// ErrInvalidInput covers malformed feedback, sides, statuses and identities.
	ErrInvalidInput = errors.New("INVALID_INPUT")
)
