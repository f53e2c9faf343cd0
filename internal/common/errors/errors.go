// internal/common/errors/errors.go
package errors

import (
	"context"
	"database/sql/driver"
	stderrors "errors"
	"fmt"
	"net"
	"strings"
	"time"

	"venture-match/internal/matching"
)

type ErrorCode string

const (
	ErrCodeIncompleteRecord  ErrorCode = "INCOMPLETE_RECORD"
	ErrCodeInsufficientData  ErrorCode = "INSUFFICIENT_DATA"
	ErrCodeRecordNotFound    ErrorCode = "RECORD_NOT_FOUND"
	ErrCodeMatchNotFound     ErrorCode = "MATCH_NOT_FOUND"
	ErrCodeDocumentNotFound  ErrorCode = "DOCUMENT_NOT_FOUND"
	ErrCodeInvalidTransition ErrorCode = "INVALID_STATUS_TRANSITION"
	ErrCodeInputValidation   ErrorCode = "INPUT_VALIDATION_FAILED"

	ErrCodeMatchStoreFailed         ErrorCode = "MATCH_STORE_FAILED"
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"

	ErrCodeHistoryLookupFailed ErrorCode = "HISTORY_LOOKUP_FAILED"
	ErrCodeEventPublishFailed  ErrorCode = "EVENT_PUBLISH_FAILED"
)

// StandardError is the error shape every worker reports back to the engine.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// BPMNError is what gets thrown into the process when a job cannot complete.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

func NewIncompleteRecordError(details string) *StandardError {
	return newError(ErrCodeIncompleteRecord, "Profile is missing required identity fields", details, false)
}

func NewInsufficientDataError(details string) *StandardError {
	return newError(ErrCodeInsufficientData, "No compatibility dimension could be scored", details, false)
}

func NewRecordNotFoundError(details string) *StandardError {
	return newError(ErrCodeRecordNotFound, "No live match record for this pair", details, false)
}

func NewMatchNotFoundError(matchID string) *StandardError {
	return newError(ErrCodeMatchNotFound, "Match record not found", fmt.Sprintf("matchId: %s", matchID), false)
}

func NewDocumentNotFoundError(details string) *StandardError {
	return newError(ErrCodeDocumentNotFound, "Startup or investor profile not found", details, false)
}

func NewInvalidTransitionError(details string) *StandardError {
	return newError(ErrCodeInvalidTransition, "Status transition not allowed", details, false)
}

func NewInputValidationError(details string) *StandardError {
	return newError(ErrCodeInputValidation, "Job input failed validation", details, false)
}

func NewMatchStoreFailedError(err error) *StandardError {
	return newError(ErrCodeMatchStoreFailed, "Match store operation failed", err.Error(), true)
}

func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection error", err.Error(), true)
}

func NewQueryTimeoutError(operation string) *StandardError {
	return newError(ErrCodeQueryTimeout, "Store operation timed out", fmt.Sprintf("operation: %s", operation), true)
}

func NewHistoryLookupFailedError(err error) *StandardError {
	return newError(ErrCodeHistoryLookupFailed, "Historical outcome lookup failed", err.Error(), true)
}

func NewEventPublishFailedError(event string, err error) *StandardError {
	return newError(ErrCodeEventPublishFailed, "Match event could not be published",
		fmt.Sprintf("event: %s, error: %s", event, err.Error()), true)
}

// FromMatchError translates matching sentinels and context failures into StandardErrors.
// Anything unrecognised is treated as a retryable store failure.
func FromMatchError(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	switch {
	case stderrors.Is(err, matching.ErrIncompleteRecord):
		return NewIncompleteRecordError(err.Error())
	case stderrors.Is(err, matching.ErrInsufficientData):
		return NewInsufficientDataError(err.Error())
	case stderrors.Is(err, matching.ErrRecordNotFound):
		return NewRecordNotFoundError(err.Error())
	case stderrors.Is(err, matching.ErrNotFound):
		return NewMatchNotFoundError(err.Error())
	case stderrors.Is(err, matching.ErrDocumentNotFound):
		return NewDocumentNotFoundError(err.Error())
	case stderrors.Is(err, matching.ErrInvalidTransition):
		return NewInvalidTransitionError(err.Error())
	case stderrors.Is(err, matching.ErrInvalidInput):
		return NewInputValidationError(err.Error())
	case stderrors.Is(err, context.DeadlineExceeded):
		return NewQueryTimeoutError(err.Error())
	case stderrors.Is(err, driver.ErrBadConn) || isNetError(err):
		return NewDatabaseConnectionFailedError(err)
	default:
		return NewMatchStoreFailedError(err)
	}
}

func isNetError(err error) bool {
	var opErr *net.OpError
	return stderrors.As(err, &opErr)
}

var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeIncompleteRecord:         "INCOMPLETE_RECORD",
	ErrCodeInsufficientData:         "INSUFFICIENT_DATA",
	ErrCodeRecordNotFound:           "RECORD_NOT_FOUND",
	ErrCodeMatchNotFound:            "MATCH_NOT_FOUND",
	ErrCodeDocumentNotFound:         "DOCUMENT_NOT_FOUND",
	ErrCodeInvalidTransition:        "INVALID_STATUS_TRANSITION",
	ErrCodeInputValidation:          "INPUT_VALIDATION_FAILED",
	ErrCodeMatchStoreFailed:         "MATCH_STORE_FAILED",
	ErrCodeDatabaseConnectionFailed: "DATABASE_CONNECTION_FAILED",
	ErrCodeQueryTimeout:             "QUERY_TIMEOUT",
	ErrCodeHistoryLookupFailed:      "HISTORY_LOOKUP_FAILED",
	ErrCodeEventPublishFailed:       "EVENT_PUBLISH_FAILED",
}

func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeMatchStoreFailed,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeHistoryLookupFailed:
		return 3
	case ErrCodeQueryTimeout:
		return 2
	case ErrCodeEventPublishFailed:
		return 1
	default:
		return 0 // business errors are thrown, not retried
	}
}

func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "NOT_FOUND"):
		return "LOOKUP"
	case strings.Contains(codeStr, "INCOMPLETE") || strings.Contains(codeStr, "INSUFFICIENT"):
		return "SCORING"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY") || strings.Contains(codeStr, "STORE"):
		return "DATABASE"
	case strings.Contains(codeStr, "HISTORY"):
		return "SEARCH"
	case strings.Contains(codeStr, "EVENT"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
