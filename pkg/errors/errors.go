package errors

import (
	"errors"
	"fmt"
)

var (
	ErrDocumentNotFound  = errors.New("document not found")
	ErrRequesterNotFound = errors.New("requester not found")
	ErrClassNotFound     = errors.New("class not found")
	ErrStudentNotFound   = errors.New("student not found")
	ErrInvalidFileFormat = errors.New("invalid file format")
	ErrSheetNotFound     = errors.New("sheet not found")
	ErrNoMappings        = errors.New("no placeholder is mapped to a column")
	ErrInvalidScoreValue = errors.New("invalid score value")
)

type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s' with value '%v': %s",
		e.Field, e.Value, e.Message)
}

type RetryableError struct {
	Err     error
	Message string
}

func (e RetryableError) Error() string {
	return fmt.Sprintf("retryable error: %s - %s", e.Message, e.Err.Error())
}

func (e RetryableError) Unwrap() error {
	return e.Err
}

func NewRetryableError(err error, message string) error {
	return RetryableError{
		Err:     err,
		Message: message,
	}
}
