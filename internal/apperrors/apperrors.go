package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrConflict     = errors.New("conflicting driver records")
	ErrNoIdentity   = errors.New("no identifying field supplied")
	ErrInvalidField = errors.New("invalid field")
)

// LookupError reports a directory read that failed for reasons other than
// "no such record".
type LookupError struct {
	Err error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("lookup driver: %v", e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }

// WriteError reports a failed create, increment, reset or history append.
type WriteError struct {
	Op  string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s driver: %v", e.Op, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// CheckError maps an error to the HTTP status the API answers with.
func CheckError(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrConflict):
		return http.StatusInternalServerError
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrNoIdentity), errors.Is(err, ErrInvalidField):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
