package scraper

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCaseID  = errors.New("invalid case id")
	ErrAlreadyFetched = errors.New("case already fetched")
	ErrLoginFailed    = errors.New("failed to log in to court site")

	ErrUnsafeAttachmentID = errors.New("attachment id does not name a file inside the output directory")
)

// RequestError is a transport failure, timeout or non-success status. The
// download marker stays set so the next run refetches without the cache.
type RequestError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("request %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("request %s: %v", e.URL, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// SearchError means the court site answered but reported no usable result
type SearchError struct {
	CaseID  string
	Message string
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("search error for %s: %s", e.CaseID, e.Message)
}

// ParseError describes a panel that was found but could not be read. It is
// logged and the field is left empty.
type ParseError struct {
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Field, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ErrorKind names the class of a fetch error for logs and the fetch log
func ErrorKind(err error) string {
	var reqErr *RequestError
	var searchErr *SearchError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &reqErr):
		return "request"
	case errors.As(err, &searchErr):
		return "search"
	case errors.Is(err, ErrInvalidCaseID):
		return "invalid_id"
	case errors.Is(err, ErrAlreadyFetched):
		return "skipped"
	case errors.Is(err, ErrLoginFailed):
		return "login"
	default:
		return "internal"
	}
}
