package backend

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNoMore is matched by a 400 response: the API's answer for
	// "nothing further in this direction".
	ErrNoMore = errors.New("no more articles")
	// ErrMalformed wraps bodies that could not be decoded.
	ErrMalformed = errors.New("malformed response")
	// ErrNotFound is returned when an article lookup comes back empty.
	ErrNotFound = errors.New("not found")
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Method string
	URL    string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.URL, e.Code, e.Body)
}

// Is makes errors.Is(err, ErrNoMore) true for 400 responses.
func (e *StatusError) Is(target error) bool {
	return target == ErrNoMore && e.Code == http.StatusBadRequest
}

// IsNoMore reports whether err is (or wraps) a 400 "no more" response.
func IsNoMore(err error) bool {
	return errors.Is(err, ErrNoMore)
}
