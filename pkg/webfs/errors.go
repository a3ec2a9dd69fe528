package webfs

import (
	"errors"
	"fmt"
)

var (
	// ErrDecode reports page bytes that are not valid text.
	ErrDecode = errors.New("invalid text encoding")
	// ErrGrepOptions reports a conflicting grep option combination.
	ErrGrepOptions = errors.New("bad grep options")
	// ErrNotSingle reports Single on a list without exactly one entry.
	ErrNotSingle = errors.New("not a single-entry list")
	// ErrNotNavigable reports contextual search on an entry with no
	// source-element provenance.
	ErrNotNavigable = errors.New("not navigable")
)

// StatusError is a fetch that reached the server but came back with an
// error status. The body is discarded and nothing is cached.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.Code)
}
