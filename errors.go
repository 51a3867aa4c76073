package teal

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic handling via errors.Is.
var (
	// ErrDatabaseClosed is returned by any operation on a Database handle
	// that has been closed (or was never successfully opened).
	ErrDatabaseClosed = errors.New("database is closed")

	// ErrImmutableDocument is returned by mutation attempts on an immutable
	// document snapshot or any container owned by one.
	ErrImmutableDocument = errors.New("document is immutable")

	// ErrTypeMismatch is returned when a property write conflicts with an
	// existing non-container value, or a native literal has no Value kind.
	ErrTypeMismatch = errors.New("value type mismatch")

	// ErrResourceBusy is returned when opening or deleting a database
	// file-set that is held open elsewhere.
	ErrResourceBusy = errors.New("database file is in use")

	// ErrNotFound is returned when deleting or purging a document that does
	// not exist. Lookups never return it; they report a miss as a nil
	// document.
	ErrNotFound = errors.New("document not found")

	// ErrSaveConflict is reserved for optimistic-concurrency support; the
	// base engine never returns it, but the commit path is shaped so the
	// extension will not require a redesign.
	ErrSaveConflict = errors.New("save conflict")
)

// OpenError reports a failure to open or create the backing store.
type OpenError struct {
	Path string
	Err  error
}

func openErrf(path string, err error, format string, args ...any) error {
	if format != "" {
		err = fmt.Errorf(format+": %w", append(args, err)...)
	}
	return &OpenError{path, err}
}

func (e *OpenError) Unwrap() error {
	return e.Err
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("open %s: %v", e.Path, e.Err)
}

// DataError reports a malformed or corrupt stored record, with enough of the
// raw bytes to diagnose the damage.
type DataError struct {
	Data []byte
	Off  int
	Err  error
	Msg  string
}

func dataErrf(data []byte, off int, err error, format string, args ...any) error {
	return &DataError{data, off, err, fmt.Sprintf(format, args...)}
}

func (e *DataError) Unwrap() error {
	return e.Err
}

func (e *DataError) Error() string {
	const prefixLen = 64
	const suffixLen = 32
	n := len(e.Data)
	if n <= prefixLen+suffixLen {
		if e.Err != nil {
			return fmt.Sprintf("%s: %v: (%d) %x", e.Msg, e.Err, n, e.Data)
		} else {
			return fmt.Sprintf("%s: (%d) %x", e.Msg, n, e.Data)
		}
	} else {
		p, s := e.Data[:prefixLen], e.Data[n-suffixLen:]
		if e.Err != nil {
			return fmt.Sprintf("%s: %v: (%d) %x...%x", e.Msg, e.Err, n, p, s)
		} else {
			return fmt.Sprintf("%s: (%d) %x...%x", e.Msg, n, p, s)
		}
	}
}
