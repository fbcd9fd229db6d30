package vectorlite

import (
	"errors"
	"fmt"

	"github.com/vectorlite/vectorlite/persistence"
	"github.com/vectorlite/vectorlite/table"
)

var (
	// ErrNotFound is returned when no record has the requested id.
	ErrNotFound = errors.New("not found")

	// ErrInvalidK is returned when a search asks for a non-positive k.
	ErrInvalidK = errors.New("k must be positive")

	// ErrInvalidID is returned when a record id is empty.
	ErrInvalidID = errors.New("invalid id")

	// ErrMissingDimension is returned when Open must create a new database
	// but no dimension was configured.
	ErrMissingDimension = errors.New("dimension required to create a database")

	// ErrClosed is returned by operations on a closed database.
	ErrClosed = errors.New("database is closed")

	// ErrReadOnly is returned by mutations on a read-only database.
	ErrReadOnly = errors.New("database is read-only")

	// ErrInvalidFormat indicates a file that is not a database of a version
	// this build can read, or one whose verified bytes do not parse.
	// Opening fails; nothing is recovered.
	ErrInvalidFormat = errors.New("invalid database format")

	// ErrCorrupt indicates unrecoverable damage: a header whose checksum
	// does not verify, or a file truncated inside the header. Damage inside
	// a block is recovered instead and surfaced through Warnings.
	ErrCorrupt = errors.New("database corrupted")
)

// DimensionMismatchError indicates a vector whose length does not match the
// database dimension.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type DimensionMismatchError struct {
	Expected int
	Actual   int
	cause    error
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *DimensionMismatchError) Unwrap() error { return e.cause }

// translateError normalizes errors from the table and persistence layers
// into the package's taxonomy. The original error stays reachable through
// errors.Is/As.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, table.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	if errors.Is(err, table.ErrEmptyID) {
		return fmt.Errorf("%w: %w", ErrInvalidID, err)
	}
	if errors.Is(err, table.ErrInvalidK) {
		return fmt.Errorf("%w: %w", ErrInvalidK, err)
	}

	var dm *table.DimensionMismatchError
	if errors.As(err, &dm) {
		return &DimensionMismatchError{Expected: dm.Expected, Actual: dm.Actual, cause: err}
	}

	// Header damage and truncation are unrecoverable corruption. Block-level
	// checksum mismatches never reach here; they become Warnings.
	if persistence.IsChecksumMismatch(err) || errors.Is(err, persistence.ErrTruncated) {
		return fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if errors.Is(err, persistence.ErrBadMagic) ||
		errors.Is(err, persistence.ErrUnsupportedVersion) ||
		errors.Is(err, persistence.ErrMalformed) {
		return fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}

	return err
}
