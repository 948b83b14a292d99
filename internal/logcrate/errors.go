package logcrate

import (
	"errors"
	"fmt"
)

var (
	// ErrDirectoryExists is returned by Create when the target directory
	// already exists.
	ErrDirectoryExists = errors.New("logcrate: directory already exists")
	// ErrDirectoryMissing is returned by Open when the target directory does
	// not exist or its manifest cannot be loaded. A directory with a valid
	// manifest and no segments opens as an empty crate.
	ErrDirectoryMissing = errors.New("logcrate: directory missing")
	// ErrCorruptHeader is returned by Open when a segment header has a bad
	// magic, is truncated, or declares an unsupported version.
	ErrCorruptHeader = errors.New("logcrate: corrupt segment header")
	// ErrCorruptRecord is returned by a read when the stored payload size or
	// digest does not match the Index entry.
	ErrCorruptRecord = errors.New("logcrate: corrupt record")
	// ErrInvariantViolation is a fatal, self-inflicted bug in the coordinator
	// (e.g. a Writer event with no matching waiter). The crate must
	// terminate rather than continue in an inconsistent state.
	ErrInvariantViolation = errors.New("logcrate: invariant violation")
	// ErrClosed is returned by any error-returning crate operation issued
	// after Close.
	ErrClosed = errors.New("logcrate: crate closed")
	// ErrCreateFailed is returned by Create when the directory or manifest
	// could not be written.
	ErrCreateFailed = errors.New("logcrate: create failed")
)

// NotFoundError is a distinguished, non-fatal result: id is not present in
// the Index. It is not an error in the propagation-policy sense described
// by the spec, but satisfies the error interface so it composes with
// errors.Is/errors.As at call sites that want to treat it uniformly.
type NotFoundError struct {
	RecordID uint64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("logcrate: record %d not found", e.RecordID)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// CrateError wraps crate-level failures with a stable sentinel (for
// errors.Is), the operation name, and an optional underlying cause.
type CrateError struct {
	Err   error
	Op    string
	Dir   string
	Cause error
}

func (e *CrateError) Error() string {
	if e.Dir == "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Err.Error())
	}
	return fmt.Sprintf("%s: %s (%s)", e.Op, e.Err.Error(), e.Dir)
}

func (e *CrateError) Unwrap() error { return e.Err }

func (e *CrateError) CauseErr() error { return e.Cause }

// WrapErr constructs a CrateError.
func WrapErr(op string, sentinel error, dir string, cause error) error {
	return &CrateError{Err: sentinel, Op: op, Dir: dir, Cause: cause}
}
