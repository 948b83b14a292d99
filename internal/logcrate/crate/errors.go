package crate

import (
	"errors"
	"fmt"
)

// ErrEmptyBatch is returned by Append when called with no entries.
var ErrEmptyBatch = errors.New("crate: empty batch")

// recoveryError wraps a failure encountered while scanning segments on Open.
type recoveryError struct {
	Err       error
	Path      string
	SegmentID uint64
}

func (e *recoveryError) Error() string {
	return fmt.Sprintf("crate: recovery failed at %s (segment %d): %v", e.Path, e.SegmentID, e.Err)
}

func (e *recoveryError) Unwrap() error { return e.Err }
