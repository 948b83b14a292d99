package reader

import (
	"errors"
	"fmt"

	"github.com/julianstephens/logcrate/internal/logcrate/errorutil"
)

var (
	// ErrShortRead is returned when fewer bytes than expected could be read
	// from a segment at a recorded offset.
	ErrShortRead = errors.New("reader: short read")
)

// ReadError wraps a read failure with the coordinates of the record
// involved.
type ReadError struct {
	Err         error
	Coordinates errorutil.Coordinates
}

func newReadError(err error, recordID, segmentID, offset uint64) *ReadError {
	return &ReadError{Err: err, Coordinates: errorutil.Coordinates{
		RecordID:  &recordID,
		SegmentID: &segmentID,
		Offset:    &offset,
	}}
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("reader: %s: %v", e.Coordinates.FormatCoordinates(), e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }
