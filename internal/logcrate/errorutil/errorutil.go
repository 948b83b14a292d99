// Package errorutil holds small formatting helpers for positional error
// context, ported from the teacher's positional error context helper.
package errorutil

import "fmt"

// Coordinates holds positional information (segment id, byte offset, record
// id) used in error formatting by the reader package's ReadError.
type Coordinates struct {
	SegmentID *uint64
	Offset    *uint64
	RecordID  *uint64
}

// FormatCoordinates returns a formatted string representation of the error
// coordinates, including only non-nil values: "seg=X at=Y id=Z". Returns an
// empty string if all coordinates are nil.
func (c *Coordinates) FormatCoordinates() string {
	if c == nil {
		return ""
	}

	var parts []string
	if c.SegmentID != nil {
		parts = append(parts, fmt.Sprintf("seg=%d", *c.SegmentID))
	}
	if c.Offset != nil {
		parts = append(parts, fmt.Sprintf("at=%d", *c.Offset))
	}
	if c.RecordID != nil {
		parts = append(parts, fmt.Sprintf("id=%d", *c.RecordID))
	}

	result := ""
	for i, part := range parts {
		if i > 0 {
			result += " "
		}
		result += part
	}
	return result
}

// String implements fmt.Stringer.
func (c *Coordinates) String() string {
	return c.FormatCoordinates()
}
