// Package segment implements the pure encode/decode of the 20-byte segment
// file header and the segment filename convention. Segment id equals the
// record id of the first record written into that segment.
package segment

import (
	"encoding/binary"
	"fmt"
)

// EncodeHeader encodes the fixed segment header for the given segment id.
func EncodeHeader(segmentID uint64) []byte {
	buf := make([]byte, HeaderSize)
	copy(buf[:8], Magic)
	binary.BigEndian.PutUint32(buf[8:12], Version)
	binary.BigEndian.PutUint64(buf[12:20], segmentID)
	return buf
}

// DecodeHeader decodes and validates a 20-byte segment header.
func DecodeHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize || string(buf[:8]) != Magic {
		return Header{}, &HeaderError{Err: ErrCorruptHeader}
	}

	version := binary.BigEndian.Uint32(buf[8:12])
	segID := binary.BigEndian.Uint64(buf[12:20])

	if version != Version {
		return Header{}, &HeaderError{Err: ErrVersionMismatch, SegmentID: segID, Version: version}
	}

	return Header{Version: version, SegmentID: segID}, nil
}

// Filename returns the canonical filename for a segment with the given id:
// 16 lowercase hex digits followed by ".dat". Sorting filenames
// lexicographically yields ascending segment order.
func Filename(segmentID uint64) string {
	return fmt.Sprintf("%016x%s", segmentID, FilenameSuffix)
}

// ParseFilename parses a canonical segment filename back into a segment id.
// It rejects anything that does not match exactly 16 hex digits plus the
// ".dat" suffix (recovery must not accidentally index foreign files).
func ParseFilename(name string) (uint64, error) {
	const wantLen = 16 + len(FilenameSuffix)
	if len(name) != wantLen || name[16:] != FilenameSuffix {
		return 0, ErrBadFilename
	}

	var segID uint64
	for i := 0; i < 16; i++ {
		c := name[i]
		var v uint64
		switch {
		case c >= '0' && c <= '9':
			v = uint64(c - '0')
		case c >= 'a' && c <= 'f':
			v = uint64(c-'a') + 10
		default:
			return 0, ErrBadFilename
		}
		segID = segID<<4 | v
	}
	return segID, nil
}
