package crate

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/julianstephens/logcrate/internal/logcrate"
	"github.com/julianstephens/logcrate/internal/logcrate/index"
	"github.com/julianstephens/logcrate/internal/logcrate/record"
	"github.com/julianstephens/logcrate/internal/logcrate/segment"
)

// RecoveredState is what scanning a crate directory on Open produces: a
// fully populated Index and the point the Writer should resume appending
// from.
type RecoveredState struct {
	Index             *index.Index
	NextRecordID      uint64
	HasActiveSegment  bool
	ActiveSegmentID   uint64
	ActiveSegmentSize uint64
}

// scanSegments lists dir, walks every segment file in ascending id order, and
// rebuilds the Index. Any filename that does not match the segment naming
// convention (notably the manifest) is silently skipped: it is not a
// segment and recovery must not mistake it for one.
//
// A segment's trailing bytes that do not form a complete, well-formed
// record (a short header, a declared payload longer than what remains in
// the file, or a corrupt header) are treated as an interrupted write: the
// file is truncated back to the end of the last good record and recovery
// continues as if that partial tail had never been written.
func scanSegments(dir string) (RecoveredState, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return RecoveredState{}, &recoveryError{Err: err, Path: dir}
	}

	var segIDs []uint64
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		id, err := segment.ParseFilename(de.Name())
		if err != nil {
			continue
		}
		segIDs = append(segIDs, id)
	}
	sort.Slice(segIDs, func(i, j int) bool { return segIDs[i] < segIDs[j] })

	idx := index.New()
	var nextID, lastSegID, lastSegSize uint64
	var hasActive bool

	for i, segID := range segIDs {
		path := filepath.Join(dir, segment.Filename(segID))
		size, err := recoverSegment(path, segID, i == 0, &nextID, idx)
		if err != nil {
			return RecoveredState{}, err
		}
		if i == len(segIDs)-1 {
			hasActive = true
			lastSegID = segID
			lastSegSize = size
		}
	}

	return RecoveredState{
		Index:             idx,
		NextRecordID:      nextID,
		HasActiveSegment:  hasActive,
		ActiveSegmentID:   lastSegID,
		ActiveSegmentSize: lastSegSize,
	}, nil
}

// recoverSegment reads one segment file, validates its header, walks its
// records into idx, and returns the file's length after any tail
// truncation. nextID is both the expected id of this segment's first record
// (unless first, where the segment id itself seeds it) and is advanced by
// the number of good records found.
func recoverSegment(path string, segID uint64, first bool, nextID *uint64, idx *index.Index) (uint64, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0o644) //nolint:gosec
	if err != nil {
		return 0, &recoveryError{Err: err, Path: path, SegmentID: segID}
	}
	defer func() { _ = f.Close() }()

	hdrBuf := make([]byte, segment.HeaderSize)
	if _, err := io.ReadFull(f, hdrBuf); err != nil {
		return 0, &recoveryError{Err: logcrate.ErrCorruptHeader, Path: path, SegmentID: segID}
	}
	hdr, err := segment.DecodeHeader(hdrBuf)
	if err != nil {
		return 0, &recoveryError{Err: fmt.Errorf("%w: %w", logcrate.ErrCorruptHeader, err), Path: path, SegmentID: segID}
	}
	if hdr.SegmentID != segID {
		return 0, &recoveryError{Err: logcrate.ErrCorruptHeader, Path: path, SegmentID: segID}
	}

	if first {
		*nextID = segID
	} else if *nextID != segID {
		return 0, &recoveryError{Err: logcrate.ErrCorruptHeader, Path: path, SegmentID: segID}
	}

	offset := uint64(segment.HeaderSize)
	for {
		recHdrBuf := make([]byte, record.HeaderSize)
		n, err := io.ReadFull(f, recHdrBuf)
		if err != nil {
			if n == 0 && err == io.EOF {
				break
			}
			if err := f.Truncate(int64(offset)); err != nil { //nolint:gosec
				return 0, &recoveryError{Err: err, Path: path, SegmentID: segID}
			}
			break
		}

		recHdr, err := record.DecodeHeader(recHdrBuf)
		if err != nil {
			if err := f.Truncate(int64(offset)); err != nil { //nolint:gosec
				return 0, &recoveryError{Err: err, Path: path, SegmentID: segID}
			}
			break
		}

		payload := make([]byte, recHdr.PayloadSize)
		pn, err := io.ReadFull(f, payload)
		if err != nil || uint32(pn) != recHdr.PayloadSize { //nolint:gosec
			if err := f.Truncate(int64(offset)); err != nil { //nolint:gosec
				return 0, &recoveryError{Err: err, Path: path, SegmentID: segID}
			}
			break
		}

		total := recHdr.TotalSize()
		idx.Put(*nextID, index.Entry{SegmentID: segID, Offset: offset, TotalSize: total, Digest: recHdr.Digest})
		offset += uint64(total)
		*nextID++
	}

	return offset, nil
}
