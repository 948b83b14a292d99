// Package reader implements the read path: positional single-record reads
// and batched multi-segment reads. Every function here is stateless and
// safe to call concurrently from any number of goroutines; each call opens
// the segment files it needs, reads, and closes them. The crate coordinator
// never participates in a read beyond handing out a snapshot of Index
// entries, so reads never block or get blocked by appends.
package reader

import (
	"os"
	"path/filepath"

	"github.com/julianstephens/logcrate/internal/logcrate"
	"github.com/julianstephens/logcrate/internal/logcrate/index"
	"github.com/julianstephens/logcrate/internal/logcrate/record"
	"github.com/julianstephens/logcrate/internal/logcrate/segment"
)

// Record is one record as returned to a caller: its id, digest, and payload.
type Record struct {
	ID      uint64
	Digest  record.Digest
	Payload []byte
}

// ReadOne reads and verifies the single record named by entry. It is a pure
// function of dir and entry: callers look up entry in the Index themselves.
func ReadOne(dir string, id uint64, entry index.Entry) (Record, error) {
	f, err := os.Open(filepath.Join(dir, segment.Filename(entry.SegmentID))) //nolint:gosec
	if err != nil {
		return Record{}, newReadError(err, id, entry.SegmentID, entry.Offset)
	}
	defer func() { _ = f.Close() }()

	return readAt(f, id, entry)
}

// readAt reads the record described by entry from an already-open segment
// file handle.
func readAt(f *os.File, id uint64, entry index.Entry) (Record, error) {
	buf := make([]byte, entry.TotalSize)
	n, err := f.ReadAt(buf, int64(entry.Offset)) //nolint:gosec
	if err != nil {
		return Record{}, newReadError(err, id, entry.SegmentID, entry.Offset)
	}
	if uint32(n) != entry.TotalSize { //nolint:gosec
		return Record{}, newReadError(ErrShortRead, id, entry.SegmentID, entry.Offset)
	}

	hdr, err := record.DecodeHeader(buf)
	if err != nil {
		return Record{}, newReadError(err, id, entry.SegmentID, entry.Offset)
	}
	payload := buf[record.HeaderSize:]

	if hdr.PayloadSize != uint32(len(payload)) || hdr.Digest != entry.Digest { //nolint:gosec
		return Record{}, newReadError(logcrate.ErrCorruptRecord, id, entry.SegmentID, entry.Offset)
	}

	return Record{ID: id, Digest: hdr.Digest, Payload: payload}, nil
}

// LocatedEntry pairs a record id with its Index entry, already copied out of
// the Index by the caller before any I/O starts. The batched read path never
// touches the live *index.Index directly: the coordinator is its only
// mutator, and copying entries out here is what lets reads proceed
// concurrently with appends.
type LocatedEntry struct {
	ID    uint64
	Entry index.Entry
}

// admit runs the greedy, payload-bytes-only prefix admission used by batched
// reads: walk entries in ascending id order, stopping before the first one
// whose addition would push the cumulative payload size over maxBytes. This
// applies to the first entry too: if its payload alone exceeds maxBytes,
// admit returns an empty slice.
func admit(entries []LocatedEntry, maxBytes uint64) []LocatedEntry {
	if len(entries) == 0 {
		return nil
	}
	admitted := make([]LocatedEntry, 0, len(entries))
	var total uint64
	for _, e := range entries {
		payloadSize := uint64(e.Entry.TotalSize) - uint64(record.HeaderSize)
		if total+payloadSize > maxBytes {
			break
		}
		admitted = append(admitted, e)
		total += payloadSize
	}
	return admitted
}

// segmentGroup is the admitted entries belonging to one segment, in
// ascending id order.
type segmentGroup struct {
	segmentID uint64
	entries   []LocatedEntry
}

func groupBySegment(entries []LocatedEntry) []segmentGroup {
	var groups []segmentGroup
	for _, e := range entries {
		if n := len(groups); n > 0 && groups[n-1].segmentID == e.Entry.SegmentID {
			groups[n-1].entries = append(groups[n-1].entries, e)
			continue
		}
		groups = append(groups, segmentGroup{segmentID: e.Entry.SegmentID, entries: []LocatedEntry{e}})
	}
	return groups
}
