package reader

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/julianstephens/logcrate/internal/logcrate/segment"
)

// ReadBatch implements the batched read: given the ascending entries from a
// starting id onward (already copied out of the Index by the caller), it
// admits as many whole records as fit within maxBytes of cumulative
// payload, reads every admitted record, and returns them in ascending id
// order.
//
// Segments are read in parallel, one goroutine per distinct segment among
// the admitted entries, since each segment read is independent I/O; the
// reassembly below restores ascending record-id order regardless of
// completion order.
func ReadBatch(dir string, entries []LocatedEntry, maxBytes uint64) ([]Record, error) {
	admitted := admit(entries, maxBytes)
	if len(admitted) == 0 {
		return nil, nil
	}

	groups := groupBySegment(admitted)
	results := make([]groupResult, len(groups))

	var wg sync.WaitGroup
	for gi, g := range groups {
		wg.Add(1)
		go func(gi int, g segmentGroup) {
			defer wg.Done()
			results[gi] = readSegmentGroup(dir, g)
		}(gi, g)
	}
	wg.Wait()

	out := make([]Record, 0, len(admitted))
	for _, r := range results {
		if r.err != nil {
			return nil, r.err
		}
		out = append(out, r.recs...)
	}
	return out, nil
}

// groupResult is one segment group's read outcome.
type groupResult struct {
	recs []Record
	err  error
}

func readSegmentGroup(dir string, g segmentGroup) (res groupResult) {
	f, err := os.Open(filepath.Join(dir, segment.Filename(g.segmentID))) //nolint:gosec
	if err != nil {
		res.err = newReadError(err, g.entries[0].ID, g.segmentID, 0)
		return res
	}
	defer func() { _ = f.Close() }()

	recs := make([]Record, 0, len(g.entries))
	for _, le := range g.entries {
		rec, err := readAt(f, le.ID, le.Entry)
		if err != nil {
			res.err = err
			return res
		}
		recs = append(recs, rec)
	}
	res.recs = recs
	return res
}
