// Package writer implements the sole owner of a crate's active segment: the
// append-only write cursor, batch encoding, rollover, and durability policy.
//
// A Writer is built around a single run loop goroutine that owns all of its
// mutable state (the active file handle, write offset, and next record id).
// Callers never touch that state directly; they place a job on the inbox and
// observe the outcome on the events channel. This mirrors the actor-style
// ownership the rest of the crate uses: no field here is read or written by
// more than one goroutine.
package writer

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/julianstephens/logcrate/internal/logcrate/record"
	"github.com/julianstephens/logcrate/internal/logcrate/segment"
	"github.com/julianstephens/logcrate/internal/logger"
)

// Writer owns the active segment file and assigns record ids. All fields
// below are touched only by the goroutine running run; everything else
// communicates with it over inbox/events.
type Writer struct {
	dir    string
	opts   Opts
	log    logger.Logger
	inbox  chan job
	events chan Event

	activeFile      *os.File
	activeSegmentID uint64
	currentOffset   uint64
	nextRecordID    uint64
	sinceSync       int

	// done is closed by run() right before it returns, letting Submit and
	// RequestClose fail fast with ErrClosed instead of blocking forever on a
	// send nobody will ever receive.
	done chan struct{}
}

// State seeds a Writer's resume point, produced by the crate's recovery scan.
type State struct {
	// NextRecordID is the id the next appended record will receive.
	NextRecordID uint64
	// HasActiveSegment reports whether an existing segment should be reopened
	// for append rather than rolling to a fresh one on the first batch.
	HasActiveSegment bool
	// ActiveSegmentID names the segment to reopen when HasActiveSegment is
	// true.
	ActiveSegmentID uint64
	// ActiveSegmentSize is the current length of that segment's file, i.e.
	// the offset append resumes at.
	ActiveSegmentSize uint64
}

// New constructs a Writer and starts its run loop in a new goroutine. Callers
// must eventually send a close job (via Close) to let the loop exit.
func New(dir string, opts Opts, log logger.Logger, state State) (*Writer, error) {
	if log == nil {
		log = logger.NoOpLogger{}
	}
	w := &Writer{
		dir:          dir,
		opts:         opts,
		log:          log,
		inbox:        make(chan job),
		events:       make(chan Event),
		done:         make(chan struct{}),
		nextRecordID: state.NextRecordID,
	}

	if state.HasActiveSegment {
		f, err := os.OpenFile(
			filepath.Join(dir, segment.Filename(state.ActiveSegmentID)),
			os.O_WRONLY|os.O_APPEND, 0o644) //nolint:gosec
		if err != nil {
			return nil, &WriteError{Err: err, SegmentID: state.ActiveSegmentID, Op: "reopen"}
		}
		w.activeFile = f
		w.activeSegmentID = state.ActiveSegmentID
		w.currentOffset = state.ActiveSegmentSize
	}

	go w.run()
	return w, nil
}

// Events returns the channel the run loop reports outcomes on. The channel
// is closed after an EventClosed is sent.
func (w *Writer) Events() <-chan Event { return w.events }

// Submit enqueues a batch of entries for append. It blocks until the run
// loop accepts the job, not until the batch is durable; the outcome arrives
// later on Events.
func (w *Writer) Submit(entries []record.Entry) error {
	if len(entries) == 0 {
		return ErrEmptyBatch
	}
	select {
	case w.inbox <- job{kind: jobAppend, entries: entries}:
		return nil
	case <-w.done:
		return ErrClosed
	}
}

// RequestClose asks the run loop to flush, fsync, and close the active
// segment. It blocks until the run loop accepts the close job, which can be
// arbitrarily delayed behind an in-flight append still being written and
// its event still being sent on Events; callers that are themselves
// responsible for draining Events (the crate coordinator) must call this
// from a separate goroutine rather than inline in their own receive loop,
// or the two sides can deadlock each other. A second RequestClose after the
// run loop has already exited is a harmless no-op rather than a blocked
// send.
func (w *Writer) RequestClose() {
	select {
	case w.inbox <- job{kind: jobClose}:
	case <-w.done:
	}
}

// Close asks the run loop to flush, fsync, and close the active segment, and
// waits for it to do so. It is only safe to call when nothing else is
// reading Events concurrently (standalone use, e.g. in tests); the crate
// coordinator uses RequestClose instead since it already owns Events.
func (w *Writer) Close() error {
	w.RequestClose()
	var closeErr error
	for ev := range w.events {
		if ev.Kind == EventClosed {
			closeErr = ev.Err
		}
	}
	return closeErr
}

func (w *Writer) run() {
	for j := range w.inbox {
		switch j.kind {
		case jobAppend:
			w.handleAppend(j.entries)
		case jobClose:
			w.handleClose()
			close(w.events)
			close(w.done)
			return
		}
	}
}

func (w *Writer) handleAppend(entries []record.Entry) {
	firstID := w.nextRecordID
	batchBytes := uint64(0)
	for _, e := range entries {
		batchBytes += uint64(record.HeaderSize) + uint64(len(e.Payload))
	}

	if w.activeFile == nil || w.currentOffset+batchBytes > uint64(w.opts.SegmentMaxBytes) {
		if err := w.roll(firstID); err != nil {
			w.events <- Event{Kind: EventErrorAppend, FirstRecordID: firstID, Err: err}
			return
		}
	}

	buf := make([]byte, 0, batchBytes)
	offsets := make([]uint64, len(entries))
	totalSizes := make([]uint32, len(entries))
	digests := make([]record.Digest, len(entries))
	recordIDs := make([]uint64, len(entries))
	offset := w.currentOffset

	for i, e := range entries {
		enc, err := record.Encode(e.Digest[:], e.Payload)
		if err != nil {
			w.events <- Event{Kind: EventErrorAppend, FirstRecordID: firstID, Err: err}
			return
		}
		offsets[i] = offset
		totalSizes[i] = uint32(len(enc)) //nolint:gosec
		digests[i] = e.Digest
		recordIDs[i] = firstID + uint64(i)
		offset += uint64(len(enc))
		buf = append(buf, enc...)
	}

	if _, err := w.activeFile.Write(buf); err != nil {
		w.events <- Event{
			Kind:          EventErrorAppend,
			SegmentID:     w.activeSegmentID,
			FirstRecordID: firstID,
			Err:           &WriteError{Err: err, SegmentID: w.activeSegmentID, Op: "write"},
		}
		return
	}

	w.currentOffset = offset
	w.nextRecordID += uint64(len(entries))
	w.sinceSync++

	if w.opts.FsyncOnCommit || (w.opts.FsyncEveryN > 0 && w.sinceSync >= w.opts.FsyncEveryN) {
		if err := w.activeFile.Sync(); err != nil {
			w.events <- Event{
				Kind:          EventErrorAppend,
				SegmentID:     w.activeSegmentID,
				FirstRecordID: firstID,
				Err:           &WriteError{Err: err, SegmentID: w.activeSegmentID, Op: "fsync"},
			}
			return
		}
		w.sinceSync = 0
	}

	w.log.Debug("appended batch", "segment", w.activeSegmentID, "first_id", firstID, "count", len(entries))

	w.events <- Event{
		Kind:       EventDidAppend,
		SegmentID:  w.activeSegmentID,
		RecordIDs:  recordIDs,
		Offsets:    offsets,
		TotalSizes: totalSizes,
		Digests:    digests,
	}
}

// roll closes the current active segment (if any) and opens a fresh one
// whose segment id is newSegmentID. It never touches the caller's batch; the
// batch is written by handleAppend immediately afterward regardless of its
// size relative to SegmentMaxBytes.
func (w *Writer) roll(newSegmentID uint64) error {
	if w.activeFile != nil {
		if err := w.activeFile.Sync(); err != nil {
			return &WriteError{Err: err, SegmentID: w.activeSegmentID, Op: "sync-on-roll"}
		}
		if err := w.activeFile.Close(); err != nil {
			return &WriteError{Err: err, SegmentID: w.activeSegmentID, Op: "close-on-roll"}
		}
	}

	path := filepath.Join(w.dir, segment.Filename(newSegmentID))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644) //nolint:gosec
	if err != nil {
		if os.IsExist(err) {
			return &WriteError{Err: ErrSegmentExists, SegmentID: newSegmentID, Op: "create"}
		}
		return &WriteError{Err: err, SegmentID: newSegmentID, Op: "create"}
	}
	if _, err := f.Write(segment.EncodeHeader(newSegmentID)); err != nil {
		_ = f.Close()
		return &WriteError{Err: err, SegmentID: newSegmentID, Op: "write-header"}
	}

	w.activeFile = f
	w.activeSegmentID = newSegmentID
	w.currentOffset = uint64(segment.HeaderSize)
	w.sinceSync = 0

	w.log.Info("rolled segment", "segment", newSegmentID, "roll_id", uuid.NewString())
	w.events <- Event{Kind: EventDidRoll, SegmentID: newSegmentID}
	return nil
}

func (w *Writer) handleClose() {
	if w.activeFile == nil {
		w.events <- Event{Kind: EventClosed}
		return
	}
	if err := w.activeFile.Sync(); err != nil {
		w.events <- Event{Kind: EventClosed, Err: fmt.Errorf("writer: sync on close: %w", err)}
		return
	}
	if err := w.activeFile.Close(); err != nil {
		w.events <- Event{Kind: EventClosed, Err: fmt.Errorf("writer: close: %w", err)}
		return
	}
	w.events <- Event{Kind: EventClosed}
}
