package writer

import "github.com/julianstephens/logcrate/internal/logcrate/record"

// Opts configures a Writer.
type Opts struct {
	// SegmentMaxBytes is the soft cap checked against each incoming batch.
	SegmentMaxBytes int64
	// FsyncOnCommit durably flushes the active segment after every batch.
	FsyncOnCommit bool
	// FsyncEveryN, if > 0 and FsyncOnCommit is false, durably flushes every
	// N successfully written batches.
	FsyncEveryN int
}

// EventKind distinguishes the events a Writer emits on its Events channel.
type EventKind int

const (
	// EventDidAppend reports a successfully written batch.
	EventDidAppend EventKind = iota
	// EventErrorAppend reports a batch that failed to write or to flush. When
	// the write fails the cursor is not advanced; when only the flush after a
	// successful write fails, the cursor and next record id have already
	// moved past the batch.
	EventErrorAppend
	// EventDidRoll reports that a new segment was opened.
	EventDidRoll
	// EventClosed reports that the Writer has flushed and closed the active
	// segment and its run loop has exited.
	EventClosed
)

// Event is emitted by a Writer's run loop to the coordinator that owns its
// Events channel.
type Event struct {
	Kind EventKind

	SegmentID uint64

	// Populated on EventDidAppend, in batch order.
	RecordIDs  []uint64
	Offsets    []uint64
	TotalSizes []uint32
	Digests    []record.Digest

	// Populated on EventErrorAppend: the id the failed batch would have
	// started at.
	FirstRecordID uint64

	Err error
}

// jobKind distinguishes work items placed on a Writer's inbox.
type jobKind int

const (
	jobAppend jobKind = iota
	jobClose
)

// job is one unit of work for the Writer's run loop.
type job struct {
	kind    jobKind
	entries []record.Entry
}
