package crate

import (
	"github.com/julianstephens/logcrate/internal/logcrate/reader"
	"github.com/julianstephens/logcrate/internal/logcrate/record"
)

type appendRequest struct {
	entries []record.Entry
	reply   chan appendReply
}

type appendReply struct {
	ids []uint64
	err error
}

type readOneRequest struct {
	id    uint64
	reply chan readOneReply
}

type readOneReply struct {
	rec reader.Record
	err error
}

type readBatchRequest struct {
	startID  uint64
	maxBytes uint64
	reply    chan readBatchReply
}

type readBatchReply struct {
	recs []reader.Record
	err  error
}

type rangeRequest struct {
	reply chan rangeReply
}

type rangeReply struct {
	min, max uint64
	ok       bool
}

type isEmptyRequest struct {
	reply chan bool
}

type pruneRequest struct {
	minSegmentID uint64
	reply        chan error
}

// pruneResult is reported back to the coordinator by the goroutine that
// performs a prune's directory I/O, so the only work the coordinator itself
// does for a prune is the in-memory Index deletion.
type pruneResult struct {
	removedSegments []uint64
	err             error
	reply           chan error
}

type closeRequest struct {
	reply chan error
}
