// Package crate implements the single coordinator that owns a crate's
// in-memory Index and serializes every append behind a dedicated Writer
// goroutine, while letting reads proceed independently and concurrently.
//
// The coordinator itself never performs segment I/O. It only: accepts
// requests over channels, forwards append batches to the Writer in the
// order received, applies the Writer's resulting events to the Index, and
// hands read requests a copied-out snapshot of the Index entries they need
// before stepping out of the way. The teacher's wal.Log enforces this same
// single-owner discipline with a mutex; here it falls out instead of giving
// each piece of mutable state exactly one goroutine that ever touches it,
// which the single-owner contract permits as an alternative to locking.
package crate

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/julianstephens/go-utils/generic"
	"github.com/julianstephens/logcrate/internal/logcrate"
	"github.com/julianstephens/logcrate/internal/logcrate/index"
	"github.com/julianstephens/logcrate/internal/logcrate/manifest"
	"github.com/julianstephens/logcrate/internal/logcrate/reader"
	"github.com/julianstephens/logcrate/internal/logcrate/record"
	"github.com/julianstephens/logcrate/internal/logcrate/segment"
	"github.com/julianstephens/logcrate/internal/logcrate/writer"
	"github.com/julianstephens/logcrate/internal/logger"
)

// Crate is a handle to an open, embeddable log-structured store. All of its
// public methods are safe for concurrent use.
type Crate struct {
	dir string
	log logger.Logger

	reqAppend    chan appendRequest
	reqReadOne   chan readOneRequest
	reqReadBatch chan readBatchRequest
	reqRange     chan rangeRequest
	reqEmpty     chan isEmptyRequest
	reqPrune     chan pruneRequest
	pruneDone    chan pruneResult
	reqClose     chan closeRequest
}

// Create makes a fresh crate directory, writes its manifest, and opens it.
// It fails with ErrDirectoryExists if dir already exists.
func Create(dir string, opts logcrate.CreateOptions, log logger.Logger) (*Crate, error) {
	if _, err := os.Stat(dir); err == nil {
		return nil, logcrate.WrapErr("create", logcrate.ErrDirectoryExists, dir, nil)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:gosec
		return nil, logcrate.WrapErr("create", logcrate.ErrCreateFailed, dir, err)
	}

	segmentMaxBytes := opts.EffectiveSegmentMaxBytes()
	m := manifest.New(logcrate.ManifestVersion, segmentMaxBytes, opts.FsyncOnCommit, opts.FsyncEveryN)
	if err := manifest.Create(dir, m); err != nil {
		return nil, logcrate.WrapErr("create", logcrate.ErrCreateFailed, dir, err)
	}

	return open(dir, log, writer.Opts{
		SegmentMaxBytes: segmentMaxBytes,
		FsyncOnCommit:   opts.FsyncOnCommit,
		FsyncEveryN:     opts.FsyncEveryN,
	})
}

// Open reopens an existing crate directory, replaying its segments to
// rebuild the Index and resuming the Writer at the tail of the last
// segment. It fails with ErrDirectoryMissing if dir does not exist.
func Open(dir string, opts logcrate.OpenOptions, log logger.Logger) (*Crate, error) {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, logcrate.WrapErr("open", logcrate.ErrDirectoryMissing, dir, err)
	}

	m, err := manifest.Load(dir)
	if err != nil {
		return nil, logcrate.WrapErr("open", logcrate.ErrDirectoryMissing, dir, err)
	}

	segmentMaxBytes := generic.If(opts.SegmentMaxBytes > 0, opts.SegmentMaxBytes, m.SegmentMaxBytes)
	fsyncOnCommit := m.FsyncOnCommit || opts.FsyncOnCommit
	fsyncEveryN := generic.If(opts.FsyncEveryN > 0, opts.FsyncEveryN, m.FsyncEveryN)

	return open(dir, log, writer.Opts{
		SegmentMaxBytes: segmentMaxBytes,
		FsyncOnCommit:   fsyncOnCommit,
		FsyncEveryN:     fsyncEveryN,
	})
}

func open(dir string, log logger.Logger, wopts writer.Opts) (*Crate, error) {
	if log == nil {
		log = logger.NoOpLogger{}
	}

	rec, err := scanSegments(dir)
	if err != nil {
		return nil, err
	}

	w, err := writer.New(dir, wopts, log, writer.State{
		NextRecordID:      rec.NextRecordID,
		HasActiveSegment:  rec.HasActiveSegment,
		ActiveSegmentID:   rec.ActiveSegmentID,
		ActiveSegmentSize: rec.ActiveSegmentSize,
	})
	if err != nil {
		return nil, err
	}

	c := &Crate{
		dir:          dir,
		log:          log,
		reqAppend:    make(chan appendRequest),
		reqReadOne:   make(chan readOneRequest),
		reqReadBatch: make(chan readBatchRequest),
		reqRange:     make(chan rangeRequest),
		reqEmpty:     make(chan isEmptyRequest),
		reqPrune:     make(chan pruneRequest),
		pruneDone:    make(chan pruneResult),
		reqClose:     make(chan closeRequest),
	}

	go c.run(w, rec.Index)
	return c, nil
}

// run is the coordinator's event loop. idx and the pending-append FIFO are
// the only mutable state it touches; nothing outside this goroutine ever
// reads or writes them.
func (c *Crate) run(w *writer.Writer, idx *index.Index) {
	var pending []*appendRequest
	var fatal error
	var closed bool
	var pendingClose *closeRequest
	events := w.Events()

	// handedOff is closed once the most recent handoff to the Writer (a batch
	// or the close job) has been accepted. Each handoff runs on its own
	// goroutine and first waits for the previous one, so the Writer receives
	// them in the order this loop issued them while this loop stays free to
	// drain events.
	handedOff := make(chan struct{})
	close(handedOff)
	handOff := func(send func()) {
		prev, next := handedOff, make(chan struct{})
		handedOff = next
		go func() {
			<-prev
			send()
			close(next)
		}()
	}

	unavailable := func() error {
		if fatal != nil {
			return fatal
		}
		if closed {
			return logcrate.ErrClosed
		}
		return nil
	}

	for {
		select {
		case req := <-c.reqAppend:
			if err := unavailable(); err != nil {
				req.reply <- appendReply{err: err}
				continue
			}
			if len(req.entries) == 0 {
				req.reply <- appendReply{err: ErrEmptyBatch}
				continue
			}
			pending = append(pending, &req)
			handOff(func() { _ = w.Submit(req.entries) })

		case req := <-c.reqReadOne:
			if err := unavailable(); err != nil {
				req.reply <- readOneReply{err: err}
				continue
			}
			entry, ok := idx.Get(req.id)
			if !ok {
				req.reply <- readOneReply{err: &logcrate.NotFoundError{RecordID: req.id}}
				continue
			}
			go func(id uint64, entry index.Entry, reply chan readOneReply) {
				rec, err := reader.ReadOne(c.dir, id, entry)
				reply <- readOneReply{rec: rec, err: err}
			}(req.id, entry, req.reply)

		case req := <-c.reqReadBatch:
			if err := unavailable(); err != nil {
				req.reply <- readBatchReply{err: err}
				continue
			}
			if _, ok := idx.Get(req.startID); !ok {
				req.reply <- readBatchReply{err: &logcrate.NotFoundError{RecordID: req.startID}}
				continue
			}
			ids := idx.From(req.startID)
			located := make([]reader.LocatedEntry, len(ids))
			for i, id := range ids {
				e, _ := idx.Get(id)
				located[i] = reader.LocatedEntry{ID: id, Entry: e}
			}
			go func(entries []reader.LocatedEntry, maxBytes uint64, reply chan readBatchReply) {
				recs, err := reader.ReadBatch(c.dir, entries, maxBytes)
				reply <- readBatchReply{recs: recs, err: err}
			}(located, req.maxBytes, req.reply)

		case req := <-c.reqRange:
			min, max, ok := idx.Range()
			req.reply <- rangeReply{min: min, max: max, ok: ok}

		case req := <-c.reqEmpty:
			req.reply <- idx.IsEmpty()

		case req := <-c.reqPrune:
			if err := unavailable(); err != nil {
				req.reply <- err
				continue
			}
			go c.scanAndRemoveSegments(req.minSegmentID, req.reply)

		case res := <-c.pruneDone:
			if res.err == nil {
				for _, id := range res.removedSegments {
					for _, rid := range append([]uint64{}, idx.Keys()...) {
						if e, ok := idx.Get(rid); ok && e.SegmentID == id {
							idx.Delete(rid)
						}
					}
				}
			}
			res.reply <- res.err

		case req := <-c.reqClose:
			if closed {
				req.reply <- logcrate.ErrClosed
				continue
			}
			closed = true
			pendingClose = &req
			// RequestClose blocks until the Writer's run loop accepts the close
			// job, which it may not be able to do immediately if it is itself
			// blocked sending an in-flight append's event on w.Events(). Doing
			// this off the coordinator's own goroutine keeps this select loop
			// free to keep draining w.Events(), which is what lets the Writer
			// reach the point where it can accept the close job at all. The
			// close job is handed off after every batch already handed off.
			handOff(w.RequestClose)

		case ev, ok := <-events:
			if !ok {
				// The Writer closes Events after EventClosed; stop selecting on it.
				events = nil
				continue
			}
			switch ev.Kind {
			case writer.EventDidAppend:
				if len(pending) == 0 {
					fatal = logcrate.ErrInvariantViolation
					c.log.Error("writer emitted did_append with no pending waiter", fatal)
					continue
				}
				head := pending[0]
				pending = pending[1:]
				for i, id := range ev.RecordIDs {
					idx.Put(id, index.Entry{
						SegmentID: ev.SegmentID,
						Offset:    ev.Offsets[i],
						TotalSize: ev.TotalSizes[i],
						Digest:    ev.Digests[i],
					})
				}
				head.reply <- appendReply{ids: ev.RecordIDs}

			case writer.EventErrorAppend:
				if len(pending) == 0 {
					fatal = logcrate.ErrInvariantViolation
					c.log.Error("writer emitted error_append with no pending waiter", fatal)
					continue
				}
				head := pending[0]
				pending = pending[1:]
				head.reply <- appendReply{err: ev.Err}

			case writer.EventDidRoll:
				c.log.Info("segment rolled", "segment", ev.SegmentID)

			case writer.EventClosed:
				if pendingClose != nil {
					pendingClose.reply <- ev.Err
					pendingClose = nil
				}
			}
		}
	}
}

// scanAndRemoveSegments lists the crate directory, decides which sealed
// segments fall below minSegmentID, and removes their files. It runs on its
// own goroutine, off the coordinator's event loop, since directory listing
// and file removal are the only parts of a prune that do I/O; it never
// touches idx, which only the coordinator goroutine may mutate. The result
// is reported back over pruneDone so the coordinator can apply the matching
// Index deletions itself.
func (c *Crate) scanAndRemoveSegments(minSegmentID uint64, reply chan error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		c.pruneDone <- pruneResult{err: err, reply: reply}
		return
	}

	var segIDs []uint64
	for _, de := range entries {
		if de.IsDir() {
			continue
		}
		id, err := segment.ParseFilename(de.Name())
		if err != nil {
			continue
		}
		segIDs = append(segIDs, id)
	}
	if len(segIDs) == 0 {
		c.pruneDone <- pruneResult{reply: reply}
		return
	}
	sort.Slice(segIDs, func(i, j int) bool { return segIDs[i] < segIDs[j] })
	// The highest-numbered segment on disk may be the active one the Writer
	// still has open; Prune never removes it regardless of minSegmentID.
	active := segIDs[len(segIDs)-1]

	var removed []uint64
	for _, id := range segIDs {
		if id >= minSegmentID || id == active {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, segment.Filename(id))); err != nil {
			c.pruneDone <- pruneResult{removedSegments: removed, err: err, reply: reply}
			return
		}
		removed = append(removed, id)
	}
	c.pruneDone <- pruneResult{removedSegments: removed, reply: reply}
}

// Append writes a batch of entries and returns the contiguous ascending
// record ids assigned to them.
func (c *Crate) Append(entries []record.Entry) ([]uint64, error) {
	reply := make(chan appendReply, 1)
	c.reqAppend <- appendRequest{entries: entries, reply: reply}
	r := <-reply
	return r.ids, r.err
}

// AppendOne writes a single entry and returns its assigned record id.
func (c *Crate) AppendOne(digest record.Digest, payload []byte) (uint64, error) {
	ids, err := c.Append([]record.Entry{{Digest: digest, Payload: payload}})
	if err != nil {
		return 0, err
	}
	return ids[0], nil
}

// Read returns the single record named by id.
func (c *Crate) Read(id uint64) (reader.Record, error) {
	reply := make(chan readOneReply, 1)
	c.reqReadOne <- readOneRequest{id: id, reply: reply}
	r := <-reply
	return r.rec, r.err
}

// ReadFrom returns as many whole records starting at startID as fit within
// maxBytes of cumulative payload, in ascending id order.
func (c *Crate) ReadFrom(startID uint64, maxBytes uint64) ([]reader.Record, error) {
	reply := make(chan readBatchReply, 1)
	c.reqReadBatch <- readBatchRequest{startID: startID, maxBytes: maxBytes, reply: reply}
	r := <-reply
	return r.recs, r.err
}

// Range returns the smallest and largest indexed record ids, or ok=false if
// the crate is empty.
func (c *Crate) Range() (min, max uint64, ok bool) {
	reply := make(chan rangeReply, 1)
	c.reqRange <- rangeRequest{reply: reply}
	r := <-reply
	return r.min, r.max, r.ok
}

// IsEmpty reports whether the crate holds no records.
func (c *Crate) IsEmpty() bool {
	reply := make(chan bool, 1)
	c.reqEmpty <- isEmptyRequest{reply: reply}
	return <-reply
}

// Prune removes every sealed segment strictly below minSegmentID, along
// with its Index entries. It never removes the active segment. This is an
// explicit, caller-driven retention hook; the crate never prunes on its own.
func (c *Crate) Prune(minSegmentID uint64) error {
	reply := make(chan error, 1)
	c.reqPrune <- pruneRequest{minSegmentID: minSegmentID, reply: reply}
	return <-reply
}

// Close flushes and closes the active segment. Append, Read, ReadFrom, Prune
// and Close issued after Close return ErrClosed; Range and IsEmpty keep
// answering from the in-memory Index.
func (c *Crate) Close() error {
	reply := make(chan error, 1)
	c.reqClose <- closeRequest{reply: reply}
	return <-reply
}
