package cli

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/go-utils/cliutil"
	"github.com/julianstephens/logcrate/internal/logcrate"
	"github.com/julianstephens/logcrate/internal/logcrate/crate"
	"github.com/julianstephens/logcrate/internal/logcrate/record"
	"github.com/julianstephens/logcrate/internal/logger"
)

// ErrNotImplemented is returned when a command is not yet implemented.
var ErrNotImplemented = errors.New("not yet implemented")

// Globals are the CLI flags every subcommand shares.
type Globals struct {
	Logger logger.Logger `kong:"-"`
}

func parseDigest(s string) (record.Digest, error) {
	var d record.Digest
	raw, err := hex.DecodeString(s)
	if err != nil {
		return d, fmt.Errorf("invalid digest %q: %w", s, err)
	}
	if len(raw) != record.DigestSize {
		return d, fmt.Errorf("digest %q must be %d bytes hex-encoded, got %d", s, record.DigestSize, len(raw))
	}
	copy(d[:], raw)
	return d, nil
}

func readPayload(arg string) ([]byte, error) {
	if arg == "-" {
		return os.ReadFile("/dev/stdin") //nolint:gosec
	}
	return []byte(arg), nil
}

// CreateCmd creates a new crate directory.
type CreateCmd struct {
	Dir             string `arg:"" help:"Path to the new crate directory"`
	SegmentMaxBytes int64  `help:"Soft cap on active segment size, in bytes" default:"0"`
	FsyncOnCommit   bool   `help:"Durably flush after every append batch"`
	FsyncEveryN     int    `help:"Durably flush every N append batches" default:"0"`
}

func (c *CreateCmd) Run(g *Globals) error {
	cr, err := crate.Create(c.Dir, logcrate.CreateOptions{
		SegmentMaxBytes: c.SegmentMaxBytes,
		FsyncOnCommit:   c.FsyncOnCommit,
		FsyncEveryN:     c.FsyncEveryN,
	}, g.Logger)
	if err != nil {
		cliutil.PrintError(fmt.Sprintf("create failed: %v", err))
		return err
	}
	defer func() { _ = cr.Close() }()
	fmt.Printf("created crate at %s\n", c.Dir)
	return nil
}

// AppendCmd appends a single record to an existing crate.
type AppendCmd struct {
	Dir     string `arg:"" help:"Path to the crate directory"`
	Digest  string `arg:"" help:"40-character hex-encoded 20-byte digest"`
	Payload string `arg:"" help:"Payload bytes, or - to read from stdin"`
}

func (c *AppendCmd) Run(g *Globals) error {
	digest, err := parseDigest(c.Digest)
	if err != nil {
		cliutil.PrintError(err.Error())
		return err
	}
	payload, err := readPayload(c.Payload)
	if err != nil {
		cliutil.PrintError(err.Error())
		return err
	}

	cr, err := crate.Open(c.Dir, logcrate.OpenOptions{}, g.Logger)
	if err != nil {
		cliutil.PrintError(fmt.Sprintf("open failed: %v", err))
		return err
	}
	defer func() { _ = cr.Close() }()

	id, err := cr.AppendOne(digest, payload)
	if err != nil {
		cliutil.PrintError(fmt.Sprintf("append failed: %v", err))
		return err
	}
	fmt.Printf("appended record %d\n", id)
	return nil
}

// ReadCmd reads a single record by id.
type ReadCmd struct {
	Dir string `arg:"" help:"Path to the crate directory"`
	ID  uint64 `arg:"" help:"Record id to read"`
}

func (c *ReadCmd) Run(g *Globals) error {
	cr, err := crate.Open(c.Dir, logcrate.OpenOptions{}, g.Logger)
	if err != nil {
		cliutil.PrintError(fmt.Sprintf("open failed: %v", err))
		return err
	}
	defer func() { _ = cr.Close() }()

	rec, err := cr.Read(c.ID)
	if err != nil {
		cliutil.PrintError(fmt.Sprintf("read failed: %v", err))
		return err
	}
	fmt.Printf("id=%d digest=%s payload=%q\n", rec.ID, hex.EncodeToString(rec.Digest[:]), rec.Payload)
	return nil
}

// RangeCmd reads a batch of records starting at an id, bounded by a byte budget.
type RangeCmd struct {
	Dir      string `arg:"" help:"Path to the crate directory"`
	Start    uint64 `arg:"" help:"Starting record id"`
	MaxBytes uint64 `help:"Cumulative payload byte budget for the batch" default:"1048576"`
}

func (c *RangeCmd) Run(g *Globals) error {
	cr, err := crate.Open(c.Dir, logcrate.OpenOptions{}, g.Logger)
	if err != nil {
		cliutil.PrintError(fmt.Sprintf("open failed: %v", err))
		return err
	}
	defer func() { _ = cr.Close() }()

	recs, err := cr.ReadFrom(c.Start, c.MaxBytes)
	if err != nil {
		cliutil.PrintError(fmt.Sprintf("range read failed: %v", err))
		return err
	}
	for _, rec := range recs {
		fmt.Printf("id=%d digest=%s payload=%q\n", rec.ID, hex.EncodeToString(rec.Digest[:]), rec.Payload)
	}
	fmt.Printf("%d records\n", len(recs))
	return nil
}

// EmptyCmd reports whether a crate holds any records.
type EmptyCmd struct {
	Dir string `arg:"" help:"Path to the crate directory"`
}

func (c *EmptyCmd) Run(g *Globals) error {
	cr, err := crate.Open(c.Dir, logcrate.OpenOptions{}, g.Logger)
	if err != nil {
		cliutil.PrintError(fmt.Sprintf("open failed: %v", err))
		return err
	}
	defer func() { _ = cr.Close() }()

	fmt.Println(cr.IsEmpty())
	return nil
}

// PruneCmd removes sealed segments below a minimum segment id.
type PruneCmd struct {
	Dir          string `arg:"" help:"Path to the crate directory"`
	MinSegmentID uint64 `arg:"" help:"Remove sealed segments with an id below this"`
}

func (c *PruneCmd) Run(g *Globals) error {
	cr, err := crate.Open(c.Dir, logcrate.OpenOptions{}, g.Logger)
	if err != nil {
		cliutil.PrintError(fmt.Sprintf("open failed: %v", err))
		return err
	}
	defer func() { _ = cr.Close() }()

	if err := cr.Prune(c.MinSegmentID); err != nil {
		cliutil.PrintError(fmt.Sprintf("prune failed: %v", err))
		return err
	}
	fmt.Println("pruned")
	return nil
}
