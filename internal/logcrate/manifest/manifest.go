// Package manifest persists crate-wide configuration (segment sizing,
// durability policy) in a MANIFEST.json sidecar inside the crate directory,
// so a reopened crate remembers the options it was created with.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/go-utils/checksum"
	"github.com/julianstephens/go-utils/helpers"
	"github.com/julianstephens/go-utils/jsonutil"
	"github.com/julianstephens/go-utils/validator"
)

const FileName = "MANIFEST.json"

// body is the on-disk JSON shape, excluding the integrity checksum.
type body struct {
	Version         int   `json:"version"`
	SegmentMaxBytes int64 `json:"segment_max_bytes"`
	FsyncOnCommit   bool  `json:"fsync_on_commit"`
	FsyncEveryN     int   `json:"fsync_every_n"`
}

// Manifest is the decoded manifest, including its self-integrity checksum.
type Manifest struct {
	body
	Checksum uint32 `json:"checksum"`
}

// New returns a Manifest for the given configuration, with Version and
// Checksum populated.
func New(version int, segmentMaxBytes int64, fsyncOnCommit bool, fsyncEveryN int) *Manifest {
	m := &Manifest{body: body{
		Version:         version,
		SegmentMaxBytes: segmentMaxBytes,
		FsyncOnCommit:   fsyncOnCommit,
		FsyncEveryN:     fsyncEveryN,
	}}
	m.Checksum = m.computeChecksum()
	return m
}

func (m *Manifest) computeChecksum() uint32 {
	data, _ := jsonutil.Marshal(m.body) //nolint:errcheck
	return checksum.CRC32C(data)
}

// Create writes a new manifest file, refusing to overwrite one that already
// exists.
func Create(dir string, m *Manifest) error {
	if err := validator.Numbers[int64]().ValidateNonZero(m.SegmentMaxBytes); err != nil {
		return &Error{Err: fmt.Errorf("%w: %v", ErrEncode, err), Path: dir}
	}

	path := filepath.Join(dir, FileName)
	if helpers.Exists(path) {
		return &Error{Err: ErrAlreadyExists, Path: path}
	}
	return write(path, m)
}

// Load reads and validates the manifest file in dir, verifying its
// self-checksum.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	if !helpers.Exists(path) {
		return nil, &Error{Err: ErrNotFound, Path: path}
	}

	m := &Manifest{}
	if err := jsonutil.ReadFileStrict(path, m); err != nil {
		return nil, &Error{Err: fmt.Errorf("%w: %v", ErrDecode, err), Path: path}
	}

	if got, want := m.Checksum, m.computeChecksum(); got != want {
		return nil, &Error{Err: ErrChecksumMismatch, Path: path}
	}
	if m.Version > ManifestSchemaVersion {
		return nil, &Error{Err: ErrUnsupportedVersion, Path: path}
	}

	return m, nil
}

func write(path string, m *Manifest) error {
	data, err := jsonutil.Marshal(m)
	if err != nil {
		return &Error{Err: fmt.Errorf("%w: %v", ErrEncode, err), Path: path}
	}
	if err := helpers.AtomicFileWrite(path, data); err != nil {
		return &Error{Err: fmt.Errorf("%w: %v", ErrWrite, err), Path: path}
	}

	dir, err := os.Open(filepath.Dir(path)) //nolint:gosec
	if err != nil {
		return &Error{Err: fmt.Errorf("%w: %v", ErrWrite, err), Path: path}
	}
	defer func() { _ = dir.Close() }()
	if err := dir.Sync(); err != nil {
		return &Error{Err: fmt.Errorf("%w: %v", ErrWrite, err), Path: path}
	}
	return nil
}

// ManifestSchemaVersion is the highest manifest schema version this
// implementation understands.
const ManifestSchemaVersion = 1
