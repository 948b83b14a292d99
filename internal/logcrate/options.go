package logcrate

// CreateOptions configures a newly created crate.
type CreateOptions struct {
	// SegmentMaxBytes is the soft cap checked against each incoming append
	// batch. Zero selects DefaultSegmentMaxBytes.
	SegmentMaxBytes int64

	// FsyncOnCommit durably flushes the active segment after every append
	// batch, not just on close and roll.
	FsyncOnCommit bool

	// FsyncEveryN, if > 0, durably flushes the active segment every N append
	// batches in addition to close/roll. Ignored if FsyncOnCommit is set.
	FsyncEveryN int

	// LogDir, LogMaxSizeMB and LogMaxBackups are carried as logging settings
	// and are not persisted in the manifest. Create and Open do not read
	// them; a crate logs only through the logger passed to Create or Open.
	LogDir        string
	LogMaxSizeMB  int
	LogMaxBackups int
}

// OpenOptions configures reopening an existing crate. Logging knobs mirror
// CreateOptions; durability and segment sizing are read from the manifest
// and may be overridden here.
type OpenOptions struct {
	FsyncOnCommit bool
	FsyncEveryN   int

	// SegmentMaxBytes, if non-zero, overrides the manifest's persisted value
	// for the remainder of this session (it is not re-persisted).
	SegmentMaxBytes int64

	LogDir        string
	LogMaxSizeMB  int
	LogMaxBackups int
}

// EffectiveSegmentMaxBytes returns o.SegmentMaxBytes, or DefaultSegmentMaxBytes
// if it was left at its zero value.
func (o CreateOptions) EffectiveSegmentMaxBytes() int64 {
	if o.SegmentMaxBytes <= 0 {
		return DefaultSegmentMaxBytes
	}
	return o.SegmentMaxBytes
}
