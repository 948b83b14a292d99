// Package logcrate holds the crate-wide constants, options, and error
// taxonomy shared by the record, segment, index, writer, reader, and crate
// subpackages.
package logcrate

const (
	// DefaultSegmentMaxBytes is the soft cap on active segment size checked
	// against each incoming append batch.
	DefaultSegmentMaxBytes int64 = 512 * 1024 * 1024

	// ManifestFileName is the sidecar config file kept alongside segments in
	// the crate directory. Recovery explicitly skips it (and any other
	// filename that does not match the segment naming convention) rather
	// than indexing it as a segment.
	ManifestFileName = "MANIFEST.json"

	// ManifestVersion is the current manifest schema version.
	ManifestVersion = 1

	// DefaultAppDir is the per-user directory the CLI keeps its own state
	// under (currently just log output), separate from any crate directory
	// the user names on the command line.
	DefaultAppDir = ".logcrate"
	// DefaultLogDir is the subdirectory of DefaultAppDir the CLI's rotating
	// file logger writes into when streaming to stdout/stderr is disabled.
	DefaultLogDir        = "log"
	DefaultLogFileName   = "logcrate.log"
	DefaultLogMaxSizeMB  = 100
	DefaultLogMaxBackups = 3
)
