package segment

const (
	// Magic is the fixed 8-byte ASCII identifier every segment file begins with.
	Magic = "logcrate"
	// Version is the only segment format version this implementation writes or accepts.
	Version uint32 = 1
	// HeaderSize is the length of the fixed segment header: magic + version + segment id.
	HeaderSize = 8 + 4 + 8
	// FilenameSuffix is appended to the 16-hex-digit segment id to form a filename.
	FilenameSuffix = ".dat"
)

// Header is the decoded form of a segment file's fixed 20-byte prefix.
type Header struct {
	Version   uint32
	SegmentID uint64
}
