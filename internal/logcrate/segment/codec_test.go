package segment_test

import (
	"testing"

	tst "github.com/julianstephens/go-utils/tests"
	"github.com/julianstephens/logcrate/internal/logcrate/segment"
)

func TestEncodeDecodeHeaderRoundTrip(t *testing.T) {
	buf := segment.EncodeHeader(42)
	tst.RequireDeepEqual(t, len(buf), segment.HeaderSize)

	hdr, err := segment.DecodeHeader(buf)
	tst.RequireNoError(t, err)
	tst.RequireDeepEqual(t, hdr.SegmentID, uint64(42))
	tst.RequireDeepEqual(t, hdr.Version, segment.Version)
}

func TestDecodeHeaderBadMagic(t *testing.T) {
	buf := segment.EncodeHeader(1)
	buf[0] = 'x'

	_, err := segment.DecodeHeader(buf)
	if err == nil {
		t.Fatal("expected error for bad magic")
	}
	he, ok := err.(*segment.HeaderError)
	if !ok {
		t.Fatalf("expected *segment.HeaderError, got %T", err)
	}
	if he.Unwrap() != segment.ErrCorruptHeader {
		t.Errorf("expected ErrCorruptHeader, got %v", he.Unwrap())
	}
}

func TestDecodeHeaderTruncated(t *testing.T) {
	_, err := segment.DecodeHeader([]byte("logcrate"))
	if err == nil {
		t.Fatal("expected error for truncated header")
	}
}

func TestDecodeHeaderVersionMismatch(t *testing.T) {
	buf := segment.EncodeHeader(1)
	buf[8], buf[9], buf[10], buf[11] = 0, 0, 0, 2 // version = 2

	_, err := segment.DecodeHeader(buf)
	if err == nil {
		t.Fatal("expected error for version mismatch")
	}
	he, ok := err.(*segment.HeaderError)
	if !ok {
		t.Fatalf("expected *segment.HeaderError, got %T", err)
	}
	if he.Unwrap() != segment.ErrVersionMismatch {
		t.Errorf("expected ErrVersionMismatch, got %v", he.Unwrap())
	}
}

func TestFilenameRoundTrip(t *testing.T) {
	name := segment.Filename(255)
	tst.RequireDeepEqual(t, name, "00000000000000ff.dat")

	segID, err := segment.ParseFilename(name)
	tst.RequireNoError(t, err)
	tst.RequireDeepEqual(t, segID, uint64(255))
}

func TestParseFilenameRejectsForeignFiles(t *testing.T) {
	cases := []string{
		"MANIFEST.json",
		"0000000000000000.dat.tmp",
		"000000000000000g.dat",
		"0000000000000000",
		".dat",
	}
	for _, name := range cases {
		if _, err := segment.ParseFilename(name); err == nil {
			t.Errorf("expected ParseFilename(%q) to fail", name)
		}
	}
}
