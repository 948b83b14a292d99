package manifest_test

import (
	"os"
	"testing"

	tst "github.com/julianstephens/go-utils/tests"
	"github.com/julianstephens/logcrate/internal/logcrate/manifest"
)

func TestCreateLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	m := manifest.New(manifest.ManifestSchemaVersion, 8<<20, true, 0)
	tst.RequireNoError(t, manifest.Create(dir, m))

	loaded, err := manifest.Load(dir)
	tst.RequireNoError(t, err)
	tst.RequireDeepEqual(t, loaded.SegmentMaxBytes, int64(8<<20))
	tst.RequireDeepEqual(t, loaded.FsyncOnCommit, true)
}

func TestCreateRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	m := manifest.New(manifest.ManifestSchemaVersion, 1<<20, false, 0)
	tst.RequireNoError(t, manifest.Create(dir, m))

	err := manifest.Create(dir, m)
	if err == nil {
		t.Fatal("expected error creating manifest a second time")
	}
}

func TestLoadMissing(t *testing.T) {
	dir := t.TempDir()
	_, err := manifest.Load(dir)
	if err == nil {
		t.Fatal("expected error loading a missing manifest")
	}
}

func TestLoadDetectsChecksumTamper(t *testing.T) {
	dir := t.TempDir()
	m := manifest.New(manifest.ManifestSchemaVersion, 1<<20, false, 0)
	tst.RequireNoError(t, manifest.Create(dir, m))

	path := dir + "/" + manifest.FileName
	data, err := os.ReadFile(path) //nolint:gosec
	tst.RequireNoError(t, err)

	tampered := append([]byte{}, data...)
	for i, b := range tampered {
		if b == '1' {
			tampered[i] = '2'
			break
		}
	}
	tst.RequireNoError(t, os.WriteFile(path, tampered, 0o600))

	_, err = manifest.Load(dir)
	if err == nil {
		t.Fatal("expected checksum mismatch error")
	}
}
