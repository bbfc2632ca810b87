package storage_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jrife/kvstore/kvs/checksum"
	"github.com/jrife/kvstore/kvs/kvserr"
	"github.com/jrife/kvstore/kvs/storage"
	"github.com/jrife/kvstore/kvs/value"
	"go.uber.org/zap"
)

// faultFilesystem wraps a filesystem and fails selected operations
type faultFilesystem struct {
	storage.Filesystem
	existsErr error
	writeErr  error
	renameErr error
	mkdirErr  error
}

func (filesystem *faultFilesystem) Exists(path string) (bool, error) {
	if filesystem.existsErr != nil {
		return false, filesystem.existsErr
	}

	return filesystem.Filesystem.Exists(path)
}

func (filesystem *faultFilesystem) WriteFile(path string, data []byte) error {
	if filesystem.writeErr != nil {
		return filesystem.writeErr
	}

	return filesystem.Filesystem.WriteFile(path, data)
}

func (filesystem *faultFilesystem) Rename(oldPath string, newPath string) error {
	if filesystem.renameErr != nil {
		return filesystem.renameErr
	}

	return filesystem.Filesystem.Rename(oldPath, newPath)
}

func (filesystem *faultFilesystem) CreateDirectories(path string) error {
	if filesystem.mkdirErr != nil {
		return filesystem.mkdirErr
	}

	return filesystem.Filesystem.CreateDirectories(path)
}

func newStore(filesystem storage.Filesystem) *storage.Store {
	return storage.New(storage.Config{Filesystem: filesystem, Logger: zap.NewNop()})
}

// writePair stores data as a valid generation pair at base
func writePair(t *testing.T, filesystem storage.Filesystem, base string, data string) {
	t.Helper()

	if err := filesystem.WriteFile(storage.JSONFile(base), []byte(data)); err != nil {
		t.Fatalf("could not write %s: %s", storage.JSONFile(base), err.Error())
	}

	if err := filesystem.WriteFile(storage.HashFile(base), checksum.Bytes(checksum.Sum([]byte(data)))); err != nil {
		t.Fatalf("could not write %s: %s", storage.HashFile(base), err.Error())
	}
}

func TestLoad(t *testing.T) {
	testCases := map[string]struct {
		setup   func(t *testing.T, filesystem storage.Filesystem)
		need    storage.Requiredness
		entries map[string]value.Value
		err     error
	}{
		"absent-optional": {
			setup:   func(t *testing.T, filesystem storage.Filesystem) {},
			need:    storage.Optional,
			entries: map[string]value.Value{},
		},
		"absent-required": {
			setup: func(t *testing.T, filesystem storage.Filesystem) {},
			need:  storage.Required,
			err:   kvserr.KvsFileReadError,
		},
		"missing-hash": {
			setup: func(t *testing.T, filesystem storage.Filesystem) {
				if err := filesystem.WriteFile("kvs_1_0.json", []byte(`{}`)); err != nil {
					t.Fatalf("could not write file: %s", err.Error())
				}
			},
			need: storage.Required,
			err:  kvserr.KvsHashFileReadError,
		},
		"short-hash": {
			setup: func(t *testing.T, filesystem storage.Filesystem) {
				if err := filesystem.WriteFile("kvs_1_0.json", []byte(`{}`)); err != nil {
					t.Fatalf("could not write file: %s", err.Error())
				}

				if err := filesystem.WriteFile("kvs_1_0.hash", []byte{0x01, 0x02}); err != nil {
					t.Fatalf("could not write file: %s", err.Error())
				}
			},
			need: storage.Required,
			err:  kvserr.KvsHashFileReadError,
		},
		"tampered-data": {
			setup: func(t *testing.T, filesystem storage.Filesystem) {
				writePair(t, filesystem, "kvs_1_0", `{"n":{"t":"i32","v":7}}`)

				if err := filesystem.WriteFile("kvs_1_0.json", []byte(`{"n":{"t":"i32","v":8}}`)); err != nil {
					t.Fatalf("could not write file: %s", err.Error())
				}
			},
			need: storage.Required,
			err:  kvserr.ValidationFailed,
		},
		"unparseable": {
			setup: func(t *testing.T, filesystem storage.Filesystem) {
				writePair(t, filesystem, "kvs_1_0", `{"n":`)
			},
			need: storage.Required,
			err:  kvserr.JsonParserError,
		},
		"non-object-root": {
			setup: func(t *testing.T, filesystem storage.Filesystem) {
				writePair(t, filesystem, "kvs_1_0", `[1,2,3]`)
			},
			need: storage.Required,
			err:  kvserr.JsonParserError,
		},
		"untagged-entry": {
			setup: func(t *testing.T, filesystem storage.Filesystem) {
				writePair(t, filesystem, "kvs_1_0", `{"n":{"v":7}}`)
			},
			need: storage.Required,
			err:  kvserr.InvalidValueType,
		},
		"valid": {
			setup: func(t *testing.T, filesystem storage.Filesystem) {
				writePair(t, filesystem, "kvs_1_0", `{"n":{"t":"i32","v":7},"b":{"t":"bool","v":true}}`)
			},
			need: storage.Required,
			entries: map[string]value.Value{
				"n": value.I32(7),
				"b": value.Bool(true),
			},
		},
		"valid-empty-object": {
			setup: func(t *testing.T, filesystem storage.Filesystem) {
				writePair(t, filesystem, "kvs_1_0", `{}`)
			},
			need:    storage.Required,
			entries: map[string]value.Value{},
		},
	}

	for name, testCase := range testCases {
		t.Run(name, func(t *testing.T) {
			filesystem := storage.NewMemoryFilesystem()
			testCase.setup(t, filesystem)

			entries, err := newStore(filesystem).Load("kvs_1_0", testCase.need)

			if testCase.err != nil {
				if !errors.Is(err, testCase.err) {
					t.Fatalf("expected error %v, got %v", testCase.err, err)
				}

				return
			}

			if err != nil {
				t.Fatalf("expected load to succeed: %s", err.Error())
			}

			diff := cmp.Diff(testCase.entries, entries)

			if diff != "" {
				t.Fatalf(diff)
			}
		})
	}
}

func TestLoadProbeFailure(t *testing.T) {
	filesystem := &faultFilesystem{
		Filesystem: storage.NewMemoryFilesystem(),
		existsErr:  errors.New("disk on fire"),
	}

	if _, err := newStore(filesystem).Load("kvs_1_0", storage.Optional); !errors.Is(err, kvserr.KvsFileReadError) {
		t.Fatalf("expected KvsFileReadError, got %v", err)
	}
}

func TestSave(t *testing.T) {
	filesystem := storage.NewMemoryFilesystem()
	store := newStore(filesystem)

	data := []byte(`{"n":{"t":"i32","v":7}}`)

	if err := store.Save("dir/kvs_123_0", data); err != nil {
		t.Fatalf("expected save to succeed: %s", err.Error())
	}

	written, err := filesystem.ReadFile("dir/kvs_123_0.json")

	if err != nil {
		t.Fatalf("expected the document file to exist: %s", err.Error())
	}

	diff := cmp.Diff(string(data), string(written))

	if diff != "" {
		t.Fatalf(diff)
	}

	hash, err := filesystem.ReadFile("dir/kvs_123_0.hash")

	if err != nil {
		t.Fatalf("expected the hash file to exist: %s", err.Error())
	}

	if !checksum.Valid(written, hash) {
		t.Fatalf("expected the stored digest to validate the stored document")
	}
}

func TestSaveFailures(t *testing.T) {
	testCases := map[string]struct {
		filesystem storage.Filesystem
	}{
		"mkdir-fails": {
			filesystem: &faultFilesystem{
				Filesystem: storage.NewMemoryFilesystem(),
				mkdirErr:   errors.New("read-only filesystem"),
			},
		},
		"write-fails": {
			filesystem: &faultFilesystem{
				Filesystem: storage.NewMemoryFilesystem(),
				writeErr:   errors.New("no space left"),
			},
		},
		"rename-fails": {
			filesystem: &faultFilesystem{
				Filesystem: storage.NewMemoryFilesystem(),
				renameErr:  errors.New("cross-device link"),
			},
		},
	}

	for name, testCase := range testCases {
		t.Run(name, func(t *testing.T) {
			err := newStore(testCase.filesystem).Save("kvs_1_0", []byte(`{}`))

			if !errors.Is(err, kvserr.PhysicalStorageFailure) {
				t.Fatalf("expected PhysicalStorageFailure, got %v", err)
			}
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	filesystem := storage.NewMemoryFilesystem()
	store := newStore(filesystem)

	data := []byte(`{"r":{"t":"obj","v":{"a":{"t":"arr","v":[{"t":"bool","v":true}]}}}}`)

	if err := store.Save("kvs_5_0", data); err != nil {
		t.Fatalf("expected save to succeed: %s", err.Error())
	}

	entries, err := store.Load("kvs_5_0", storage.Required)

	if err != nil {
		t.Fatalf("expected load to succeed: %s", err.Error())
	}

	expected := map[string]value.Value{
		"r": value.Object{"a": value.Array{value.Bool(true)}},
	}

	diff := cmp.Diff(expected, entries)

	if diff != "" {
		t.Fatalf(diff)
	}
}

func TestRename(t *testing.T) {
	filesystem := storage.NewMemoryFilesystem()
	store := newStore(filesystem)

	writePair(t, filesystem, "kvs_1_0", `{}`)

	if err := store.Rename("kvs_1_0", "kvs_1_1"); err != nil {
		t.Fatalf("expected rename to succeed: %s", err.Error())
	}

	for _, file := range []string{"kvs_1_1.json", "kvs_1_1.hash"} {
		exists, err := filesystem.Exists(file)

		if err != nil {
			t.Fatalf("could not probe %s: %s", file, err.Error())
		}

		if !exists {
			t.Fatalf("expected %s to exist after rename", file)
		}
	}

	for _, file := range []string{"kvs_1_0.json", "kvs_1_0.hash"} {
		exists, err := filesystem.Exists(file)

		if err != nil {
			t.Fatalf("could not probe %s: %s", file, err.Error())
		}

		if exists {
			t.Fatalf("expected %s to be gone after rename", file)
		}
	}
}

func TestRenameMissingSource(t *testing.T) {
	store := newStore(storage.NewMemoryFilesystem())

	if err := store.Rename("kvs_1_0", "kvs_1_1"); err != nil {
		t.Fatalf("expected renaming a missing generation to succeed: %s", err.Error())
	}
}

func TestRenameFailure(t *testing.T) {
	filesystem := &faultFilesystem{
		Filesystem: storage.NewMemoryFilesystem(),
		renameErr:  errors.New("permission denied"),
	}

	if err := newStore(filesystem).Rename("kvs_1_0", "kvs_1_1"); !errors.Is(err, kvserr.PhysicalStorageFailure) {
		t.Fatalf("expected PhysicalStorageFailure, got %v", err)
	}
}
