package kvs

import (
	"github.com/jrife/kvstore/kvs/kvserr"
	"github.com/jrife/kvstore/kvs/storage"
	"go.uber.org/zap"
)

// SnapshotCount returns the number of snapshots on disk: the largest n
// such that every generation 1..n exists.
func (kvs *Kvs) SnapshotCount() (int, error) {
	if err := kvs.lock(); err != nil {
		return 0, err
	}

	defer kvs.mu.Unlock()

	return kvs.snapshotCount()
}

func (kvs *Kvs) snapshotCount() (int, error) {
	count := 0

	for idx := 1; idx <= MaxSnapshots; idx++ {
		exists, err := kvs.store.Filesystem().Exists(storage.JSONFile(kvs.generationBase(SnapshotID(idx))))

		if err != nil {
			kvs.logger.Error("could not probe snapshot", zap.Int("snapshot", idx), zap.Error(err))

			return 0, kvserr.PhysicalStorageFailure
		}

		if !exists {
			break
		}

		count = idx
	}

	return count, nil
}

// SnapshotMaxCount returns the maximum number of snapshots kept on disk
func (kvs *Kvs) SnapshotMaxCount() int {
	return MaxSnapshots
}

// SnapshotRestore replaces the live store with the contents of snapshot
// id. Generation 0 and ids beyond the current snapshot count fail with
// InvalidSnapshotID. Defaults are untouched and no snapshot is deleted.
func (kvs *Kvs) SnapshotRestore(id SnapshotID) error {
	if err := kvs.lock(); err != nil {
		return err
	}

	defer kvs.mu.Unlock()

	if id == 0 {
		kvs.logger.Error("tried to restore the working generation as a snapshot")

		return kvserr.InvalidSnapshotID
	}

	count, err := kvs.snapshotCount()

	if err != nil {
		return err
	}

	if int(id) > count {
		kvs.logger.Error("tried to restore a non-existing snapshot", zap.Uint32("snapshot", uint32(id)))

		return kvserr.InvalidSnapshotID
	}

	entries, err := kvs.store.Load(kvs.generationBase(id), storage.Required)

	if err != nil {
		return err
	}

	kvs.live = toTreeMap(entries)

	return nil
}

// rotate shifts every generation one slot deeper into the ring, dropping
// whatever occupied the last slot. The caller holds the instance lock.
func (kvs *Kvs) rotate() error {
	for idx := MaxSnapshots; idx > 0; idx-- {
		oldBase := kvs.generationBase(SnapshotID(idx - 1))
		newBase := kvs.generationBase(SnapshotID(idx))

		kvs.logger.Info("rotating snapshot", zap.String("from", storage.JSONFile(oldBase)), zap.String("to", storage.JSONFile(newBase)))

		if err := kvs.store.Rename(oldBase, newBase); err != nil {
			return err
		}
	}

	return nil
}

// GetKvsFilename returns the document file name of generation id, failing
// with FileNotFound when the file does not currently exist.
func (kvs *Kvs) GetKvsFilename(id SnapshotID) (string, error) {
	if err := kvs.lock(); err != nil {
		return "", err
	}

	defer kvs.mu.Unlock()

	return kvs.existingFile(storage.JSONFile(kvs.generationBase(id)))
}

// GetHashFilename returns the digest file name of generation id, failing
// with FileNotFound when the file does not currently exist.
func (kvs *Kvs) GetHashFilename(id SnapshotID) (string, error) {
	if err := kvs.lock(); err != nil {
		return "", err
	}

	defer kvs.mu.Unlock()

	return kvs.existingFile(storage.HashFile(kvs.generationBase(id)))
}

func (kvs *Kvs) existingFile(name string) (string, error) {
	exists, err := kvs.store.Filesystem().Exists(name)

	if err != nil {
		kvs.logger.Error("could not probe file", zap.String("file", name), zap.Error(err))

		return "", kvserr.PhysicalStorageFailure
	}

	if !exists {
		return "", kvserr.FileNotFound
	}

	return name, nil
}
