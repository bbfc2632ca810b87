// Package kvs implements an embedded, persistent key-value store. Each
// instance owns a directory of generation files guarded by Adler-32
// digests, keeps a bounded ring of snapshots it can roll back to, and
// layers caller-provided defaults under the live data.
package kvs

import (
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/jrife/kvstore/kvs/codec"
	"github.com/jrife/kvstore/kvs/kvserr"
	"github.com/jrife/kvstore/kvs/storage"
	"github.com/jrife/kvstore/kvs/value"
	"go.uber.org/zap"
)

// MaxSnapshots is the maximum number of snapshots kept on disk. Rotation
// past this bound drops the oldest.
const MaxSnapshots = 3

// InstanceID identifies a store instance within a directory
type InstanceID uint32

// SnapshotID identifies a generation: 0 is the live working generation,
// 1..MaxSnapshots are rotated snapshots with 1 the newest.
type SnapshotID uint32

// Requiredness controls whether a missing file at open time is an error
type Requiredness = storage.Requiredness

const (
	// Optional treats a missing file as an empty store
	Optional = storage.Optional
	// Required treats a missing file as an error
	Required = storage.Required
)

// Config contains configuration for opening a store instance
type Config struct {
	// InstanceID identifies the instance inside Dir
	InstanceID InstanceID
	// Dir is the directory holding the instance files. Empty means the
	// current directory.
	Dir string
	// NeedDefaults controls whether a missing defaults file fails the open
	NeedDefaults Requiredness
	// NeedKVS controls whether a missing working generation fails the open
	NeedKVS Requiredness
	// Filesystem overrides the filesystem. Nil means the OS filesystem.
	Filesystem storage.Filesystem
	// Codec overrides the document codec. Nil means the JSON codec.
	Codec codec.Codec
	// Logger is the logger for this instance. Nil means the global logger.
	Logger *zap.Logger
}

// Kvs is a store instance. All operations are serialized by an instance
// lock acquired without blocking: an operation that finds the lock held
// fails immediately with MutexLockFailed instead of waiting.
type Kvs struct {
	mu          sync.Mutex
	live        *treemap.Map
	defaults    *treemap.Map
	prefix      string
	store       *storage.Store
	logger      *zap.Logger
	flushOnExit atomic.Bool
	closed      atomic.Bool
}

// Open opens or initializes the store instance described by config. Flush
// on exit starts enabled and can be controlled with SetFlushOnExit. With
// both requiredness flags Optional an open with no files on disk succeeds
// with empty maps.
func Open(config Config) (*Kvs, error) {
	dir := config.Dir

	if dir == "" {
		dir = "."
	}

	logger := config.Logger

	if logger == nil {
		logger = zap.L()
	}

	logger = logger.With(zap.Uint32("instance", uint32(config.InstanceID)))

	kvs := &Kvs{
		prefix: filepath.Join(dir, fmt.Sprintf("kvs_%d", config.InstanceID)),
		store: storage.New(storage.Config{
			Filesystem: config.Filesystem,
			Codec:      config.Codec,
			Logger:     logger,
		}),
		logger: logger,
	}

	defaults, err := kvs.store.Load(kvs.prefix+"_default", config.NeedDefaults)

	if err != nil {
		return nil, err
	}

	live, err := kvs.store.Load(kvs.generationBase(0), config.NeedKVS)

	if err != nil {
		return nil, err
	}

	kvs.defaults = toTreeMap(defaults)
	kvs.live = toTreeMap(live)
	kvs.flushOnExit.Store(true)

	logger.Info("opened KVS instance", zap.String("prefix", kvs.prefix))
	logger.Info("max snapshot count", zap.Int("max", MaxSnapshots))

	return kvs, nil
}

func toTreeMap(entries map[string]value.Value) *treemap.Map {
	m := treemap.NewWithStringComparator()

	for key, v := range entries {
		m.Put(key, v)
	}

	return m
}

func (kvs *Kvs) generationBase(id SnapshotID) string {
	return fmt.Sprintf("%s_%d", kvs.prefix, id)
}

// lock acquires the instance lock without blocking
func (kvs *Kvs) lock() error {
	if !kvs.mu.TryLock() {
		return kvserr.MutexLockFailed
	}

	return nil
}

// GetValue returns the value for key: the live entry if one exists,
// otherwise the default entry, otherwise KeyNotFound.
func (kvs *Kvs) GetValue(key string) (value.Value, error) {
	if err := kvs.lock(); err != nil {
		return nil, err
	}

	defer kvs.mu.Unlock()

	if v, ok := kvs.live.Get(key); ok {
		return v.(value.Value).Clone(), nil
	}

	if v, ok := kvs.defaults.Get(key); ok {
		return v.(value.Value).Clone(), nil
	}

	return nil, kvserr.KeyNotFound
}

// GetDefaultValue returns the default value for key or KeyNotFound
func (kvs *Kvs) GetDefaultValue(key string) (value.Value, error) {
	if err := kvs.lock(); err != nil {
		return nil, err
	}

	defer kvs.mu.Unlock()

	if v, ok := kvs.defaults.Get(key); ok {
		return v.(value.Value).Clone(), nil
	}

	return nil, kvserr.KeyNotFound
}

// HasDefaultValue reports whether key has a default value
func (kvs *Kvs) HasDefaultValue(key string) (bool, error) {
	if err := kvs.lock(); err != nil {
		return false, err
	}

	defer kvs.mu.Unlock()

	_, ok := kvs.defaults.Get(key)

	return ok, nil
}

// KeyExists reports whether key is in the live store. Defaults do not
// count.
func (kvs *Kvs) KeyExists(key string) (bool, error) {
	if err := kvs.lock(); err != nil {
		return false, err
	}

	defer kvs.mu.Unlock()

	_, ok := kvs.live.Get(key)

	return ok, nil
}

// GetAllKeys returns the keys of the live store in a stable order
func (kvs *Kvs) GetAllKeys() ([]string, error) {
	if err := kvs.lock(); err != nil {
		return nil, err
	}

	defer kvs.mu.Unlock()

	keys := make([]string, 0, kvs.live.Size())

	for _, key := range kvs.live.Keys() {
		keys = append(keys, key.(string))
	}

	return keys, nil
}

// SetValue inserts or overwrites the live entry for key
func (kvs *Kvs) SetValue(key string, v value.Value) error {
	if err := kvs.lock(); err != nil {
		return err
	}

	defer kvs.mu.Unlock()

	kvs.live.Put(key, v.Clone())

	return nil
}

// RemoveKey removes key from the live store, failing with KeyNotFound if
// it is absent.
func (kvs *Kvs) RemoveKey(key string) error {
	if err := kvs.lock(); err != nil {
		return err
	}

	defer kvs.mu.Unlock()

	if _, ok := kvs.live.Get(key); !ok {
		return kvserr.KeyNotFound
	}

	kvs.live.Remove(key)

	return nil
}

// ResetKey removes the live entry for key so that reads fall back to the
// default value. It fails with KeyDefaultNotFound when key has no default.
func (kvs *Kvs) ResetKey(key string) error {
	if err := kvs.lock(); err != nil {
		return err
	}

	defer kvs.mu.Unlock()

	if _, ok := kvs.defaults.Get(key); !ok {
		return kvserr.KeyDefaultNotFound
	}

	kvs.live.Remove(key)

	return nil
}

// Reset clears the live store entirely. Defaults are preserved.
func (kvs *Kvs) Reset() error {
	if err := kvs.lock(); err != nil {
		return err
	}

	defer kvs.mu.Unlock()

	kvs.live.Clear()

	return nil
}

// Flush persists the live store as the working generation. If a working
// generation already exists on disk it is rotated into the snapshot ring
// first.
func (kvs *Kvs) Flush() error {
	if err := kvs.lock(); err != nil {
		return err
	}

	defer kvs.mu.Unlock()

	return kvs.flush()
}

func (kvs *Kvs) flush() error {
	logger := kvs.logger.With(zap.String("operation", "Flush"))

	entries := make(map[string]value.Value, kvs.live.Size())

	kvs.live.Each(func(key interface{}, v interface{}) {
		entries[key.(string)] = v.(value.Value)
	})

	document, err := codec.EncodeMap(entries)

	if err != nil {
		logger.Error("could not encode live store", zap.Error(err))

		return err
	}

	base := kvs.generationBase(0)

	exists, err := kvs.store.Filesystem().Exists(storage.JSONFile(base))

	if err != nil {
		logger.Error("could not probe working generation", zap.Error(err))

		return kvserr.PhysicalStorageFailure
	}

	if exists {
		if err := kvs.rotate(); err != nil {
			return err
		}
	}

	data, err := kvs.store.Codec().Serialize(document)

	if err != nil {
		logger.Error("could not serialize live store", zap.Error(err))

		return kvserr.JsonGeneratorError
	}

	return kvs.store.Save(base, data)
}

// SetFlushOnExit controls whether Close performs a best-effort flush
func (kvs *Kvs) SetFlushOnExit(flush bool) {
	kvs.flushOnExit.Store(flush)
}

// Close tears the instance down. When flush on exit is enabled it
// performs a best-effort flush whose result is discarded. Closing twice
// has no effect beyond the first call.
func (kvs *Kvs) Close() error {
	if kvs.closed.Swap(true) {
		return nil
	}

	if kvs.flushOnExit.Load() {
		if err := kvs.Flush(); err != nil {
			kvs.logger.Error("flush on close failed", zap.Error(err))
		}
	}

	return nil
}
