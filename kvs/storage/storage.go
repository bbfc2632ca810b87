// Package storage owns the on-disk layout of a store instance: the file
// name scheme, the integrity-verified read path and the atomic write path.
//
// Every generation of an instance is a pair of files: <base>.json holding
// the serialized document and <base>.hash holding the 4-byte big-endian
// Adler-32 digest of the .json bytes. A pair is only valid when the digest
// matches; readers reject anything else.
package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/jrife/kvstore/kvs/checksum"
	"github.com/jrife/kvstore/kvs/codec"
	"github.com/jrife/kvstore/kvs/kvserr"
	"github.com/jrife/kvstore/kvs/value"
	"go.uber.org/zap"
)

// Requiredness controls whether the absence of a file at open time is an
// error or silently yields an empty map.
type Requiredness int

const (
	// Optional treats a missing file as an empty document
	Optional Requiredness = iota
	// Required treats a missing file as an error
	Required
)

const (
	jsonExt = ".json"
	hashExt = ".hash"
)

// JSONFile returns the document file name for a generation base path
func JSONFile(base string) string {
	return base + jsonExt
}

// HashFile returns the digest file name for a generation base path
func HashFile(base string) string {
	return base + hashExt
}

// Config contains configuration for a Store
type Config struct {
	Filesystem Filesystem
	Codec      codec.Codec
	Logger     *zap.Logger
}

// Store reads and writes the generation files of an instance
type Store struct {
	filesystem Filesystem
	codec      codec.Codec
	logger     *zap.Logger
}

// New creates a Store. A nil filesystem defaults to the OS filesystem, a
// nil codec to the JSON codec and a nil logger to the global logger.
func New(config Config) *Store {
	store := &Store{
		filesystem: config.Filesystem,
		codec:      config.Codec,
		logger:     config.Logger,
	}

	if store.filesystem == nil {
		store.filesystem = &OSFilesystem{}
	}

	if store.codec == nil {
		store.codec = &codec.JSON{}
	}

	if store.logger == nil {
		store.logger = zap.L()
	}

	return store
}

// Filesystem returns the filesystem this store operates on
func (store *Store) Filesystem() Filesystem {
	return store.filesystem
}

// Codec returns the document codec this store reads and writes with
func (store *Store) Codec() codec.Codec {
	return store.codec
}

// Load reads, verifies and decodes the generation at base. A missing
// .json file yields an empty map when need is Optional and
// KvsFileReadError when it is Required. A missing or short .hash file
// yields KvsHashFileReadError, a digest mismatch ValidationFailed, an
// unparseable or non-object document JsonParserError and a document that
// does not decode as tagged values InvalidValueType.
func (store *Store) Load(base string, need Requiredness) (map[string]value.Value, error) {
	jsonFile := JSONFile(base)
	hashFile := HashFile(base)

	exists, err := store.filesystem.Exists(jsonFile)

	if err != nil {
		store.logger.Error("could not probe KVS file", zap.String("file", jsonFile), zap.Error(err))

		return nil, kvserr.KvsFileReadError
	}

	if !exists {
		if need == Required {
			store.logger.Error("KVS file not found", zap.String("file", jsonFile))

			return nil, kvserr.KvsFileReadError
		}

		store.logger.Info("KVS file not found, using empty data", zap.String("file", jsonFile))

		return map[string]value.Value{}, nil
	}

	data, err := store.filesystem.ReadFile(jsonFile)

	if err != nil {
		store.logger.Error("could not read KVS file", zap.String("file", jsonFile), zap.Error(err))

		return nil, kvserr.KvsFileReadError
	}

	hash, err := store.filesystem.ReadFile(hashFile)

	if err != nil {
		store.logger.Error("could not read hash file", zap.String("file", hashFile), zap.Error(err))

		return nil, kvserr.KvsHashFileReadError
	}

	if len(hash) != checksum.Size {
		store.logger.Error("hash file is not a valid digest", zap.String("file", hashFile), zap.Int("size", len(hash)))

		return nil, kvserr.KvsHashFileReadError
	}

	if !checksum.Valid(data, hash) {
		store.logger.Error("KVS data corrupted", zap.String("file", jsonFile), zap.String("hash", hashFile))

		return nil, kvserr.ValidationFailed
	}

	store.logger.Debug("JSON data has valid hash", zap.String("file", jsonFile))

	document, err := store.codec.Parse(data)

	if err != nil {
		store.logger.Error("could not parse KVS file", zap.String("file", jsonFile), zap.Error(err))

		return nil, kvserr.JsonParserError
	}

	root, ok := document.(map[string]interface{})

	if !ok {
		store.logger.Error("KVS file root is not an object", zap.String("file", jsonFile))

		return nil, kvserr.JsonParserError
	}

	entries, err := codec.DecodeMap(root)

	if err != nil {
		store.logger.Error("could not decode KVS entries", zap.String("file", jsonFile), zap.Error(err))

		return nil, err
	}

	return entries, nil
}

// Save writes data as the generation at base: the .json file first, via a
// scratch file renamed into place, then its .hash companion. A reader that
// observes the window between the two writes sees a stale hash and rejects
// the pair.
func (store *Store) Save(base string, data []byte) error {
	jsonFile := JSONFile(base)

	dir := filepath.Dir(jsonFile)

	if err := store.filesystem.CreateDirectories(dir); err != nil {
		store.logger.Error("could not create storage directory", zap.String("dir", dir), zap.Error(err))

		return kvserr.PhysicalStorageFailure
	}

	scratch := fmt.Sprintf("%s.%s", jsonFile, uuid.New())

	if err := store.filesystem.WriteFile(scratch, data); err != nil {
		store.logger.Error("could not write KVS file", zap.String("file", scratch), zap.Error(err))

		return kvserr.PhysicalStorageFailure
	}

	if err := store.filesystem.Rename(scratch, jsonFile); err != nil {
		store.logger.Error("could not move KVS file into place", zap.String("file", jsonFile), zap.Error(err))

		return kvserr.PhysicalStorageFailure
	}

	hashFile := HashFile(base)

	if err := store.filesystem.WriteFile(hashFile, checksum.Bytes(checksum.Sum(data))); err != nil {
		store.logger.Error("could not write hash file", zap.String("file", hashFile), zap.Error(err))

		return kvserr.PhysicalStorageFailure
	}

	return nil
}

// Rename moves the generation pair at oldBase to newBase, the .hash file
// first. Either file being absent is not an error: a partially written
// generation rotates as far as it exists and readers catch the rest
// through digest verification.
func (store *Store) Rename(oldBase string, newBase string) error {
	if err := store.filesystem.Rename(HashFile(oldBase), HashFile(newBase)); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			store.logger.Error("could not rename hash file", zap.String("file", HashFile(oldBase)), zap.Error(err))

			return kvserr.PhysicalStorageFailure
		}
	}

	if err := store.filesystem.Rename(JSONFile(oldBase), JSONFile(newBase)); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			store.logger.Error("could not rename snapshot file", zap.String("file", JSONFile(oldBase)), zap.Error(err))

			return kvserr.PhysicalStorageFailure
		}
	}

	return nil
}
