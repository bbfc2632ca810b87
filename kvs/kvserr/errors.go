package kvserr

// Code enumerates every error the store can surface. The set is closed:
// each subsystem maps its native failures onto one of these codes at the
// boundary where they occur, and callers match with errors.Is.
type Code int

const (
	// UnmappedError indicates a failure with no assigned code
	UnmappedError Code = iota
	// FileNotFound indicates a requested file does not exist
	FileNotFound
	// KvsFileReadError indicates the KVS data file could not be read
	KvsFileReadError
	// KvsHashFileReadError indicates the hash companion file could not be read
	KvsHashFileReadError
	// JsonParserError indicates the stored document could not be parsed
	JsonParserError
	// JsonGeneratorError indicates the document could not be serialized
	JsonGeneratorError
	// PhysicalStorageFailure indicates a filesystem operation failed
	PhysicalStorageFailure
	// IntegrityCorrupted indicates the storage integrity is broken
	IntegrityCorrupted
	// ValidationFailed indicates data did not match its recorded checksum
	ValidationFailed
	// EncryptionFailed is reserved for encrypted storage
	EncryptionFailed
	// ResourceBusy indicates a resource is busy
	ResourceBusy
	// OutOfStorageSpace indicates the storage medium is full
	OutOfStorageSpace
	// QuotaExceeded indicates a storage quota was exceeded
	QuotaExceeded
	// AuthenticationFailed indicates an authentication failure
	AuthenticationFailed
	// KeyNotFound indicates the key is absent from the map the operation
	// consults
	KeyNotFound
	// KeyDefaultNotFound indicates the key has no default value
	KeyDefaultNotFound
	// SerializationFailed indicates a serialization failure
	SerializationFailed
	// InvalidSnapshotID indicates the snapshot ID does not name a snapshot
	InvalidSnapshotID
	// ConversionFailed indicates a value conversion failure
	ConversionFailed
	// MutexLockFailed indicates the instance lock could not be acquired
	MutexLockFailed
	// InvalidValueType indicates a document does not encode a valid value
	InvalidValueType
)

var messages = map[Code]string{
	UnmappedError:          "Error that was not yet mapped",
	FileNotFound:           "File not found",
	KvsFileReadError:       "KVS file read error",
	KvsHashFileReadError:   "KVS hash file read error",
	JsonParserError:        "JSON parser error",
	JsonGeneratorError:     "JSON generator error",
	PhysicalStorageFailure: "Physical storage failure",
	IntegrityCorrupted:     "Integrity corrupted",
	ValidationFailed:       "Validation failed",
	EncryptionFailed:       "Encryption failed",
	ResourceBusy:           "Resource is busy",
	OutOfStorageSpace:      "Out of storage space",
	QuotaExceeded:          "Quota exceeded",
	AuthenticationFailed:   "Authentication failed",
	KeyNotFound:            "Key not found",
	KeyDefaultNotFound:     "Key default value not found",
	SerializationFailed:    "Serialization failed",
	InvalidSnapshotID:      "Invalid snapshot ID",
	ConversionFailed:       "Conversion failed",
	MutexLockFailed:        "Mutex failed",
	InvalidValueType:       "Invalid value type",
}

func (code Code) Error() string {
	message, ok := messages[code]

	if !ok {
		return "Unknown Error!"
	}

	return message
}
