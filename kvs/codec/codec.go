// Package codec translates between stored values and structured documents.
//
// A document is the parsed form of a serialized file. It is built from six
// shapes, each represented by a concrete Go type:
//
//	Null    nil
//	Bool    bool
//	Number  codec.Number (also accepted: float64)
//	String  string
//	List    []interface{}
//	Object  map[string]interface{}
//
// The Codec interface covers parsing and serializing documents. The adapter
// functions in this package translate documents to and from value trees
// using the tagged envelope {"t": TAG, "v": PAYLOAD}.
package codec

import "strconv"

// Document is the parsed form of a structured document
type Document = interface{}

// Codec parses and serializes structured documents
type Codec interface {
	// Parse decodes data into a document
	Parse(data []byte) (Document, error)
	// Serialize encodes a document into its stored byte form
	Serialize(document Document) ([]byte, error)
}

// Number is a numeric document node holding the exact literal it was
// parsed from. Keeping the literal lets 64-bit integers survive parsing
// without a round trip through float64.
type Number string

// MarshalJSON writes the literal unchanged
func (n Number) MarshalJSON() ([]byte, error) {
	return []byte(n), nil
}

// Int32 interprets the literal as a signed 32-bit integer
func (n Number) Int32() (int32, error) {
	v, err := strconv.ParseInt(string(n), 10, 32)

	return int32(v), err
}

// Uint32 interprets the literal as an unsigned 32-bit integer
func (n Number) Uint32() (uint32, error) {
	v, err := strconv.ParseUint(string(n), 10, 32)

	return uint32(v), err
}

// Int64 interprets the literal as a signed 64-bit integer
func (n Number) Int64() (int64, error) {
	return strconv.ParseInt(string(n), 10, 64)
}

// Uint64 interprets the literal as an unsigned 64-bit integer
func (n Number) Uint64() (uint64, error) {
	return strconv.ParseUint(string(n), 10, 64)
}

// Float64 interprets the literal as a 64-bit float
func (n Number) Float64() (float64, error) {
	return strconv.ParseFloat(string(n), 64)
}

// asNumber coerces a numeric document node to Number. Documents built in
// code may carry float64 where a parsed document carries Number.
func asNumber(document Document) (Number, bool) {
	switch n := document.(type) {
	case Number:
		return n, true
	case float64:
		return Number(strconv.FormatFloat(n, 'f', -1, 64)), true
	}

	return "", false
}
