package codec

import (
	"strconv"

	"github.com/jrife/kvstore/kvs/kvserr"
	"github.com/jrife/kvstore/kvs/value"
)

// Value tags used in the {"t": TAG, "v": PAYLOAD} envelope
const (
	tagNull   = "null"
	tagBool   = "bool"
	tagI32    = "i32"
	tagU32    = "u32"
	tagI64    = "i64"
	tagU64    = "u64"
	tagF64    = "f64"
	tagString = "str"
	tagArray  = "arr"
	tagObject = "obj"
)

func envelope(tag string, payload Document) map[string]interface{} {
	return map[string]interface{}{"t": tag, "v": payload}
}

// Encode translates a value into its tagged document form
func Encode(v value.Value) (Document, error) {
	switch v := v.(type) {
	case value.Null:
		return envelope(tagNull, nil), nil
	case value.Bool:
		return envelope(tagBool, bool(v)), nil
	case value.I32:
		return envelope(tagI32, Number(strconv.FormatInt(int64(v), 10))), nil
	case value.U32:
		return envelope(tagU32, Number(strconv.FormatUint(uint64(v), 10))), nil
	case value.I64:
		return envelope(tagI64, Number(strconv.FormatInt(int64(v), 10))), nil
	case value.U64:
		return envelope(tagU64, Number(strconv.FormatUint(uint64(v), 10))), nil
	case value.F64:
		return envelope(tagF64, float64(v)), nil
	case value.String:
		return envelope(tagString, string(v)), nil
	case value.Array:
		list := make([]interface{}, len(v))

		for i, element := range v {
			encoded, err := Encode(element)

			if err != nil {
				return nil, err
			}

			list[i] = encoded
		}

		return envelope(tagArray, list), nil
	case value.Object:
		object := make(map[string]interface{}, len(v))

		for key, element := range v {
			encoded, err := Encode(element)

			if err != nil {
				return nil, err
			}

			object[key] = encoded
		}

		return envelope(tagObject, object), nil
	}

	return nil, kvserr.InvalidValueType
}

// Decode translates a tagged document back into a value. Any shape that
// does not match the envelope or whose payload does not match its tag
// fails with InvalidValueType. The first failing child fails the whole
// decode.
func Decode(document Document) (value.Value, error) {
	object, ok := document.(map[string]interface{})

	if !ok || len(object) != 2 {
		return nil, kvserr.InvalidValueType
	}

	rawTag, ok := object["t"]

	if !ok {
		return nil, kvserr.InvalidValueType
	}

	tag, ok := rawTag.(string)

	if !ok {
		return nil, kvserr.InvalidValueType
	}

	payload, ok := object["v"]

	if !ok {
		return nil, kvserr.InvalidValueType
	}

	switch tag {
	case tagNull:
		if payload != nil {
			return nil, kvserr.InvalidValueType
		}

		return value.Null{}, nil
	case tagBool:
		b, ok := payload.(bool)

		if !ok {
			return nil, kvserr.InvalidValueType
		}

		return value.Bool(b), nil
	case tagI32:
		number, ok := asNumber(payload)

		if !ok {
			return nil, kvserr.InvalidValueType
		}

		n, err := number.Int32()

		if err != nil {
			return nil, kvserr.InvalidValueType
		}

		return value.I32(n), nil
	case tagU32:
		number, ok := asNumber(payload)

		if !ok {
			return nil, kvserr.InvalidValueType
		}

		n, err := number.Uint32()

		if err != nil {
			return nil, kvserr.InvalidValueType
		}

		return value.U32(n), nil
	case tagI64:
		number, ok := asNumber(payload)

		if !ok {
			return nil, kvserr.InvalidValueType
		}

		n, err := number.Int64()

		if err != nil {
			return nil, kvserr.InvalidValueType
		}

		return value.I64(n), nil
	case tagU64:
		number, ok := asNumber(payload)

		if !ok {
			return nil, kvserr.InvalidValueType
		}

		n, err := number.Uint64()

		if err != nil {
			return nil, kvserr.InvalidValueType
		}

		return value.U64(n), nil
	case tagF64:
		number, ok := asNumber(payload)

		if !ok {
			return nil, kvserr.InvalidValueType
		}

		n, err := number.Float64()

		if err != nil {
			return nil, kvserr.InvalidValueType
		}

		return value.F64(n), nil
	case tagString:
		s, ok := payload.(string)

		if !ok {
			return nil, kvserr.InvalidValueType
		}

		return value.String(s), nil
	case tagArray:
		list, ok := payload.([]interface{})

		if !ok {
			return nil, kvserr.InvalidValueType
		}

		array := make(value.Array, len(list))

		for i, element := range list {
			decoded, err := Decode(element)

			if err != nil {
				return nil, err
			}

			array[i] = decoded
		}

		return array, nil
	case tagObject:
		inner, ok := payload.(map[string]interface{})

		if !ok {
			return nil, kvserr.InvalidValueType
		}

		object := make(value.Object, len(inner))

		for key, element := range inner {
			decoded, err := Decode(element)

			if err != nil {
				return nil, err
			}

			object[key] = decoded
		}

		return object, nil
	}

	return nil, kvserr.InvalidValueType
}

// EncodeMap translates a full key-value map into the top-level document
// object stored in a KVS file.
func EncodeMap(entries map[string]value.Value) (Document, error) {
	document := make(map[string]interface{}, len(entries))

	for key, v := range entries {
		encoded, err := Encode(v)

		if err != nil {
			return nil, err
		}

		document[key] = encoded
	}

	return document, nil
}

// DecodeMap translates a top-level document object back into a key-value
// map.
func DecodeMap(document map[string]interface{}) (map[string]value.Value, error) {
	entries := make(map[string]value.Value, len(document))

	for key, element := range document {
		decoded, err := Decode(element)

		if err != nil {
			return nil, err
		}

		entries[key] = decoded
	}

	return entries, nil
}
