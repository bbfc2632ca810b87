package codec

import (
	"github.com/jrife/kvstore/kvs/kvserr"
	"github.com/jrife/kvstore/kvs/value"
)

// FromDocument translates an untagged document into a value. Numbers map
// to F64 since an untagged document carries no width information. Tooling
// uses this to turn loose user input into storable values.
func FromDocument(document Document) (value.Value, error) {
	switch node := document.(type) {
	case nil:
		return value.Null{}, nil
	case bool:
		return value.Bool(node), nil
	case string:
		return value.String(node), nil
	case []interface{}:
		array := make(value.Array, len(node))

		for i, element := range node {
			converted, err := FromDocument(element)

			if err != nil {
				return nil, err
			}

			array[i] = converted
		}

		return array, nil
	case map[string]interface{}:
		object := make(value.Object, len(node))

		for key, element := range node {
			converted, err := FromDocument(element)

			if err != nil {
				return nil, err
			}

			object[key] = converted
		}

		return object, nil
	}

	if number, ok := asNumber(document); ok {
		n, err := number.Float64()

		if err != nil {
			return nil, kvserr.InvalidValueType
		}

		return value.F64(n), nil
	}

	return nil, kvserr.InvalidValueType
}

// ToDocument translates a value into an untagged document, the inverse of
// FromDocument up to numeric width. Tooling uses this to render stored
// values back to the user.
func ToDocument(v value.Value) (Document, error) {
	switch v := v.(type) {
	case value.Null:
		return nil, nil
	case value.Bool:
		return bool(v), nil
	case value.I32:
		return int32(v), nil
	case value.U32:
		return uint32(v), nil
	case value.I64:
		return int64(v), nil
	case value.U64:
		return uint64(v), nil
	case value.F64:
		return float64(v), nil
	case value.String:
		return string(v), nil
	case value.Array:
		list := make([]interface{}, len(v))

		for i, element := range v {
			converted, err := ToDocument(element)

			if err != nil {
				return nil, err
			}

			list[i] = converted
		}

		return list, nil
	case value.Object:
		object := make(map[string]interface{}, len(v))

		for key, element := range v {
			converted, err := ToDocument(element)

			if err != nil {
				return nil, err
			}

			object[key] = converted
		}

		return object, nil
	}

	return nil, kvserr.InvalidValueType
}
