package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
)

var _ Codec = (*JSON)(nil)

// JSON is the document codec for the JSON storage format. Serialization is
// compact and writes object keys in sorted order, so a given document always
// produces identical bytes and therefore an identical checksum.
type JSON struct {
}

// Parse implements Codec.Parse
func (codec *JSON) Parse(data []byte) (Document, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var raw interface{}

	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("could not parse JSON document: %s", err.Error())
	}

	if decoder.More() {
		return nil, fmt.Errorf("unexpected data after JSON document")
	}

	return fromJSON(raw), nil
}

// Serialize implements Codec.Serialize
func (codec *JSON) Serialize(document Document) ([]byte, error) {
	data, err := json.Marshal(document)

	if err != nil {
		return nil, fmt.Errorf("could not generate JSON document: %s", err.Error())
	}

	return data, nil
}

// fromJSON rewrites the encoding/json representation into the document
// model, replacing json.Number nodes with Number.
func fromJSON(raw interface{}) Document {
	switch node := raw.(type) {
	case json.Number:
		return Number(node)
	case []interface{}:
		list := make([]interface{}, len(node))

		for i, element := range node {
			list[i] = fromJSON(element)
		}

		return list
	case map[string]interface{}:
		object := make(map[string]interface{}, len(node))

		for key, element := range node {
			object[key] = fromJSON(element)
		}

		return object
	}

	return raw
}
