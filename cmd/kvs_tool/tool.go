// kvs_tool exercises a store instance from the command line: set, get and
// remove keys or list everything an instance holds.
package main

import (
	"fmt"
	"io"

	"github.com/jrife/kvstore/kvs"
	"github.com/jrife/kvstore/kvs/builder"
	"github.com/jrife/kvstore/kvs/codec"
	"github.com/jrife/kvstore/kvs/value"
	"github.com/jrife/kvstore/utils/log"
	"go.uber.org/zap"
)

// Options are the command line options for kvs_tool
type Options struct {
	Operation string `short:"o" long:"operation" required:"true" choice:"setkey" choice:"getkey" choice:"removekey" choice:"listkeys" description:"Operation to perform"`
	Key       string `short:"k" long:"key" description:"Key to operate on"`
	Payload   string `short:"p" long:"payload" description:"Payload for setkey: a number, true/false, null, a quoted string, a JSON array or a JSON object"`
	Instance  uint32 `short:"i" long:"instance" default:"0" description:"Instance ID"`
	Dir       string `short:"d" long:"dir" default:"." description:"Directory holding the instance files"`
	Debug     bool   `long:"debug" description:"Enable debug logging"`
}

// Run executes one operation against the instance named by options,
// writing results to out.
func Run(options Options, out io.Writer) error {
	logger := log.Default(options.Debug)
	defer logger.Sync()

	store, err := builder.New(kvs.InstanceID(options.Instance)).
		Dir(options.Dir).
		Logger(logger).
		Build()

	if err != nil {
		logger.Error("could not open instance", zap.Error(err))

		return err
	}

	defer store.Close()

	switch options.Operation {
	case "setkey":
		v, err := parsePayload(options.Payload)

		if err != nil {
			logger.Error("could not parse payload", zap.Error(err))

			return err
		}

		return store.SetValue(options.Key, v)
	case "getkey":
		v, err := store.GetValue(options.Key)

		if err != nil {
			logger.Error("could not get key", zap.String("key", options.Key), zap.Error(err))

			return err
		}

		rendered, err := renderValue(v)

		if err != nil {
			logger.Error("could not render value", zap.String("key", options.Key), zap.Error(err))

			return err
		}

		fmt.Fprintln(out, rendered)

		return nil
	case "removekey":
		return store.RemoveKey(options.Key)
	case "listkeys":
		keys, err := store.GetAllKeys()

		if err != nil {
			logger.Error("could not list keys", zap.Error(err))

			return err
		}

		for _, key := range keys {
			fmt.Fprintln(out, key)
		}

		return nil
	}

	return fmt.Errorf("%s is not a valid operation", options.Operation)
}

// parsePayload turns a command line payload into a storable value. The
// payload is a JSON document; untagged numbers come in as f64. A payload
// that is a tagged {"t": ..., "v": ...} object sets the typed value it
// encodes.
func parsePayload(payload string) (value.Value, error) {
	jsonCodec := &codec.JSON{}

	document, err := jsonCodec.Parse([]byte(payload))

	if err != nil {
		return nil, err
	}

	if typed, err := codec.Decode(document); err == nil {
		return typed, nil
	}

	return codec.FromDocument(document)
}

// renderValue renders a stored value as untagged JSON
func renderValue(v value.Value) (string, error) {
	document, err := codec.ToDocument(v)

	if err != nil {
		return "", err
	}

	jsonCodec := &codec.JSON{}

	data, err := jsonCodec.Serialize(document)

	if err != nil {
		return "", err
	}

	return string(data), nil
}
