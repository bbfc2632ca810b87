// Package builder provides a fluent way to open store instances and a
// registry that shares live instances by id.
package builder

import (
	"github.com/jrife/kvstore/kvs"
	"github.com/jrife/kvstore/kvs/codec"
	"github.com/jrife/kvstore/kvs/storage"
	"go.uber.org/zap"
)

// Builder accumulates open options for a store instance
type Builder struct {
	config kvs.Config
}

// New creates a builder for the given instance. Both requiredness flags
// start Optional and the directory defaults to the current directory.
func New(instanceID kvs.InstanceID) *Builder {
	return &Builder{config: kvs.Config{InstanceID: instanceID}}
}

// NeedDefaults requires the defaults file to exist when flag is true
func (builder *Builder) NeedDefaults(flag bool) *Builder {
	builder.config.NeedDefaults = requiredness(flag)

	return builder
}

// NeedKVS requires the working generation to exist when flag is true
func (builder *Builder) NeedKVS(flag bool) *Builder {
	builder.config.NeedKVS = requiredness(flag)

	return builder
}

// Dir sets the directory where the instance files live. Use "" or "." for
// the current directory.
func (builder *Builder) Dir(dir string) *Builder {
	builder.config.Dir = dir

	return builder
}

// Filesystem overrides the filesystem the instance operates on
func (builder *Builder) Filesystem(filesystem storage.Filesystem) *Builder {
	builder.config.Filesystem = filesystem

	return builder
}

// Codec overrides the document codec the instance reads and writes with
func (builder *Builder) Codec(c codec.Codec) *Builder {
	builder.config.Codec = c

	return builder
}

// Logger sets the logger for the instance
func (builder *Builder) Logger(logger *zap.Logger) *Builder {
	builder.config.Logger = logger

	return builder
}

// Build opens the instance with the accumulated options
func (builder *Builder) Build() (*kvs.Kvs, error) {
	return kvs.Open(builder.config)
}

func requiredness(flag bool) kvs.Requiredness {
	if flag {
		return kvs.Required
	}

	return kvs.Optional
}
