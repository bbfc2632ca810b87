package log

import (
	"go.uber.org/zap"
)

// New builds the process logger. Debug enables development output with
// debug-level logging, otherwise the logger uses the production
// configuration.
func New(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}

	return zap.NewProduction()
}

// Default builds the process logger, falling back to a no-op logger when
// construction fails.
func Default(debug bool) *zap.Logger {
	logger, err := New(debug)

	if err != nil {
		return zap.NewNop()
	}

	return logger
}
