package renderer

import (
	"fmt"

	"github.com/df07/go-parallel-pathtracer/pkg/core"
)

// DefaultLogger implements core.Logger by writing to stdout
type DefaultLogger struct{}

func (dl *DefaultLogger) Printf(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// NewDefaultLogger creates a new default logger
func NewDefaultLogger() core.Logger {
	return &DefaultLogger{}
}

// discardLogger drops all output
type discardLogger struct{}

func (discardLogger) Printf(format string, args ...interface{}) {}

// NewDiscardLogger returns a logger that ignores everything, for tests and quiet runs
func NewDiscardLogger() core.Logger {
	return discardLogger{}
}
