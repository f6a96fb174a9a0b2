// Package logger builds the hclog loggers used across the module.
package logger

import (
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
)

// Name is the root logger name.
const Name = "flowcore"

// New returns a root logger writing to stderr at the given level ("trace",
// "debug", "info", "warn", "error"). Unknown levels fall back to info.
func New(level string, json bool) hclog.Logger {
	return NewWithOutput(level, json, os.Stderr)
}

// NewWithOutput is like New but writes to w.
func NewWithOutput(level string, json bool, w io.Writer) hclog.Logger {
	lvl := hclog.LevelFromString(level)
	if lvl == hclog.NoLevel {
		lvl = hclog.Info
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:       Name,
		Level:      lvl,
		Output:     w,
		JSONFormat: json,
	})
}

// OrDefault returns l, or a null logger when l is nil.
func OrDefault(l hclog.Logger) hclog.Logger {
	if l == nil {
		return hclog.NewNullLogger()
	}
	return l
}
