// Package logging builds the append-only provisioning log sink.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// NewSink opens an append-only log sink at path and returns a logger plus a
// close function. Log writes are best-effort: if the file cannot be opened
// the returned logger discards everything rather than failing provisioning.
// An empty path also yields a discarding logger.
func NewSink(path string) (*log.Logger, func()) {
	if path == "" {
		return log.New(io.Discard), func() {}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return log.New(io.Discard), func() {}
	}

	logger := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
	})
	return logger, func() { f.Close() }
}
