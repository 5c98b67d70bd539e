package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSink_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "provision.log")

	logger, closeSink := NewSink(path)
	logger.Info("install finished", "artifact", "A.cab", "status", "installed")
	closeSink()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "A.cab")
	assert.Contains(t, string(data), "installed")
}

func TestNewSink_Appends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "provision.log")

	logger, closeSink := NewSink(path)
	logger.Info("first run")
	closeSink()

	logger, closeSink = NewSink(path)
	logger.Info("second run")
	closeSink()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "first run")
	assert.Contains(t, string(data), "second run")
}

func TestNewSink_UnwritablePathDegradesToNoop(t *testing.T) {
	// A directory as the log path cannot be opened for append.
	logger, closeSink := NewSink(t.TempDir())
	defer closeSink()

	require.NotNil(t, logger)
	logger.Info("must not panic")
}

func TestNewSink_EmptyPath(t *testing.T) {
	logger, closeSink := NewSink("")
	defer closeSink()

	require.NotNil(t, logger)
	logger.Info("discarded")
}
