package utils

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]LogLevel{
		"debug":   LogLevelDebug,
		" WARN ":  LogLevelWarn,
		"warning": LogLevelWarn,
		"error":   LogLevelError,
		"":        LogLevelInfo,
		"verbose": LogLevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLogLevel(in), in)
	}
	assert.Equal(t, "WARN", LogLevelWarn.String())
}

func TestLogger_JSONAndLevels(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := NewLogger(&LoggerConfig{Level: LogLevelWarn, Format: LogFormatJSON, Output: &buf})
	require.NoError(t, err)

	logger.Info("hidden %d", 1)
	logger.WithField("asset", "sw.js").Warn("Render failed for %s", "sw.js")
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"message":"Render failed for sw.js"`)
	assert.Contains(t, out, `"asset":"sw.js"`)

	logger.SetLevel(LogLevelDebug)
	logger.Debug("now visible")
	assert.Contains(t, buf.String(), "now visible")
}

func TestLogger_FileSink(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "logs", "adminpwa.log")
	logger, err := NewLogger(&LoggerConfig{
		Level:      LogLevelInfo,
		Format:     LogFormatCompact,
		Output:     &bytes.Buffer{},
		EnableFile: true,
		FilePath:   path,
	})
	require.NoError(t, err)

	logger.Info("icons written")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "icons written")
}

func TestProgressBar(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	pb := NewProgressBarTo(&buf, 3, "icons")
	pb.Step("icon-72x72.png", true)
	pb.Step("icon-96x96.png", false)
	pb.Step("a-very-long-file-name-that-gets-truncated.png", true)
	pb.Finish()

	out := buf.String()
	assert.Equal(t, 1, pb.Failed())
	assert.Contains(t, out, "1/3 icon-72x72.png")
	assert.Contains(t, out, "3/3 ...")
	assert.Contains(t, out, "gets-truncated.png")
	assert.True(t, bytes.HasSuffix(buf.Bytes(), []byte(")\n")))
}
