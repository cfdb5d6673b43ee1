package log_test

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/askiada/werner/internal/log"
)

func TestNewWritesOneLinePerEvent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "werner.log")
	logger, closeFn, err := log.New(path, log.ParseLevel("info"))
	require.NoError(t, err)

	logger.Info("FASTA file name taken as: reads.fasta")
	logger.Error("metaflye could not be found in your path")
	logger.Debug("hidden")
	require.NoError(t, closeFn())

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 2)

	line := regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\t(INFO|ERROR)\t.+$`)
	for _, l := range lines {
		assert.Regexp(t, line, l)
	}
	assert.True(t, strings.HasSuffix(lines[0], "INFO\tFASTA file name taken as: reads.fasta"))
	assert.True(t, strings.HasSuffix(lines[1], "ERROR\tmetaflye could not be found in your path"))
}

func TestNewTruncatesPreviousLog(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "werner.log")
	require.NoError(t, os.WriteFile(path, []byte("previous run\n"), 0o600))

	logger, closeFn, err := log.New(path, log.ParseLevel("info"))
	require.NoError(t, err)
	logger.Info("new run")
	require.NoError(t, closeFn())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(content), "previous run")
	assert.Contains(t, string(content), "new run")
}

func TestNewInvalidPath(t *testing.T) {
	t.Parallel()

	_, _, err := log.New(filepath.Join(t.TempDir(), "missing", "werner.log"), log.ParseLevel("info"))
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, zapcore.DebugLevel, log.ParseLevel("debug").Level())
	assert.Equal(t, zapcore.InfoLevel, log.ParseLevel("not-a-level").Level())
}
