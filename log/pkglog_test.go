package log

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRunLoggerWritesHeader(t *testing.T) {
	dir := t.TempDir()
	rl, err := NewRunLogger(dir, "job-a")
	require.NoError(t, err)

	rl.WritePhase("spawn")
	rl.Write([]byte("hello from the child\n"))
	rl.WriteResult(true, 5*time.Millisecond, "")

	contents, err := os.ReadFile(filepath.Join(dir, "job-a.log"))
	require.NoError(t, err)
	s := string(contents)
	assert.Contains(t, s, "Run log: job-a")
	assert.Contains(t, s, "Phase: spawn")
	assert.Contains(t, s, "hello from the child")
	assert.Contains(t, s, "RUN OK")
}

func TestNewRunLoggerFailureDetail(t *testing.T) {
	dir := t.TempDir()
	rl, err := NewRunLogger(dir, "job-b")
	require.NoError(t, err)

	rl.WriteResult(false, time.Millisecond, "exit code 1")

	contents, err := os.ReadFile(filepath.Join(dir, "job-b.log"))
	require.NoError(t, err)
	assert.Contains(t, string(contents), "RUN FAILED: exit code 1")
}

func TestNewRunLoggerSanitizesSlashes(t *testing.T) {
	dir := t.TempDir()
	rl, err := NewRunLogger(dir, "group/job-c")
	require.NoError(t, err)
	rl.WriteResult(true, 0, "")

	_, err = os.Stat(filepath.Join(dir, "group_job-c.log"))
	assert.NoError(t, err)
}
