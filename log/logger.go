// Package log implements a categorized-file logger for job run outcomes: a
// numbered-file-per-category layout keyed by a job identifier (the
// JobSpec's Path, or a caller-supplied label).
package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"procfleet/config"
)

// Logger manages the categorized set of run-outcome log files.
type Logger struct {
	cfg *config.Config

	resultsFile  *os.File
	successFile  *os.File
	failureFile  *os.File
	abnormalFile *os.File
	debugFile    *os.File

	mu sync.Mutex
}

// NewLogger creates log files under cfg.LogsPath, truncating any existing
// files from a previous run.
func NewLogger(cfg *config.Config) (*Logger, error) {
	if err := os.MkdirAll(cfg.LogsPath, 0o755); err != nil {
		return nil, fmt.Errorf("log: creating logs directory: %w", err)
	}

	l := &Logger{cfg: cfg}

	var err error
	if l.resultsFile, err = os.Create(filepath.Join(cfg.LogsPath, "00_last_results.log")); err != nil {
		return nil, err
	}
	if l.successFile, err = os.Create(filepath.Join(cfg.LogsPath, "01_success_list.log")); err != nil {
		return nil, err
	}
	if l.failureFile, err = os.Create(filepath.Join(cfg.LogsPath, "02_failure_list.log")); err != nil {
		return nil, err
	}
	if l.abnormalFile, err = os.Create(filepath.Join(cfg.LogsPath, "05_abnormal_output.log")); err != nil {
		return nil, err
	}
	if l.debugFile, err = os.Create(filepath.Join(cfg.LogsPath, "07_debug.log")); err != nil {
		return nil, err
	}

	l.writeHeaders()
	return l, nil
}

// Close closes all underlying log files.
func (l *Logger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, f := range []*os.File{l.resultsFile, l.successFile, l.failureFile, l.abnormalFile, l.debugFile} {
		if f != nil {
			f.Close()
		}
	}
}

func (l *Logger) writeHeaders() {
	fmt.Fprintf(l.resultsFile, "# procfleet run results, started %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintln(l.successFile, "# jobs that exited 0")
	fmt.Fprintln(l.failureFile, "# jobs that exited non-zero or terminated abnormally")
	fmt.Fprintln(l.abnormalFile, "# abnormal output captured from non-zero/abnormal jobs")
}

// Success records a job that settled Ok.
func (l *Logger) Success(jobID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	line := fmt.Sprintf("[%s] OK   %s\n", time.Now().Format(time.RFC3339), jobID)
	l.resultsFile.WriteString(line)
	l.successFile.WriteString(jobID + "\n")
}

// Failed records a job that settled NonZero or Abnormal, with detail being
// the exit code or signal description.
func (l *Logger) Failed(jobID, detail string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	line := fmt.Sprintf("[%s] FAIL %s (%s)\n", time.Now().Format(time.RFC3339), jobID, detail)
	l.resultsFile.WriteString(line)
	l.failureFile.WriteString(jobID + "\n")
}

// Abnormal records captured stdout from a job that failed.
func (l *Logger) Abnormal(jobID, output string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.abnormalFile, "=== %s ===\n%s\n\n", jobID, output)
}

// Debug writes a free-form diagnostic line, formatted as by fmt.Sprintf.
func (l *Logger) Debug(format string, args ...any) {
	l.debugLine(fmt.Sprintf(format, args...))
}

func (l *Logger) debugLine(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.debugFile, "[%s] %s\n", time.Now().Format(time.RFC3339), msg)
}

// Info satisfies LibraryLogger by writing to the debug file under an [INFO] tag.
func (l *Logger) Info(format string, args ...any) {
	l.debugLine("[INFO] " + fmt.Sprintf(format, args...))
}

// Warn satisfies LibraryLogger.
func (l *Logger) Warn(format string, args ...any) {
	l.debugLine("[WARN] " + fmt.Sprintf(format, args...))
}

// Error satisfies LibraryLogger.
func (l *Logger) Error(format string, args ...any) {
	l.debugLine("[ERROR] " + fmt.Sprintf(format, args...))
}

// WriteSummary appends a final tally line to the results file.
func (l *Logger) WriteSummary(total, success, failed int, duration time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.resultsFile, "\n# total=%d success=%d failed=%d duration=%s\n",
		total, success, failed, duration.Round(time.Millisecond))
}
