// RunLogger writes one file per job run, capturing phase markers and
// (optionally) the job's streamed stdout.
package log

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// RunLogger writes one job's log file under a logs directory, named after
// its job ID (sanitized for the filesystem).
type RunLogger struct {
	jobID string
	file  *os.File
	mu    sync.Mutex
}

// NewRunLogger creates (or truncates) jobID's log file under dir.
func NewRunLogger(dir, jobID string) (*RunLogger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("log: creating run log directory: %w", err)
	}
	safe := strings.ReplaceAll(jobID, "/", "_")
	f, err := os.Create(filepath.Join(dir, safe+".log"))
	if err != nil {
		return nil, err
	}
	rl := &RunLogger{jobID: jobID, file: f}
	rl.writeHeader()
	return rl, nil
}

func (rl *RunLogger) writeHeader() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	fmt.Fprintf(rl.file, "%s\n", strings.Repeat("=", 70))
	fmt.Fprintf(rl.file, "Run log: %s\n", rl.jobID)
	fmt.Fprintf(rl.file, "Started: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(rl.file, "%s\n\n", strings.Repeat("=", 70))
	rl.file.Sync()
}

// Write implements io.Writer so a RunLogger can be handed to anything that
// streams raw job output, e.g. as a secondary sink alongside a Future's own
// pipe-capture buffer.
func (rl *RunLogger) Write(p []byte) (int, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.file.Write(p)
}

// WritePhase marks a named phase boundary within the run log.
func (rl *RunLogger) WritePhase(phase string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	fmt.Fprintf(rl.file, "\n%s\nPhase: %s\nTime: %s\n%s\n",
		strings.Repeat("-", 70), phase, time.Now().Format("15:04:05"), strings.Repeat("-", 70))
	rl.file.Sync()
}

// WriteResult appends the terminal outcome of the run and closes the file.
func (rl *RunLogger) WriteResult(ok bool, duration time.Duration, detail string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	fmt.Fprintf(rl.file, "\n%s\n", strings.Repeat("=", 70))
	if ok {
		fmt.Fprintf(rl.file, "RUN OK\n")
	} else {
		fmt.Fprintf(rl.file, "RUN FAILED: %s\n", detail)
	}
	fmt.Fprintf(rl.file, "Completed: %s\nDuration: %s\n%s\n",
		time.Now().Format(time.RFC3339), duration, strings.Repeat("=", 70))
	rl.file.Sync()
	rl.file.Close()
}
