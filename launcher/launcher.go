// Package launcher provides optional execution isolation for child
// processes via a backend registry. future.New always execs a JobSpec
// directly; a Launcher sits in front of it and rewrites the JobSpec to run
// inside an isolated environment first, when one is configured.
package launcher

import (
	"fmt"

	"procfleet/future"
)

// Launcher prepares an isolated environment for child processes and
// rewrites JobSpecs to run inside it.
//
// Lifecycle: Setup once per launcher instance, Wrap any number of times to
// adapt JobSpecs before handing them to future.New or a raw-pid spawn, then
// Cleanup when no more children will be started.
type Launcher interface {
	// Setup prepares the isolated environment (e.g., creates the chroot
	// base directory and performs its mounts). Called once before any Wrap.
	Setup() error

	// Wrap rewrites spec to execute inside the isolated environment. The
	// returned JobSpec is what actually gets exec'd; callers must not use
	// the original spec after wrapping.
	Wrap(spec future.JobSpec) future.JobSpec

	// Cleanup tears the environment down. Must be idempotent and must
	// succeed even if Setup failed or was never called.
	Cleanup() error

	// BasePath returns the isolated environment's root, for logging.
	BasePath() string
}

// NewFunc constructs a Launcher instance.
type NewFunc func(baseDir string) Launcher

var backends = make(map[string]NewFunc)

// Register adds a launcher backend under name. Panics if name is already
// registered.
func Register(name string, fn NewFunc) {
	if _, exists := backends[name]; exists {
		panic(fmt.Sprintf("launcher backend already registered: %s", name))
	}
	backends[name] = fn
}

// New creates a Launcher for the named backend rooted at baseDir.
func New(name, baseDir string) (Launcher, error) {
	fn, ok := backends[name]
	if !ok {
		return nil, &ErrUnknownBackend{Backend: name}
	}
	return fn(baseDir), nil
}

// ErrUnknownBackend is returned by New for an unregistered backend name.
type ErrUnknownBackend struct {
	Backend string
}

func (e *ErrUnknownBackend) Error() string {
	return fmt.Sprintf("unknown launcher backend: %s", e.Backend)
}

// ErrSetupFailed wraps a failure during Setup, naming the operation that
// failed (e.g. "mkdir", "mount").
type ErrSetupFailed struct {
	Op  string
	Err error
}

func (e *ErrSetupFailed) Error() string {
	return fmt.Sprintf("launcher setup failed (%s): %v", e.Op, e.Err)
}

func (e *ErrSetupFailed) Unwrap() error { return e.Err }

// ErrCleanupFailed wraps a failure during Cleanup that remains after any
// internal retries, e.g. mounts still busy once Chroot's unmount retries are
// exhausted.
type ErrCleanupFailed struct {
	Op  string
	Err error
}

func (e *ErrCleanupFailed) Error() string {
	return fmt.Sprintf("launcher cleanup failed (%s): %v", e.Op, e.Err)
}

func (e *ErrCleanupFailed) Unwrap() error { return e.Err }
