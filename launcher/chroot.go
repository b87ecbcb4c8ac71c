package launcher

import (
	"os"
	"sync"

	"procfleet/future"
	"procfleet/log"
)

// HelperFlag marks re-exec invocations of the running binary as the
// chroot child-side helper rather than the normal CLI entry point. main.go
// checks for this as its very first argument.
const HelperFlag = "__procfleet_chroot_helper__"

// Chroot isolates each wrapped JobSpec inside a minimal chroot(8)
// environment, adapted from environment/bsd + mount.go's nullfs/tmpfs
// table. Instead of calling the real command directly, Wrap re-execs the
// running binary with HelperFlag so the child can chroot(2) itself before
// exec'ing the real command — a process can't chroot another process, only
// itself.
type Chroot struct {
	baseDir string
	// Logger receives mount/unmount progress diagnostics. Defaults to
	// log.NoOpLogger when left nil.
	Logger log.LibraryLogger

	mu      sync.Mutex
	mounted []string
}

func (c *Chroot) logger() log.LibraryLogger {
	if c.Logger == nil {
		return log.NoOpLogger{}
	}
	return c.Logger
}

func init() {
	Register("chroot", func(baseDir string) Launcher { return &Chroot{baseDir: baseDir} })
}

func (c *Chroot) Setup() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(c.baseDir, 0o755); err != nil {
		return &ErrSetupFailed{Op: "mkdir " + c.baseDir, Err: err}
	}
	c.logger().Debug("chroot: mounting %d entries under %s", len(defaultMounts), c.baseDir)
	mounted, err := mountAll(c.baseDir, defaultMounts, c.logger())
	c.mounted = mounted
	if err != nil {
		c.logger().Error("chroot: setup failed after %d mounts: %v", len(mounted), err)
		return err
	}
	c.logger().Info("chroot: %d mounts ready under %s", len(mounted), c.baseDir)
	return nil
}

func (c *Chroot) Wrap(spec future.JobSpec) future.JobSpec {
	self, err := os.Executable()
	if err != nil {
		self = os.Args[0]
	}

	workdir := spec.Dir
	if workdir == "" {
		workdir = "/"
	}

	args := make([]string, 0, len(spec.Args)+5)
	args = append(args, HelperFlag, "--chroot="+c.baseDir, "--workdir="+workdir, "--", spec.Path)
	args = append(args, spec.Args...)

	return future.JobSpec{
		Path: self,
		Args: args,
		Env:  spec.Env,
	}
}

func (c *Chroot) Cleanup() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	stuck := unmountAll(c.mounted, c.logger())
	c.mounted = nil
	if len(stuck) > 0 {
		c.logger().Warn("chroot: %d mounts still busy after cleanup: %v", len(stuck), stuck)
		return &ErrCleanupFailed{Op: "unmount", Err: errBusyMounts(stuck)}
	}
	return os.RemoveAll(c.baseDir)
}

func (c *Chroot) BasePath() string { return c.baseDir }

type errBusyMounts []string

func (e errBusyMounts) Error() string {
	s := "mounts still busy:"
	for _, m := range e {
		s += " " + m
	}
	return s
}
