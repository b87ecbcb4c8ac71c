package launcher

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"procfleet/log"
)

// mountPoint is one entry in a chroot's filesystem table: bind mounts for
// the host's binaries and libraries, plus private tmpfs/proc mounts so the
// chroot has a working /tmp and /proc.
type mountPoint struct {
	source string
	target string // relative to the chroot base
	fstype string
	flags  uintptr
	data   string
	bind   bool // true: source is a host path bind-mounted in; false: fstype mount (tmpfs, proc)
}

// defaultMounts is the baseline table for the chroot backend: read-only
// bind mounts of the host toolchain directories that exist, plus a private
// /tmp and /proc.
var defaultMounts = []mountPoint{
	{source: "/bin", target: "bin", bind: true},
	{source: "/sbin", target: "sbin", bind: true},
	{source: "/lib", target: "lib", bind: true},
	{source: "/lib64", target: "lib64", bind: true},
	{source: "/usr", target: "usr", bind: true},
	{source: "/etc/resolv.conf", target: "etc/resolv.conf", bind: true},
	{target: "tmp", fstype: "tmpfs", data: "mode=1777"},
	{target: "proc", fstype: "proc"},
}

func mountAll(baseDir string, table []mountPoint, logger log.LibraryLogger) ([]string, error) {
	var mounted []string
	for _, m := range table {
		target := filepath.Join(baseDir, m.target)

		if m.bind {
			if _, err := os.Stat(m.source); err != nil {
				logger.Debug("chroot: skipping bind of %s: %v", m.source, err)
				continue // host doesn't have this path (e.g. no /lib64) — skip it
			}
		}

		if fi, err := os.Stat(m.source); err == nil && !fi.IsDir() {
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return mounted, &ErrSetupFailed{Op: "mkdir " + target, Err: err}
			}
			if f, err := os.Create(target); err == nil {
				f.Close()
			}
		} else if err := os.MkdirAll(target, 0o755); err != nil {
			return mounted, &ErrSetupFailed{Op: "mkdir " + target, Err: err}
		}

		if m.bind {
			if err := unix.Mount(m.source, target, "", unix.MS_BIND|unix.MS_RDONLY, ""); err != nil {
				return mounted, &ErrSetupFailed{Op: fmt.Sprintf("bind %s", m.source), Err: err}
			}
		} else {
			if err := unix.Mount(m.fstype, target, m.fstype, m.flags, m.data); err != nil {
				return mounted, &ErrSetupFailed{Op: fmt.Sprintf("mount %s", m.fstype), Err: err}
			}
		}
		logger.Debug("chroot: mounted %s", target)
		mounted = append(mounted, target)
	}
	return mounted, nil
}

// unmountAll unmounts in reverse order, retrying a few times on EBUSY
// before giving up on a particular mount, reported rather than fatal.
func unmountAll(mounted []string, logger log.LibraryLogger) []string {
	var stuck []string
	for i := len(mounted) - 1; i >= 0; i-- {
		target := mounted[i]
		ok := false
		for attempt := 0; attempt < 3; attempt++ {
			if err := unix.Unmount(target, 0); err == nil {
				ok = true
				break
			}
			logger.Debug("chroot: unmount %s busy, attempt %d/3", target, attempt+1)
		}
		if !ok {
			stuck = append(stuck, target)
		} else {
			logger.Debug("chroot: unmounted %s", target)
		}
	}
	return stuck
}
