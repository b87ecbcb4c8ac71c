package strategy

import (
	"os"
	"os/exec"
	"syscall"
	"time"

	"procfleet/future"
	"procfleet/reaper"
	"procfleet/status"
)

// rawChild tracks one in-flight child spawned by the pid-only path: no pipe,
// no Future, just a pid and the means to learn its exit status.
type rawChild struct {
	cmd *exec.Cmd
	pid int
}

// spawnRawPid execs spec with stdout/stderr inherited from the parent (the
// pid path performs no stdout redirection, only the Future path does) and
// returns its pid without waiting on it.
func spawnRawPid(spec future.JobSpec) (int, *rawChild) {
	cmd := exec.Command(spec.Path, spec.Args...)
	cmd.Dir = spec.Dir
	if spec.Env != nil {
		env := make([]string, 0, len(spec.Env))
		for k, v := range spec.Env {
			env = append(env, k+"="+v)
		}
		cmd.Env = env
	}
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := cmd.Start(); err != nil {
		return -1, nil
	}
	pid := cmd.Process.Pid
	return pid, &rawChild{cmd: cmd, pid: pid}
}

// reapPollInterval is how long waitRawChild keeps polling a Reaper's TryTake
// (every 10ms) before falling back to a direct blocking wait.
const reapPollInterval = 1 * time.Second

// waitRawChild blocks until rc has exited and returns its Status. If rp is
// non-nil, it is polled via TryTake first (the signal-safe path); whether it
// is registered is not checked. If rp is nil, overflowed, or the poll never
// observes the pid within
// reapPollInterval, it falls back to a direct blocking wait on that specific
// pid — never on wait4(-1, ...), which would race the reaper's own wait-any
// loop for an unrelated pid.
func waitRawChild(rc *rawChild, rp *reaper.Reaper) status.Status {
	if rp != nil {
		deadline := time.Now().Add(reapPollInterval)
		for time.Now().Before(deadline) {
			if ws, ok := rp.TryTake(rc.pid); ok {
				// The kernel has already reaped this child via the reaper's
				// own wait4; os/exec's bookkeeping must not wait on it again.
				rc.cmd.Process.Release()
				return status.FromWaitStatus(ws)
			}
			if rp.Overflowed() {
				break
			}
			time.Sleep(10 * time.Millisecond)
		}
	}
	err := rc.cmd.Wait()
	if err == nil {
		return status.FromProcessState(rc.cmd.ProcessState)
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return status.FromProcessState(exitErr.ProcessState)
	}
	return status.Abnormal(err.Error())
}
