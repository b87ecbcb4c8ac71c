package future

import "procfleet/decode"

// Decoder re-exports decode.Decoder under the future package so callers
// building a JobSource need only import future, not decode, for the common
// case of picking one of the stock decoders.
type Decoder = decode.Decoder

// JobSpec describes a child to exec: a complete job description handed to
// New, rather than a fork-then-branch-on-pid control flow. Go cannot safely
// run arbitrary caller code between fork and exec (the runtime's goroutines
// and threads make that unsafe), so New takes the whole description
// up front instead of exposing a pid==0 child branch to callers.
type JobSpec struct {
	// Path is the path of the command to run, resolved the way os/exec
	// resolves it (via PATH if Path contains no separator).
	Path string
	// Args are the command-line arguments, NOT including Path itself.
	Args []string
	// Env is the child's environment. A nil map means the child inherits
	// the parent's environment.
	Env map[string]string
	// Dir is the child's working directory. Empty means the parent's
	// current working directory.
	Dir string
}
