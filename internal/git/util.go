package git

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/raphi011/gitfleet/internal/cmd"
)

func trimOutput(out []byte) string {
	return strings.TrimSpace(string(out))
}

// isExitCode reports whether git exited with code and printed nothing to stderr.
func isExitCode(err error, code int) bool {
	var cmdErr *cmd.Error
	if errors.As(err, &cmdErr) && cmdErr.Stderr != "" {
		return false
	}
	return cmd.ExitCode(err) == code
}

// samePath compares two paths after resolving symlinks.
func samePath(a, b string) bool {
	ra, err := filepath.EvalSymlinks(a)
	if err != nil {
		ra = filepath.Clean(a)
	}
	rb, err := filepath.EvalSymlinks(b)
	if err != nil {
		rb = filepath.Clean(b)
	}
	return ra == rb
}
