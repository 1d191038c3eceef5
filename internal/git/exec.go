package git

import (
	"context"

	"github.com/raphi011/gitfleet/internal/cmd"
)

// baseEnv keeps git from prompting for credentials and fixes the message
// language so stderr can be classified.
var baseEnv = []string{"GIT_TERMINAL_PROMPT=0", "LC_ALL=C"}

// gitArgs prepends -C <dir> to args if dir is non-empty.
func gitArgs(dir string, args []string) []string {
	if dir == "" {
		return args
	}
	return append([]string{"-C", dir}, args...)
}

// runGit executes a git command with context support and verbose logging.
func runGit(ctx context.Context, dir string, args ...string) error {
	_, err := outputGitEnv(ctx, dir, nil, args...)
	return err
}

// outputGit executes a git command with context support and verbose logging,
// returning stdout.
func outputGit(ctx context.Context, dir string, args ...string) ([]byte, error) {
	return outputGitEnv(ctx, dir, nil, args...)
}

// outputGitEnv is outputGit with extra environment variables.
func outputGitEnv(ctx context.Context, dir string, env []string, args ...string) ([]byte, error) {
	full := make([]string, 0, len(baseEnv)+len(env))
	full = append(full, baseEnv...)
	full = append(full, env...)
	return cmd.OutputEnvContext(ctx, "", full, "git", gitArgs(dir, args)...)
}
