// Package cmd runs external commands, git above all, with their stderr
// folded into the returned error.
package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/raphi011/gitfleet/internal/log"
)

// Error is a failed command. Its message is the command's stderr when there
// was any; Unwrap exposes the underlying error, usually an *exec.ExitError.
type Error struct {
	Name   string
	Stderr string
	Err    error
}

func (e *Error) Error() string {
	if e.Stderr != "" {
		return e.Stderr
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ExitCode returns the exit status of a failed command, or -1 when err did
// not come from a command that exited.
func ExitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// output runs c and returns its stdout, or an *Error carrying stderr.
func output(c *exec.Cmd) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr
	if err := c.Run(); err != nil {
		return nil, &Error{Name: c.Path, Stderr: strings.TrimSpace(stderr.String()), Err: err}
	}
	return stdout.Bytes(), nil
}

// RunContext runs name with args in dir, logging the command in verbose mode.
// A cancelled context is reported as ctx.Err().
func RunContext(ctx context.Context, dir, name string, args ...string) error {
	_, err := OutputEnvContext(ctx, dir, nil, name, args...)
	return err
}

// OutputContext is RunContext returning stdout.
func OutputContext(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	return OutputEnvContext(ctx, dir, nil, name, args...)
}

// OutputEnvContext is OutputContext with extra environment variables
// (KEY=VALUE) appended to the current process environment.
func OutputEnvContext(ctx context.Context, dir string, env []string, name string, args ...string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := exec.CommandContext(ctx, name, args...)
	c.Dir = dir
	if len(env) > 0 {
		c.Env = append(os.Environ(), env...)
	}

	done := log.FromContext(ctx).Command(dir, name, args...)
	start := time.Now()
	out, err := output(c)
	done(time.Since(start))

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}
	return out, nil
}
