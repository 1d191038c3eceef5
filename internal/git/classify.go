package git

import (
	"context"
	"errors"
	"strings"

	"github.com/raphi011/gitfleet/internal/result"
)

// transportMarkers identify network, authentication and remote-side failures.
var transportMarkers = []string{
	"could not read from remote repository",
	"could not resolve host",
	"authentication failed",
	"permission denied",
	"could not read username",
	"terminal prompts disabled",
	"repository not found",
	"does not appear to be a git repository",
	"unable to access",
	"connection refused",
	"connection timed out",
	"failed to connect",
	"failed to push some refs",
	"[rejected]",
	"[remote rejected]",
	"couldn't find remote ref",
}

// statusMarkers map git messages to branch and working-tree statuses.
var statusMarkers = []struct {
	marker string
	status result.Status
}{
	{"not fully merged", result.NotMerged},
	{"cannot delete branch", result.CannotDeleteCurrent},
	{"already exists", result.BranchAlreadyExists},
	{"would be overwritten", result.ConflictPredicted},
	{"is not a valid branch name", result.InvalidArgument},
	{"not a valid branch name", result.InvalidArgument},
	{"invalid reference", result.BranchNotFound},
	{"did not match any file(s) known to git", result.BranchNotFound},
	{"not found", result.BranchNotFound},
}

// classify wraps a git failure in a *result.Error. Errors that are already
// classified pass through unchanged.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var re *result.Error
	if errors.As(err, &re) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return result.Wrap(result.Failed, op, err)
	}

	return result.Wrap(statusFor(err.Error()), op, err)
}

// classifyTransport is classify for commands that only talk to a remote.
// Anything that is not a cancellation is a transport failure.
func classifyTransport(op string, err error) error {
	if err == nil {
		return nil
	}
	var re *result.Error
	if errors.As(err, &re) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return result.Wrap(result.Failed, op, err)
	}
	return result.Wrap(result.TransportFailure, op, err)
}

func statusFor(msg string) result.Status {
	msg = strings.ToLower(msg)
	for _, m := range transportMarkers {
		if strings.Contains(msg, m) {
			return result.TransportFailure
		}
	}
	for _, m := range statusMarkers {
		if strings.Contains(msg, m.marker) {
			return m.status
		}
	}
	return result.Failed
}
