package git

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// ErrGitNotFound indicates git is not installed or not in PATH.
var ErrGitNotFound = errors.New("git not found: please install git (https://git-scm.com)")

// MinVersion is the oldest git supporting every command the adapter runs
// (fetch --no-write-fetch-head needs 2.29).
var MinVersion = Version{Major: 2, Minor: 29}

// Version is a git release number.
type Version struct {
	Major, Minor, Patch int
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Less reports whether v is older than o.
func (v Version) Less(o Version) bool {
	if v.Major != o.Major {
		return v.Major < o.Major
	}
	if v.Minor != o.Minor {
		return v.Minor < o.Minor
	}
	return v.Patch < o.Patch
}

// ParseVersion reads the output of "git version", e.g.
// "git version 2.39.3 (Apple Git-145)" or "git version 2.45.1.windows.1".
func ParseVersion(s string) (Version, error) {
	fields := strings.Fields(s)
	if len(fields) < 3 || fields[0] != "git" || fields[1] != "version" {
		return Version{}, fmt.Errorf("unexpected git version output %q", strings.TrimSpace(s))
	}

	parts := strings.SplitN(fields[2], ".", 4)
	nums := make([]int, 3)
	for i := 0; i < len(parts) && i < 3; i++ {
		n, err := strconv.Atoi(parts[i])
		if err != nil {
			if i == 0 {
				return Version{}, fmt.Errorf("unexpected git version %q", fields[2])
			}
			break
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// CheckGit verifies that git is in PATH and at least MinVersion.
func CheckGit(ctx context.Context) error {
	if _, err := exec.LookPath("git"); err != nil {
		return ErrGitNotFound
	}
	out, err := outputGit(ctx, "", "version")
	if err != nil {
		return fmt.Errorf("git version: %w", err)
	}
	v, err := ParseVersion(string(out))
	if err != nil {
		return err
	}
	if v.Less(MinVersion) {
		return fmt.Errorf("git %s is too old, gitfleet needs %s or newer", v, MinVersion)
	}
	return nil
}
