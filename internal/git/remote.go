package git

import (
	"context"
	"strings"

	"github.com/raphi011/gitfleet/internal/result"
)

// OriginURL returns the fetch URL of origin.
func (a *Adapter) OriginURL(ctx context.Context, path string) (string, error) {
	out, err := outputGit(ctx, path, "remote", "get-url", Remote)
	if err != nil {
		return "", classify("remote url", err)
	}
	return trimOutput(out), nil
}

// RepoNameFromURL extracts the repository name from a git URL:
// "git@github.com:org/api.git" and "https://host/org/api" both give "api".
func RepoNameFromURL(url string) string {
	url = strings.TrimRight(url, "/")
	url = strings.TrimSuffix(url, ".git")
	if i := strings.LastIndexAny(url, "/:"); i >= 0 {
		url = url[i+1:]
	}
	return url
}

// ValidateRemoteURL checks that url is something git can clone from.
func ValidateRemoteURL(ctx context.Context, url string) error {
	if strings.TrimSpace(url) == "" {
		return result.Errorf(result.InvalidArgument, "remote url", "url is required")
	}
	if err := runGit(ctx, "", "ls-remote", "--exit-code", "--heads", url); err != nil && !isExitCode(err, 2) {
		return classifyTransport("remote url", err)
	}
	return nil
}
