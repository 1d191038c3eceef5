// Package git provides git operations via shell commands.
//
// All operations use [os/exec.Command] to call the git CLI directly rather than
// using Go git libraries. This keeps user configuration (SSH keys, credential
// helpers, includes) in effect for every transport command.
//
// # Adapter
//
// [Adapter] performs one primitive on one working copy per call:
//
//   - [Adapter.Clone]: Clone into a temporary sibling, then rename into place
//   - [Adapter.FetchAndDiff]: Fetch the upstream and list paths it changes
//   - [Adapter.Commit], [Adapter.Push], [Adapter.Pull]: Publish and update
//   - [Adapter.ListBranches], [Adapter.CreateBranch], [Adapter.Checkout],
//     [Adapter.DeleteBranch]: Branch management
//
// Every error returned by the adapter is a [result.Error] whose status is
// derived from git's stderr. Raw detail is kept in the wrapped error.
//
// # Read-only queries
//
// [Adapter.ModifiedPaths], [Adapter.WorkingPaths] and [Adapter.Status] run
// with --no-optional-locks so they never refresh or write the index.
package git
