// Package hooks runs user-defined shell commands after batch operations.
//
// Hooks are defined in the config and name the operations that trigger
// them:
//
//	[hooks.deps]
//	command = "go mod download"
//	description = "Download modules"
//	on = ["clone", "pull"]
//
// After a batch call finishes, every matching hook runs once in each
// repository the operation succeeded in, with that repository as working
// directory. Failed and skipped repositories are left alone.
//
// # Triggers
//
// A trigger is the operation name with spaces replaced by hyphens, e.g.
// "commit-and-push" or "create-branch". "all" matches every operation.
// Hooks without triggers never run.
//
// # Placeholders
//
// Placeholders are replaced with shell-quoted values:
//
//   - {path}: Absolute path of the working copy
//   - {repo}: Repository name
//   - {branch}: Branch the operation touched, if any
//   - {commit}: Commit the operation created, if any
//   - {trigger}: Trigger of the operation
//
// Hook failures are logged as warnings and never change the results of
// the operation.
package hooks
