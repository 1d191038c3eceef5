// Every git call gitfleet makes goes through this package: the git CLI is
// the engine, so the user's SSH keys, credential helpers and config apply
// unchanged. Commands are echoed to the context logger in verbose mode.
//
//	out, err := cmd.OutputContext(ctx, repoPath, "git", "branch", "--show-current")
//	if err != nil {
//	    // err.Error() is git's stderr; cmd.ExitCode(err) its exit status
//	}
package cmd
