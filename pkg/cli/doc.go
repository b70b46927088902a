/*
Package cli provides command-line interface utilities for the callisto
command: typed command errors and signal-aware contexts.

Command Errors:

Commands wrap failures so the top level can report which command failed:

	if err := loader.Load(path); err != nil {
		return cli.NewCommandError("lint", err)
	}

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx := cli.SetupSignalHandler()
	// Use ctx for operations that should be cancelled on shutdown
*/
package cli
