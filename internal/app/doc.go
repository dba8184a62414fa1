// Package app wires application dependencies for the CLI.
//
// It loads Config (defaults, config.yaml, .env, FLY_* variables), builds the
// zap logger, and constructs the index client, release cache and resolver,
// exposing them via the Wire struct for commands to use.
package app
