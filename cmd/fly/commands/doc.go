// Package commands defines the fly CLI and wires dependencies for subcommands.
//
// Commands
//
//   - version          Print the package name and version
//   - manifest show    Print a parsed setup.py manifest
//   - manifest check   Validate a manifest; exits non-zero on errors
//   - deps list        List declared dependencies
//   - deps resolve     Pick the newest matching release of each dependency
//   - cache clear      Delete cached index responses
//
// Without -f, manifest and deps commands use fly-wrapper's own embedded
// setup.py.
//
// # Implementation
//
// The root command loads configuration and builds the logger before any
// subcommand runs. The index client, cache and resolver are wired only by
// the commands that talk to an index.
package commands
