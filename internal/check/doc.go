// Package check validates a parsed manifest: package metadata, every
// declared requirement, entry points, and arguments that could not be read
// statically. Findings are reported as severity-ranked diagnostics.
package check
