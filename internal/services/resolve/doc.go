// Package resolve picks, for each declared requirement, the newest release on
// the index that satisfies its version specifiers.
//
// Lookups run concurrently with a bounded number in flight. A lookup failure
// is recorded on that requirement's Resolution and never aborts the others;
// only context cancellation fails a Resolve call.
package resolve
