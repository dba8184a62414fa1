// Package requirement parses PEP 508 dependency declarations and evaluates
// PEP 440 version specifiers against release versions.
//
// Parsing is lenient: a requirement with a malformed clause, such as
// "pyyaml>-5.4.1", still yields its name and raw clauses so callers can list
// it, while the returned error (an *InvalidSpecifierError or a wrapped
// ErrInvalidRequirement) tells checkers what is wrong.
//
// Release ordering follows PEP 440: epoch, release segments, then dev <
// pre-release < final < post-release, then local labels.
package requirement
