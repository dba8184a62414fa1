// Package store provides file-based persistence for fly's cached index data.
//
// It contains concrete implementations of the domain storage interfaces,
// serialising data as JSON on disk with atomic temp-file-and-rename writes.
// All methods are concurrency-safe via internal locking. Files live under the
// cache directory inside the configured home (default ~/.fly-wrapper/cache).
//
// Cache file names are the hex BLAKE2b-256 digest of the entry key, so keys
// may contain URLs and any characters a project name allows.
package store
