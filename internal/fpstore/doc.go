// Package fpstore provides the durable fingerprint cache that maps audio file
// paths to their (duration, fingerprint) records.
//
// The store is loaded once per run from a snapshot backend, reconciled
// against the live filesystem, mutated in memory as files are fingerprinted,
// and written back as a whole snapshot. A snapshot that cannot be read never
// fails the run: the store starts empty and the caller is told why.
//
// # Storage
//
// Two backends are available:
//
//	json    path -> [duration, fingerprint] object, written to a temp file
//	        and renamed over the previous snapshot (default: <folder>/fp.json)
//	sqlite  a single fingerprints table, rewritten inside one transaction
//
// Paths are keys verbatim; no normalization is applied, so two spellings of
// the same file are two entries.
//
// # Ownership
//
// AcquireLock takes an advisory lock next to the snapshot so two runs cannot
// interleave writes to the same cache.
package fpstore
