// Package dedupe runs one duplicate scan over a folder.
//
// A run moves through fixed phases:
//
//  1. Lock the cache and load it (an unreadable snapshot starts empty).
//  2. Reconcile the cache against the filesystem, once.
//  3. Discover audio files and acquire a fingerprint for each, saving the
//     cache after every SaveInterval new fingerprints and once more at the
//     end of the phase.
//  4. Scan every cached pair and stream matches to the result log.
//
// The package never reads from or writes to a terminal. Operator-facing
// events go to a Reporter supplied by the caller.
package dedupe
