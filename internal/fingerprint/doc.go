// Package fingerprint obtains a file's (duration, fingerprint) record,
// preferring the cache and falling back to the external fpcalc tool.
//
// A cache hit performs no I/O. A miss runs fpcalc exactly once; any failure
// is reported as a *MissError whose Reason says whether the tool could not
// be launched, exited non-zero, timed out, or produced incomplete output.
// Acquire never writes to the store; recording new results is the caller's
// job.
package fingerprint
