// Package preflight checks that a scan can run before it starts.
//
// RequireFingerprinter is the hard gate used by scan and compare: a missing
// fpcalc binary is fatal because no fingerprint can ever be produced. RunAll
// gathers every check for the doctor command, including folder, cache, and
// result log access.
package preflight
