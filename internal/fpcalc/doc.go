// Package fpcalc wraps the chromaprint fpcalc command-line tool.
//
// fpcalc is invoked in raw mode with a fixed analysis window; its stdout is
// expected to carry DURATION=<seconds> and FINGERPRINT=<comma-separated
// tokens> lines. Every invocation is bounded by a timeout so a stuck decoder
// cannot stall a scan.
//
// Primary entry points:
//   - Client.Fingerprint: executes fpcalc and returns the parsed Result
//   - ParseOutput: parses captured fpcalc stdout
package fpcalc
