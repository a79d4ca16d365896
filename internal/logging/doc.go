// Package logging assembles structured slog loggers and attribute helpers used
// across dupefinder.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes helpers that keep warning lines consistent: every
// recoverable failure (unreadable cache, failed save, unfingerprintable file)
// carries an event type, a hint, and the impact on the current run. The
// package also provides a no-op logger for tests and wiring code that cannot
// fail.
package logging
