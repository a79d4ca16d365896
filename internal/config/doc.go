// Package config loads, normalizes, and validates dupefinder configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// DUPEFINDER_FPCALC. The Config type centralizes every knob the scan
// pipeline and CLI need so the fingerprint cache, result log, and external
// fingerprinting tool are resolved in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized extensions, canonical log formats, and clear validation errors.
package config
