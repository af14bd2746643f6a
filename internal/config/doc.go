// Package config loads, normalizes, and validates pagecompare configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// PAGECOMPARE_LOG_LEVEL. The Config type centralizes the alignment knobs and
// the locations of logs, reports, and the run history database.
//
// Always obtain settings through this package so downstream code receives
// expanded paths, canonical log formats, and clear validation errors.
package config
