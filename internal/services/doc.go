// Package services defines shared utilities consumed by the comparison
// pipeline and the CLI.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, pipeline phases, and document sides
//     for logging.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent process exit codes.
//
// Use these helpers when wiring new pipeline steps so error handling and
// observability stay uniform across commands.
package services
