// Package services defines shared utilities consumed by the pipeline stages
// and their external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp stage names, artifact names, and run
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper so the driver and the CLI
//     can classify failures (bad input vs. broken tool vs. misconfiguration)
//     and print a consistent operator hint.
//
// Use these helpers when wiring new stage logic so error handling and
// observability stay uniform across the pipeline.
package services
