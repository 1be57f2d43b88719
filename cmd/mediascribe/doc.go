// Package main hosts the mediascribe CLI entrypoint and command graph.
//
// The Cobra command tree exposes the full pipeline run, each stage on its
// own, a read-only status report, a directory watcher that reruns the
// pipeline when media arrives, and configuration scaffolding. Configuration
// resolution, run logging, and the run lock live here so subcommands only
// pick the stages to execute and render the outcome.
//
// Keep this package thin: behaviour belongs in the internal packages and is
// surfaced here through commands and flags.
package main
