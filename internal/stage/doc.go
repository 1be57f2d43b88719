// Package stage defines the contract shared by every pipeline step: a
// descriptor the driver executes, the statistics it reports, and the
// skip-or-process loop that keeps transform stages idempotent.
package stage
