// Package preflight provides readiness checks for the working directories,
// external sources, binaries and LLM credentials mediascribe depends on.
//
// The status command renders every result. Missing credentials are reported
// but never block a run: the LLM stages skip themselves in that case. The
// live LLM check runs only when requested because it spends an API call.
package preflight
