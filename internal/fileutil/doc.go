// Package fileutil holds the file copy and comparison primitives used by the
// ingest and output stages.
package fileutil
