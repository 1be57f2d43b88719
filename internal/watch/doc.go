// Package watch reruns the pipeline when new media lands in the working or
// source directories.
package watch
