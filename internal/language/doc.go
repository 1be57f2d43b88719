// Package language normalizes the language labels reported by speech engines
// and defines the transcript languages the pipeline accepts.
package language
