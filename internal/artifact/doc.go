// Package artifact names the files the pipeline produces.
//
// Every output is derived from a recording stem plus the transcript language.
// Encode and Decode are pure functions over file names, so the idempotence
// checks in each stage compare names and never open files.
package artifact
