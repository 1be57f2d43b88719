// Package whisper runs the openai-whisper command line tool.
//
// Each call writes whisper's JSON output into a private temporary directory,
// reads the text and detected language back, and removes the directory. The
// process runner is injectable so tests never execute whisper.
package whisper
