// Package transcribe implements the transcription stage.
//
// Each audio file yields exactly one transcript named {stem}_{lang}.txt with
// lang German or English. Detection runs first; an unsupported detection is
// retried with German forced, then English, and the file is skipped when
// neither yields valid text. Validate rejects empty, numeric-only and
// highly repetitive output.
package transcribe
