// Package speech defines the contract shared by the speech-to-text engines.
package speech

import "context"

// Result is the outcome of one transcription call.
type Result struct {
	Text string
	// Language is the ISO 639-1 code the engine detected or was forced to.
	Language string
}

// Engine transcribes an audio file. An empty language asks the engine to
// detect it.
type Engine interface {
	Name() string
	Transcribe(ctx context.Context, audioPath, language string) (Result, error)
}

// Checker is implemented by engines that can verify their prerequisites
// without transcribing anything.
type Checker interface {
	Check() error
}
