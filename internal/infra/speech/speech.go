// Package speech implements recognizer sessions on top of an audio capture
// device and a transcription backend.
package speech

import "context"

// AudioCapture records one utterance at a time as encoded audio.
type AudioCapture interface {
	Name() string
	Open() error
	Close() error
	// Record returns when the utterance is complete, stop is closed or ctx
	// is done. An empty result means nothing was heard.
	Record(ctx context.Context, stop <-chan struct{}) ([]byte, error)
}

// Transcriber turns one encoded utterance into text.
type Transcriber interface {
	Name() string
	Transcribe(ctx context.Context, audio []byte, language string) (string, error)
}
