package application

import (
	"errors"

	"voice-chat/internal/domain"
)

var (
	// ErrRecognitionUnsupported is returned by a RecognizerProvider when no
	// speech recognizer can be created on this system.
	ErrRecognitionUnsupported = errors.New("speech recognition not supported")

	// ErrAlreadyStarted is returned by Recognizer.Start while a session is
	// still active.
	ErrAlreadyStarted = errors.New("recognition already started")
)

// RecognizerConfig configures a recognizer session.
type RecognizerConfig struct {
	Language       string
	Continuous     bool
	InterimResults bool
}

// DefaultRecognizerConfig is a single-shot, final-results-only US English
// session.
func DefaultRecognizerConfig() RecognizerConfig {
	return RecognizerConfig{
		Language:       domain.DefaultRecognitionLang,
		Continuous:     false,
		InterimResults: false,
	}
}

// RecognitionHandler receives recognizer events. It may be called from any
// goroutine and must not block.
type RecognitionHandler func(domain.RecognitionEvent)

// Recognizer is a reusable speech capture session. Every Start is followed by
// exactly one End event, preceded by either a Result or an Error event.
type Recognizer interface {
	Start() error
	Stop() error
	Close() error
}

// RecognizerProvider probes for recognition support and builds the session.
type RecognizerProvider interface {
	NewRecognizer(cfg RecognizerConfig, handler RecognitionHandler) (Recognizer, error)
}
