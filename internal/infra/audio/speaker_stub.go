//go:build !portaudio
// +build !portaudio

package audio

import (
	"context"
	"log/slog"
)

// Speaker stub when portaudio is not available
type Speaker struct {
	logger *slog.Logger
}

func NewSpeaker(logger *slog.Logger) *Speaker {
	return &Speaker{logger: logger}
}

func (s *Speaker) Play(_ context.Context, _ []byte) error {
	return ErrUnavailable
}
