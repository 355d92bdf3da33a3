//go:build !portaudio
// +build !portaudio

package audio

import (
	"context"
	"log/slog"
)

// Microphone stub when portaudio is not available
type Microphone struct {
	logger *slog.Logger
}

func NewMicrophone(_ CaptureConfig, logger *slog.Logger) *Microphone {
	return &Microphone{logger: logger}
}

func (m *Microphone) Name() string {
	return "microphone"
}

func (m *Microphone) Open() error {
	return ErrUnavailable
}

func (m *Microphone) Close() error {
	return nil
}

func (m *Microphone) Record(_ context.Context, _ <-chan struct{}) ([]byte, error) {
	return nil, ErrUnavailable
}
