//go:build portaudio
// +build portaudio

package audio

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gordonklaus/portaudio"
)

// Speaker plays WAV audio on the default output device.
type Speaker struct {
	logger *slog.Logger
}

func NewSpeaker(logger *slog.Logger) *Speaker {
	return &Speaker{logger: logger}
}

func (s *Speaker) Play(ctx context.Context, data []byte) error {
	pcm, err := DecodeWAV(data)
	if err != nil {
		return err
	}
	if pcm.Channels <= 0 || pcm.SampleRate <= 0 {
		return fmt.Errorf("invalid wav format: %d channels at %d Hz", pcm.Channels, pcm.SampleRate)
	}

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initializing portaudio: %w", err)
	}
	defer portaudio.Terminate()

	buffer := make([]int16, framesPerBuffer*pcm.Channels)
	stream, err := portaudio.OpenDefaultStream(0, pcm.Channels, float64(pcm.SampleRate), framesPerBuffer, buffer)
	if err != nil {
		return fmt.Errorf("opening stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("starting stream: %w", err)
	}
	defer stream.Stop()

	s.logger.Debug("speaker playing", "seconds", pcm.Duration(), "sampleRate", pcm.SampleRate)

	for offset := 0; offset < len(pcm.Samples); offset += len(buffer) {
		if err := ctx.Err(); err != nil {
			return err
		}
		n := copy(buffer, pcm.Samples[offset:])
		clear(buffer[n:])
		if err := stream.Write(); err != nil {
			return fmt.Errorf("writing to stream: %w", err)
		}
	}

	return nil
}
